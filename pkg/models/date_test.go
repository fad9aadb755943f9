package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "valid date", input: "2024-01-15"},
		{name: "leap day", input: "2024-02-29"},
		{name: "empty", input: "", wantErr: true},
		{name: "compact form", input: "20240115", wantErr: true},
		{name: "missing zero padding", input: "2024-1-15", wantErr: true},
		{name: "impossible day", input: "2024-02-30", wantErr: true},
		{name: "non-leap february 29", input: "2023-02-29", wantErr: true},
		{name: "garbage", input: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, err := ParseDateKey(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.input, date.String())
		})
	}
}

func TestParseCompactDateKey(t *testing.T) {
	date, err := ParseCompactDateKey("20240115")
	require.NoError(t, err)
	assert.Equal(t, DateKey("2024-01-15"), date)

	_, err = ParseCompactDateKey("2024011")
	assert.Error(t, err)

	_, err = ParseCompactDateKey("20241315")
	assert.Error(t, err)
}

func TestDateKeyCompact(t *testing.T) {
	assert.Equal(t, "20240115", DateKey("2024-01-15").Compact())
	assert.Equal(t, "20241231", DateKey("2024-12-31").Compact())
}

func TestDateKeyPartition(t *testing.T) {
	year, month, day := DateKey("2024-03-07").Partition()
	assert.Equal(t, "2024", year)
	assert.Equal(t, "03", month)
	assert.Equal(t, "07", day)
}

func TestDateKeyNext(t *testing.T) {
	assert.Equal(t, DateKey("2024-01-16"), DateKey("2024-01-15").Next())
	assert.Equal(t, DateKey("2024-02-01"), DateKey("2024-01-31").Next())
	assert.Equal(t, DateKey("2024-02-29"), DateKey("2024-02-28").Next())
	assert.Equal(t, DateKey("2025-01-01"), DateKey("2024-12-31").Next())
}

func TestDateKeyOrdering(t *testing.T) {
	assert.True(t, DateKey("2024-01-16").After("2024-01-15"))
	assert.True(t, DateKey("2024-01-15").Before("2024-01-16"))
	assert.False(t, DateKey("2024-01-15").After("2024-01-15"))
	// Lexicographic ordering matches chronological across month and
	// year boundaries because the form is zero padded.
	assert.True(t, DateKey("2024-02-01").After("2024-01-31"))
	assert.True(t, DateKey("2025-01-01").After("2024-12-31"))
}

func TestDateKeyFromTime(t *testing.T) {
	ts := time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC)
	assert.Equal(t, DateKey("2024-03-15"), DateKeyFromTime(ts))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 1, DaysBetween("2024-01-01", "2024-01-01"))
	assert.Equal(t, 4, DaysBetween("2024-01-01", "2024-01-04"))
	assert.Equal(t, 31, DaysBetween("2024-01-01", "2024-01-31"))
	// 2024 is a leap year.
	assert.Equal(t, 366, DaysBetween("2024-01-01", "2024-12-31"))
}
