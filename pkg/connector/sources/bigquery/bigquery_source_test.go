package bigquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/errors"
	"github.com/helioslabs/bronzeflow/pkg/models"
)

func TestNewSource(t *testing.T) {
	source, err := NewSource(&config.SourceConfig{
		ProjectID: "my-project",
		DatasetID: "analytics_123456789",
	})
	require.NoError(t, err)

	assert.Equal(t, "events_", source.tablePrefix)
	assert.Equal(t, "US", source.location)
}

func TestNewSourceValidation(t *testing.T) {
	_, err := NewSource(&config.SourceConfig{DatasetID: "analytics_123456789"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = NewSource(&config.SourceConfig{ProjectID: "my-project"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestTableID(t *testing.T) {
	source, err := NewSource(&config.SourceConfig{
		ProjectID:   "my-project",
		DatasetID:   "analytics_123456789",
		TablePrefix: "events_",
	})
	require.NoError(t, err)

	assert.Equal(t, "events_20240115", source.tableID("2024-01-15"))
}

func TestParseTableDate(t *testing.T) {
	tests := []struct {
		name    string
		tableID string
		prefix  string
		want    models.DateKey
		ok      bool
	}{
		{name: "daily table", tableID: "events_20240115", prefix: "events_", want: "2024-01-15", ok: true},
		{name: "intraday table", tableID: "events_intraday_20240115", prefix: "events_"},
		{name: "wrong prefix", tableID: "sessions_20240115", prefix: "events_"},
		{name: "short suffix", tableID: "events_2024", prefix: "events_"},
		{name: "non-numeric suffix", tableID: "events_backup", prefix: "events_"},
		{name: "impossible date", tableID: "events_20241340", prefix: "events_"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, ok := parseTableDate(tt.tableID, tt.prefix)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, date)
		})
	}
}
