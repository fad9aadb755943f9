package json

import (
	"strings"
	"testing"

	gojson "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type report struct {
	Date    string `json:"date"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func TestEncodeToBytes(t *testing.T) {
	out, err := EncodeToBytes(&report{Date: "2024-01-15", Success: true})
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(string(out), "\n"))

	var decoded report
	require.NoError(t, gojson.Unmarshal(out, &decoded))
	assert.Equal(t, "2024-01-15", decoded.Date)
	assert.True(t, decoded.Success)
}

func TestEncodeToBytesReturnsCopy(t *testing.T) {
	first, err := EncodeToBytes(&report{Date: "2024-01-15"})
	require.NoError(t, err)
	snapshot := string(first)

	// A second encode reuses the pooled buffer; the first result must
	// not be clobbered.
	_, err = EncodeToBytes(&report{Date: "2024-12-31", Error: "query timed out"})
	require.NoError(t, err)

	assert.Equal(t, snapshot, string(first))
}

func TestEncodeToBytesDoesNotEscapeHTML(t *testing.T) {
	out, err := EncodeToBytes(&report{Error: "expected <empty> result"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<empty>")
}

func TestMarshalIndent(t *testing.T) {
	out, err := MarshalIndent(&report{Date: "2024-01-15", Success: true}, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(out), "\n  \"date\": \"2024-01-15\"")
}
