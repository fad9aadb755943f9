package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractionResultEmpty(t *testing.T) {
	var nilResult *ExtractionResult
	assert.True(t, nilResult.Empty())
	assert.True(t, EmptyExtractionResult("2024-01-15").Empty())

	result := NewExtractionResult("2024-01-15", []*Record{
		NewRecord(map[string]interface{}{"event_name": "page_view"}),
	})
	assert.False(t, result.Empty())
	assert.Equal(t, 1, result.RecordCount)
}

func TestExtractionResultColumns(t *testing.T) {
	result := NewExtractionResult("2024-01-15", []*Record{
		NewRecord(map[string]interface{}{"event_name": "page_view", "user_id": "u1"}),
		NewRecord(map[string]interface{}{"event_name": "purchase", "revenue": 9.99}),
	})

	assert.Equal(t, []string{"event_name", "revenue", "user_id"}, result.Columns())
}

func TestInferSchema(t *testing.T) {
	records := []*Record{
		NewRecord(map[string]interface{}{
			"event_name":  "purchase",
			"event_count": int64(3),
			"revenue":     9.99,
			"is_new_user": true,
			"event_time":  time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC),
		}),
	}

	schema := InferSchema("events", records)
	assert.Equal(t, "events", schema.Name)
	assert.Equal(t, map[string]string{
		"event_name":  "string",
		"event_count": "int",
		"revenue":     "float",
		"is_new_user": "bool",
		"event_time":  "timestamp",
	}, schema.DTypes())
}

func TestInferSchemaFirstNonNilWins(t *testing.T) {
	records := []*Record{
		NewRecord(map[string]interface{}{"revenue": nil}),
		NewRecord(map[string]interface{}{"revenue": 4.5}),
		NewRecord(map[string]interface{}{"revenue": "ignored"}),
	}

	schema := InferSchema("events", records)
	assert.Equal(t, map[string]string{"revenue": "float"}, schema.DTypes())
}

func TestInferSchemaAllNilDefaultsToString(t *testing.T) {
	records := []*Record{
		NewRecord(map[string]interface{}{"session_id": nil}),
		NewRecord(map[string]interface{}{"session_id": nil}),
	}

	schema := InferSchema("events", records)
	assert.Equal(t, map[string]string{"session_id": "string"}, schema.DTypes())
}

func TestInferSchemaSortedFields(t *testing.T) {
	records := []*Record{
		NewRecord(map[string]interface{}{"z": 1, "a": "x", "m": true}),
	}

	schema := InferSchema("events", records)
	names := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"a", "m", "z"}, names)
}
