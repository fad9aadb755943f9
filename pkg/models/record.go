// Package models provides the data types that flow through the
// pipeline: calendar day keys, extracted event records, and the
// inferred schema used for columnar writes and sidecar metadata.
package models

import (
	"sort"
	"time"
)

// Record is a single event row extracted from the warehouse. Data maps
// column names to values as returned by the source driver.
type Record struct {
	Data map[string]interface{}
}

// NewRecord creates a record over the given column values.
func NewRecord(data map[string]interface{}) *Record {
	return &Record{Data: data}
}

// ExtractionResult holds one day's extracted events. It is produced by
// an EventSource, consumed immediately by an ObjectSink, and discarded.
type ExtractionResult struct {
	Date        DateKey
	Records     []*Record
	RecordCount int
}

// NewExtractionResult builds a result for the given day.
func NewExtractionResult(date DateKey, records []*Record) *ExtractionResult {
	return &ExtractionResult{
		Date:        date,
		Records:     records,
		RecordCount: len(records),
	}
}

// EmptyExtractionResult is the sentinel for a valid day with no
// materialized data. Absence of data is expected and must stay
// distinguishable from a transport failure.
func EmptyExtractionResult(date DateKey) *ExtractionResult {
	return &ExtractionResult{Date: date}
}

// Empty reports whether the day had no data.
func (r *ExtractionResult) Empty() bool {
	return r == nil || r.RecordCount == 0
}

// Columns returns the sorted union of column names across all records.
func (r *ExtractionResult) Columns() []string {
	seen := make(map[string]struct{})
	for _, rec := range r.Records {
		for name := range rec.Data {
			seen[name] = struct{}{}
		}
	}
	columns := make([]string, 0, len(seen))
	for name := range seen {
		columns = append(columns, name)
	}
	sort.Strings(columns)
	return columns
}

// FieldType is the logical type of a column.
type FieldType string

const (
	FieldTypeString    FieldType = "string"
	FieldTypeInt       FieldType = "int"
	FieldTypeFloat     FieldType = "float"
	FieldTypeBool      FieldType = "bool"
	FieldTypeTimestamp FieldType = "timestamp"
)

// Field is one column of an inferred schema.
type Field struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
}

// Schema describes the columns of an extraction result.
type Schema struct {
	Name   string  `json:"name"`
	Fields []Field `json:"fields"`
}

// DTypes returns the column to type mapping recorded in sidecar metadata.
func (s *Schema) DTypes() map[string]string {
	dtypes := make(map[string]string, len(s.Fields))
	for _, f := range s.Fields {
		dtypes[f.Name] = string(f.Type)
	}
	return dtypes
}

// InferSchema derives a schema from the records' values. The first
// non-nil value observed for a column decides its type; columns whose
// values are never observed default to string.
func InferSchema(name string, records []*Record) *Schema {
	types := make(map[string]FieldType)
	seen := make(map[string]struct{})

	for _, rec := range records {
		for col, val := range rec.Data {
			seen[col] = struct{}{}
			if _, decided := types[col]; decided || val == nil {
				continue
			}
			types[col] = inferType(val)
		}
	}

	columns := make([]string, 0, len(seen))
	for col := range seen {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	fields := make([]Field, 0, len(columns))
	for _, col := range columns {
		t, ok := types[col]
		if !ok {
			t = FieldTypeString
		}
		fields = append(fields, Field{Name: col, Type: t})
	}

	return &Schema{Name: name, Fields: fields}
}

func inferType(val interface{}) FieldType {
	switch val.(type) {
	case bool:
		return FieldTypeBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return FieldTypeInt
	case float32, float64:
		return FieldTypeFloat
	case time.Time:
		return FieldTypeTimestamp
	default:
		return FieldTypeString
	}
}
