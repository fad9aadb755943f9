// Package columnar encodes extracted record batches into Parquet for
// the bronze layer.
package columnar

import (
	"bytes"
	"fmt"
	"time"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/compress"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/helioslabs/bronzeflow/pkg/errors"
	"github.com/helioslabs/bronzeflow/pkg/models"
)

// writeBatchSize bounds the rows buffered per Arrow record batch.
const writeBatchSize = 10000

// WriteParquet encodes records into a single Parquet file with snappy
// compression, using the schema for column layout. Column values that
// do not match their inferred type are written as nulls.
func WriteParquet(records []*models.Record, schema *models.Schema) ([]byte, error) {
	arrowSchema, err := toArrowSchema(schema)
	if err != nil {
		return nil, err
	}

	alloc := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(alloc, arrowSchema)
	defer builder.Release()

	props := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(
		pqarrow.WithAllocator(alloc),
	)

	var buf bytes.Buffer
	writer, err := pqarrow.NewFileWriter(arrowSchema, &buf, props, arrowProps)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to create parquet writer")
	}

	pending := 0
	flush := func() error {
		if pending == 0 {
			return nil
		}
		rec := builder.NewRecord()
		defer rec.Release()
		if err := writer.WriteBuffered(rec); err != nil {
			return errors.Wrap(err, errors.ErrorTypeData, "failed to write parquet row group")
		}
		pending = 0
		return nil
	}

	for _, record := range records {
		for i, field := range arrowSchema.Fields() {
			appendValue(builder.Field(i), record.Data[field.Name])
		}
		pending++
		if pending >= writeBatchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to close parquet writer")
	}

	return buf.Bytes(), nil
}

func toArrowSchema(schema *models.Schema) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(schema.Fields))
	for _, field := range schema.Fields {
		arrowType, err := toArrowType(field.Type)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, "failed to convert field "+field.Name)
		}
		fields = append(fields, arrow.Field{
			Name:     field.Name,
			Type:     arrowType,
			Nullable: true,
		})
	}
	return arrow.NewSchema(fields, nil), nil
}

func toArrowType(fieldType models.FieldType) (arrow.DataType, error) {
	switch fieldType {
	case models.FieldTypeString:
		return arrow.BinaryTypes.String, nil
	case models.FieldTypeInt:
		return arrow.PrimitiveTypes.Int64, nil
	case models.FieldTypeFloat:
		return arrow.PrimitiveTypes.Float64, nil
	case models.FieldTypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case models.FieldTypeTimestamp:
		return arrow.FixedWidthTypes.Timestamp_ns, nil
	default:
		return nil, fmt.Errorf("unsupported field type: %s", fieldType)
	}
}

func appendValue(builder array.Builder, value interface{}) {
	if value == nil {
		builder.AppendNull()
		return
	}

	switch b := builder.(type) {
	case *array.BooleanBuilder:
		if v, ok := value.(bool); ok {
			b.Append(v)
		} else {
			b.AppendNull()
		}

	case *array.Int64Builder:
		switch v := value.(type) {
		case int:
			b.Append(int64(v))
		case int8:
			b.Append(int64(v))
		case int16:
			b.Append(int64(v))
		case int32:
			b.Append(int64(v))
		case int64:
			b.Append(v)
		case uint:
			b.Append(int64(v))
		case uint8:
			b.Append(int64(v))
		case uint16:
			b.Append(int64(v))
		case uint32:
			b.Append(int64(v))
		case uint64:
			b.Append(int64(v))
		default:
			b.AppendNull()
		}

	case *array.Float64Builder:
		switch v := value.(type) {
		case float32:
			b.Append(float64(v))
		case float64:
			b.Append(v)
		default:
			b.AppendNull()
		}

	case *array.StringBuilder:
		if v, ok := value.(string); ok {
			b.Append(v)
		} else {
			b.Append(fmt.Sprintf("%v", value))
		}

	case *array.TimestampBuilder:
		switch v := value.(type) {
		case time.Time:
			b.Append(arrow.Timestamp(v.UnixNano()))
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				b.Append(arrow.Timestamp(t.UnixNano()))
			} else {
				b.AppendNull()
			}
		default:
			b.AppendNull()
		}

	default:
		builder.AppendNull()
	}
}
