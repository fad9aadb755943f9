// Package partition defines the bronze-layer object layout shared by
// every sink backend: one data object and one metadata sidecar per
// year/month/day partition.
package partition

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/helioslabs/bronzeflow/pkg/models"
)

const (
	dataObjectName     = "data.parquet"
	metadataObjectName = "metadata.json"
)

// DataKey builds the partitioned object key for a day's data:
// {prefix}/{dataType}/year=YYYY/month=MM/day=DD/data.parquet
func DataKey(prefix, dataType string, date models.DateKey) string {
	return partitionDir(prefix, dataType, date) + "/" + dataObjectName
}

// MetadataKey builds the sidecar key at the same partition.
func MetadataKey(prefix, dataType string, date models.DateKey) string {
	return partitionDir(prefix, dataType, date) + "/" + metadataObjectName
}

func partitionDir(prefix, dataType string, date models.DateKey) string {
	year, month, day := date.Partition()
	dir := fmt.Sprintf("%s/year=%s/month=%s/day=%s", dataType, year, month, day)
	if prefix == "" {
		return dir
	}
	return prefix + "/" + dir
}

// ParseDataKey recovers the partition day from a data object key.
// Non-data objects and keys with malformed partition segments report
// false.
func ParseDataKey(key string) (models.DateKey, bool) {
	if !strings.HasSuffix(key, "/"+dataObjectName) {
		return "", false
	}

	var year, month, day string
	for _, part := range strings.Split(key, "/") {
		switch {
		case strings.HasPrefix(part, "year="):
			year = strings.TrimPrefix(part, "year=")
		case strings.HasPrefix(part, "month="):
			month = strings.TrimPrefix(part, "month=")
		case strings.HasPrefix(part, "day="):
			day = strings.TrimPrefix(part, "day=")
		}
	}
	if year == "" || month == "" || day == "" {
		return "", false
	}

	date, err := models.ParseDateKey(fmt.Sprintf("%s-%s-%s", year, month, day))
	if err != nil {
		return "", false
	}
	return date, true
}

// Metadata is the sidecar object written beside each data object.
type Metadata struct {
	Date            string            `json:"date"`
	DataType        string            `json:"data_type"`
	RecordCount     int               `json:"record_count"`
	Columns         []string          `json:"columns"`
	FileSizeMB      float64           `json:"file_size_mb"`
	UploadTimestamp string            `json:"upload_timestamp"`
	SinkLocation    string            `json:"sink_location"`
	DTypes          map[string]string `json:"dtypes"`
}

// NewMetadata builds the sidecar content for an uploaded partition.
func NewMetadata(date models.DateKey, dataType string, recordCount int, schema *models.Schema, sinkLocation string, payloadBytes int, uploadedAt time.Time) *Metadata {
	columns := make([]string, 0, len(schema.Fields))
	for _, f := range schema.Fields {
		columns = append(columns, f.Name)
	}

	sizeMB := float64(payloadBytes) / (1024 * 1024)
	return &Metadata{
		Date:            date.String(),
		DataType:        dataType,
		RecordCount:     recordCount,
		Columns:         columns,
		FileSizeMB:      math.Round(sizeMB*100) / 100,
		UploadTimestamp: uploadedAt.Format(time.RFC3339),
		SinkLocation:    sinkLocation,
		DTypes:          schema.DTypes(),
	}
}
