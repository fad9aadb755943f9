// Package gcs implements the ObjectSink capability over Google Cloud
// Storage, mirroring the S3 sink's partition layout so either backend
// can serve the bronze layer.
package gcs

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/connector/sinks/partition"
	"github.com/helioslabs/bronzeflow/pkg/errors"
	"github.com/helioslabs/bronzeflow/pkg/formats/columnar"
	jsonutil "github.com/helioslabs/bronzeflow/pkg/json"
	"github.com/helioslabs/bronzeflow/pkg/logger"
	"github.com/helioslabs/bronzeflow/pkg/metrics"
	"github.com/helioslabs/bronzeflow/pkg/models"
)

// Sink writes daily bronze partitions to a GCS bucket.
type Sink struct {
	bucket          string
	prefix          string
	projectID       string
	dataType        string
	credentialsFile string
	sandbox         bool
	sandboxEndpoint string

	client *storage.Client
	handle *storage.BucketHandle
	logger *zap.Logger

	now func() time.Time
}

// NewSink creates a GCS sink from configuration.
func NewSink(cfg *config.SinkConfig) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "bucket is required")
	}
	if cfg.ProjectID == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "project_id is required for the gcs backend")
	}

	dataType := cfg.DataType
	if dataType == "" {
		dataType = "events"
	}

	return &Sink{
		bucket:          cfg.Bucket,
		prefix:          strings.TrimSuffix(cfg.Prefix, "/"),
		projectID:       cfg.ProjectID,
		dataType:        dataType,
		credentialsFile: cfg.CredentialsFile,
		sandbox:         cfg.Sandbox(),
		sandboxEndpoint: cfg.SandboxEndpoint,
		logger: logger.Get().With(
			zap.String("component", "gcs_sink"),
			zap.String("bucket", cfg.Bucket),
			zap.String("mode", cfg.Mode)),
		now: time.Now,
	}, nil
}

// Initialize establishes the GCS client. Sandbox mode targets an
// emulator endpoint without authentication.
func (s *Sink) Initialize(ctx context.Context) error {
	var opts []option.ClientOption
	if s.sandbox {
		opts = append(opts,
			option.WithEndpoint(s.sandboxEndpoint),
			option.WithoutAuthentication())
	} else if s.credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(s.credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to create GCS client")
	}
	s.client = client
	s.handle = client.Bucket(s.bucket)

	s.logger.Info("GCS sink initialized",
		zap.String("prefix", s.prefix),
		zap.String("data_type", s.dataType))
	return nil
}

// Exists reports whether the day's data object is present.
func (s *Sink) Exists(ctx context.Context, date models.DateKey) (bool, error) {
	key := partition.DataKey(s.prefix, s.dataType, date)

	_, err := s.handle.Object(key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if stderrors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrorTypeSink, "failed to check object "+key)
}

// Upload writes the day's records as Parquet plus the metadata sidecar.
func (s *Sink) Upload(ctx context.Context, result *models.ExtractionResult, date models.DateKey) (string, error) {
	if result.Empty() {
		return "", errors.New(errors.ErrorTypeData, "refusing to upload empty extraction result")
	}

	schema := models.InferSchema(s.dataType, result.Records)
	payload, err := columnar.WriteParquet(result.Records, schema)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeData, "failed to encode parquet payload")
	}

	key := partition.DataKey(s.prefix, s.dataType, date)
	if err := s.writeObject(ctx, key, payload, "application/octet-stream"); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeSink, "failed to upload data object "+key)
	}
	metrics.BytesUploaded.Add(float64(len(payload)))

	s.logger.Info("uploaded day partition",
		zap.String("key", key),
		zap.Int("records", result.RecordCount),
		zap.Int("bytes", len(payload)))

	if err := s.uploadMetadata(ctx, result, schema, date, key, len(payload)); err != nil {
		s.logger.Warn("failed to upload metadata sidecar", zap.Error(err))
	}

	return key, nil
}

func (s *Sink) uploadMetadata(ctx context.Context, result *models.ExtractionResult, schema *models.Schema, date models.DateKey, dataKey string, payloadBytes int) error {
	meta := partition.NewMetadata(date, s.dataType, result.RecordCount, schema, dataKey, payloadBytes, s.now().UTC())

	body, err := jsonutil.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeMetadata, "failed to marshal metadata")
	}

	metaKey := partition.MetadataKey(s.prefix, s.dataType, date)
	if err := s.writeObject(ctx, metaKey, body, "application/json"); err != nil {
		return errors.Wrap(err, errors.ErrorTypeMetadata, "failed to upload metadata object "+metaKey)
	}

	s.logger.Info("uploaded metadata sidecar", zap.String("key", metaKey))
	return nil
}

func (s *Sink) writeObject(ctx context.Context, key string, payload []byte, contentType string) error {
	w := s.handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(payload); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// ListAvailableDates enumerates day partitions, most recent first.
func (s *Sink) ListAvailableDates(ctx context.Context, limit int) ([]models.DateKey, error) {
	prefix := s.prefix + "/" + s.dataType + "/"
	seen := make(map[models.DateKey]struct{})

	it := s.handle.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSink, "failed to list partitions")
		}

		date, ok := partition.ParseDataKey(attrs.Name)
		if !ok {
			continue
		}
		seen[date] = struct{}{}
	}

	dates := make([]models.DateKey, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	if limit > 0 && len(dates) > limit {
		dates = dates[:limit]
	}
	return dates, nil
}

// TestConnection probes bucket access, creating the bucket first in
// sandbox deployments.
func (s *Sink) TestConnection(ctx context.Context) bool {
	if s.client == nil {
		return false
	}

	_, err := s.handle.Attrs(ctx)
	if err == nil {
		return true
	}

	if s.sandbox && stderrors.Is(err, storage.ErrBucketNotExist) {
		s.logger.Info("creating sandbox bucket", zap.String("bucket", s.bucket))
		if err := s.handle.Create(ctx, s.projectID, nil); err != nil {
			s.logger.Error("failed to create sandbox bucket", zap.Error(err))
			return false
		}
		return true
	}

	s.logger.Error("connection test failed", zap.Error(err))
	return false
}

// Close releases the GCS client.
func (s *Sink) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Close()
}
