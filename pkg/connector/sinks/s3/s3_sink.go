// Package s3 implements the ObjectSink capability over Amazon S3 (or a
// LocalStack emulator in sandbox mode), writing one Parquet object and
// one metadata sidecar per day partition.
package s3

import (
	"bytes"
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"

	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/connector/sinks/partition"
	"github.com/helioslabs/bronzeflow/pkg/errors"
	"github.com/helioslabs/bronzeflow/pkg/formats/columnar"
	jsonutil "github.com/helioslabs/bronzeflow/pkg/json"
	"github.com/helioslabs/bronzeflow/pkg/logger"
	"github.com/helioslabs/bronzeflow/pkg/metrics"
	"github.com/helioslabs/bronzeflow/pkg/models"
)

// sandbox deployments sign with fixed throwaway credentials
const sandboxCredential = "test"

// Sink writes daily bronze partitions to an S3 bucket.
type Sink struct {
	bucket          string
	prefix          string
	region          string
	dataType        string
	sandbox         bool
	sandboxEndpoint string

	client   *s3.Client
	uploader *manager.Uploader
	logger   *zap.Logger

	now func() time.Time
}

// NewSink creates an S3 sink from configuration.
func NewSink(cfg *config.SinkConfig) (*Sink, error) {
	if cfg.Bucket == "" {
		return nil, errors.New(errors.ErrorTypeConfig, "bucket is required")
	}

	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	dataType := cfg.DataType
	if dataType == "" {
		dataType = "events"
	}

	return &Sink{
		bucket:          cfg.Bucket,
		prefix:          strings.TrimSuffix(cfg.Prefix, "/"),
		region:          region,
		dataType:        dataType,
		sandbox:         cfg.Sandbox(),
		sandboxEndpoint: cfg.SandboxEndpoint,
		logger: logger.Get().With(
			zap.String("component", "s3_sink"),
			zap.String("bucket", cfg.Bucket),
			zap.String("mode", cfg.Mode)),
		now: time.Now,
	}, nil
}

// Initialize establishes the S3 client. Sandbox mode targets the
// emulator endpoint with path-style addressing and static credentials.
func (s *Sink) Initialize(ctx context.Context) error {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(s.region),
	}
	if s.sandbox {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(sandboxCredential, sandboxCredential, "")))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConnection, "failed to load AWS configuration")
	}

	s.client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.sandbox {
			o.BaseEndpoint = aws.String(s.sandboxEndpoint)
			o.UsePathStyle = true
		}
	})
	s.uploader = manager.NewUploader(s.client)

	s.logger.Info("S3 sink initialized",
		zap.String("prefix", s.prefix),
		zap.String("data_type", s.dataType))
	return nil
}

// Exists reports whether the day's data object is present. Not found is
// false; transport and permission failures propagate as sink errors.
func (s *Sink) Exists(ctx context.Context, date models.DateKey) (bool, error) {
	key := partition.DataKey(s.prefix, s.dataType, date)

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrorTypeSink, "failed to check object "+key)
}

// Upload writes the day's records as Parquet to the partition path and
// a metadata sidecar beside it. Sidecar failure is logged and
// swallowed; the data object is already durable.
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
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(payload),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
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
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(metaKey),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeMetadata, "failed to upload metadata object "+metaKey)
	}

	s.logger.Info("uploaded metadata sidecar", zap.String("key", metaKey))
	return nil
}

// ListAvailableDates enumerates day partitions under the data-type
// prefix, most recent first. Keys that do not encode a valid partition
// day are skipped.
func (s *Sink) ListAvailableDates(ctx context.Context, limit int) ([]models.DateKey, error) {
	prefix := s.prefix + "/" + s.dataType + "/"
	seen := make(map[models.DateKey]struct{})

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSink, "failed to list partitions")
		}
		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			date, ok := partition.ParseDataKey(*obj.Key)
			if !ok {
				continue
			}
			seen[date] = struct{}{}
		}
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

// TestConnection probes bucket access. Sandbox deployments start empty,
// so a missing bucket is created there; in production a missing bucket
// is a failed probe.
func (s *Sink) TestConnection(ctx context.Context) bool {
	if s.client == nil {
		return false
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return true
	}

	if s.sandbox && isNotFound(err) {
		s.logger.Info("creating sandbox bucket", zap.String("bucket", s.bucket))
		if _, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{
			Bucket: aws.String(s.bucket),
		}); err != nil {
			s.logger.Error("failed to create sandbox bucket", zap.Error(err))
			return false
		}
		return true
	}

	s.logger.Error("connection test failed", zap.Error(err))
	return false
}

// Close releases the S3 client.
func (s *Sink) Close(ctx context.Context) error {
	return nil
}

// isNotFound distinguishes a missing object or bucket from transport
// and permission failures.
func isNotFound(err error) bool {
	var notFound *types.NotFound
	if stderrors.As(err, &notFound) {
		return true
	}
	var noSuchKey *types.NoSuchKey
	if stderrors.As(err, &noSuchKey) {
		return true
	}
	var noSuchBucket *types.NoSuchBucket
	if stderrors.As(err, &noSuchBucket) {
		return true
	}
	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchKey", "NoSuchBucket", "404":
			return true
		}
	}
	return false
}
