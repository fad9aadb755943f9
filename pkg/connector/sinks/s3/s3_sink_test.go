package s3

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/errors"
)

func TestNewSink(t *testing.T) {
	sink, err := NewSink(&config.SinkConfig{
		Bucket: "bronze-bucket",
		Prefix: "bronze/ga4/",
		Mode:   config.ModeProduction,
	})
	require.NoError(t, err)

	// Defaults fill region and data type; trailing prefix slash is removed.
	assert.Equal(t, "us-east-1", sink.region)
	assert.Equal(t, "events", sink.dataType)
	assert.Equal(t, "bronze/ga4", sink.prefix)
	assert.False(t, sink.sandbox)
}

func TestNewSinkRequiresBucket(t *testing.T) {
	_, err := NewSink(&config.SinkConfig{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestNewSinkSandbox(t *testing.T) {
	sink, err := NewSink(&config.SinkConfig{
		Bucket:          "bronze-bucket",
		Mode:            config.ModeSandbox,
		SandboxEndpoint: "http://localhost:4566",
	})
	require.NoError(t, err)

	assert.True(t, sink.sandbox)
	assert.Equal(t, "http://localhost:4566", sink.sandboxEndpoint)
}

func TestTestConnectionUninitialized(t *testing.T) {
	sink, err := NewSink(&config.SinkConfig{Bucket: "bronze-bucket", Mode: config.ModeProduction})
	require.NoError(t, err)
	assert.False(t, sink.TestConnection(context.Background()))
}

type fakeAPIError struct{ code string }

func (e *fakeAPIError) Error() string                 { return e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(&types.NotFound{}))
	assert.True(t, isNotFound(&types.NoSuchKey{}))
	assert.True(t, isNotFound(&types.NoSuchBucket{}))
	assert.True(t, isNotFound(&fakeAPIError{code: "NotFound"}))
	assert.True(t, isNotFound(&fakeAPIError{code: "404"}))
	assert.False(t, isNotFound(&fakeAPIError{code: "AccessDenied"}))
	assert.False(t, isNotFound(stderrors.New("connection reset")))
	assert.False(t, isNotFound(nil))
}
