package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := New(ErrorTypeQuery, "query timed out")
	assert.Equal(t, ErrorTypeQuery, err.Type)
	assert.Equal(t, "query: query timed out", err.Error())
	assert.NotEmpty(t, err.Stack)
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeConfig, "sink.mode must be %q or %q", "production", "sandbox")
	assert.Contains(t, err.Error(), `"production" or "sandbox"`)
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrorTypeConnection, "failed to create client")

	assert.Equal(t, ErrorTypeConnection, err.Type)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, cause, stderrors.Unwrap(err))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeSink, "should be nil"))
}

func TestWrapPreservesStack(t *testing.T) {
	inner := New(ErrorTypeSink, "upload rejected")
	outer := Wrap(inner, ErrorTypeSink, "failed to upload data object")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, stderrors.Is(outer, inner))
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeValidation, "start date must not be after end date")
	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeQuery))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeValidation))
	assert.False(t, IsType(nil, ErrorTypeValidation))
}

func TestIsTypeThroughWrapping(t *testing.T) {
	inner := New(ErrorTypeMetadata, "failed to marshal metadata")
	wrapped := fmt.Errorf("upload step: %w", inner)
	assert.True(t, IsType(wrapped, ErrorTypeMetadata))
}

func TestIsFatalToDay(t *testing.T) {
	assert.False(t, IsFatalToDay(nil))
	assert.False(t, IsFatalToDay(New(ErrorTypeMetadata, "sidecar write failed")))
	assert.True(t, IsFatalToDay(New(ErrorTypeQuery, "query timed out")))
	assert.True(t, IsFatalToDay(New(ErrorTypeSink, "upload rejected")))
	assert.True(t, IsFatalToDay(stderrors.New("plain")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeSink, "upload rejected").
		WithDetail("bucket", "bronze").
		WithDetail("key", "events/data.parquet")

	require.NotNil(t, err.Details)
	assert.Equal(t, "bronze", err.Details["bucket"])
	assert.Equal(t, "events/data.parquet", err.Details["key"])
}
