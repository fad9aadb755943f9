package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/errors"
)

func TestNewSink(t *testing.T) {
	sink, err := NewSink(&config.SinkConfig{
		Bucket:    "bronze-bucket",
		Prefix:    "bronze/ga4/",
		ProjectID: "my-project",
		Mode:      config.ModeProduction,
	})
	require.NoError(t, err)

	assert.Equal(t, "events", sink.dataType)
	assert.Equal(t, "bronze/ga4", sink.prefix)
	assert.False(t, sink.sandbox)
}

func TestNewSinkValidation(t *testing.T) {
	_, err := NewSink(&config.SinkConfig{ProjectID: "my-project"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	// The gcs backend needs a project for sandbox bucket creation.
	_, err = NewSink(&config.SinkConfig{Bucket: "bronze-bucket"})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestTestConnectionUninitialized(t *testing.T) {
	sink, err := NewSink(&config.SinkConfig{
		Bucket:    "bronze-bucket",
		ProjectID: "my-project",
		Mode:      config.ModeProduction,
	})
	require.NoError(t, err)
	assert.False(t, sink.TestConnection(context.Background()))
}
