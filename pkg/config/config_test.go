package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helioslabs/bronzeflow/pkg/errors"
)

func validConfig() *Config {
	cfg := New()
	cfg.Source.ProjectID = "my-project"
	cfg.Source.DatasetID = "analytics_123456789"
	cfg.Sink.Bucket = "bronze-bucket"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := New()
	assert.Equal(t, "bigquery", cfg.Source.Backend)
	assert.Equal(t, "US", cfg.Source.Location)
	assert.Equal(t, "events_", cfg.Source.TablePrefix)
	assert.Equal(t, "s3", cfg.Sink.Backend)
	assert.Equal(t, "bronze/ga4", cfg.Sink.Prefix)
	assert.Equal(t, "us-east-1", cfg.Sink.Region)
	assert.Equal(t, "events", cfg.Sink.DataType)
	assert.Equal(t, ModeProduction, cfg.Sink.Mode)
	assert.Equal(t, 30, cfg.Pipeline.LookbackDays)
	assert.True(t, cfg.Pipeline.SkipExisting)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{
			name:    "missing project",
			mutate:  func(c *Config) { c.Source.ProjectID = "" },
			wantErr: "source.project_id",
		},
		{
			name:    "missing dataset",
			mutate:  func(c *Config) { c.Source.DatasetID = "" },
			wantErr: "source.dataset_id",
		},
		{
			name:    "missing bucket",
			mutate:  func(c *Config) { c.Sink.Bucket = "" },
			wantErr: "sink.bucket",
		},
		{
			name:    "bad mode",
			mutate:  func(c *Config) { c.Sink.Mode = "staging" },
			wantErr: "sink.mode",
		},
		{
			name: "sandbox without endpoint",
			mutate: func(c *Config) {
				c.Sink.Mode = ModeSandbox
				c.Sink.SandboxEndpoint = ""
			},
			wantErr: "sandbox_endpoint",
		},
		{
			name:    "non-positive lookback",
			mutate:  func(c *Config) { c.Pipeline.LookbackDays = 0 },
			wantErr: "lookback_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
source:
  project_id: my-project
  dataset_id: analytics_123456789
sink:
  bucket: bronze-bucket
  mode: sandbox
  sandbox_endpoint: http://localhost:4566
pipeline:
  lookback_days: 7
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "my-project", cfg.Source.ProjectID)
	assert.Equal(t, "analytics_123456789", cfg.Source.DatasetID)
	assert.Equal(t, "bronze-bucket", cfg.Sink.Bucket)
	assert.True(t, cfg.Sink.Sandbox())
	assert.Equal(t, 7, cfg.Pipeline.LookbackDays)
	// Unset keys keep their defaults.
	assert.Equal(t, "bigquery", cfg.Source.Backend)
	assert.Equal(t, "bronze/ga4", cfg.Sink.Prefix)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("BRONZEFLOW_SOURCE_PROJECT_ID", "env-project")
	t.Setenv("BRONZEFLOW_SOURCE_DATASET_ID", "analytics_env")
	t.Setenv("BRONZEFLOW_SINK_BUCKET", "env-bucket")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-project", cfg.Source.ProjectID)
	assert.Equal(t, "analytics_env", cfg.Source.DatasetID)
	assert.Equal(t, "env-bucket", cfg.Sink.Bucket)
}

func TestLoadMissingIdentityFails(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestLoadBadFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}
