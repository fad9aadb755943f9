// Package config defines the pipeline configuration value object.
// A Config is loaded once by the driver and passed into constructors;
// no package keeps process-wide mutable settings.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/helioslabs/bronzeflow/pkg/errors"
)

// Deployment modes for the object sink.
const (
	ModeProduction = "production"
	ModeSandbox    = "sandbox"
)

// Config is the full pipeline configuration.
type Config struct {
	Source   SourceConfig   `yaml:"source" mapstructure:"source"`
	Sink     SinkConfig     `yaml:"sink" mapstructure:"sink"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Logging  LoggingConfig  `yaml:"logging" mapstructure:"logging"`
}

// SourceConfig identifies the warehouse dataset holding daily event
// tables.
type SourceConfig struct {
	// Backend selects the registered source adapter (default "bigquery")
	Backend string `yaml:"backend" mapstructure:"backend"`
	// ProjectID is the cloud project owning the dataset
	ProjectID string `yaml:"project_id" mapstructure:"project_id"`
	// DatasetID is the analytics export dataset (e.g. analytics_123456789)
	DatasetID string `yaml:"dataset_id" mapstructure:"dataset_id"`
	// CredentialsFile is an optional service account key path;
	// application default credentials are used when empty
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	// Location is the warehouse query location
	Location string `yaml:"location" mapstructure:"location"`
	// TablePrefix is the day-table prefix before the YYYYMMDD suffix
	TablePrefix string `yaml:"table_prefix" mapstructure:"table_prefix"`
}

// SinkConfig identifies the bronze-layer bucket and deployment mode.
type SinkConfig struct {
	// Backend selects the registered sink adapter (default "s3")
	Backend string `yaml:"backend" mapstructure:"backend"`
	Bucket  string `yaml:"bucket" mapstructure:"bucket"`
	Prefix  string `yaml:"prefix" mapstructure:"prefix"`
	Region  string `yaml:"region" mapstructure:"region"`
	// DataType names the partition subtree (e.g. "events")
	DataType string `yaml:"data_type" mapstructure:"data_type"`
	// Mode is "production" or "sandbox"; sandbox targets a local
	// emulator and auto-creates the bucket on the connection probe
	Mode string `yaml:"mode" mapstructure:"mode"`
	// SandboxEndpoint is the emulator endpoint used in sandbox mode
	SandboxEndpoint string `yaml:"sandbox_endpoint" mapstructure:"sandbox_endpoint"`
	// ProjectID is required by the gcs backend for bucket creation
	ProjectID string `yaml:"project_id" mapstructure:"project_id"`
	// CredentialsFile is an optional service account key path (gcs)
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
}

// PipelineConfig holds orchestrator tunables.
type PipelineConfig struct {
	// LookbackDays bounds source and sink date listings in status
	// reconciliation
	LookbackDays int `yaml:"lookback_days" mapstructure:"lookback_days"`
	// SkipExisting skips days whose partition already exists
	SkipExisting bool `yaml:"skip_existing" mapstructure:"skip_existing"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level       string `yaml:"level" mapstructure:"level"`
	Encoding    string `yaml:"encoding" mapstructure:"encoding"`
	Development bool   `yaml:"development" mapstructure:"development"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Source: SourceConfig{
			Backend:     "bigquery",
			Location:    "US",
			TablePrefix: "events_",
		},
		Sink: SinkConfig{
			Backend:         "s3",
			Prefix:          "bronze/ga4",
			Region:          "us-east-1",
			DataType:        "events",
			Mode:            ModeProduction,
			SandboxEndpoint: "http://localhost:4566",
		},
		Pipeline: PipelineConfig{
			LookbackDays: 30,
			SkipExisting: true,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Encoding: "json",
		},
	}
}

// Load reads configuration from the given YAML file, if any, and from
// BRONZEFLOW_-prefixed environment variables (BRONZEFLOW_SINK_BUCKET
// overrides sink.bucket). Defaults apply to everything unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BRONZEFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := New()
	v.SetDefault("source.backend", defaults.Source.Backend)
	v.SetDefault("source.location", defaults.Source.Location)
	v.SetDefault("source.table_prefix", defaults.Source.TablePrefix)
	v.SetDefault("sink.backend", defaults.Sink.Backend)
	v.SetDefault("sink.prefix", defaults.Sink.Prefix)
	v.SetDefault("sink.region", defaults.Sink.Region)
	v.SetDefault("sink.data_type", defaults.Sink.DataType)
	v.SetDefault("sink.mode", defaults.Sink.Mode)
	v.SetDefault("sink.sandbox_endpoint", defaults.Sink.SandboxEndpoint)
	v.SetDefault("pipeline.lookback_days", defaults.Pipeline.LookbackDays)
	v.SetDefault("pipeline.skip_existing", defaults.Pipeline.SkipExisting)
	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.encoding", defaults.Logging.Encoding)

	// Bind the keys that only exist in the environment; AutomaticEnv
	// alone does not surface them through Unmarshal.
	for _, key := range []string{
		"source.project_id", "source.dataset_id", "source.credentials_file",
		"sink.bucket", "sink.project_id", "sink.credentials_file",
	} {
		_ = v.BindEnv(key)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to read config file")
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the identities that every run requires.
func (c *Config) Validate() error {
	if c.Source.ProjectID == "" {
		return errors.New(errors.ErrorTypeConfig, "source.project_id is required")
	}
	if c.Source.DatasetID == "" {
		return errors.New(errors.ErrorTypeConfig, "source.dataset_id is required")
	}
	if c.Sink.Bucket == "" {
		return errors.New(errors.ErrorTypeConfig, "sink.bucket is required")
	}
	if c.Sink.Mode != ModeProduction && c.Sink.Mode != ModeSandbox {
		return errors.Newf(errors.ErrorTypeConfig, "sink.mode must be %q or %q", ModeProduction, ModeSandbox)
	}
	if c.Sink.Mode == ModeSandbox && c.Sink.SandboxEndpoint == "" {
		return errors.New(errors.ErrorTypeConfig, "sink.sandbox_endpoint is required in sandbox mode")
	}
	if c.Pipeline.LookbackDays <= 0 {
		return errors.New(errors.ErrorTypeConfig, "pipeline.lookback_days must be positive")
	}
	return nil
}

// Sandbox reports whether the sink targets an emulator deployment.
func (s *SinkConfig) Sandbox() bool {
	return s.Mode == ModeSandbox
}
