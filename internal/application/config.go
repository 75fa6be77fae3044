package application

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/revline/consensus/internal/domain"
)

// Package-level validator instance for batch configuration validation.
var validate = validator.New()

// BatchConfig is the full configuration for a batch invocation, loaded once
// at process start from a YAML file and treated as read-only for the run's
// duration.
type BatchConfig struct {
	// Storage configures the backing database for both collaborators.
	Storage StorageConfig `yaml:"storage" validate:"required"`

	// RateLimit paces calls against the review source, which is a
	// rate-sensitive external store.
	RateLimit RateLimitConfig `yaml:"rate_limit"`

	// Retry bounds the retry budget for the fetch and persist calls. Both
	// are idempotent, so retries are safe.
	Retry RetryConfig `yaml:"retry"`

	// Timeouts bound the only two suspension points in the pipeline so a
	// single stalled call cannot hang the whole batch.
	Timeouts TimeoutConfig `yaml:"timeouts"`

	// Metrics configures the Prometheus exposition endpoint. An empty
	// address disables the endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Aggregation is the immutable consensus configuration passed into the
	// builder.
	Aggregation domain.Config `yaml:"aggregation" validate:"required"`
}

// StorageConfig identifies the backing database.
type StorageConfig struct {
	// DSN is the SQLite data source name. Required outside dry-run mode;
	// its absence there is a fatal configuration error surfaced before any
	// vehicle is processed.
	DSN string `yaml:"dsn"`
}

// RateLimitConfig configures the token-bucket limiter in front of the
// review source.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained fetch rate. Zero disables limiting.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"min=0,max=10000"`

	// Burst allows temporary spikes above the sustained rate.
	Burst int `yaml:"burst" validate:"min=0,max=10000"`
}

// RetryConfig specifies the recovery strategy for transient fetch and
// persist failures.
type RetryConfig struct {
	// MaxAttempts is the total number of attempts including the first;
	// 0 and 1 both mean no retries.
	MaxAttempts int `yaml:"max_attempts" validate:"min=0,max=10"`

	// InitialWait is the base delay in milliseconds before the first retry,
	// doubled on each subsequent attempt.
	InitialWait int `yaml:"initial_wait_ms" validate:"omitempty,min=0,max=60000"`

	// MaxWait caps the delay in milliseconds between attempts.
	MaxWait int `yaml:"max_wait_ms" validate:"omitempty,min=0,max=300000"`
}

// TimeoutConfig bounds the per-call duration of the two I/O operations.
type TimeoutConfig struct {
	// FetchSeconds bounds a single ReviewsForVehicle or ListVehicleIDs call.
	FetchSeconds int `yaml:"fetch_seconds" validate:"omitempty,min=1,max=3600"`

	// PersistSeconds bounds a single UpsertConsensus call.
	PersistSeconds int `yaml:"persist_seconds" validate:"omitempty,min=1,max=3600"`
}

// MetricsConfig controls the metrics exposition endpoint.
type MetricsConfig struct {
	// Addr is the listen address for the Prometheus handler, e.g.
	// ":9090". Empty disables the endpoint.
	Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
}

// FetchTimeout returns the fetch timeout as a duration.
func (c TimeoutConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchSeconds) * time.Second
}

// PersistTimeout returns the persist timeout as a duration.
func (c TimeoutConfig) PersistTimeout() time.Duration {
	return time.Duration(c.PersistSeconds) * time.Second
}

// DefaultBatchConfig returns production defaults: default aggregation
// constants, 5 fetches per second with a burst of 5, three attempts with
// 200ms initial backoff, and 10-second call timeouts.
func DefaultBatchConfig() BatchConfig {
	return BatchConfig{
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             5,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 200,
			MaxWait:     5000,
		},
		Timeouts: TimeoutConfig{
			FetchSeconds:   10,
			PersistSeconds: 10,
		},
		Aggregation: domain.DefaultConfig(),
	}
}

// LoadBatchConfig reads a YAML configuration file, overlaying it on the
// defaults, and validates the result. Passing an empty path returns the
// validated defaults.
func LoadBatchConfig(path string) (BatchConfig, error) {
	cfg := DefaultBatchConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return BatchConfig{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return BatchConfig{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return BatchConfig{}, err
	}
	return cfg, nil
}

// Validate checks the batch configuration, including the nested aggregation
// configuration.
func (c BatchConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("batch configuration validation failed: %w", err)
	}
	if err := c.Aggregation.Validate(); err != nil {
		return fmt.Errorf("aggregation configuration: %w", err)
	}
	return nil
}
