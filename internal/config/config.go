// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - Load layers a YAML file and the environment over the defaults.
// - Validation failures wrap ErrInvalidConfig; source failures wrap ErrLoadConfig.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/talentmatch/internal/domain/scoring"
)

// Log output formats.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`
	// LogFile, when set, also writes logs to a rotating file.
	LogFile string `koanf:"log_file"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`
	// RequestTimeoutMS bounds a single ranking request.
	RequestTimeoutMS int `koanf:"request_timeout_ms"`

	// DatabaseURL selects the Postgres repository when set.
	DatabaseURL string `koanf:"database_url"`
	// FixturePath selects the YAML fixture repository when DatabaseURL is empty.
	FixturePath string `koanf:"fixture_path"`
	// RedisAddr enables the reference-data cache when set.
	RedisAddr string `koanf:"redis_addr"`
	// CacheTTLSeconds is the lifetime of cached reference data.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds"`

	// RandomSeed fixes matching-score draws; 0 seeds from the clock.
	RandomSeed int64 `koanf:"random_seed"`
	// RegulatedMinAge is the age gate for regulated industries.
	RegulatedMinAge int `koanf:"regulated_min_age"`
	// AdjustmentTiers overrides the image adjustment table when non-empty.
	AdjustmentTiers scoring.AdjustmentTable `koanf:"adjustment_tiers"`

	// Tracing exports OTLP/HTTP spans when enabled.
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingEndpoint     string  `koanf:"tracing_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
	TracingInsecure     bool    `koanf:"tracing_insecure"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           LogFormatText,
		Addr:                ":9080",
		RequestTimeoutMS:    2000,
		CacheTTLSeconds:     300,
		RegulatedMinAge:     scoring.DefaultMinRegulatedAge,
		TracingEndpoint:     "localhost:4318",
		TracingSamplingRate: 1,
	}
}

// RequestTimeout returns RequestTimeoutMS as a duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RequestTimeoutMS <= 0:
		return fmt.Errorf("%w: request_timeout_ms must be positive", ErrInvalidConfig)
	case c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON:
		return fmt.Errorf("%w: log_format must be %q or %q", ErrInvalidConfig, LogFormatText, LogFormatJSON)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.RegulatedMinAge <= 0:
		return fmt.Errorf("%w: regulated_min_age must be positive", ErrInvalidConfig)
	case c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1:
		return fmt.Errorf("%w: tracing_sampling_rate must be between 0 and 1", ErrInvalidConfig)
	}
	if len(c.AdjustmentTiers) > 0 {
		if err := c.AdjustmentTiers.Validate(); err != nil {
			return fmt.Errorf("%w: adjustment_tiers: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
