// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Keys are flat and match the koanf tags below.
// - Provide New() to build a Config with defaults.
// - Validation errors wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the root of the FPL API.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UserAgent is sent with every upstream request.
	UserAgent string `koanf:"user_agent"`

	// FetchTimeoutMS bounds one full refresh.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// BreakerFailures and BreakerOpenMS tune the upstream circuit breaker.
	BreakerFailures int `koanf:"breaker_failures"`
	BreakerOpenMS   int `koanf:"breaker_open_ms"`

	// DefaultLimit and MaxLimit bound recommendation list sizes.
	DefaultLimit int `koanf:"default_limit"`
	MaxLimit     int `koanf:"max_limit"`

	// SurpriseLimit is the default surprise list size.
	SurpriseLimit int `koanf:"surprise_limit"`

	// MaxRound is the last round of the season.
	MaxRound int `koanf:"max_round"`

	// CORSOrigins lists the origins allowed to call the API.
	CORSOrigins []string `koanf:"cors_origins"`

	// RecommendWeights and SurpriseWeights override formula weights by key.
	RecommendWeights map[string]float64 `koanf:"recommend_weights"`
	SurpriseWeights  map[string]float64 `koanf:"surprise_weights"`

	// Surprise pre-filter: ownership strictly below, form strictly above.
	SurpriseOwnershipCutoff float64 `koanf:"surprise_ownership_cutoff"`
	SurpriseFormCutoff      float64 `koanf:"surprise_form_cutoff"`

	// MetricsEnabled turns Prometheus recording on or off.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshMS is how often the gauge updaters run.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:                "info",
		LogFormat:               "text",
		Addr:                    ":9080",
		UpstreamBaseURL:         "https://fantasy.premierleague.com/api",
		UserAgent:               "fplpredict/1.0",
		FetchTimeoutMS:          15_000,
		BreakerFailures:         3,
		BreakerOpenMS:           30_000,
		DefaultLimit:            15,
		MaxLimit:                100,
		SurpriseLimit:           5,
		MaxRound:                38,
		CORSOrigins:             []string{"*"},
		SurpriseOwnershipCutoff: 5.0,
		SurpriseFormCutoff:      3.0,
		MetricsEnabled:          true,
		MetricsRefreshMS:        5_000,
	}
}

// FetchTimeout returns FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// BreakerOpen returns BreakerOpenMS as a duration.
func (c *Config) BreakerOpen() time.Duration {
	return time.Duration(c.BreakerOpenMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// Validate checks ranges and required values.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.UpstreamBaseURL == "":
		return fmt.Errorf("%w: upstream_base_url must not be empty", ErrInvalidConfig)
	case c.FetchTimeoutMS <= 0:
		return fmt.Errorf("%w: fetch_timeout_ms must be positive", ErrInvalidConfig)
	case c.BreakerFailures <= 0:
		return fmt.Errorf("%w: breaker_failures must be positive", ErrInvalidConfig)
	case c.BreakerOpenMS <= 0:
		return fmt.Errorf("%w: breaker_open_ms must be positive", ErrInvalidConfig)
	case c.MaxLimit < 1:
		return fmt.Errorf("%w: max_limit must be at least 1", ErrInvalidConfig)
	case c.DefaultLimit < 1 || c.DefaultLimit > c.MaxLimit:
		return fmt.Errorf("%w: default_limit must be within 1..max_limit", ErrInvalidConfig)
	case c.SurpriseLimit < 1 || c.SurpriseLimit > c.MaxLimit:
		return fmt.Errorf("%w: surprise_limit must be within 1..max_limit", ErrInvalidConfig)
	case c.MaxRound < 1:
		return fmt.Errorf("%w: max_round must be at least 1", ErrInvalidConfig)
	case !isFinite(c.SurpriseOwnershipCutoff) || c.SurpriseOwnershipCutoff <= 0 || c.SurpriseOwnershipCutoff > 100:
		return fmt.Errorf("%w: surprise_ownership_cutoff must be within (0, 100]", ErrInvalidConfig)
	case !isFinite(c.SurpriseFormCutoff) || c.SurpriseFormCutoff < 0:
		return fmt.Errorf("%w: surprise_form_cutoff must not be negative", ErrInvalidConfig)
	case c.MetricsRefreshMS <= 0:
		return fmt.Errorf("%w: metrics_refresh_ms must be positive", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	}
	return nil
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
