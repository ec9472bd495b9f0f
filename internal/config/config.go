// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and ROSTER_ environment variables over New().
// - Errors returned by Load wrap ErrLoadConfig or ErrInvalidConfig.
package config

import "time"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8000".
	Addr string `koanf:"addr"`

	// CORSAllowedOrigins lists origins allowed to call /members from a browser.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// CORSMaxAge is how long, in seconds, browsers may cache a preflight.
	CORSMaxAge int `koanf:"cors_max_age"`

	// MaxBodyBytes caps POST, PUT and PATCH bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// SeedEnabled loads the e-board roster at start.
	SeedEnabled bool `koanf:"seed_enabled"`

	// MetricsEnabled toggles roster metrics and the periodic gauge updaters.
	MetricsEnabled bool `koanf:"metrics_enabled"`

	// MetricsRefreshMS is how often member and system gauges are refreshed.
	MetricsRefreshMS int `koanf:"metrics_refresh_ms"`

	// MetricsNamespace, MetricsSubsystem and MetricsPrefix shape exported
	// metric names: <namespace>_<subsystem>_<prefix>_<name>.
	MetricsNamespace string `koanf:"metrics_namespace"`
	MetricsSubsystem string `koanf:"metrics_subsystem"`
	MetricsPrefix    string `koanf:"metrics_prefix"`

	// MetricsLabels are constant labels added to every metric, e.g. env: dev.
	MetricsLabels map[string]string `koanf:"metrics_labels"`

	// MetricsBucketsMS overrides the latency histogram buckets.
	MetricsBucketsMS []float64 `koanf:"metrics_buckets_ms"`

	// Server timeouts in milliseconds.
	ReadTimeoutMS     int `koanf:"read_timeout_ms"`
	WriteTimeoutMS    int `koanf:"write_timeout_ms"`
	ShutdownTimeoutMS int `koanf:"shutdown_timeout_ms"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":8000",
		CORSAllowedOrigins: []string{"http://localhost:5173"},
		CORSMaxAge:         86400,
		MaxBodyBytes:       1 << 20,
		SeedEnabled:        true,
		MetricsEnabled:     true,
		MetricsRefreshMS:   10_000,
		MetricsNamespace:   "roster",
		MetricsSubsystem:   "service",
		ReadTimeoutMS:      10_000,
		WriteTimeoutMS:     10_000,
		ShutdownTimeoutMS:  5_000,
	}
}

// ReadTimeout returns ReadTimeoutMS as a duration.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMS) * time.Millisecond
}

// WriteTimeout returns WriteTimeoutMS as a duration.
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMS) * time.Millisecond
}

// MetricsRefresh returns MetricsRefreshMS as a duration.
func (c *Config) MetricsRefresh() time.Duration {
	return time.Duration(c.MetricsRefreshMS) * time.Millisecond
}

// ShutdownTimeout returns ShutdownTimeoutMS as a duration.
func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutMS) * time.Millisecond
}
