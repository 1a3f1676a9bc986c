// Package config loads the immutable run configuration for rtbload.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultTargetURL   = "http://nginx/bid"
	DefaultRate        = 100.0
	DefaultConcurrency = 20
	DefaultTimeout     = 5 * time.Second
)

type Pacing string

const (
	PacingBatch  Pacing = "batch"
	PacingSmooth Pacing = "smooth"
)

type Config struct {
	TargetURL   string        `mapstructure:"target"`
	Rate        float64       `mapstructure:"rate"`
	Concurrency int           `mapstructure:"concurrency"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Pacing      Pacing        `mapstructure:"pacing"`
	HTTP2       bool          `mapstructure:"http2"`
	Log         LogConfig     `mapstructure:"log"`
	Tracing     TracingConfig `mapstructure:"tracing"`
	ConfigFile  string        `mapstructure:"-"`

	// TargetFromArgs is set when the positional argument supplied the target.
	TargetFromArgs bool `mapstructure:"-"`
}

type LogConfig struct {
	Format string `mapstructure:"format"` // "console" or "json"
	Level  string `mapstructure:"level"`
}

type TracingConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`     // OTLP collector host:port
	Protocol    string  `mapstructure:"protocol"`     // "grpc" or "http"
	Insecure    bool    `mapstructure:"insecure"`     // plaintext exporter connection
	SampleRate  float64 `mapstructure:"sample_rate"`  // 0.0 - 1.0
	ServiceName string  `mapstructure:"service_name"` // defaults to OTEL_SERVICE_NAME or rtbload
	Propagate   bool    `mapstructure:"propagate"`    // inject W3C traceparent into requests
}

// Enabled reports whether any tracing behavior was requested.
func (t TracingConfig) Enabled() bool {
	return strings.TrimSpace(t.Endpoint) != "" || t.Propagate
}

func (t TracingConfig) ShouldPropagate() bool {
	return t.Propagate
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		TargetURL:   DefaultTargetURL,
		Rate:        DefaultRate,
		Concurrency: DefaultConcurrency,
		Timeout:     DefaultTimeout,
		Pacing:      PacingBatch,
		HTTP2:       true,
		Log:         LogConfig{Format: "console", Level: "info"},
		Tracing:     TracingConfig{Protocol: "grpc", SampleRate: 1.0},
	}
}

type ValidationError struct {
	issues []string
}

func (e ValidationError) Error() string {
	if len(e.issues) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(e.issues, "; "))
}

func (e ValidationError) Issues() []string {
	return append([]string(nil), e.issues...)
}

func (c Config) Validate() error {
	var issues []string

	if target := strings.TrimSpace(c.TargetURL); target == "" {
		issues = append(issues, "target is required")
	} else if u, err := url.Parse(target); err != nil {
		issues = append(issues, fmt.Sprintf("target: %v", err))
	} else if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		issues = append(issues, fmt.Sprintf("target %q must be an absolute http(s) URL", target))
	}

	if c.Rate <= 0 {
		issues = append(issues, "rate must be > 0")
	}
	if c.Concurrency < 1 {
		issues = append(issues, "concurrency must be >= 1")
	}
	if c.Timeout <= 0 {
		issues = append(issues, "timeout must be > 0")
	}

	switch c.Pacing {
	case PacingBatch, PacingSmooth:
	default:
		issues = append(issues, fmt.Sprintf("pacing %q is not supported (use batch or smooth)", c.Pacing))
	}

	issues = append(issues, validateLogConfig(c.Log)...)
	issues = append(issues, validateTracingConfig(c.Tracing)...)

	if len(issues) > 0 {
		return ValidationError{issues: issues}
	}
	return nil
}

// Warnings lists settings that are valid but worth calling out at startup.
func (c Config) Warnings() []string {
	var warnings []string
	if c.Rate > 1000 {
		warnings = append(warnings, fmt.Sprintf("High rate configured (%g RPS). Ensure you have authorization to load the target system.", c.Rate))
	}
	if c.Concurrency > 500 {
		warnings = append(warnings, fmt.Sprintf("High concurrency configured (%d per batch). Ensure you have authorization to load the target system.", c.Concurrency))
	}
	if c.Pacing == PacingSmooth {
		warnings = append(warnings, "Smooth pacing spaces requests evenly instead of firing whole batches.")
	}
	if c.Tracing.Insecure {
		warnings = append(warnings, "Tracing exporter TLS is disabled (insecure: true).")
	}
	return warnings
}

func validateLogConfig(log LogConfig) []string {
	var issues []string
	switch strings.ToLower(log.Format) {
	case "", "console", "json":
	default:
		issues = append(issues, fmt.Sprintf("log: format must be 'console' or 'json', got %q", log.Format))
	}
	switch strings.ToLower(log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		issues = append(issues, fmt.Sprintf("log: unsupported level %q", log.Level))
	}
	return issues
}

func validateTracingConfig(tracing TracingConfig) []string {
	var issues []string
	switch strings.ToLower(tracing.Protocol) {
	case "", "grpc", "http":
	default:
		issues = append(issues, fmt.Sprintf("tracing: protocol must be 'grpc' or 'http', got %q", tracing.Protocol))
	}
	if tracing.SampleRate < 0 || tracing.SampleRate > 1 {
		issues = append(issues, fmt.Sprintf("tracing: sample_rate must be between 0.0 and 1.0, got %g", tracing.SampleRate))
	}
	return issues
}
