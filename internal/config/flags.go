package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// RegisterFlags registers all CLI flags to a cobra command.
func RegisterFlags(cmd *cobra.Command) {
	configureFlags(cmd.Flags())
}

// configureFlags sets up all CLI flags on the provided flag set.
func configureFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to configuration file (JSON or YAML)")
	flags.String("target", DefaultTargetURL, "Target URL (the positional argument takes precedence)")

	// Load control flags
	flags.Float64P("rate", "r", DefaultRate, "Target requests per second")
	flags.IntP("concurrency", "c", DefaultConcurrency, "Requests fired per batch")
	flags.Duration("timeout", DefaultTimeout, "Per-request timeout")
	flags.String("pacing", string(PacingBatch), "Pacing mode: 'batch' (fire a batch, then sleep) or 'smooth' (token bucket)")
	flags.Bool("http2", true, "Negotiate HTTP/2 over TLS when the target supports it")

	// Output flags
	flags.String("log-format", "console", "Log encoding: 'console' or 'json'")
	flags.String("log-level", "info", "Minimum log level: debug, info, warn or error")

	// Tracing flags
	flags.String("tracing-endpoint", "", "OTLP collector endpoint (host:port); empty disables export")
	flags.String("tracing-protocol", "grpc", "OTLP protocol: 'grpc' or 'http'")
	flags.Bool("tracing-insecure", false, "Use a plaintext connection to the OTLP collector")
	flags.Float64("tracing-sample-rate", 1.0, "Fraction of requests to trace (0.0 - 1.0)")
	flags.String("tracing-service-name", "", "Service name reported on spans")
	flags.Bool("tracing-propagate", false, "Inject W3C traceparent headers into requests")
}

// applyFlagOverrides applies command-line flag values to the config, overriding
// values from the config file. Only flags the user actually set are applied.
func applyFlagOverrides(cfg *Config, fs *pflag.FlagSet) error {
	if fs.Changed("target") {
		val, err := fs.GetString("target")
		if err != nil {
			return err
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}
	if fs.Changed("rate") {
		val, err := fs.GetFloat64("rate")
		if err != nil {
			return err
		}
		cfg.Rate = val
	}
	if fs.Changed("concurrency") {
		val, err := fs.GetInt("concurrency")
		if err != nil {
			return err
		}
		cfg.Concurrency = val
	}
	if fs.Changed("timeout") {
		val, err := fs.GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = val
	}
	if fs.Changed("pacing") {
		val, err := fs.GetString("pacing")
		if err != nil {
			return err
		}
		cfg.Pacing = Pacing(val)
	}
	if fs.Changed("http2") {
		val, err := fs.GetBool("http2")
		if err != nil {
			return err
		}
		cfg.HTTP2 = val
	}
	if fs.Changed("log-format") {
		val, err := fs.GetString("log-format")
		if err != nil {
			return err
		}
		cfg.Log.Format = val
	}
	if fs.Changed("log-level") {
		val, err := fs.GetString("log-level")
		if err != nil {
			return err
		}
		cfg.Log.Level = val
	}
	if fs.Changed("tracing-endpoint") {
		val, err := fs.GetString("tracing-endpoint")
		if err != nil {
			return err
		}
		cfg.Tracing.Endpoint = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-protocol") {
		val, err := fs.GetString("tracing-protocol")
		if err != nil {
			return err
		}
		cfg.Tracing.Protocol = val
	}
	if fs.Changed("tracing-insecure") {
		val, err := fs.GetBool("tracing-insecure")
		if err != nil {
			return err
		}
		cfg.Tracing.Insecure = val
	}
	if fs.Changed("tracing-sample-rate") {
		val, err := fs.GetFloat64("tracing-sample-rate")
		if err != nil {
			return err
		}
		cfg.Tracing.SampleRate = val
	}
	if fs.Changed("tracing-service-name") {
		val, err := fs.GetString("tracing-service-name")
		if err != nil {
			return err
		}
		cfg.Tracing.ServiceName = strings.TrimSpace(val)
	}
	if fs.Changed("tracing-propagate") {
		val, err := fs.GetBool("tracing-propagate")
		if err != nil {
			return err
		}
		cfg.Tracing.Propagate = val
	}
	return nil
}
