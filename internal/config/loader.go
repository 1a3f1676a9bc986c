package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Loader builds a Config from a parsed flag set, an optional config file and
// the positional target argument.
type Loader struct{}

// NewLoader creates a new configuration Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// FromFlags builds a Config from an already parsed flag set (see RegisterFlags)
// and the remaining positional arguments.
// Precedence: defaults < config file < flags < positional target.
func (Loader) FromFlags(fs *pflag.FlagSet, args []string) (*Config, error) {
	if len(args) > 1 {
		return nil, fmt.Errorf("expected at most one target URL argument, got %d", len(args))
	}

	cfg := Default()

	configPath, err := fs.GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	cfg.ConfigFile = configPath

	if configPath != "" {
		cfgViper := viper.New()
		cfgViper.SetConfigFile(configPath)
		if err := cfgViper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
		if err := applyConfigSettings(&cfg, cfgViper.AllSettings()); err != nil {
			return nil, err
		}
	}

	if err := applyFlagOverrides(&cfg, fs); err != nil {
		return nil, err
	}

	if len(args) == 1 {
		cfg.TargetURL = strings.TrimSpace(args[0])
		cfg.TargetFromArgs = true
	}

	cfg.TargetURL = strings.TrimSpace(cfg.TargetURL)
	cfg.Pacing = Pacing(strings.ToLower(strings.TrimSpace(string(cfg.Pacing))))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Tracing.Protocol = strings.ToLower(strings.TrimSpace(cfg.Tracing.Protocol))

	return &cfg, nil
}

// applyConfigSettings applies settings from a config file to the Config struct.
func applyConfigSettings(cfg *Config, settings map[string]interface{}) error {
	if len(settings) == 0 {
		return nil
	}

	if raw, ok := lookupSetting(settings, "target"); ok {
		val, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("target: %w", err)
		}
		cfg.TargetURL = strings.TrimSpace(val)
	}

	if raw, ok := lookupSetting(settings, "rate"); ok {
		val, err := cast.ToFloat64E(raw)
		if err != nil {
			return fmt.Errorf("rate: %w", err)
		}
		cfg.Rate = val
	}

	if raw, ok := lookupSetting(settings, "concurrency"); ok {
		val, err := cast.ToIntE(raw)
		if err != nil {
			return fmt.Errorf("concurrency: %w", err)
		}
		cfg.Concurrency = val
	}

	if raw, ok := lookupSetting(settings, "timeout"); ok {
		dur, err := asDuration(raw)
		if err != nil {
			return fmt.Errorf("timeout: %w", err)
		}
		cfg.Timeout = dur
	}

	if raw, ok := lookupSetting(settings, "pacing"); ok {
		val, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("pacing: %w", err)
		}
		cfg.Pacing = Pacing(val)
	}

	if raw, ok := lookupSetting(settings, "http2"); ok {
		val, err := cast.ToBoolE(raw)
		if err != nil {
			return fmt.Errorf("http2: %w", err)
		}
		cfg.HTTP2 = val
	}

	if raw, ok := lookupSetting(settings, "log"); ok {
		if err := applyLogSettings(&cfg.Log, raw); err != nil {
			return fmt.Errorf("log: %w", err)
		}
	}

	if raw, ok := lookupSetting(settings, "tracing"); ok {
		if err := applyTracingSettings(&cfg.Tracing, raw); err != nil {
			return fmt.Errorf("tracing: %w", err)
		}
	}

	return nil
}

func applyLogSettings(log *LogConfig, value interface{}) error {
	settings, err := cast.ToStringMapE(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(settings, "format"); ok {
		val, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		log.Format = val
	}
	if raw, ok := lookupSetting(settings, "level"); ok {
		val, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("level: %w", err)
		}
		log.Level = val
	}
	return nil
}

func applyTracingSettings(tracing *TracingConfig, value interface{}) error {
	settings, err := cast.ToStringMapE(value)
	if err != nil {
		return err
	}
	if raw, ok := lookupSetting(settings, "endpoint"); ok {
		val, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("endpoint: %w", err)
		}
		tracing.Endpoint = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "protocol"); ok {
		val, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("protocol: %w", err)
		}
		tracing.Protocol = val
	}
	if raw, ok := lookupSetting(settings, "insecure"); ok {
		val, err := cast.ToBoolE(raw)
		if err != nil {
			return fmt.Errorf("insecure: %w", err)
		}
		tracing.Insecure = val
	}
	if raw, ok := lookupSetting(settings, "samplerate", "sample_rate", "sample-rate"); ok {
		val, err := cast.ToFloat64E(raw)
		if err != nil {
			return fmt.Errorf("sample_rate: %w", err)
		}
		tracing.SampleRate = val
	}
	if raw, ok := lookupSetting(settings, "servicename", "service_name", "service-name"); ok {
		val, err := cast.ToStringE(raw)
		if err != nil {
			return fmt.Errorf("service_name: %w", err)
		}
		tracing.ServiceName = strings.TrimSpace(val)
	}
	if raw, ok := lookupSetting(settings, "propagate"); ok {
		val, err := cast.ToBoolE(raw)
		if err != nil {
			return fmt.Errorf("propagate: %w", err)
		}
		tracing.Propagate = val
	}
	return nil
}
