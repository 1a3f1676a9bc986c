package config

import (
	"io"

	"gopkg.in/yaml.v3"
)

// fileView mirrors the config file layout so rendered output can be fed
// back through --config.
type fileView struct {
	Target      string      `yaml:"target"`
	Rate        float64     `yaml:"rate"`
	Concurrency int         `yaml:"concurrency"`
	Timeout     string      `yaml:"timeout"`
	Pacing      string      `yaml:"pacing"`
	HTTP2       bool        `yaml:"http2"`
	Log         logView     `yaml:"log"`
	Tracing     tracingView `yaml:"tracing"`
}

type logView struct {
	Format string `yaml:"format"`
	Level  string `yaml:"level"`
}

type tracingView struct {
	Endpoint    string  `yaml:"endpoint,omitempty"`
	Protocol    string  `yaml:"protocol"`
	Insecure    bool    `yaml:"insecure"`
	SampleRate  float64 `yaml:"sample_rate"`
	ServiceName string  `yaml:"service_name,omitempty"`
	Propagate   bool    `yaml:"propagate"`
}

// WriteYAML renders the effective configuration in config file form.
func (c Config) WriteYAML(w io.Writer) error {
	view := fileView{
		Target:      c.TargetURL,
		Rate:        c.Rate,
		Concurrency: c.Concurrency,
		Timeout:     c.Timeout.String(),
		Pacing:      string(c.Pacing),
		HTTP2:       c.HTTP2,
		Log:         logView{Format: c.Log.Format, Level: c.Log.Level},
		Tracing: tracingView{
			Endpoint:    c.Tracing.Endpoint,
			Protocol:    c.Tracing.Protocol,
			Insecure:    c.Tracing.Insecure,
			SampleRate:  c.Tracing.SampleRate,
			ServiceName: c.Tracing.ServiceName,
			Propagate:   c.Tracing.Propagate,
		},
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(view); err != nil {
		return err
	}
	return enc.Close()
}
