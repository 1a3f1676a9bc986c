// Package logging builds the line-oriented zap logger rtbload writes to stdout.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/torosent/rtbload/internal/config"
	"github.com/torosent/rtbload/internal/runner"
)

// Logger is a sugared zap logger that also satisfies runner.FailureLogger.
type Logger struct {
	base  *zap.Logger
	sugar *zap.SugaredLogger
}

var _ runner.FailureLogger = (*Logger)(nil)

// New returns a logger writing to stdout in the configured format.
func New(cfg config.LogConfig) (*Logger, error) {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter returns a logger writing to w.
func NewWithWriter(cfg config.LogConfig, w io.Writer) (*Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.CallerKey = zapcore.OmitKey
	encCfg.StacktraceKey = zapcore.OmitKey

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encCfg.ConsoleSeparator = " - "
		enc = zapcore.NewConsoleEncoder(encCfg)
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return FromZap(zap.New(core)), nil
}

// FromZap wraps an existing zap logger.
func FromZap(base *zap.Logger) *Logger {
	if base == nil {
		base = zap.NewNop()
	}
	return &Logger{base: base, sugar: base.Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return FromZap(nil)
}

func (l *Logger) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }
func (l *Logger) Infof(template string, args ...interface{})  { l.sugar.Infof(template, args...) }
func (l *Logger) Warnf(template string, args ...interface{})  { l.sugar.Warnf(template, args...) }
func (l *Logger) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }

// LogResponse records the body of a completed request. One trailing line
// break is dropped so each response stays on a single log line.
func (l *Logger) LogResponse(body []byte) {
	body = bytes.TrimSuffix(body, []byte("\n"))
	body = bytes.TrimSuffix(body, []byte("\r"))
	l.sugar.Infof("Response: %s", body)
}

// LogFailure writes the one error line for a failed request.
func (l *Logger) LogFailure(err error) {
	if err == nil {
		return
	}
	l.sugar.Error(runner.FailureMessage(err))
}

// Zap exposes the underlying logger.
func (l *Logger) Zap() *zap.Logger {
	return l.base
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.base.Sync()
}

func parseLevel(raw string) (zapcore.Level, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(raw)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
