package logging_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/torosent/rtbload/internal/config"
	"github.com/torosent/rtbload/internal/logging"
	"github.com/torosent/rtbload/internal/runner"
)

func observed(t *testing.T) (*logging.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.FromZap(zap.New(core)), logs
}

func TestLogFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "http status",
			err:  &runner.HTTPError{URL: "http://nginx/bid", StatusCode: 500},
			want: "Error sending request to http://nginx/bid: HTTP 500 Internal Server Error",
		},
		{
			name: "transport",
			err:  &runner.TransportError{URL: "http://nginx/bid", Err: errors.New("connection refused")},
			want: "Error sending request to http://nginx/bid: connection refused",
		},
		{
			name: "timeout",
			err:  &runner.TimeoutError{URL: "http://nginx/bid", Timeout: 5 * time.Second},
			want: "Request to http://nginx/bid timed out after 5 seconds",
		},
		{
			name: "unexpected",
			err:  &runner.UnexpectedError{Err: errors.New("boom")},
			want: "An unexpected error occurred: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observed(t)
			logger.LogFailure(tt.err)

			entries := logs.All()
			if len(entries) != 1 {
				t.Fatalf("expected 1 entry, got %d", len(entries))
			}
			if entries[0].Level != zapcore.ErrorLevel {
				t.Errorf("expected error level, got %v", entries[0].Level)
			}
			if entries[0].Message != tt.want {
				t.Errorf("expected %q, got %q", tt.want, entries[0].Message)
			}
		})
	}
}

func TestLogFailureNil(t *testing.T) {
	logger, logs := observed(t)
	logger.LogFailure(nil)
	if logs.Len() != 0 {
		t.Fatalf("expected no entries, got %d", logs.Len())
	}
}

func TestLogResponse(t *testing.T) {
	logger, logs := observed(t)
	logger.LogResponse([]byte(`{"id":"request-123456"}`))

	entries := logs.FilterMessage(`Response: {"id":"request-123456"}`).All()
	if len(entries) != 1 {
		t.Fatalf("expected response line, got %v", logs.All())
	}
	if entries[0].Level != zapcore.InfoLevel {
		t.Errorf("expected info level, got %v", entries[0].Level)
	}
}

func TestLogResponseTrimsTrailingNewline(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(config.LogConfig{Format: "console", Level: "info"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	logger.LogResponse([]byte("boom\n"))
	logger.LogResponse([]byte("{\"id\":\"r\"}\r\n"))

	out := buf.String()
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected two lines, got %q", out)
	}
	if !strings.Contains(out, "Response: boom\n") || !strings.Contains(out, "Response: {\"id\":\"r\"}\n") {
		t.Fatalf("unexpected output %q", out)
	}
	if strings.Contains(out, "\n\n") || strings.Contains(out, "\r") {
		t.Fatalf("blank line or carriage return left in output: %q", out)
	}
}

func TestConsoleFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(config.LogConfig{Format: "console", Level: "info"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	logger.Infof("Sending requests to %s at %v RPS (delay: %.6f seconds)", "http://nginx/bid", 100.0, 0.01)
	logger.Debugf("hidden")

	out := buf.String()
	if !strings.Contains(out, " - INFO - Sending requests to http://nginx/bid at 100 RPS (delay: 0.010000 seconds)") {
		t.Fatalf("unexpected console output: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
	if strings.Count(out, "\n") != 1 {
		t.Fatalf("expected one line, got %q", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.NewWithWriter(config.LogConfig{Format: "json", Level: "debug"}, &buf)
	if err != nil {
		t.Fatalf("NewWithWriter() error = %v", err)
	}

	logger.LogFailure(&runner.UnexpectedError{Err: errors.New("boom")})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if entry["level"] != "error" {
		t.Errorf("expected level error, got %v", entry["level"])
	}
	if entry["msg"] != "An unexpected error occurred: boom" {
		t.Errorf("unexpected msg %v", entry["msg"])
	}
	if _, ok := entry["caller"]; ok {
		t.Error("caller should be omitted")
	}
}

func TestNewRejectsBadSettings(t *testing.T) {
	if _, err := logging.NewWithWriter(config.LogConfig{Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unsupported format")
	}
	if _, err := logging.NewWithWriter(config.LogConfig{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("expected error for unsupported level")
	}
}

func TestNop(t *testing.T) {
	logger := logging.Nop()
	logger.LogFailure(errors.New("ignored"))
	logger.LogResponse([]byte("ignored"))
	if err := logger.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
}
