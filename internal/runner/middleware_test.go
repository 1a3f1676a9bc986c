package runner_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/torosent/rtbload/internal/runner"
)

type statusRequester struct {
	statusCode int
}

func (s *statusRequester) Do(ctx context.Context) error {
	if s.statusCode >= 400 {
		return &runner.HTTPError{URL: "http://target/bid", StatusCode: s.statusCode, Body: "error body"}
	}
	return nil
}

type testLogger struct {
	mu     sync.Mutex
	errors []error
}

func (l *testLogger) LogFailure(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, err)
}

func TestNon2xxLoggedOncePerRequest(t *testing.T) {
	logger := &testLogger{}

	r := runner.New(runner.Options{
		Concurrency: 2,
		Batches:     3,
		Requester:   runner.WithLogging(&statusRequester{statusCode: 500}, logger),
	})
	res := r.Run(context.Background())

	if res.Total != 6 {
		t.Errorf("expected total 6, got %d", res.Total)
	}
	if len(logger.errors) != 6 {
		t.Errorf("expected 6 logged failures, got %d", len(logger.errors))
	}
}

func TestSuccessNotLogged(t *testing.T) {
	logger := &testLogger{}
	req := runner.WithLogging(&statusRequester{statusCode: 200}, logger)

	if err := req.Do(context.Background()); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(logger.errors) != 0 {
		t.Fatalf("expected no failures logged, got %d", len(logger.errors))
	}
}

type explodingRequester struct{}

func (explodingRequester) Do(context.Context) error { panic("nil map write") }

func TestWithLoggingRecoversPanic(t *testing.T) {
	logger := &testLogger{}
	req := runner.WithLogging(explodingRequester{}, logger)

	err := req.Do(context.Background())

	var unexpected *runner.UnexpectedError
	if !errors.As(err, &unexpected) {
		t.Fatalf("expected UnexpectedError, got %T (%v)", err, err)
	}
	if len(logger.errors) != 1 {
		t.Fatalf("expected panic to be logged once, got %d", len(logger.errors))
	}
}

func TestWithLoggingNilLogger(t *testing.T) {
	inner := &statusRequester{statusCode: 200}
	if got := runner.WithLogging(inner, nil); got != runner.Requester(inner) {
		t.Fatalf("expected nil logger to return inner requester unchanged")
	}
}
