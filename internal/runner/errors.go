package runner

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// HTTPError represents a response whose status indicates a client or server error.
type HTTPError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	text := http.StatusText(e.StatusCode)
	if text == "" {
		return "HTTP " + strconv.Itoa(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d %s", e.StatusCode, text)
}

// TransportError is a client-level send or receive fault: refused
// connection, DNS failure, TLS failure, reset.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError is a request that did not complete within its timeout.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %g seconds", e.Timeout.Seconds())
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// UnexpectedError wraps any failure that fits no other kind, panics included.
type UnexpectedError struct {
	Err error
}

func (e *UnexpectedError) Error() string { return e.Err.Error() }

func (e *UnexpectedError) Unwrap() error { return e.Err }

// Classify maps a raw error from sending or reading a request into one of
// the typed failures above. Errors that are already classified pass through.
func Classify(err error, target string, timeout time.Duration) error {
	if err == nil {
		return nil
	}

	var (
		httpErr       *HTTPError
		transportErr  *TransportError
		timeoutErr    *TimeoutError
		unexpectedErr *UnexpectedError
	)
	switch {
	case errors.As(err, &httpErr), errors.As(err, &transportErr),
		errors.As(err, &timeoutErr), errors.As(err, &unexpectedErr):
		return err
	}

	if isTimeout(err) {
		return &TimeoutError{URL: target, Timeout: timeout, Err: err}
	}

	var urlErr *url.Error
	var opErr *net.OpError
	var dnsErr *net.DNSError
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.As(err, &netErr) {
		return &TransportError{URL: target, Err: err}
	}

	return &UnexpectedError{Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// FailureMessage renders the single log line for a failed request.
func FailureMessage(err error) string {
	var (
		httpErr      *HTTPError
		transportErr *TransportError
		timeoutErr   *TimeoutError
	)
	switch {
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("Request to %s timed out after %g seconds", timeoutErr.URL, timeoutErr.Timeout.Seconds())
	case errors.As(err, &httpErr):
		return fmt.Sprintf("Error sending request to %s: %v", httpErr.URL, httpErr)
	case errors.As(err, &transportErr):
		return fmt.Sprintf("Error sending request to %s: %v", transportErr.URL, transportErr.Err)
	default:
		return fmt.Sprintf("An unexpected error occurred: %v", err)
	}
}
