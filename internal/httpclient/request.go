package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	contentTypeJSON = "application/json"
	requestIDHeader = "X-Request-Id"
)

// RequestBuilder produces identical JSON POST requests against one target.
type RequestBuilder struct {
	method  string
	target  string
	headers http.Header
	body    BodySource
}

func NewRequestBuilder(target string, body []byte) (*RequestBuilder, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, errors.New("target URL is required")
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("target URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("target URL %q: scheme must be http or https", target)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("target URL %q: host is required", target)
	}

	headers := http.Header{}
	headers.Set("Content-Type", contentTypeJSON)
	headers.Set("Accept", contentTypeJSON)

	return &RequestBuilder{
		method:  http.MethodPost,
		target:  target,
		headers: headers,
		body:    NewBodySource(body),
	}, nil
}

// Target returns the URL every request is sent to.
func (b *RequestBuilder) Target() string {
	if b == nil {
		return ""
	}
	return b.target
}

func (b *RequestBuilder) Build(ctx context.Context) (*http.Request, error) {
	if b == nil {
		return nil, errors.New("builder cannot be nil")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	reader, err := b.body.NewReader()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, b.method, b.target, reader)
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	req.Header = b.headers.Clone()
	req.Header.Set(requestIDHeader, ulid.Make().String())

	if length, ok := b.body.ContentLength(); ok {
		req.ContentLength = length
	}

	req.GetBody = func() (io.ReadCloser, error) {
		return b.body.NewReader()
	}

	return req, nil
}
