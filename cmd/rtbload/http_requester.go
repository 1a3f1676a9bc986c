package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/torosent/rtbload/internal/httpclient"
	"github.com/torosent/rtbload/internal/runner"
	"github.com/torosent/rtbload/internal/tracing"
)

const maxErrorBodyBytes = 1024

// responseLogger receives the body of every completed exchange.
type responseLogger interface {
	LogResponse(body []byte)
}

// httpRequester implements runner.Requester by POSTing the shared payload.
type httpRequester struct {
	client    *http.Client
	builder   *httpclient.RequestBuilder
	timeout   time.Duration
	logger    responseLogger
	tracer    trace.Tracer
	propagate bool
}

func newHTTPRequester(client *http.Client, builder *httpclient.RequestBuilder, timeout time.Duration, logger responseLogger, provider *tracing.Provider) *httpRequester {
	return &httpRequester{
		client:    client,
		builder:   builder,
		timeout:   timeout,
		logger:    logger,
		tracer:    provider.Tracer(),
		propagate: provider.ShouldPropagate(),
	}
}

// Do sends one bid request and reads the whole response. Status codes of
// 400 and above are returned as *runner.HTTPError after the body is logged.
func (r *httpRequester) Do(ctx context.Context) (err error) {
	target := r.builder.Target()
	ctx, span := tracing.StartRequestSpan(ctx, r.tracer, http.MethodPost, target)
	var attrs []attribute.KeyValue
	defer func() {
		tracing.EndSpan(span, err, attrs...)
	}()

	req, err := r.builder.Build(ctx)
	if err != nil {
		return &runner.UnexpectedError{Err: fmt.Errorf("build request: %w", err)}
	}
	attrs = append(attrs, tracing.RequestID(req.Header.Get("X-Request-Id")))
	if r.propagate {
		tracing.InjectHTTPHeaders(ctx, req.Header)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return runner.Classify(err, target, r.timeout)
	}
	defer resp.Body.Close()
	attrs = append(attrs, tracing.StatusCode(resp.StatusCode))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return runner.Classify(err, target, r.timeout)
	}

	if r.logger != nil {
		r.logger.LogResponse(body)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		snippet := body
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return &runner.HTTPError{
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}
	return nil
}
