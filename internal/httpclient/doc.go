// Package httpclient provides the HTTP plumbing for rtbload.
//
// [NewClient] creates the one pooled client a run shares across all of its
// concurrent requests:
//
//	client, err := httpclient.NewClient(5*time.Second, true)
//
// [NewRequestBuilder] turns the encoded bid request into a builder whose
// requests all POST the same bytes with a JSON content type and a fresh
// X-Request-Id:
//
//	builder, err := httpclient.NewRequestBuilder(cfg.TargetURL, body)
//	req, err := builder.Build(ctx)
package httpclient
