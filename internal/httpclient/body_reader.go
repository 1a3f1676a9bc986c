package httpclient

import (
	"bytes"
	"io"
)

type BodySource interface {
	NewReader() (io.ReadCloser, error)
	ContentLength() (int64, bool)
}

// NewBodySource replays data as the body of every request. The slice is
// shared and must not be modified after this call.
func NewBodySource(data []byte) BodySource {
	if len(data) == 0 {
		return emptyBodySource{}
	}
	return &inlineBodySource{data: data}
}

type inlineBodySource struct {
	data []byte
}

func (s *inlineBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

func (s *inlineBodySource) ContentLength() (int64, bool) {
	return int64(len(s.data)), true
}

type emptyBodySource struct{}

func (emptyBodySource) NewReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(nil)), nil
}

func (emptyBodySource) ContentLength() (int64, bool) {
	return 0, true
}
