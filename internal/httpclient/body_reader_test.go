package httpclient

import (
	"io"
	"testing"
)

func TestNewBodySource(t *testing.T) {
	t.Run("inline data", func(t *testing.T) {
		content := `{"id":"request-123456"}`
		source := NewBodySource([]byte(content))

		if length, ok := source.ContentLength(); !ok || length != int64(len(content)) {
			t.Errorf("ContentLength() = %d, %v; want %d, true", length, ok, len(content))
		}

		// Every reader replays the full body.
		for i := 0; i < 3; i++ {
			rc, err := source.NewReader()
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			got, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if string(got) != content {
				t.Errorf("read %d = %q, want %q", i, string(got), content)
			}
		}
	})

	t.Run("empty source", func(t *testing.T) {
		source := NewBodySource(nil)

		if length, ok := source.ContentLength(); !ok || length != 0 {
			t.Errorf("ContentLength() = %d, %v; want 0, true", length, ok)
		}

		rc, err := source.NewReader()
		if err != nil {
			t.Fatalf("NewReader() error = %v", err)
		}
		defer rc.Close()

		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("ReadAll() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("ReadAll() = %q, want empty", string(got))
		}
	})
}
