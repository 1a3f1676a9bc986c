package payload

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/tidwall/gjson"
)

func TestBuildShape(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		req := Build(rand.New(rand.NewSource(seed)))

		if len(req.Imp) != 1 {
			t.Fatalf("seed %d: expected exactly one impression, got %d", seed, len(req.Imp))
		}
		imp := req.Imp[0]
		if imp.Banner == nil || imp.Banner.W <= 0 || imp.Banner.H <= 0 {
			t.Fatalf("seed %d: expected positive banner size, got %+v", seed, imp.Banner)
		}
		if req.ID == "" {
			t.Fatalf("seed %d: expected non-empty request id", seed)
		}
		if req.Device == nil || req.Device.UA == "" {
			t.Fatalf("seed %d: expected user agent", seed)
		}
	}
}

func TestBuildRequestIDRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		req := Build(rnd)
		suffix := strings.TrimPrefix(req.ID, "request-")
		if suffix == req.ID {
			t.Fatalf("expected request- prefix, got %q", req.ID)
		}
		n, err := strconv.Atoi(suffix)
		if err != nil {
			t.Fatalf("suffix %q is not numeric: %v", suffix, err)
		}
		if n < requestIDMin || n >= requestIDMax {
			t.Fatalf("suffix %d outside [%d, %d)", n, requestIDMin, requestIDMax)
		}
	}
}

func TestBuildDeterministicForSeed(t *testing.T) {
	a := Build(rand.New(rand.NewSource(7)))
	b := Build(rand.New(rand.NewSource(7)))
	if a.ID != b.ID {
		t.Fatalf("expected identical ids for identical seeds, got %q and %q", a.ID, b.ID)
	}
}

func TestEncodeFieldNames(t *testing.T) {
	data, err := Build(rand.New(rand.NewSource(1))).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	checks := map[string]string{
		"imp.0.id":                "imp-123",
		"imp.0.banner.w":          "300",
		"imp.0.banner.h":          "250",
		"imp.0.displaymanager":    "openrtb-sim",
		"imp.0.displaymanagerver": "1.0",
		"imp.0.tagid":             "tag-456",
		"imp.0.bidfloor":          "0.5",
		"imp.0.bidfloorcur":       "USD",
		"device.ip":               "192.168.1.100",
		"device.os":               "Mac OS X",
		"device.model":            "MacBook Pro",
		"device.connectiontype":   "2",
		"user.id":                 "user-789",
		"tmax":                    "1000",
	}
	for path, want := range checks {
		got := gjson.GetBytes(data, path)
		if !got.Exists() {
			t.Errorf("%s: missing from %s", path, data)
			continue
		}
		if got.String() != want {
			t.Errorf("%s = %q, want %q", path, got.String(), want)
		}
	}
	if n := gjson.GetBytes(data, "imp.#").Int(); n != 1 {
		t.Errorf("imp.# = %d, want 1", n)
	}
	if !strings.HasPrefix(gjson.GetBytes(data, "device.ua").String(), "Mozilla/5.0") {
		t.Errorf("device.ua = %q", gjson.GetBytes(data, "device.ua").String())
	}
}
