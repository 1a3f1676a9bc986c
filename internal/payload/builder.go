package payload

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"
)

const (
	requestIDMin = 100000
	requestIDMax = 999999

	// ConnectionTypeWiFi is the OpenRTB connection type code for WiFi.
	ConnectionTypeWiFi = 2

	defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"
)

// New builds a request using a time-seeded random source.
func New() BidRequest {
	return Build(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// Build returns the fixed bid request. The only varying part is the numeric
// suffix of the request id, drawn from rnd in [100000, 999999).
func Build(rnd *rand.Rand) BidRequest {
	suffix := requestIDMin + rnd.Intn(requestIDMax-requestIDMin)
	return BidRequest{
		ID: fmt.Sprintf("request-%d", suffix),
		Imp: []Imp{
			{
				ID:                "imp-123",
				Banner:            &Banner{W: 300, H: 250},
				DisplayManager:    "openrtb-sim",
				DisplayManagerVer: "1.0",
				TagID:             "tag-456",
				BidFloor:          0.5,
				BidFloorCur:       "USD",
			},
		},
		Device: &Device{
			UA:             defaultUserAgent,
			IP:             "192.168.1.100",
			OS:             "Mac OS X",
			Model:          "MacBook Pro",
			ConnectionType: ConnectionTypeWiFi,
		},
		User: &User{ID: "user-789"},
		TMax: 1000,
	}
}

// Encode serializes the request to JSON.
func (r BidRequest) Encode() ([]byte, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode bid request: %w", err)
	}
	return data, nil
}
