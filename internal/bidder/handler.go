// Package bidder implements a minimal OpenRTB bidder used as a load target.
package bidder

import (
	"encoding/json"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/tidwall/gjson"

	"github.com/torosent/rtbload/internal/logging"
	"github.com/torosent/rtbload/internal/payload"
)

const (
	BidPath        = "/bid"
	HealthPath     = "/healthz"
	openRTBVersion = "2.5"
	maxBodyBytes   = 1 << 20
)

// Options tune how the bidder misbehaves.
type Options struct {
	FailRate float64       // fraction of valid requests answered with 500
	Delay    time.Duration // added before every bid response
}

type Handler struct {
	opt    Options
	logger *logging.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

func New(opt Options, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Nop()
	}
	if opt.FailRate < 0 {
		opt.FailRate = 0
	}
	if opt.FailRate > 1 {
		opt.FailRate = 1
	}
	return &Handler{
		opt:    opt,
		logger: logger,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Router returns the bidder's routes. Non-POST requests to /bid get 405.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(BidPath, h.handleBid).Methods(http.MethodPost)
	r.HandleFunc(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]any{"ok": true})
	}).Methods(http.MethodGet)
	r.MethodNotAllowedHandler = http.HandlerFunc(h.handleMethodNotAllowed)
	return r
}

func (h *Handler) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	h.logger.Warnf("invalid request method: %s", r.Method)
	http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
}

func (h *Handler) handleBid(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		h.logger.Warnf("reading request body: %v", err)
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	if msg := Validate(body); msg != "" {
		h.logger.Warnf("rejected bid request: %s", msg)
		http.Error(w, msg, http.StatusBadRequest)
		return
	}

	if h.opt.Delay > 0 {
		timer := time.NewTimer(h.opt.Delay)
		select {
		case <-timer.C:
		case <-r.Context().Done():
			timer.Stop()
			return
		}
	}

	if h.shouldFail() {
		h.logger.Warnf("injected failure for %s", gjson.GetBytes(body, "id").String())
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	resp := NewResponse(gjson.GetBytes(body, "id").String(), gjson.GetBytes(body, "imp.0.id").String())
	respondJSON(w, http.StatusOK, resp)
	h.logger.Infof("Successfully sent bid response for %s", resp.ID)
}

func (h *Handler) shouldFail() bool {
	if h.opt.FailRate <= 0 {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.rnd.Float64() < h.opt.FailRate
}

// Validate checks the fields the bidder relies on and returns a client-facing
// message for the first problem found, or "" when the request is usable.
// A field of the wrong JSON type is reported as invalid JSON; null counts as
// absent.
func Validate(body []byte) string {
	if !gjson.ValidBytes(body) {
		return "Invalid JSON"
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() && doc.Type != gjson.Null {
		return "Invalid JSON"
	}

	id := doc.Get("id")
	imps := doc.Get("imp")
	device := doc.Get("device")
	if !isKind(id, gjson.String) || !(isAbsent(imps) || imps.IsArray()) || !(isAbsent(device) || device.IsObject()) {
		return "Invalid JSON"
	}
	for _, imp := range imps.Array() {
		if isAbsent(imp) {
			continue
		}
		if !imp.IsObject() || !isKind(imp.Get("id"), gjson.String) {
			return "Invalid JSON"
		}
	}
	if device.IsObject() && !isKind(device.Get("ua"), gjson.String) {
		return "Invalid JSON"
	}

	if id.String() == "" {
		return "Request ID is required"
	}
	if len(imps.Array()) == 0 {
		return "At least one impression is required"
	}
	for _, imp := range imps.Array() {
		if imp.Get("id").String() == "" {
			return "Impression ID is required"
		}
	}
	if !device.IsObject() {
		return "Device object is required"
	}
	if device.Get("ua").String() == "" {
		return "Device UserAgent is required"
	}
	return ""
}

func isAbsent(r gjson.Result) bool {
	return !r.Exists() || r.Type == gjson.Null
}

// isKind reports whether r is absent or of type t.
func isKind(r gjson.Result, t gjson.Type) bool {
	return isAbsent(r) || r.Type == t
}

// NewResponse builds the fixed single-bid reply for a request.
func NewResponse(requestID, impID string) payload.BidResponse {
	return payload.BidResponse{
		ID:      requestID,
		Version: openRTBVersion,
		SeatBid: []payload.SeatBid{{
			Seat: "seat-id-456",
			Bid: []payload.Bid{{
				ID:    uuid.NewString(),
				ImpID: impID,
				Price: 2.50,
				AdM:   "Example Ad",
				CrID:  "creative-id-abc",
				W:     300,
				H:     250,
			}},
		}},
	}
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
