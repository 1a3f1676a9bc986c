package runner

import (
	"context"
	"math"
	"time"

	"golang.org/x/time/rate"
)

// Requester abstracts executing a single request operation.
// Implementations should return an error for failed requests.
type Requester interface {
	Do(ctx context.Context) error
}

// Pacing selects how the runner spaces requests over time.
type Pacing string

const (
	// PacingBatch fires a whole batch at once, then sleeps Concurrency/Rate seconds.
	PacingBatch Pacing = "batch"
	// PacingSmooth spaces launches with a token bucket and skips the post-batch sleep.
	PacingSmooth Pacing = "smooth"
)

// Options configure the Runner.
type Options struct {
	Concurrency    int                                              // requests per batch
	RatePerSecond  float64                                          // target aggregate rate (0 means no pacing)
	Batches        int                                              // batches to run (0 means until ctx is done)
	Pacing         Pacing                                           // batch (default) or smooth
	Requester      Requester                                        // request executor (required)
	Sleep          func(ctx context.Context, d time.Duration) error // optional injection for tests
	LimiterFactory func(rps float64) *rate.Limiter                  // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Batches < 0 {
		o.Batches = 0
	}
	if o.Pacing == "" {
		o.Pacing = PacingBatch
	}
	if o.Sleep == nil {
		o.Sleep = sleepContext
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps float64) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// Delay is the per-request share of the pacing window, 1/RatePerSecond.
func (o Options) Delay() time.Duration {
	if o.RatePerSecond <= 0 {
		return 0
	}
	return secondsToDuration(1 / o.RatePerSecond)
}

// BatchInterval is the sleep taken after every batch: Delay * Concurrency.
func (o Options) BatchInterval() time.Duration {
	if o.RatePerSecond <= 0 {
		return 0
	}
	concurrency := o.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	return secondsToDuration(float64(concurrency) / o.RatePerSecond)
}

// secondsToDuration saturates at the largest Duration instead of wrapping
// negative for very small rates.
func secondsToDuration(secs float64) time.Duration {
	ns := secs * float64(time.Second)
	if ns >= math.MaxInt64 || math.IsInf(ns, 1) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(ns)
}
