package runner

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// pacer decides how long to hold off around each batch.
type pacer interface {
	// BeforeLaunch blocks until the next request in a batch may start.
	BeforeLaunch(ctx context.Context) error
	// AfterBatch blocks once the batch barrier has been passed.
	AfterBatch(ctx context.Context) error
}

func newPacer(opt Options) pacer {
	switch opt.Pacing {
	case PacingSmooth:
		return &smoothPacer{limiter: opt.LimiterFactory(opt.RatePerSecond)}
	default:
		return &batchPacer{interval: opt.BatchInterval(), sleep: opt.Sleep}
	}
}

// batchPacer launches every request of a batch at once and sleeps a fixed
// interval after the barrier. The sleep is additive to the batch's own time.
type batchPacer struct {
	interval time.Duration
	sleep    func(ctx context.Context, d time.Duration) error
}

func (b *batchPacer) BeforeLaunch(context.Context) error { return nil }

func (b *batchPacer) AfterBatch(ctx context.Context) error {
	if b.interval <= 0 {
		return ctx.Err()
	}
	return b.sleep(ctx, b.interval)
}

// smoothPacer delegates spacing to a rate.Limiter (uniform spacing per request).
type smoothPacer struct {
	limiter *rate.Limiter
}

func (s *smoothPacer) BeforeLaunch(ctx context.Context) error {
	if s == nil || s.limiter == nil {
		return nil
	}
	return s.limiter.Wait(ctx)
}

func (s *smoothPacer) AfterBatch(ctx context.Context) error { return ctx.Err() }

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
