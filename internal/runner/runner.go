package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Result captures execution summary.
type Result struct {
	Batches  int64
	Total    int64
	Errors   int64
	Duration time.Duration
}

// Runner fires fixed-size batches of concurrent requests, waits for each
// batch to finish, then paces before the next one.
type Runner struct {
	opt   Options
	pacer pacer
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt, pacer: newPacer(opt)}
}

// Options returns the normalized options the runner was built with.
func (r *Runner) Options() Options {
	return r.opt
}

// Run loops until ctx is done or the batch cap is reached. Cancelling ctx
// stops the loop at the next barrier or during the pacing sleep; requests
// already in flight are left to finish on their own timeout.
func (r *Runner) Run(ctx context.Context) Result {
	start := time.Now()
	var batches, total, errs int64

	requestCtx := context.WithoutCancel(ctx)

	for r.opt.Batches == 0 || batches < int64(r.opt.Batches) {
		if ctx.Err() != nil {
			break
		}
		r.runBatch(ctx, requestCtx, &total, &errs)
		batches++
		if err := r.pacer.AfterBatch(ctx); err != nil {
			break
		}
	}

	return Result{
		Batches:  batches,
		Total:    atomic.LoadInt64(&total),
		Errors:   atomic.LoadInt64(&errs),
		Duration: time.Since(start),
	}
}

// runBatch launches up to Concurrency requests and returns once every one
// of them has returned.
func (r *Runner) runBatch(ctx, requestCtx context.Context, total, errs *int64) {
	var g errgroup.Group
	for i := 0; i < r.opt.Concurrency; i++ {
		if err := r.pacer.BeforeLaunch(ctx); err != nil {
			break
		}
		atomic.AddInt64(total, 1)
		g.Go(func() error {
			if err := r.do(requestCtx); err != nil {
				atomic.AddInt64(errs, 1)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (r *Runner) do(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &UnexpectedError{Err: fmt.Errorf("panic: %v", rec)}
		}
	}()
	if r.opt.Requester == nil {
		return nil
	}
	return r.opt.Requester.Do(ctx)
}
