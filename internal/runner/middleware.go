package runner

import (
	"context"
	"fmt"
)

// FailureLogger logs failed requests.
type FailureLogger interface {
	LogFailure(err error)
}

// loggingRequester wraps a Requester with failure logging.
type loggingRequester struct {
	inner  Requester
	logger FailureLogger
}

// WithLogging wraps a Requester to log failures. A panic in the inner
// requester is recovered and logged as an UnexpectedError.
func WithLogging(req Requester, logger FailureLogger) Requester {
	if logger == nil {
		return req
	}
	return &loggingRequester{
		inner:  req,
		logger: logger,
	}
}

func (l *loggingRequester) Do(ctx context.Context) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &UnexpectedError{Err: fmt.Errorf("panic: %v", rec)}
		}
		if err != nil && l.logger != nil {
			l.logger.LogFailure(err)
		}
	}()
	return l.inner.Do(ctx)
}
