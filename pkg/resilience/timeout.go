package resilience

import (
	"context"
	"fmt"
	"time"
)

// TimeoutError reports a call that outlived its limit. It unwraps to
// context.DeadlineExceeded.
type TimeoutError struct {
	Op    string
	Limit time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: %v (limit: %v)", e.Op, context.DeadlineExceeded, e.Limit)
}

func (e *TimeoutError) Unwrap() error { return context.DeadlineExceeded }

// WithTimeout bounds a single backend round trip, such as a lookup cache
// GET or SET against Redis, so a slow cache can never stall a request
// that could be answered from the in-memory dictionary. fn receives a
// context that expires after limit. A zero or negative limit runs fn
// unbounded.
//
// WithTimeout returns as soon as the limit passes even if fn has not;
// fn must honour its context so the goroutine eventually exits.
func WithTimeout(ctx context.Context, limit time.Duration, op string, fn func(ctx context.Context) error) error {
	if limit <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, limit)
	defer cancel()

	result := make(chan error, 1)
	go func() { result <- fn(callCtx) }()

	select {
	case err := <-result:
		return err
	case <-callCtx.Done():
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: request cancelled: %w", op, err)
		}
		return &TimeoutError{Op: op, Limit: limit}
	}
}
