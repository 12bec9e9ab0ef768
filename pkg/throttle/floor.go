package throttle

import (
	"context"
	"time"
)

// RunWithFloor executes fn and does not return before at least min has
// elapsed since the call started, on every path, success or failure. This
// normalizes the externally observable latency of credential operations so
// a caller cannot distinguish failure kinds (or early exits) by timing.
//
// The result and error of fn pass through unchanged. If the context is
// cancelled while padding out the remainder, the context error is returned
// instead; fn itself has already completed at that point.
func RunWithFloor[T any](ctx context.Context, min time.Duration, fn func(context.Context) (T, error)) (T, error) {
	start := time.Now()
	result, err := fn(ctx)

	if remaining := min - time.Since(start); remaining > 0 {
		timer := time.NewTimer(remaining)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}

	return result, err
}
