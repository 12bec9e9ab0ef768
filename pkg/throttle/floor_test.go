package throttle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sealnote/sealnote/pkg/throttle"
)

func TestRunWithFloor(t *testing.T) {
	t.Parallel()

	floor := 50 * time.Millisecond

	t.Run("fast success padded to the floor", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		got, err := throttle.RunWithFloor(context.Background(), floor, func(context.Context) (string, error) {
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.GreaterOrEqual(t, time.Since(start), floor)
	})

	t.Run("fast failure padded to the floor", func(t *testing.T) {
		t.Parallel()
		sentinel := errors.New("nope")
		start := time.Now()
		_, err := throttle.RunWithFloor(context.Background(), floor, func(context.Context) (string, error) {
			return "", sentinel
		})
		assert.ErrorIs(t, err, sentinel)
		assert.GreaterOrEqual(t, time.Since(start), floor)
	})

	t.Run("near-equal latency across outcomes", func(t *testing.T) {
		t.Parallel()
		elapsed := func(fn func(context.Context) (int, error)) time.Duration {
			start := time.Now()
			_, _ = throttle.RunWithFloor(context.Background(), floor, fn)
			return time.Since(start)
		}

		success := elapsed(func(context.Context) (int, error) { return 1, nil })
		failure := elapsed(func(context.Context) (int, error) { return 0, errors.New("denied") })

		diff := success - failure
		if diff < 0 {
			diff = -diff
		}
		assert.Less(t, diff, 25*time.Millisecond)
	})

	t.Run("slow operation not delayed further", func(t *testing.T) {
		t.Parallel()
		start := time.Now()
		_, err := throttle.RunWithFloor(context.Background(), 10*time.Millisecond, func(context.Context) (int, error) {
			time.Sleep(30 * time.Millisecond)
			return 0, nil
		})
		require.NoError(t, err)
		assert.Less(t, time.Since(start), 60*time.Millisecond)
	})

	t.Run("cancellation during padding", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()

		_, err := throttle.RunWithFloor(ctx, time.Second, func(context.Context) (int, error) {
			return 42, nil
		})
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("zero floor is a passthrough", func(t *testing.T) {
		t.Parallel()
		got, err := throttle.RunWithFloor(context.Background(), 0, func(context.Context) (int, error) {
			return 7, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 7, got)
	})
}
