package downloader_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/noveld/internal/downloader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettle(t *testing.T) {
	t.Parallel()

	t.Run("never exceeds the limit and settles everything", func(t *testing.T) {
		var inFlight, peak, settled atomic.Int32

		tasks := make([]downloader.Task[int], 20)
		for i := range tasks {
			tasks[i] = func(context.Context) (int, error) {
				n := inFlight.Add(1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)

				if i%4 == 0 {
					return 0, fmt.Errorf("task %d failed", i)
				}
				return i * 10, nil
			}
		}

		out := downloader.Settle(context.Background(), downloader.Pool{
			Limit:    5,
			OnSettle: func(int, error) { settled.Add(1) },
		}, tasks)

		require.Len(t, out, 20)
		assert.LessOrEqual(t, peak.Load(), int32(5))
		assert.Equal(t, int32(20), settled.Load())

		for i, o := range out {
			assert.Equal(t, i, o.Index)
			if i%4 == 0 {
				assert.Error(t, o.Err)
				continue
			}
			assert.NoError(t, o.Err)
			assert.Equal(t, i*10, o.Value)
		}
	})

	t.Run("a panicking task becomes a failed outcome", func(t *testing.T) {
		out := downloader.Settle(context.Background(), downloader.Pool{Limit: 2}, []downloader.Task[string]{
			func(context.Context) (string, error) { return "a", nil },
			func(context.Context) (string, error) { panic("selector exploded") },
			func(context.Context) (string, error) { return "c", nil },
		})

		assert.Equal(t, "a", out[0].Value)
		assert.ErrorContains(t, out[1].Err, "selector exploded")
		assert.Equal(t, "c", out[2].Value)
	})

	t.Run("cancelled context settles unstarted tasks", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var ran atomic.Int32

		tasks := make([]downloader.Task[int], 6)
		for i := range tasks {
			tasks[i] = func(context.Context) (int, error) {
				ran.Add(1)
				if i == 0 {
					cancel()
				}
				return i, nil
			}
		}

		out := downloader.Settle(ctx, downloader.Pool{Limit: 1}, tasks)

		require.Len(t, out, 6)
		assert.NoError(t, out[0].Err)
		assert.Equal(t, int32(1), ran.Load())
		for _, o := range out[1:] {
			assert.True(t, errors.Is(o.Err, context.Canceled))
		}
	})

	t.Run("empty task list", func(t *testing.T) {
		assert.Empty(t, downloader.Settle[int](context.Background(), downloader.Pool{Limit: 3}, nil))
	})
}
