package llm

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Run("burst then refill", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		rl := newRateLimiter(6) // one token every 10s
		rl.now = func() time.Time { return now }
		rl.lastRefill = now

		for i := 0; i < 6; i++ {
			assert.True(t, rl.tryAcquire(), "attempt %d", i+1)
		}
		assert.False(t, rl.tryAcquire())

		now = now.Add(5 * time.Second)
		assert.False(t, rl.tryAcquire())

		now = now.Add(5 * time.Second)
		assert.True(t, rl.tryAcquire())
	})

	t.Run("reports wait time", func(t *testing.T) {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		rl := newRateLimiter(60)
		rl.now = func() time.Time { return now }
		rl.lastRefill = now
		rl.tokens = 0

		delay := rl.reserve()
		assert.InDelta(t, float64(time.Second), float64(delay), float64(10*time.Millisecond))
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- rl.wait(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limiter canceled")
	})

	t.Run("concurrent acquire never exceeds capacity", func(t *testing.T) {
		rl := newRateLimiter(20)
		rl.now = func() time.Time { return rl.lastRefill }

		var wg sync.WaitGroup
		var mu sync.Mutex
		acquired := 0
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if rl.tryAcquire() {
					mu.Lock()
					acquired++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, 20, acquired)
	})
}
