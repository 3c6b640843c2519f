package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_BurstWithinCapacity(t *testing.T) {
	l := New(10, WithCapacity(2))

	// Both burst tokens are available immediately.
	start := time.Now()
	require.NoError(t, l.Acquire(context.Background(), 1))
	require.NoError(t, l.Acquire(context.Background(), 1))
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestLimiter_AcquireBlocksForRefill(t *testing.T) {
	l := New(10, WithCapacity(2))

	require.NoError(t, l.Acquire(context.Background(), 2))

	// Bucket is empty; one token at 10/s takes ~100ms.
	start := time.Now()
	require.NoError(t, l.Acquire(context.Background(), 1))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestLimiter_TryAcquire(t *testing.T) {
	l := New(10, WithCapacity(2))

	assert.True(t, l.TryAcquire(2))

	// Empty bucket: TryAcquire returns immediately without blocking.
	start := time.Now()
	assert.False(t, l.TryAcquire(1))
	assert.Less(t, time.Since(start), 20*time.Millisecond)

	// After enough refill time a token is available again.
	time.Sleep(150 * time.Millisecond)
	assert.True(t, l.TryAcquire(1))
}

func TestLimiter_CapacityDefaultsToRate(t *testing.T) {
	l := New(5)

	// Five burst tokens, no more.
	for i := 0; i < 5; i++ {
		assert.True(t, l.TryAcquire(1), "token %d should be available", i)
	}
	assert.False(t, l.TryAcquire(1))
}

func TestLimiter_TokensNeverExceedCapacity(t *testing.T) {
	l := New(1000, WithCapacity(3))

	// Even after a long idle period only capacity tokens accrue.
	time.Sleep(50 * time.Millisecond)
	assert.True(t, l.TryAcquire(3))
	assert.False(t, l.TryAcquire(1))
}

func TestLimiter_AcquireContextCancel(t *testing.T) {
	l := New(0.5, WithCapacity(1))
	require.NoError(t, l.Acquire(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := l.Acquire(ctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLimiter_ConcurrentAcquire(t *testing.T) {
	l := New(100, WithCapacity(10))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Acquire(context.Background(), 1)
		}()
	}
	wg.Wait()

	// 10 burst tokens plus ~10 refilled at 100/s: 20 acquires finish in
	// well under a second and the bucket never goes negative.
	assert.False(t, l.TryAcquire(10))
}
