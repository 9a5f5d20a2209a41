package allocator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleLocks_Exclusive(t *testing.T) {
	l := NewScheduleLocks(10 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, 1)
	require.NoError(t, err)

	// Second acquisition on the same schedule times out.
	_, err = l.Acquire(ctx, 1)
	assert.ErrorIs(t, err, ErrScheduleBusy)

	release()

	// After release the lock is free again.
	release2, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	release2()
}

func TestScheduleLocks_DistinctSchedulesIndependent(t *testing.T) {
	l := NewScheduleLocks(10 * time.Millisecond)
	ctx := context.Background()

	release1, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	defer release1()

	// Holding schedule 1 must not delay schedule 2.
	start := time.Now()
	release2, err := l.Acquire(ctx, 2)
	require.NoError(t, err)
	release2()
	assert.Less(t, time.Since(start), 10*time.Millisecond)
}

func TestScheduleLocks_ContextCanceled(t *testing.T) {
	l := NewScheduleLocks(time.Second)

	release, err := l.Acquire(context.Background(), 1)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScheduleLocks_RegistryCleanup(t *testing.T) {
	l := NewScheduleLocks(50 * time.Millisecond)
	ctx := context.Background()

	release1, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	release2, err := l.Acquire(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, l.Len())

	release1()
	release2()
	assert.Equal(t, 0, l.Len())

	// A failed acquisition must not leak an entry either.
	release3, err := l.Acquire(ctx, 3)
	require.NoError(t, err)
	_, err = l.Acquire(ctx, 3)
	assert.ErrorIs(t, err, ErrScheduleBusy)
	release3()
	assert.Equal(t, 0, l.Len())
}

func TestScheduleLocks_ReleaseIdempotent(t *testing.T) {
	l := NewScheduleLocks(10 * time.Millisecond)
	ctx := context.Background()

	release, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	release()
	release() // second call must not free someone else's slot

	releaseB, err := l.Acquire(ctx, 1)
	require.NoError(t, err)
	defer releaseB()

	_, err = l.Acquire(ctx, 1)
	assert.ErrorIs(t, err, ErrScheduleBusy)
}

func TestScheduleLocks_SerializesWaiters(t *testing.T) {
	l := NewScheduleLocks(2 * time.Second)
	ctx := context.Background()

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(ctx, 1)
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "two holders inside the same schedule's critical section")
	assert.Equal(t, 0, l.Len())
}
