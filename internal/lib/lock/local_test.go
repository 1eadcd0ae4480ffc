package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalSerializesSameKey(t *testing.T) {
	t.Parallel()

	l := NewLocal()

	var (
		wg      sync.WaitGroup
		inside  int32
		maxSeen int32
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			unlock, err := l.Lock(context.Background(), "1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			n := atomic.AddInt32(&inside, 1)
			for {
				seen := atomic.LoadInt32(&maxSeen)
				if n <= seen || atomic.CompareAndSwapInt32(&maxSeen, seen, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), maxSeen)
	assert.Zero(t, l.Len(), "lock table should be empty once every holder released")
}

func TestLocalDifferentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	l := NewLocal()

	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	unlockB, err := l.Lock(ctx, "b")
	require.NoError(t, err)
	unlockB()
}

func TestLocalTimeout(t *testing.T) {
	t.Parallel()

	l := NewLocal()

	unlock, err := l.Lock(context.Background(), "1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Lock(ctx, "1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	assert.Zero(t, l.Len())
}

func TestLocalRefusesDoneContext(t *testing.T) {
	t.Parallel()

	l := NewLocal()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 50; i++ {
		unlock, err := l.Lock(ctx, "1")
		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, unlock)
	}

	assert.Zero(t, l.Len())
}

func TestLocalUnlockIsIdempotent(t *testing.T) {
	t.Parallel()

	l := NewLocal()

	unlock, err := l.Lock(context.Background(), "1")
	require.NoError(t, err)

	unlock()
	unlock()

	unlock, err = l.Lock(context.Background(), "1")
	require.NoError(t, err)
	unlock()
	assert.Zero(t, l.Len())
}

func TestNone(t *testing.T) {
	t.Parallel()

	unlock, err := None{}.Lock(context.Background(), "1")
	require.NoError(t, err)
	unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = None{}.Lock(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}
