package ssr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiterAcquireRelease(t *testing.T) {
	l := NewLimiter(2, 50*time.Millisecond)
	defer l.Close()

	ctx := context.Background()
	require.NoError(t, l.Acquire(ctx))
	require.NoError(t, l.Acquire(ctx))

	stats := l.Stats()
	assert.Equal(t, 2, stats["in_use"])
	assert.Equal(t, 0, stats["available"])

	assert.ErrorIs(t, l.Acquire(ctx), ErrLimiterTimeout)

	l.Release()
	assert.NoError(t, l.Acquire(ctx))
}

func TestLimiterContextCancelled(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Close()

	require.NoError(t, l.Acquire(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.Acquire(ctx), context.DeadlineExceeded)
}

func TestLimiterClose(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	require.NoError(t, l.Acquire(context.Background()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.Acquire(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrLimiterClosed)
	case <-time.After(time.Second):
		t.Fatal("waiter was not released by Close")
	}

	assert.ErrorIs(t, l.Acquire(context.Background()), ErrLimiterClosed)
	assert.Equal(t, true, l.Stats()["closed"])
}

func TestLimiterDefaults(t *testing.T) {
	l := NewLimiter(0, 0)
	defer l.Close()

	assert.Greater(t, l.Stats()["size"].(int), 0)
	assert.Equal(t, defaultLimiterWait, l.wait)
}
