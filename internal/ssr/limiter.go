package ssr

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"
)

var (
	ErrLimiterClosed  = errors.New("render limiter is closed")
	ErrLimiterTimeout = errors.New("render slot acquisition timeout")
)

const defaultLimiterWait = 5 * time.Second

// Limiter bounds the number of renders running at once. Renders are
// CPU-bound, so admitting more than the machine can run only adds latency.
type Limiter struct {
	slots chan struct{}
	size  int
	wait  time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewLimiter creates a limiter with size slots. Zero values select
// runtime.NumCPU() slots and a five second wait.
func NewLimiter(size int, wait time.Duration) *Limiter {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	if wait <= 0 {
		wait = defaultLimiterWait
	}

	l := &Limiter{
		slots: make(chan struct{}, size),
		size:  size,
		wait:  wait,
		done:  make(chan struct{}),
	}
	for i := 0; i < size; i++ {
		l.slots <- struct{}{}
	}
	return l
}

// Acquire takes a slot, waiting at most the configured wait time.
func (l *Limiter) Acquire(ctx context.Context) error {
	l.mu.RLock()
	closed := l.closed
	l.mu.RUnlock()
	if closed {
		return ErrLimiterClosed
	}

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case <-l.slots:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrLimiterClosed
	case <-timer.C:
		return ErrLimiterTimeout
	}
}

// Release returns a slot taken by Acquire.
func (l *Limiter) Release() {
	select {
	case l.slots <- struct{}{}:
	default:
	}
}

// Close rejects further acquisitions and wakes up waiters.
func (l *Limiter) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	l.closed = true
	close(l.done)
	return nil
}

// Stats returns limiter statistics
func (l *Limiter) Stats() map[string]interface{} {
	l.mu.RLock()
	defer l.mu.RUnlock()

	available := len(l.slots)
	return map[string]interface{}{
		"size":      l.size,
		"available": available,
		"in_use":    l.size - available,
		"closed":    l.closed,
	}
}

// Size returns the number of slots.
func (l *Limiter) Size() int {
	return l.size
}

// InUse returns the number of slots currently taken.
func (l *Limiter) InUse() int {
	return l.size - len(l.slots)
}
