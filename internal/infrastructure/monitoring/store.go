package monitoring

import (
	"context"
	"time"

	"github.com/GriffinCanCode/zvenigorodok/internal/domain/review"
)

// Timer measures one review store call
type Timer struct {
	start     time.Time
	operation string
	metrics   *Metrics
}

// NewTimer starts timing operation
func NewTimer(metrics *Metrics, operation string) *Timer {
	return &Timer{
		start:     time.Now(),
		operation: operation,
		metrics:   metrics,
	}
}

// Stop records the call duration with the outcome of err
func (t *Timer) Stop(err error) {
	t.metrics.ObserveStore(t.operation, time.Since(t.start), err)
}

// InstrumentStore wraps store so that every call is timed.
func InstrumentStore(store review.Store, metrics *Metrics) review.Store {
	return &instrumentedStore{store: store, metrics: metrics}
}

type instrumentedStore struct {
	store   review.Store
	metrics *Metrics
}

func (s *instrumentedStore) Insert(ctx context.Context, r review.Review) error {
	timer := NewTimer(s.metrics, "insert")
	err := s.store.Insert(ctx, r)
	timer.Stop(err)
	return err
}

func (s *instrumentedStore) List(ctx context.Context, filter review.Filter) ([]review.Review, error) {
	timer := NewTimer(s.metrics, "list")
	reviews, err := s.store.List(ctx, filter)
	timer.Stop(err)
	return reviews, err
}

func (s *instrumentedStore) Close() {
	s.store.Close()
}
