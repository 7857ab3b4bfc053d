package review

import (
	"context"
	"sync"
)

// Store persists reviews.
type Store interface {
	Insert(ctx context.Context, r Review) error
	List(ctx context.Context, filter Filter) ([]Review, error)
	Close()
}

// MemoryStore keeps reviews in process memory. It backs the server when no
// database is configured and is used by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	reviews []Review
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends a review
func (s *MemoryStore) Insert(ctx context.Context, r Review) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, r)
	return nil
}

// List returns matching reviews in insertion order
func (s *MemoryStore) List(ctx context.Context, filter Filter) ([]Review, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Review, 0, len(s.reviews))
	for _, r := range s.reviews {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out, nil
}

// Close is a no-op
func (s *MemoryStore) Close() {}
