package token

import (
	"context"
	"sync"
	"time"
)

// RotationStore records refresh-token jtis that have been used. MarkRotated
// must be an atomic check-and-mark: for a given jti it returns true exactly
// once, so two concurrent refresh calls presenting the same token can never
// both succeed. Entries only need to live until the token's natural expiry.
type RotationStore interface {
	MarkRotated(ctx context.Context, jti string, exp time.Time) (bool, error)
}

// InMemoryRotationStore is a mutex-guarded RotationStore for single-process
// deployments and tests.
type InMemoryRotationStore struct {
	rotated map[string]time.Time
	mu      sync.Mutex
}

func NewInMemoryRotationStore() *InMemoryRotationStore {
	return &InMemoryRotationStore{
		rotated: make(map[string]time.Time),
	}
}

func (s *InMemoryRotationStore) MarkRotated(_ context.Context, jti string, exp time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rotated[jti]; exists {
		return false, nil
	}
	s.rotated[jti] = exp
	return true, nil
}

// Cleanup removes entries whose tokens have passed their natural expiry.
func (s *InMemoryRotationStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for jti, exp := range s.rotated {
		if now.After(exp) {
			delete(s.rotated, jti)
		}
	}
}
