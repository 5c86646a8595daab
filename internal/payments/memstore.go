package payments

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is a Store backed by a mutex-guarded map, keyed like the
// DynamoDB table by reference. Used for local runs without AWS and in tests.
type MemoryStore struct {
	mu          sync.RWMutex
	byReference map[string]Payment
	nowFunc     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byReference: make(map[string]Payment),
		nowFunc:     time.Now,
	}
}

// Create inserts the payment unless its reference already exists.
func (s *MemoryStore) Create(ctx context.Context, p Payment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byReference[p.ReferenceID]; exists {
		return false, nil
	}
	s.byReference[p.ReferenceID] = p
	return true, nil
}

// GetByReference returns the payment for the reference, or (nil, nil).
func (s *MemoryStore) GetByReference(ctx context.Context, referenceID string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byReference[referenceID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// GetByID returns the payment with the given id, or (nil, nil).
func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.byReference {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, nil
}

// UpdateStatus sets status and failure reason on an existing payment.
func (s *MemoryStore) UpdateStatus(ctx context.Context, referenceID, status, failureReason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byReference[referenceID]
	if !ok {
		return fmt.Errorf("payment not found: %s", referenceID)
	}
	p.Status = status
	p.FailureReason = failureReason
	p.UpdatedAt = s.nowFunc().UTC()
	s.byReference[referenceID] = p
	return nil
}
