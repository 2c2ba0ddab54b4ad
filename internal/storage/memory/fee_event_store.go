package memory

import (
	"context"
	"sort"
	"sync"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage"
)

// FeeEventStore is an in-memory implementation of storage.FeeEventStore.
type FeeEventStore struct {
	mu     sync.RWMutex
	events []*domain.FeeEvent
	ids    map[string]struct{}
}

// NewFeeEventStore creates a new in-memory fee event store.
func NewFeeEventStore() *FeeEventStore {
	return &FeeEventStore{
		ids: make(map[string]struct{}),
	}
}

// Insert appends an event. Returns ErrDuplicateKey if event_id exists.
func (s *FeeEventStore) Insert(_ context.Context, e *domain.FeeEvent) error {
	if e == nil || e.EventID == "" || e.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.ids[e.EventID]; exists {
		return storage.ErrDuplicateKey
	}

	eventCopy := *e
	eventCopy.Recipients = append([]domain.RecipientAmount(nil), e.Recipients...)
	s.events = append(s.events, &eventCopy)
	s.ids[e.EventID] = struct{}{}
	return nil
}

// GetByMint returns all events for a mint, newest first.
func (s *FeeEventStore) GetByMint(_ context.Context, mint string) ([]*domain.FeeEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.FeeEvent
	for _, e := range s.events {
		if e.Mint == mint {
			eventCopy := *e
			eventCopy.Recipients = append([]domain.RecipientAmount(nil), e.Recipients...)
			result = append(result, &eventCopy)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

var _ storage.FeeEventStore = (*FeeEventStore)(nil)
