package memory

import (
	"context"
	"sort"
	"sync"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage"
)

// TokenStore is an in-memory implementation of storage.TokenStore.
type TokenStore struct {
	mu     sync.RWMutex
	tokens map[string]*domain.Token // keyed by mint
}

// NewTokenStore creates a new in-memory token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{
		tokens: make(map[string]*domain.Token),
	}
}

// Get retrieves a token by mint. Returns ErrNotFound if not exists.
func (s *TokenStore) Get(_ context.Context, mint string) (*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, exists := s.tokens[mint]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return t.Clone(), nil
}

// Upsert inserts or replaces the token with the same mint.
func (s *TokenStore) Upsert(_ context.Context, t *domain.Token) error {
	if t == nil || t.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.tokens[t.Mint] = t.Clone()
	return nil
}

// Delete removes a token.
func (s *TokenStore) Delete(_ context.Context, mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.tokens, mint)
	return nil
}

// List returns all tokens ordered by created_at ASC, then mint.
func (s *TokenStore) List(_ context.Context) ([]*domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Token, 0, len(s.tokens))
	for _, t := range s.tokens {
		result = append(result, t.Clone())
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].Mint < result[j].Mint
	})
	return result, nil
}

// Replace swaps the whole collection. Used when loading a snapshot.
func (s *TokenStore) Replace(tokens []*domain.Token) {
	next := make(map[string]*domain.Token, len(tokens))
	for _, t := range tokens {
		if t == nil || t.Mint == "" {
			continue
		}
		next[t.Mint] = t.Clone()
	}

	s.mu.Lock()
	s.tokens = next
	s.mu.Unlock()
}

var _ storage.TokenStore = (*TokenStore)(nil)
