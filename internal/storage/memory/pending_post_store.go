package memory

import (
	"context"
	"sort"
	"sync"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage"
)

// PendingPostStore is an in-memory implementation of storage.PendingPostStore.
type PendingPostStore struct {
	mu    sync.RWMutex
	posts map[string]*domain.PendingPost // keyed by post id
}

// NewPendingPostStore creates a new in-memory pending post store.
func NewPendingPostStore() *PendingPostStore {
	return &PendingPostStore{
		posts: make(map[string]*domain.PendingPost),
	}
}

// Get retrieves an entry by post id. Returns ErrNotFound if not exists.
func (s *PendingPostStore) Get(_ context.Context, postID string) (*domain.PendingPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, exists := s.posts[postID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	postCopy := *p
	return &postCopy, nil
}

// Upsert inserts or replaces the entry with the same post id.
func (s *PendingPostStore) Upsert(_ context.Context, p *domain.PendingPost) error {
	if p == nil || p.PostID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	postCopy := *p
	s.posts[p.PostID] = &postCopy
	return nil
}

// Delete removes an entry.
func (s *PendingPostStore) Delete(_ context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.posts, postID)
	return nil
}

// List returns all entries ordered by created_at ASC, then post id.
func (s *PendingPostStore) List(_ context.Context) ([]*domain.PendingPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PendingPost, 0, len(s.posts))
	for _, p := range s.posts {
		postCopy := *p
		result = append(result, &postCopy)
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].PostID < result[j].PostID
	})
	return result, nil
}

// Replace swaps the whole collection. Used when loading a snapshot.
func (s *PendingPostStore) Replace(posts []*domain.PendingPost) {
	next := make(map[string]*domain.PendingPost, len(posts))
	for _, p := range posts {
		if p == nil || p.PostID == "" {
			continue
		}
		postCopy := *p
		next[p.PostID] = &postCopy
	}

	s.mu.Lock()
	s.posts = next
	s.mu.Unlock()
}

var _ storage.PendingPostStore = (*PendingPostStore)(nil)
