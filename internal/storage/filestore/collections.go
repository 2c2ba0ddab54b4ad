package filestore

import (
	"context"
	"fmt"
	"sync"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage"
	"agent-launchpad/internal/storage/memory"
)

// TokenStore implements storage.TokenStore backed by tokens.json.
type TokenStore struct {
	// mu orders mutations with their file writes.
	mu   sync.Mutex
	mem  *memory.TokenStore
	file *jsonFile
}

var _ storage.TokenStore = (*TokenStore)(nil)

// Get retrieves a token by mint. Returns ErrNotFound if not exists.
func (s *TokenStore) Get(ctx context.Context, mint string) (*domain.Token, error) {
	return s.mem.Get(ctx, mint)
}

// List returns all tokens ordered by created_at ASC, then mint.
func (s *TokenStore) List(ctx context.Context) ([]*domain.Token, error) {
	return s.mem.List(ctx)
}

// Upsert stores the token and rewrites tokens.json.
func (s *TokenStore) Upsert(ctx context.Context, t *domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Upsert(ctx, t); err != nil {
		return err
	}
	return s.save(ctx)
}

// Delete removes the token and rewrites tokens.json.
func (s *TokenStore) Delete(ctx context.Context, mint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Delete(ctx, mint); err != nil {
		return err
	}
	return s.save(ctx)
}

// save must be called with s.mu held.
func (s *TokenStore) save(ctx context.Context) error {
	all, err := s.mem.List(ctx)
	if err != nil {
		return err
	}
	if err := s.file.write(all); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// PendingPostStore implements storage.PendingPostStore backed by pending-posts.json.
type PendingPostStore struct {
	// mu orders mutations with their file writes.
	mu   sync.Mutex
	mem  *memory.PendingPostStore
	file *jsonFile
}

var _ storage.PendingPostStore = (*PendingPostStore)(nil)

// Get retrieves an entry by post id. Returns ErrNotFound if not exists.
func (s *PendingPostStore) Get(ctx context.Context, postID string) (*domain.PendingPost, error) {
	return s.mem.Get(ctx, postID)
}

// List returns all entries ordered by created_at ASC, then post id.
func (s *PendingPostStore) List(ctx context.Context) ([]*domain.PendingPost, error) {
	return s.mem.List(ctx)
}

// Upsert stores the entry and rewrites pending-posts.json.
func (s *PendingPostStore) Upsert(ctx context.Context, p *domain.PendingPost) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Upsert(ctx, p); err != nil {
		return err
	}
	return s.save(ctx)
}

// Delete removes the entry and rewrites pending-posts.json.
func (s *PendingPostStore) Delete(ctx context.Context, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.mem.Delete(ctx, postID); err != nil {
		return err
	}
	return s.save(ctx)
}

// save must be called with s.mu held.
func (s *PendingPostStore) save(ctx context.Context) error {
	all, err := s.mem.List(ctx)
	if err != nil {
		return err
	}
	if err := s.file.write(all); err != nil {
		return fmt.Errorf("save pending posts: %w", err)
	}
	return nil
}
