package storage

import (
	"context"

	"agent-launchpad/internal/domain"
)

// TokenStore provides access to the token registry, keyed by mint.
// Every mutation is durable once the call returns.
type TokenStore interface {
	// Get retrieves a token by mint. Returns ErrNotFound if not exists.
	Get(ctx context.Context, mint string) (*domain.Token, error)

	// Upsert inserts or replaces the token with the same mint.
	Upsert(ctx context.Context, t *domain.Token) error

	// Delete removes a token. Deleting a missing mint is not an error.
	Delete(ctx context.Context, mint string) error

	// List returns all tokens ordered by created_at ASC, then mint.
	List(ctx context.Context) ([]*domain.Token, error)
}

// PendingPostStore provides access to the pending post cache, keyed by post id.
type PendingPostStore interface {
	// Get retrieves an entry by post id. Returns ErrNotFound if not exists.
	// Expiry is the caller's concern.
	Get(ctx context.Context, postID string) (*domain.PendingPost, error)

	// Upsert inserts or replaces the entry with the same post id.
	Upsert(ctx context.Context, p *domain.PendingPost) error

	// Delete removes an entry. Deleting a missing id is not an error.
	Delete(ctx context.Context, postID string) error

	// List returns all entries ordered by created_at ASC, then post id.
	List(ctx context.Context) ([]*domain.PendingPost, error)
}

// FeeEventStore provides access to the append-only fee proof history.
type FeeEventStore interface {
	// Insert appends an event. Returns ErrDuplicateKey if event_id exists.
	Insert(ctx context.Context, e *domain.FeeEvent) error

	// GetByMint returns all events for a mint, newest first.
	GetByMint(ctx context.Context, mint string) ([]*domain.FeeEvent, error)
}
