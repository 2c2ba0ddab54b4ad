package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage"
)

// PendingPostStore implements storage.PendingPostStore using PostgreSQL.
type PendingPostStore struct {
	pool *Pool
}

// NewPendingPostStore creates a new PendingPostStore.
func NewPendingPostStore(pool *Pool) *PendingPostStore {
	return &PendingPostStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PendingPostStore = (*PendingPostStore)(nil)

// Upsert inserts or replaces the entry with the same post id.
func (s *PendingPostStore) Upsert(ctx context.Context, p *domain.PendingPost) error {
	if p == nil || p.PostID == "" {
		return storage.ErrInvalidInput
	}

	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	query := `
		INSERT INTO pending_posts (post_id, post_url, agent_name, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (post_id) DO UPDATE SET
			post_url = EXCLUDED.post_url,
			agent_name = EXCLUDED.agent_name,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at
	`

	if _, err := s.pool.Exec(ctx, query, p.PostID, p.PostURL, p.AgentName, payload, p.CreatedAt); err != nil {
		return fmt.Errorf("upsert pending post: %w", err)
	}
	return nil
}

// Get retrieves an entry by post id. Returns ErrNotFound if not exists.
func (s *PendingPostStore) Get(ctx context.Context, postID string) (*domain.PendingPost, error) {
	query := `
		SELECT post_id, post_url, agent_name, payload, created_at
		FROM pending_posts
		WHERE post_id = $1
	`

	p, err := scanPendingPost(s.pool.QueryRow(ctx, query, postID))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pending post: %w", err)
	}
	return p, nil
}

// Delete removes an entry.
func (s *PendingPostStore) Delete(ctx context.Context, postID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM pending_posts WHERE post_id = $1`, postID); err != nil {
		return fmt.Errorf("delete pending post: %w", err)
	}
	return nil
}

// List returns all entries ordered by created_at ASC, then post id.
func (s *PendingPostStore) List(ctx context.Context) ([]*domain.PendingPost, error) {
	query := `
		SELECT post_id, post_url, agent_name, payload, created_at
		FROM pending_posts
		ORDER BY created_at ASC, post_id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending posts: %w", err)
	}
	defer rows.Close()

	var result []*domain.PendingPost
	for rows.Next() {
		p, err := scanPendingPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending post: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending posts: %w", err)
	}
	return result, nil
}

// scanPendingPost scans a single row into PendingPost.
func scanPendingPost(row pgx.Row) (*domain.PendingPost, error) {
	var (
		p       domain.PendingPost
		payload []byte
	)
	if err := row.Scan(&p.PostID, &p.PostURL, &p.AgentName, &payload, &p.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(payload, &p.Payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return &p, nil
}
