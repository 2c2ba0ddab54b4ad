package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage"
)

// FeeEventStore implements storage.FeeEventStore using ClickHouse.
type FeeEventStore struct {
	conn *Conn
}

// NewFeeEventStore creates a new FeeEventStore.
func NewFeeEventStore(conn *Conn) *FeeEventStore {
	return &FeeEventStore{conn: conn}
}

// Compile-time interface check.
var _ storage.FeeEventStore = (*FeeEventStore)(nil)

// Insert appends an event. Returns ErrDuplicateKey if event_id exists.
// MergeTree doesn't enforce uniqueness, so the id is checked first.
func (s *FeeEventStore) Insert(ctx context.Context, e *domain.FeeEvent) error {
	if e == nil || e.EventID == "" || e.Mint == "" {
		return storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, e.Mint, e.EventID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	wallets := make([]string, len(e.Recipients))
	lamports := make([]uint64, len(e.Recipients))
	for i, r := range e.Recipients {
		wallets[i] = r.Wallet
		lamports[i] = r.Lamports
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO fee_events (
			event_id, mint, kind, signature, amount_lamports,
			recipient_wallets, recipient_lamports, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		e.EventID, e.Mint, string(e.Kind), e.Signature, e.AmountLamports,
		wallets, lamports, e.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByMint returns all events for a mint, newest first.
func (s *FeeEventStore) GetByMint(ctx context.Context, mint string) ([]*domain.FeeEvent, error) {
	query := `
		SELECT event_id, mint, kind, signature, amount_lamports,
		       recipient_wallets, recipient_lamports, created_at
		FROM fee_events FINAL
		WHERE mint = ?
		ORDER BY created_at DESC, event_id ASC
	`

	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	return scanFeeEvents(rows)
}

// exists checks if an event with the given id exists for mint.
func (s *FeeEventStore) exists(ctx context.Context, mint, eventID string) (bool, error) {
	query := `SELECT count(*) FROM fee_events WHERE mint = ? AND event_id = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, mint, eventID).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func scanFeeEvents(rows driver.Rows) ([]*domain.FeeEvent, error) {
	var result []*domain.FeeEvent

	for rows.Next() {
		var (
			e         domain.FeeEvent
			kind      string
			wallets   []string
			lamports  []uint64
			createdAt time.Time
		)
		err := rows.Scan(
			&e.EventID, &e.Mint, &kind, &e.Signature, &e.AmountLamports,
			&wallets, &lamports, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if len(wallets) != len(lamports) {
			return nil, fmt.Errorf("event %s: recipient arrays differ in length", e.EventID)
		}

		e.Kind = domain.FeeEventKind(kind)
		e.CreatedAt = createdAt.UTC()
		for i := range wallets {
			e.Recipients = append(e.Recipients, domain.RecipientAmount{Wallet: wallets[i], Lamports: lamports[i]})
		}
		result = append(result, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return result, nil
}
