package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/storage"
)

// TokenStore implements storage.TokenStore using PostgreSQL.
type TokenStore struct {
	pool *Pool
}

// NewTokenStore creates a new TokenStore.
func NewTokenStore(pool *Pool) *TokenStore {
	return &TokenStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenStore = (*TokenStore)(nil)

const tokenColumns = `
	mint, name, symbol, description, image, website, twitter, telegram,
	creator_wallet, agent, post_id, post_url, trade_url, router_pda,
	fee_split, status, proofs, claimable_lamports, created_at, launched_at,
	market_cap_usd, price_usd, price_change_24h, volume_24h_usd
`

// Upsert inserts or replaces the token with the same mint.
func (s *TokenStore) Upsert(ctx context.Context, t *domain.Token) error {
	if t == nil || t.Mint == "" {
		return storage.ErrInvalidInput
	}

	feeSplit, err := json.Marshal(t.FeeSplit)
	if err != nil {
		return fmt.Errorf("encode fee split: %w", err)
	}
	proofs, err := json.Marshal(t.Proofs)
	if err != nil {
		return fmt.Errorf("encode proofs: %w", err)
	}

	query := `
		INSERT INTO tokens (` + tokenColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (mint) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			description = EXCLUDED.description,
			image = EXCLUDED.image,
			website = EXCLUDED.website,
			twitter = EXCLUDED.twitter,
			telegram = EXCLUDED.telegram,
			creator_wallet = EXCLUDED.creator_wallet,
			agent = EXCLUDED.agent,
			post_id = EXCLUDED.post_id,
			post_url = EXCLUDED.post_url,
			trade_url = EXCLUDED.trade_url,
			router_pda = EXCLUDED.router_pda,
			fee_split = EXCLUDED.fee_split,
			status = EXCLUDED.status,
			proofs = EXCLUDED.proofs,
			claimable_lamports = EXCLUDED.claimable_lamports,
			created_at = EXCLUDED.created_at,
			launched_at = EXCLUDED.launched_at,
			market_cap_usd = EXCLUDED.market_cap_usd,
			price_usd = EXCLUDED.price_usd,
			price_change_24h = EXCLUDED.price_change_24h,
			volume_24h_usd = EXCLUDED.volume_24h_usd
	`

	var launchedAt *time.Time
	if !t.LaunchedAt.IsZero() {
		launchedAt = &t.LaunchedAt
	}
	status := t.Status
	if status == "" {
		status = domain.TokenStatusPending
	}

	_, err = s.pool.Exec(ctx, query,
		t.Mint, t.Name, t.Symbol, t.Description, t.Image,
		t.Website, t.Twitter, t.Telegram,
		t.CreatorWallet, t.Agent, t.SocialPostID, t.SocialPostURL,
		t.TradeURL, t.RouterPDA,
		feeSplit, string(status), proofs, int64(t.ClaimableLamports),
		t.CreatedAt, launchedAt,
		t.MarketCapUSD, t.PriceUSD, t.PriceChange24h, t.Volume24hUSD,
	)
	if err != nil {
		return fmt.Errorf("upsert token: %w", err)
	}
	return nil
}

// Get retrieves a token by mint. Returns ErrNotFound if not exists.
func (s *TokenStore) Get(ctx context.Context, mint string) (*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens WHERE mint = $1`

	t, err := scanToken(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get token: %w", err)
	}
	return t, nil
}

// Delete removes a token.
func (s *TokenStore) Delete(ctx context.Context, mint string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM tokens WHERE mint = $1`, mint); err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return nil
}

// List returns all tokens ordered by created_at ASC, then mint.
func (s *TokenStore) List(ctx context.Context) ([]*domain.Token, error) {
	query := `SELECT ` + tokenColumns + ` FROM tokens ORDER BY created_at ASC, mint ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list tokens: %w", err)
	}
	defer rows.Close()

	var result []*domain.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scan token: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tokens: %w", err)
	}
	return result, nil
}

// scanToken scans a single row into Token.
func scanToken(row pgx.Row) (*domain.Token, error) {
	var (
		t          domain.Token
		status     string
		feeSplit   []byte
		proofs     []byte
		claimable  int64
		launchedAt *time.Time
	)

	err := row.Scan(
		&t.Mint, &t.Name, &t.Symbol, &t.Description, &t.Image,
		&t.Website, &t.Twitter, &t.Telegram,
		&t.CreatorWallet, &t.Agent, &t.SocialPostID, &t.SocialPostURL,
		&t.TradeURL, &t.RouterPDA,
		&feeSplit, &status, &proofs, &claimable,
		&t.CreatedAt, &launchedAt,
		&t.MarketCapUSD, &t.PriceUSD, &t.PriceChange24h, &t.Volume24hUSD,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(feeSplit, &t.FeeSplit); err != nil {
		return nil, fmt.Errorf("decode fee split: %w", err)
	}
	if err := json.Unmarshal(proofs, &t.Proofs); err != nil {
		return nil, fmt.Errorf("decode proofs: %w", err)
	}
	t.Status = domain.TokenStatus(status)
	t.ClaimableLamports = uint64(claimable)
	if launchedAt != nil {
		t.LaunchedAt = *launchedAt
	}
	return &t, nil
}
