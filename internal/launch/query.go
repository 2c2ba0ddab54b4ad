package launch

import (
	"context"
	"encoding/base64"
	"errors"
	"sort"
	"strings"
	"time"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/observability"
	"agent-launchpad/internal/storage"
)

// TopTokenCount is the size of the market cap leaderboard in Stats.
const TopTokenCount = 5

// TokenSummary is the public view of a token used in stats.
type TokenSummary struct {
	Mint           string    `json:"mint"`
	Name           string    `json:"name"`
	Symbol         string    `json:"symbol"`
	Agent          string    `json:"agent"`
	LaunchedAt     time.Time `json:"launchedAt"`
	MarketCap      float64   `json:"marketCap"`
	PriceUSD       float64   `json:"priceUsd"`
	PriceChange24h float64   `json:"priceChange24h"`
	Volume24h      float64   `json:"volume24h"`
	MoltbookURL    string    `json:"moltbookUrl,omitempty"`
	TradeURL       string    `json:"tradeUrl,omitempty"`
}

// Stats aggregates the registry.
type Stats struct {
	TotalMarketCap float64        `json:"totalMarketCap"`
	TotalVolume24h float64        `json:"totalVolume24h"`
	TokenCount     int            `json:"tokenCount"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	TopTokens      []TokenSummary `json:"topTokens"`
	AllTokens      []TokenSummary `json:"allTokens"`
}

// GetToken returns the token for mint.
func (s *Service) GetToken(ctx context.Context, mint string) (*domain.Token, error) {
	t, err := s.tokens.Get(ctx, mint)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Unknown mint")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load token")
	}
	return t, nil
}

// ListTokens returns every token in registry order.
func (s *Service) ListTokens(ctx context.Context) ([]*domain.Token, error) {
	tokens, err := s.tokens.List(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load tokens")
	}
	observability.SetTokensTracked(len(tokens))
	return tokens, nil
}

// Stats summarizes market data across all tokens.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	tokens, err := s.ListTokens(ctx)
	if err != nil {
		return nil, err
	}

	st := &Stats{
		TokenCount: len(tokens),
		UpdatedAt:  s.now().UTC(),
		AllTokens:  make([]TokenSummary, 0, len(tokens)),
	}
	for _, t := range tokens {
		sum := summarize(t)
		st.TotalMarketCap += sum.MarketCap
		st.TotalVolume24h += sum.Volume24h
		st.AllTokens = append(st.AllTokens, sum)
	}

	top := append([]TokenSummary(nil), st.AllTokens...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].MarketCap > top[j].MarketCap })
	if len(top) > TopTokenCount {
		top = top[:TopTokenCount]
	}
	st.TopTokens = top
	return st, nil
}

func summarize(t *domain.Token) TokenSummary {
	agent := t.Agent
	if agent == "" {
		agent = "agent"
	}
	tradeURL := t.TradeURL
	if tradeURL == "" {
		tradeURL = TradeURL(t.Mint)
	}
	return TokenSummary{
		Mint:           t.Mint,
		Name:           t.Name,
		Symbol:         t.Symbol,
		Agent:          agent,
		LaunchedAt:     t.ActivityTime(),
		MarketCap:      t.MarketCapUSD,
		PriceUSD:       t.PriceUSD,
		PriceChange24h: t.PriceChange24h,
		Volume24h:      t.Volume24hUSD,
		MoltbookURL:    t.SocialPostURL,
		TradeURL:       tradeURL,
	}
}

// SubmitSignedTransaction relays a base64 signed transaction to the ledger
// and waits for confirmation.
func (s *Service) SubmitSignedTransaction(ctx context.Context, signedTx string) (string, error) {
	signedTx = strings.TrimSpace(signedTx)
	if signedTx == "" {
		return "", apperr.Validation("signed_tx is required")
	}
	raw, err := base64.StdEncoding.DecodeString(signedTx)
	if err != nil {
		return "", apperr.Validation("signed_tx must be base64")
	}

	var sig string
	if err := upstream(serviceLedger, "send_transaction", func() (err error) {
		sig, err = s.ledger.SubmitAndConfirm(ctx, raw)
		return err
	}); err != nil {
		return "", err
	}
	s.log.Info("signed transaction confirmed", "signature", sig)
	return sig, nil
}
