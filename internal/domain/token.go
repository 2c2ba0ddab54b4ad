package domain

import (
	"fmt"
	"time"
)

// TotalBasisPoints is 100% expressed in basis points.
const TotalBasisPoints = 10_000

// TokenStatus is the lifecycle state of a launched token.
type TokenStatus string

const (
	// TokenStatusPending: validated and committed, mint tx not yet confirmed.
	TokenStatusPending TokenStatus = "pending"
	// TokenStatusMinted: a confirmation signature has been recorded.
	TokenStatusMinted TokenStatus = "minted"
)

// String returns the string representation of TokenStatus.
func (s TokenStatus) String() string {
	return string(s)
}

// IsValid checks if the status is a known value.
func (s TokenStatus) IsValid() bool {
	return s == TokenStatusPending || s == TokenStatusMinted
}

// FeeShare is one recipient of a fee split.
type FeeShare struct {
	Wallet      string `json:"wallet"`
	BasisPoints int    `json:"bps"`
}

// Proofs holds ledger signatures proving each lifecycle step.
type Proofs struct {
	MintTx         string `json:"mint_tx,omitempty"`
	RouterInitTx   string `json:"router_init_tx,omitempty"`
	LastClaim      string `json:"last_claim,omitempty"`
	LastDistribute string `json:"last_distribute,omitempty"`
}

// Token is one minted (or pending-mint) asset.
// Corresponds to tokens.json / tokens table.
type Token struct {
	Mint        string `json:"mint"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Website     string `json:"website,omitempty"`
	Twitter     string `json:"twitter,omitempty"`
	Telegram    string `json:"telegram,omitempty"`

	CreatorWallet string `json:"creator_wallet"`
	Agent         string `json:"agent,omitempty"`
	SocialPostID  string `json:"moltbook_post_id,omitempty"`
	SocialPostURL string `json:"moltbook_url,omitempty"`
	TradeURL      string `json:"trade_url,omitempty"`
	RouterPDA     string `json:"router_pda,omitempty"`

	FeeSplit          []FeeShare  `json:"fee_split"`
	Status            TokenStatus `json:"status"`
	Proofs            Proofs      `json:"proofs"`
	ClaimableLamports uint64      `json:"claimable"`

	CreatedAt  time.Time `json:"created_at"`
	LaunchedAt time.Time `json:"launched_at,omitzero"`

	// Market snapshot, filled by an external price feed if one is attached.
	MarketCapUSD   float64 `json:"market_cap,omitempty"`
	PriceUSD       float64 `json:"price_usd,omitempty"`
	PriceChange24h float64 `json:"price_change_24h,omitempty"`
	Volume24hUSD   float64 `json:"volume_24h,omitempty"`
}

// IsMinted reports whether the token has a recorded mint confirmation.
func (t *Token) IsMinted() bool {
	return t.Status == TokenStatusMinted || t.Proofs.MintTx != ""
}

// ActivityTime is the launch time used for cooldown checks.
func (t *Token) ActivityTime() time.Time {
	if !t.LaunchedAt.IsZero() {
		return t.LaunchedAt
	}
	return t.CreatedAt
}

// Clone returns a deep copy of the token.
func (t *Token) Clone() *Token {
	c := *t
	c.FeeSplit = append([]FeeShare(nil), t.FeeSplit...)
	return &c
}

// ValidateFeeSplit checks the fee split invariant: non-empty, every share at
// least 1 bps, shares summing to exactly TotalBasisPoints.
func ValidateFeeSplit(split []FeeShare) error {
	if len(split) == 0 {
		return fmt.Errorf("fee split must not be empty")
	}
	sum := 0
	for i, s := range split {
		if s.Wallet == "" {
			return fmt.Errorf("fee split row %d: wallet is required", i)
		}
		if s.BasisPoints < 1 {
			return fmt.Errorf("fee split row %d: bps must be >= 1, got %d", i, s.BasisPoints)
		}
		sum += s.BasisPoints
	}
	if sum != TotalBasisPoints {
		return fmt.Errorf("fee split bps must sum to %d, got %d", TotalBasisPoints, sum)
	}
	return nil
}

// NewFeeSplit validates and copies a fee split.
func NewFeeSplit(shares ...FeeShare) ([]FeeShare, error) {
	if err := ValidateFeeSplit(shares); err != nil {
		return nil, err
	}
	return append([]FeeShare(nil), shares...), nil
}
