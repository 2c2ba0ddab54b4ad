package domain

import "time"

// FeeEventKind distinguishes claim and distribution proofs.
type FeeEventKind string

const (
	FeeEventClaim      FeeEventKind = "claim"
	FeeEventDistribute FeeEventKind = "distribute"
)

// RecipientAmount is one transfer of a distribution.
type RecipientAmount struct {
	Wallet   string `json:"wallet"`
	Lamports uint64 `json:"lamports"`
}

// FeeEvent is an append-only proof of a confirmed claim or distribution.
type FeeEvent struct {
	EventID        string            `json:"event_id"`
	Mint           string            `json:"mint"`
	Kind           FeeEventKind      `json:"kind"`
	Signature      string            `json:"signature"`
	AmountLamports uint64            `json:"amount_lamports"`
	Recipients     []RecipientAmount `json:"recipients,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
}
