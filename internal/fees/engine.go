// Package fees claims creator fees into the collector wallet and splits
// them between the recipients of each token's fee split.
package fees

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/domain"
	"agent-launchpad/internal/keylock"
	"agent-launchpad/internal/observability"
	"agent-launchpad/internal/pumpportal"
	"agent-launchpad/internal/solana"
	"agent-launchpad/internal/storage"
)

const (
	serviceCollect = "pumpportal"
	serviceLedger  = "solana"
)

// NothingToDistribute rejects a distribution of zero or fewer lamports.
const NothingToDistribute = "No claimable amount to distribute"

// Collector claims accrued creator fees to the collector wallet.
type Collector interface {
	CollectCreatorFee(ctx context.Context, mint string, priorityFeeSOL float64) (string, error)
}

// Ledger is the part of the chain client the engine needs.
type Ledger interface {
	CollectorAddress() string
	Confirm(ctx context.Context, signature string) error
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
	TransferBatch(ctx context.Context, transfers []solana.Transfer) (string, error)
}

var (
	_ Collector = (*pumpportal.Client)(nil)
	_ Ledger    = (*solana.Ledger)(nil)
)

// ClaimResult reports a confirmed claim.
type ClaimResult struct {
	Mint            string `json:"mint"`
	ClaimSignature  string `json:"claim_signature"`
	ClaimedLamports uint64 `json:"claimed_amount_lamports"`
}

// Payout is one recipient of a distribution. Lamports is a decimal string
// so that clients without 64-bit integers keep precision.
type Payout struct {
	Wallet   string `json:"wallet"`
	Lamports string `json:"lamports"`
}

// DistributeResult reports a confirmed distribution.
type DistributeResult struct {
	Mint         string   `json:"mint"`
	RouterPDA    string   `json:"router_pda,omitempty"`
	Signature    string   `json:"distribution_signature"`
	Distribution []Payout `json:"distribution"`
}

// Status is the fee state of one token.
type Status struct {
	Mint              string `json:"mint"`
	ClaimableLamports uint64 `json:"claimable_lamports"`
	LastClaim         string `json:"last_claim"`
	LastDistribute    string `json:"last_distribute"`
}

// Engine runs claims and distributions.
type Engine struct {
	tokens    storage.TokenStore
	events    storage.FeeEventStore
	collector Collector
	ledger    Ledger
	locks     keylock.Locker
	log       *slog.Logger
	now       func() time.Time

	priorityFeeSOL float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithPriorityFee sets the priority fee used when a claim names none.
func WithPriorityFee(sol float64) Option {
	return func(e *Engine) { e.priorityFeeSOL = sol }
}

// WithLocker replaces the in-process locker.
func WithLocker(l keylock.Locker) Option {
	return func(e *Engine) { e.locks = l }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine.
func NewEngine(tokens storage.TokenStore, events storage.FeeEventStore, collector Collector, ledger Ledger, opts ...Option) *Engine {
	e := &Engine{
		tokens:         tokens,
		events:         events,
		collector:      collector,
		ledger:         ledger,
		locks:          keylock.NewMemory(),
		log:            slog.Default(),
		now:            time.Now,
		priorityFeeSOL: 0.00005,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Claim collects the creator fees of mint and records what the collector
// received as the claimable amount. The amount is measured from the
// confirmed transaction's balances, never trusted from the collect API.
func (e *Engine) Claim(ctx context.Context, mint string, priorityFeeSOL *float64) (res *ClaimResult, err error) {
	defer func() {
		var amount uint64
		if res != nil {
			amount = res.ClaimedLamports
		}
		observability.RecordClaim(outcome(err), amount)
	}()

	mint = strings.TrimSpace(mint)
	if mint == "" {
		return nil, apperr.Validation("mint is required")
	}
	fee := e.priorityFeeSOL
	if priorityFeeSOL != nil {
		if *priorityFeeSOL < 0 {
			return nil, apperr.Validation("priority_fee must not be negative")
		}
		fee = *priorityFeeSOL
	}

	unlock, err := e.locks.Lock(ctx, keylock.FeesKey(mint))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "acquire fees lock")
	}
	defer unlock()

	token, err := e.load(ctx, mint)
	if err != nil {
		return nil, err
	}

	var sig string
	if err := call(serviceCollect, "collect_creator_fee", func() (err error) {
		sig, err = e.collector.CollectCreatorFee(ctx, mint, fee)
		return err
	}); err != nil {
		return nil, err
	}
	log := e.log.With("mint", mint, "signature", sig)

	if err := call(serviceLedger, "confirm", func() error {
		return e.ledger.Confirm(ctx, sig)
	}); err != nil {
		return nil, err
	}

	var tx *solana.Transaction
	if err := call(serviceLedger, "get_transaction", func() (err error) {
		tx, err = e.ledger.GetTransaction(ctx, sig)
		return err
	}); err != nil {
		return nil, err
	}
	if tx == nil {
		log.Warn("claim transaction not retrievable, recording zero")
	}
	claimed := tx.ReceivedLamports(e.ledger.CollectorAddress())

	token.ClaimableLamports = claimed
	token.Proofs.LastClaim = sig
	if err := e.tokens.Upsert(ctx, token); err != nil {
		observability.RecordStoreWriteError("tokens")
		return nil, apperr.Wrap(apperr.CodeInternal, err, "persist tokens")
	}
	e.appendEvent(ctx, &domain.FeeEvent{
		Mint:           mint,
		Kind:           domain.FeeEventClaim,
		Signature:      sig,
		AmountLamports: claimed,
	})
	log.Info("fees claimed", "lamports", claimed)

	return &ClaimResult{Mint: mint, ClaimSignature: sig, ClaimedLamports: claimed}, nil
}

// Distribute splits amount, or the claimable balance when amount is nil,
// across the token's fee split in one collector-signed transaction.
func (e *Engine) Distribute(ctx context.Context, mint string, amount *uint64) (res *DistributeResult, err error) {
	var total uint64
	defer func() {
		if err != nil {
			total = 0
		}
		observability.RecordDistribution(outcome(err), total)
	}()

	mint = strings.TrimSpace(mint)
	if mint == "" {
		return nil, apperr.Validation("mint is required")
	}

	unlock, err := e.locks.Lock(ctx, keylock.FeesKey(mint))
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "acquire fees lock")
	}
	defer unlock()

	token, err := e.load(ctx, mint)
	if err != nil {
		return nil, err
	}

	value := token.ClaimableLamports
	if amount != nil {
		value = *amount
	}
	if value == 0 {
		return nil, apperr.Policy(NothingToDistribute)
	}
	if err := domain.ValidateFeeSplit(token.FeeSplit); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "invalid fee split on record")
	}

	shares := Split(value, token.FeeSplit)
	transfers := make([]solana.Transfer, 0, len(shares))
	recipients := make([]domain.RecipientAmount, 0, len(shares))
	payouts := make([]Payout, 0, len(shares))
	for _, s := range shares {
		if s.Lamports == 0 {
			continue
		}
		transfers = append(transfers, solana.Transfer{To: s.Wallet, Lamports: s.Lamports})
		recipients = append(recipients, s)
		payouts = append(payouts, Payout{Wallet: s.Wallet, Lamports: strconv.FormatUint(s.Lamports, 10)})
		total += s.Lamports
	}
	if len(transfers) == 0 {
		return nil, apperr.Policy(NothingToDistribute)
	}

	var sig string
	if err := call(serviceLedger, "transfer_batch", func() (err error) {
		sig, err = e.ledger.TransferBatch(ctx, transfers)
		return err
	}); err != nil {
		return nil, err
	}

	token.ClaimableLamports = 0
	token.Proofs.LastDistribute = sig
	if err := e.tokens.Upsert(ctx, token); err != nil {
		observability.RecordStoreWriteError("tokens")
		return nil, apperr.Wrap(apperr.CodeInternal, err, "persist tokens")
	}
	e.appendEvent(ctx, &domain.FeeEvent{
		Mint:           mint,
		Kind:           domain.FeeEventDistribute,
		Signature:      sig,
		AmountLamports: total,
		Recipients:     recipients,
	})
	e.log.Info("fees distributed", "mint", mint, "signature", sig, "lamports", total, "recipients", len(recipients))

	return &DistributeResult{
		Mint:         mint,
		RouterPDA:    token.RouterPDA,
		Signature:    sig,
		Distribution: payouts,
	}, nil
}

// Status returns the fee state of mint.
func (e *Engine) Status(ctx context.Context, mint string) (*Status, error) {
	token, err := e.load(ctx, strings.TrimSpace(mint))
	if err != nil {
		return nil, err
	}
	return &Status{
		Mint:              token.Mint,
		ClaimableLamports: token.ClaimableLamports,
		LastClaim:         token.Proofs.LastClaim,
		LastDistribute:    token.Proofs.LastDistribute,
	}, nil
}

// History returns the fee events of mint, newest first.
func (e *Engine) History(ctx context.Context, mint string) ([]*domain.FeeEvent, error) {
	mint = strings.TrimSpace(mint)
	if _, err := e.load(ctx, mint); err != nil {
		return nil, err
	}
	events, err := e.events.GetByMint(ctx, mint)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load fee events")
	}
	return events, nil
}

func (e *Engine) load(ctx context.Context, mint string) (*domain.Token, error) {
	token, err := e.tokens.Get(ctx, mint)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, apperr.NotFound("Unknown mint")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "load token")
	}
	return token, nil
}

// appendEvent records a proof. The on-chain signature is already persisted
// on the token, so a history failure is logged rather than returned.
func (e *Engine) appendEvent(ctx context.Context, ev *domain.FeeEvent) {
	ev.EventID = uuid.NewString()
	ev.CreatedAt = e.now().UTC()
	if err := e.events.Insert(ctx, ev); err != nil {
		observability.RecordStoreWriteError("fee_events")
		e.log.Error("fee event not recorded", "mint", ev.Mint, "kind", ev.Kind, "signature", ev.Signature, "error", err)
	}
}

func call(service, method string, fn func() error) error {
	start := time.Now()
	err := fn()
	observability.ObserveUpstream(service, method, start, err)
	if err != nil {
		return apperr.External(service, err)
	}
	return nil
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperr.CodeOf(err))
}
