package solana

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrTransactionFailed is returned when the ledger reports an execution error.
	ErrTransactionFailed = errors.New("transaction failed")
	// ErrConfirmTimeout is returned when a signature does not reach the
	// commitment level before the confirmer gives up.
	ErrConfirmTimeout = errors.New("transaction confirmation timed out")
)

// Confirmer waits for a submitted signature to reach the configured commitment.
type Confirmer interface {
	Confirm(ctx context.Context, signature string) error
}

// Default polling parameters.
const (
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultConfirmTimeout = 90 * time.Second
)

// PollingConfirmer confirms by polling getSignatureStatuses.
type PollingConfirmer struct {
	rpc        RPCClient
	commitment string
	interval   time.Duration
	timeout    time.Duration
}

// PollingOption configures PollingConfirmer.
type PollingOption func(*PollingConfirmer)

// WithPollInterval sets the delay between status checks.
func WithPollInterval(d time.Duration) PollingOption {
	return func(p *PollingConfirmer) { p.interval = d }
}

// WithConfirmTimeout bounds how long Confirm waits.
func WithConfirmTimeout(d time.Duration) PollingOption {
	return func(p *PollingConfirmer) { p.timeout = d }
}

// WithConfirmCommitment sets the commitment level to wait for.
func WithConfirmCommitment(commitment string) PollingOption {
	return func(p *PollingConfirmer) { p.commitment = commitment }
}

// NewPollingConfirmer creates a PollingConfirmer waiting for confirmed.
func NewPollingConfirmer(rpc RPCClient, opts ...PollingOption) *PollingConfirmer {
	p := &PollingConfirmer{
		rpc:        rpc,
		commitment: CommitmentConfirmed,
		interval:   DefaultPollInterval,
		timeout:    DefaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var _ Confirmer = (*PollingConfirmer)(nil)

// Confirm blocks until signature reaches the commitment, fails, or times out.
func (p *PollingConfirmer) Confirm(ctx context.Context, signature string) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		done, err := p.check(ctx, signature)
		if err != nil || done {
			return err
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: %s", ErrConfirmTimeout, signature)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// check performs one status lookup. It reports done once the signature
// reached the commitment; an execution error is returned as
// ErrTransactionFailed. Transport errors end the wait.
func (p *PollingConfirmer) check(ctx context.Context, signature string) (bool, error) {
	statuses, err := p.rpc.GetSignatureStatuses(ctx, signature)
	if err != nil {
		return false, fmt.Errorf("get signature status: %w", err)
	}
	if len(statuses) == 0 || statuses[0] == nil {
		return false, nil
	}
	st := statuses[0]
	if st.Err != nil {
		return false, fmt.Errorf("%w: %s: %v", ErrTransactionFailed, signature, st.Err)
	}
	return st.Reached(p.commitment), nil
}

// WSConfirmer waits on a signatureSubscribe notification and falls back to
// polling when the websocket is unavailable or drops mid-wait.
type WSConfirmer struct {
	ws   WSClient
	poll *PollingConfirmer
	log  *slog.Logger
}

// NewWSConfirmer creates a WSConfirmer. poll also supplies the commitment
// level and timeout.
func NewWSConfirmer(ws WSClient, poll *PollingConfirmer, log *slog.Logger) *WSConfirmer {
	if log == nil {
		log = slog.Default()
	}
	return &WSConfirmer{ws: ws, poll: poll, log: log}
}

var _ Confirmer = (*WSConfirmer)(nil)

// Confirm subscribes first and checks the status once, so a signature that
// landed before the subscription is not missed.
func (w *WSConfirmer) Confirm(ctx context.Context, signature string) error {
	ch, err := w.ws.SubscribeSignature(ctx, signature, w.poll.commitment)
	if err != nil {
		w.log.Warn("signature subscribe failed, polling", "signature", signature, "error", err)
		return w.poll.Confirm(ctx, signature)
	}

	done, err := w.poll.check(ctx, signature)
	if err != nil || done {
		return err
	}

	timer := time.NewTimer(w.poll.timeout)
	defer timer.Stop()

	select {
	case n, ok := <-ch:
		if !ok {
			w.log.Warn("websocket dropped while confirming, polling", "signature", signature)
			return w.poll.Confirm(ctx, signature)
		}
		if n.Err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTransactionFailed, signature, n.Err)
		}
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s", ErrConfirmTimeout, signature)
	case <-ctx.Done():
		return ctx.Err()
	}
}
