package app

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"agent-launchpad/internal/apperr"
	"agent-launchpad/internal/fees"
	"agent-launchpad/internal/storage"
)

// FeeRunner is the part of the fee engine a sweep drives.
type FeeRunner interface {
	Claim(ctx context.Context, mint string, priorityFeeSOL *float64) (*fees.ClaimResult, error)
	Distribute(ctx context.Context, mint string, amount *uint64) (*fees.DistributeResult, error)
}

// SweepSummary counts what a sweep did.
type SweepSummary struct {
	Tokens      int
	Claimed     int
	Distributed int
	Failed      int
	Lamports    uint64
}

// Sweep claims fees for every minted token and distributes whatever was
// claimed. One token failing does not stop the others. Cancelling ctx stops
// the sweep between tokens.
func Sweep(ctx context.Context, tokens storage.TokenStore, runner FeeRunner, log *slog.Logger) (SweepSummary, error) {
	var sum SweepSummary
	list, err := tokens.List(ctx)
	if err != nil {
		return sum, fmt.Errorf("list tokens: %w", err)
	}

	for _, t := range list {
		if !t.IsMinted() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Tokens++
		tlog := log.With("mint", t.Mint, "symbol", t.Symbol)

		claim, err := runner.Claim(ctx, t.Mint, nil)
		if err != nil {
			sum.Failed++
			tlog.Error("claim failed", "error", err)
			continue
		}
		sum.Claimed++

		// A claim overwrites the claimable balance, so nothing claimed
		// means nothing to distribute.
		if claim.ClaimedLamports == 0 {
			continue
		}
		dist, err := runner.Distribute(ctx, t.Mint, nil)
		if apperr.CodeOf(err) == apperr.CodePolicy {
			tlog.Info("nothing to distribute", "reason", err)
			continue
		}
		if err != nil {
			sum.Failed++
			tlog.Error("distribute failed", "error", err)
			continue
		}
		sum.Distributed++
		for _, p := range dist.Distribution {
			if n, err := strconv.ParseUint(p.Lamports, 10, 64); err == nil {
				sum.Lamports += n
			}
		}
		tlog.Info("fees swept", "claimed", claim.ClaimedLamports, "signature", dist.Signature)
	}

	log.Info("sweep finished",
		"tokens", sum.Tokens,
		"claimed", sum.Claimed,
		"distributed", sum.Distributed,
		"failed", sum.Failed,
		"lamports", sum.Lamports,
	)
	return sum, nil
}
