// Package main claims and distributes creator fees for every minted token
// once, then exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"agent-launchpad/internal/app"
	"agent-launchpad/internal/config"
	"agent-launchpad/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "feesweep:", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	cfg, err := config.Parse("feesweep", os.Args[1:], os.Getenv, os.Stderr)
	if err != nil {
		return err
	}
	if err := logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat}); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sum, err := app.Sweep(ctx, a.Stores.Tokens, a.Fees, logging.Named("feesweep"))
	if err != nil {
		return err
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d of %d tokens failed", sum.Failed, sum.Tokens)
	}
	return nil
}
