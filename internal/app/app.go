// Package app wires configuration into the running services.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"agent-launchpad/internal/config"
	"agent-launchpad/internal/fees"
	"agent-launchpad/internal/keylock"
	"agent-launchpad/internal/keylock/redislock"
	"agent-launchpad/internal/launch"
	"agent-launchpad/internal/logging"
	"agent-launchpad/internal/moltbook"
	"agent-launchpad/internal/postcodec"
	"agent-launchpad/internal/pumpportal"
	"agent-launchpad/internal/solana"
	"agent-launchpad/internal/storage"
	chstore "agent-launchpad/internal/storage/clickhouse"
	"agent-launchpad/internal/storage/filestore"
	"agent-launchpad/internal/storage/memory"
	"agent-launchpad/internal/storage/migrations"
	pgstore "agent-launchpad/internal/storage/postgres"
)

// Stores groups the record collections.
type Stores struct {
	Tokens    storage.TokenStore
	Pending   storage.PendingPostStore
	FeeEvents storage.FeeEventStore
}

// App holds the wired services and the resources they own.
type App struct {
	Config *config.Config
	Stores Stores
	Launch *launch.Service
	Fees   *fees.Engine
	Ledger *solana.Ledger

	closers []func()
}

// Close releases every resource in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// New connects stores, locks and chain clients and builds the services.
// On error everything acquired so far is released.
func New(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	log := logging.Named("app")
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if err := a.openStores(ctx, log); err != nil {
		return nil, err
	}

	var locks keylock.Locker = keylock.NewMemory()
	if cfg.RedisURL != "" {
		rl, err := redislock.Dial(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.onClose(func() { _ = rl.Close() })
		locks = rl
		log.Info("using redis locks")
	}

	ledger, err := a.openLedger(ctx, log)
	if err != nil {
		return nil, err
	}
	a.Ledger = ledger

	social := moltbook.NewClient(cfg.MoltbookAPIBase, moltbook.WithAPIKey(cfg.MoltbookAPIKey))
	launcher := pumpportal.NewClient(pumpportal.WithAPIKey(cfg.PumpPortalAPIKey))

	a.Launch = launch.NewService(cfg.LaunchConfig(ledger.CollectorAddress()), launch.Deps{
		Codec:    postcodec.New(cfg.Trigger, cfg.Limits()),
		Tokens:   a.Stores.Tokens,
		Pending:  a.Stores.Pending,
		Social:   social,
		Launcher: launcher,
		Ledger:   ledger,
		Locks:    locks,
		Logger:   logging.Named("launch"),
	})
	a.Fees = fees.NewEngine(a.Stores.Tokens, a.Stores.FeeEvents, launcher, ledger,
		fees.WithPriorityFee(cfg.PriorityFeeSOL),
		fees.WithLocker(locks),
		fees.WithLogger(logging.Named("fees")),
	)
	return a, nil
}

func (a *App) openStores(ctx context.Context, log *slog.Logger) error {
	cfg := a.Config
	switch cfg.Store {
	case config.StorePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		a.onClose(pool.Close)
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		a.Stores.Tokens = pgstore.NewTokenStore(pool)
		a.Stores.Pending = pgstore.NewPendingPostStore(pool)
		log.Info("using postgres record store")
	case config.StoreFile:
		fs, err := filestore.Open(cfg.DataDir, logging.Named("filestore"))
		if err != nil {
			return err
		}
		a.Stores.Tokens = fs.Tokens()
		a.Stores.Pending = fs.PendingPosts()
	default:
		return fmt.Errorf("unknown store %q", cfg.Store)
	}

	if cfg.ClickhouseDSN == "" {
		a.Stores.FeeEvents = memory.NewFeeEventStore()
		return nil
	}
	conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		return fmt.Errorf("clickhouse migrations: %w", err)
	}
	a.onClose(func() { _ = conn.Close() })
	a.Stores.FeeEvents = chstore.NewFeeEventStore(conn)
	log.Info("recording fee history in clickhouse")
	return nil
}

func (a *App) openLedger(ctx context.Context, log *slog.Logger) (*solana.Ledger, error) {
	cfg := a.Config
	if cfg.RPCURL == "" {
		return nil, errors.New("RPC_URL is required")
	}
	rpc := solana.NewHTTPClient(cfg.RPCURL)

	var signer *solana.Signer
	var err error
	if cfg.ClaimWalletSecret != "" {
		signer, err = solana.LoadSigner(cfg.ClaimWalletSecret)
		if err != nil {
			return nil, fmt.Errorf("claim wallet: %w", err)
		}
	} else {
		signer, err = solana.NewRandomSigner()
		if err != nil {
			return nil, err
		}
		log.Warn("CLAIM_WALLET_SECRET not set, using a throwaway collector wallet", "collector", signer.Address())
	}

	poll := solana.NewPollingConfirmer(rpc)
	var confirmer solana.Confirmer = poll
	if cfg.WSURL != "" {
		ws, err := solana.NewWSClient(ctx, cfg.WSURL, nil, logging.Named("solana-ws"))
		if err != nil {
			log.Warn("websocket unavailable, confirming by polling", "error", err)
		} else {
			a.onClose(func() { _ = ws.Close() })
			confirmer = solana.NewWSConfirmer(ws, poll, logging.Named("confirm"))
		}
	}
	return solana.NewLedger(rpc, confirmer, signer), nil
}
