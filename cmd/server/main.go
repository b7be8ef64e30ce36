// Package main is the entry point for the casino core service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"casino-core/internal/config"
	"casino-core/internal/game"
	"casino-core/internal/ledger"
	"casino-core/internal/pkg/db"
	"casino-core/internal/pkg/lock"
	"casino-core/internal/pricing"
	"casino-core/internal/repository"
	"casino-core/internal/server"
	"casino-core/internal/settlement"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	walletStore := repository.NewWalletStore(dbPool.Pool)
	roundStore := repository.NewRoundStore(dbPool.Pool)

	oracle := pricing.NewService(pricing.Config{
		APIURL:         cfg.Oracle.APIURL,
		APIKey:         cfg.Oracle.APIKey,
		CacheTTL:       cfg.Oracle.CacheTTL,
		RequestTimeout: cfg.Oracle.RequestTimeout,
		EnableFallback: cfg.Oracle.EnableFallback,
	}, log.Logger)

	engine, err := game.NewEngine(cfg.Casino.HouseEdgeDecimal(), game.NewLockedRand())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game engine")
	}

	coordinator := settlement.NewCoordinator(
		engine,
		ledger.New(walletStore),
		oracle,
		roundStore,
		lock.NewManager(),
		settlement.Config{
			MinBet:      cfg.Casino.MinBetDecimal(),
			MaxBet:      cfg.Casino.MaxBetDecimal(),
			LockTimeout: cfg.Casino.LockTimeout,
		},
		log.Logger,
	)

	log.Info().
		Float64("house_edge", cfg.Casino.HouseEdge).
		Float64("min_bet", cfg.Casino.MinBet).
		Float64("max_bet", cfg.Casino.MaxBet).
		Msg("Settlement coordinator ready")

	srv := server.New(coordinator, roundStore, oracle, log.Logger)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(cfg.Server.Addr); err != nil {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	if err := srv.Shutdown(); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: wallets table. The CHECK constraint is the last line
	// of defense for the non-negative invariant.
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS wallets (
			account_id VARCHAR(64) NOT NULL,
			currency VARCHAR(16) NOT NULL,
			balance NUMERIC(30, 8) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			locked_balance NUMERIC(30, 8) NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (account_id, currency)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: wallets table created")

	// Migration 2: rounds table, append-only play history.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS rounds (
			id UUID PRIMARY KEY,
			account_id VARCHAR(64) NOT NULL,
			variant VARCHAR(32) NOT NULL,
			stake_amount NUMERIC(30, 8) NOT NULL,
			stake_currency VARCHAR(16) NOT NULL,
			result VARCHAR(16) NOT NULL,
			payout NUMERIC(30, 8) NOT NULL DEFAULT 0,
			multiplier NUMERIC(20, 8) NOT NULL DEFAULT 0,
			trace JSONB,
			status VARCHAR(16) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_rounds_account_time ON rounds(account_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_rounds_account_variant ON rounds(account_id, variant);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: rounds table created")

	// Migration 3: transactions table, append-only ledger entries.
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			account_id VARCHAR(64) NOT NULL,
			round_id UUID NOT NULL REFERENCES rounds(id),
			kind VARCHAR(16) NOT NULL,
			currency VARCHAR(16) NOT NULL,
			amount NUMERIC(30, 8) NOT NULL,
			usd_value NUMERIC(30, 2) NOT NULL DEFAULT 0,
			balance_before NUMERIC(30, 8) NOT NULL,
			balance_after NUMERIC(30, 8) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_transactions_account_time ON transactions(account_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_transactions_round ON transactions(round_id);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: transactions table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
