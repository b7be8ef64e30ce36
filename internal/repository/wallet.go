// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"casino-core/internal/ledger"
)

// WalletStore persists wallet balances. It implements ledger.Store: the
// conditional update keeps the non-negative invariant inside the
// database, so concurrent debits can never interleave into a negative
// balance regardless of in-process locking.
type WalletStore struct {
	pool *pgxpool.Pool
}

// NewWalletStore creates a new WalletStore instance.
func NewWalletStore(pool *pgxpool.Pool) *WalletStore {
	return &WalletStore{pool: pool}
}

// ApplyDelta applies a signed balance delta atomically and returns the
// new balance. Negative deltas fail with ledger.ErrInsufficientBalance
// when the balance would go below zero; non-negative deltas create the
// wallet row when absent.
func (r *WalletStore) ApplyDelta(ctx context.Context, accountID, currency string, delta decimal.Decimal) (decimal.Decimal, error) {
	if delta.IsNegative() {
		return r.debit(ctx, accountID, currency, delta)
	}
	return r.credit(ctx, accountID, currency, delta)
}

func (r *WalletStore) debit(ctx context.Context, accountID, currency string, delta decimal.Decimal) (decimal.Decimal, error) {
	const query = `
		UPDATE wallets
		SET balance = balance + $3, updated_at = NOW()
		WHERE account_id = $1 AND currency = $2 AND balance + $3 >= 0
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, query, accountID, currency, delta).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: %s %s", ledger.ErrInsufficientBalance, accountID, currency)
		}
		return decimal.Zero, fmt.Errorf("failed to debit wallet: %w", err)
	}

	return balance, nil
}

func (r *WalletStore) credit(ctx context.Context, accountID, currency string, delta decimal.Decimal) (decimal.Decimal, error) {
	const query = `
		INSERT INTO wallets (account_id, currency, balance, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id, currency)
		DO UPDATE SET balance = wallets.balance + $3, updated_at = NOW()
		RETURNING balance
	`

	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, query, accountID, currency, delta).Scan(&balance)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to credit wallet: %w", err)
	}

	return balance, nil
}

// GetBalance reports the current balance, zero for a missing wallet.
func (r *WalletStore) GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	const query = `
		SELECT balance FROM wallets
		WHERE account_id = $1 AND currency = $2
	`

	var balance decimal.Decimal
	err := r.pool.QueryRow(ctx, query, accountID, currency).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}
