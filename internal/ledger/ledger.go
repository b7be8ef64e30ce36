// Package ledger owns per-account, per-currency balances. It is the only
// code allowed to mutate them, and it enforces the one invariant that
// matters: available balance never goes negative.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger errors.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount")
)

// Store applies balance deltas atomically. ApplyDelta must reject any
// delta that would take the balance negative, returning
// ErrInsufficientBalance, and must create a zero wallet row when a
// positive delta targets a missing (account, currency) pair.
type Store interface {
	ApplyDelta(ctx context.Context, accountID, currency string, delta decimal.Decimal) (decimal.Decimal, error)
	GetBalance(ctx context.Context, accountID, currency string) (decimal.Decimal, error)
}

// Ledger exposes debit and credit over a Store.
type Ledger struct {
	store Store
}

// New creates a Ledger backed by the given store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Debit removes amount from the account's balance for the currency and
// returns the new balance. Amount must be positive. Fails with
// ErrInsufficientBalance when the available balance is short; the
// balance is left untouched in that case.
func (l *Ledger) Debit(ctx context.Context, accountID, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: debit amount must be positive, got %s", ErrInvalidAmount, amount)
	}
	newBalance, err := l.store.ApplyDelta(ctx, accountID, currency, amount.Neg())
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Credit adds amount to the account's balance for the currency and
// returns the new balance. Amount must be non-negative; a zero credit is
// a no-op that still reports the current balance. Creates the wallet at
// zero if absent.
func (l *Ledger) Credit(ctx context.Context, accountID, currency string, amount decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: credit amount must be non-negative, got %s", ErrInvalidAmount, amount)
	}
	newBalance, err := l.store.ApplyDelta(ctx, accountID, currency, amount)
	if err != nil {
		return decimal.Zero, err
	}
	return newBalance, nil
}

// Balance reports the current available balance.
func (l *Ledger) Balance(ctx context.Context, accountID, currency string) (decimal.Decimal, error) {
	return l.store.GetBalance(ctx, accountID, currency)
}
