package ledger

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory Store. It backs unit and property tests
// and keeps the invariant semantics identical to the SQL store:
// conditional apply, reject on negative result, create-at-zero on credit.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[string]decimal.Decimal
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[string]decimal.Decimal)}
}

func walletKey(accountID, currency string) string {
	return accountID + ":" + currency
}

// Seed sets a wallet balance directly, bypassing invariant checks.
// Test setup only.
func (m *MemoryStore) Seed(accountID, currency string, balance decimal.Decimal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[walletKey(accountID, currency)] = balance
}

// ApplyDelta applies a signed delta atomically, rejecting any result
// below zero.
func (m *MemoryStore) ApplyDelta(_ context.Context, accountID, currency string, delta decimal.Decimal) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := walletKey(accountID, currency)
	current, ok := m.balances[key]
	if !ok {
		if delta.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: no %s wallet for account %s", ErrInsufficientBalance, currency, accountID)
		}
		current = decimal.Zero
	}

	next := current.Add(delta)
	if next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, current, delta.Neg())
	}

	m.balances[key] = next
	return next, nil
}

// GetBalance reports the current balance, zero for a missing wallet.
func (m *MemoryStore) GetBalance(_ context.Context, accountID, currency string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[walletKey(accountID, currency)], nil
}
