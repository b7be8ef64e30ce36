// Package model defines the data models for the casino core.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Wallet holds one account's balance in a single currency.
// Balance must never go negative; the ledger enforces this, callers never do.
type Wallet struct {
	AccountID     string          `db:"account_id"`
	Currency      string          `db:"currency"`
	Balance       decimal.Decimal `db:"balance"`
	LockedBalance decimal.Decimal `db:"locked_balance"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

// GameRequest describes one requested play. Immutable once constructed;
// validated before any balance mutation.
type GameRequest struct {
	Variant  string          `json:"game"`
	Stake    decimal.Decimal `json:"stake_amount"`
	Currency string          `json:"stake_currency"`
	Options  map[string]any  `json:"options"`
}

// Round is the durable record of one play. Append-only: created exactly
// once per completed or refunded play, never mutated afterwards.
type Round struct {
	ID         uuid.UUID       `db:"id" json:"round_id"`
	AccountID  string          `db:"account_id" json:"account_id"`
	Variant    string          `db:"variant" json:"game"`
	Stake      decimal.Decimal `db:"stake_amount" json:"stake_amount"`
	Currency   string          `db:"stake_currency" json:"stake_currency"`
	Result     string          `db:"result" json:"result"`
	Payout     decimal.Decimal `db:"payout" json:"payout"`
	Multiplier decimal.Decimal `db:"multiplier" json:"multiplier"`
	Trace      map[string]any  `db:"trace" json:"game_data"`
	Status     string          `db:"status" json:"status"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// Transaction is an append-only ledger entry tied to a round.
// Amount is signed: stakes are negative, payouts and refunds positive.
type Transaction struct {
	ID            int64           `db:"id" json:"id"`
	AccountID     string          `db:"account_id" json:"account_id"`
	RoundID       uuid.UUID       `db:"round_id" json:"round_id"`
	Kind          string          `db:"kind" json:"kind"`
	Currency      string          `db:"currency" json:"currency"`
	Amount        decimal.Decimal `db:"amount" json:"amount"`
	USDValue      decimal.Decimal `db:"usd_value" json:"usd_value"`
	BalanceBefore decimal.Decimal `db:"balance_before" json:"balance_before"`
	BalanceAfter  decimal.Decimal `db:"balance_after" json:"balance_after"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// RoundResult is returned to the caller after a settled play.
type RoundResult struct {
	RoundID      uuid.UUID       `json:"round_id"`
	Variant      string          `json:"game"`
	Result       string          `json:"result"`
	Payout       decimal.Decimal `json:"payout"`
	Multiplier   decimal.Decimal `json:"multiplier"`
	Trace        map[string]any  `json:"game_data"`
	BalanceAfter decimal.Decimal `json:"balance_after"`
}

// AccountStats aggregates an account's play history.
type AccountStats struct {
	TotalRounds  int64           `json:"total_rounds"`
	TotalWagered decimal.Decimal `json:"total_wagered"`
	TotalWon     decimal.Decimal `json:"total_won"`
	NetProfit    decimal.Decimal `json:"net_profit"`
	WinRate      decimal.Decimal `json:"win_rate"`
	BiggestWin   decimal.Decimal `json:"biggest_win"`
	FavoriteGame string          `json:"favorite_game"`
}

// Outcome result kinds.
const (
	ResultWin     = "win"
	ResultLoss    = "loss"
	ResultPush    = "push"
	ResultErrored = "errored"
)

// Round statuses.
const (
	RoundCompleted = "completed"
	RoundVoided    = "voided"
)

// Transaction kinds for categorizing balance changes.
const (
	TxKindStake  = "stake"  // Stake debit at the start of a play
	TxKindPayout = "payout" // Winning or push credit
	TxKindRefund = "refund" // Compensating credit after an engine fault
)
