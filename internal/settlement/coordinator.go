// Package settlement orchestrates one play end to end: validate the
// request, debit the stake, invoke the game engine, credit the payout,
// and durably record the round with its transactions. Every failure path
// after the debit issues a compensating refund before the error reaches
// the caller, so an account is always left whole.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"casino-core/internal/game"
	"casino-core/internal/ledger"
	"casino-core/internal/model"
	"casino-core/internal/pkg/lock"
	"casino-core/internal/pricing"
)

// Settlement errors.
var (
	// ErrInvalidStake is returned when the stake is outside the
	// platform's configured betting limits.
	ErrInvalidStake = errors.New("stake outside betting limits")

	// ErrSettlementFailed wraps unexpected faults after the debit whose
	// compensating refund also failed. These require operator attention.
	ErrSettlementFailed = errors.New("settlement failed")
)

// RoundStore persists a round with its transactions as one durable unit.
type RoundStore interface {
	SaveRound(ctx context.Context, round *model.Round, txs []*model.Transaction) error
}

// Config holds settlement parameters. Betting limits are platform-wide;
// per-variant limits are not a thing here.
type Config struct {
	MinBet         decimal.Decimal
	MaxBet         decimal.Decimal
	LockTimeout    time.Duration
	PersistRetries int
}

// Coordinator drives the settlement pipeline. All of its collaborators
// are injected; nothing here is process-global.
type Coordinator struct {
	engine *game.Engine
	ledger *ledger.Ledger
	oracle pricing.Oracle
	rounds RoundStore
	locks  *lock.Manager
	cfg    Config
	log    zerolog.Logger
}

// NewCoordinator creates a settlement Coordinator.
func NewCoordinator(
	engine *game.Engine,
	ldg *ledger.Ledger,
	oracle pricing.Oracle,
	rounds RoundStore,
	locks *lock.Manager,
	cfg Config,
	log zerolog.Logger,
) *Coordinator {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = 10 * time.Second
	}
	if cfg.PersistRetries <= 0 {
		cfg.PersistRetries = 3
	}
	return &Coordinator{
		engine: engine,
		ledger: ldg,
		oracle: oracle,
		rounds: rounds,
		locks:  locks,
		cfg:    cfg,
		log:    log,
	}
}

// Submit settles one play. Validation failures surface before any
// balance mutation; once the stake is debited the pipeline runs to
// Recorded or Refunded+Recorded before returning.
func (c *Coordinator) Submit(ctx context.Context, accountID string, req model.GameRequest) (*model.RoundResult, error) {
	variant := game.Variant(strings.ToLower(req.Variant))
	if !game.Supported(variant) {
		return nil, fmt.Errorf("%w: %q", game.ErrUnsupportedGame, req.Variant)
	}
	if !req.Stake.IsPositive() {
		return nil, game.ErrInvalidStake
	}
	if req.Stake.LessThan(c.cfg.MinBet) || req.Stake.GreaterThan(c.cfg.MaxBet) {
		return nil, fmt.Errorf("%w: stake %s not in [%s, %s]",
			ErrInvalidStake, req.Stake, c.cfg.MinBet, c.cfg.MaxBet)
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}
	if !c.oracle.IsSupported(currency) {
		return nil, fmt.Errorf("%w: %s", pricing.ErrUnsupportedCurrency, currency)
	}

	// Price the stake before touching balances. Failing to price a
	// non-fiat stake is a hard validation failure, never a silent
	// default; the oracle call carries its own bounded timeout.
	usdPrice, err := c.oracle.GetPrice(ctx, currency)
	if err != nil {
		return nil, err
	}

	state := StateValidated

	// Serialize against other plays on the same (account, currency)
	// pair for the whole debit-to-credit window.
	key := accountID + ":" + currency
	if !c.locks.LockWithTimeout(ctx, key, c.cfg.LockTimeout) {
		return nil, lock.ErrLockTimeout
	}
	defer c.locks.Unlock(key)

	afterDebit, err := c.ledger.Debit(ctx, accountID, currency, req.Stake)
	if err != nil {
		return nil, err
	}
	if state, err = state.advance(StateDebited); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	now := time.Now().UTC()
	round := &model.Round{
		ID:        uuid.New(),
		AccountID: accountID,
		Variant:   string(variant),
		Stake:     req.Stake,
		Currency:  currency,
		CreatedAt: now,
	}
	txs := []*model.Transaction{{
		AccountID:     accountID,
		RoundID:       round.ID,
		Kind:          model.TxKindStake,
		Currency:      currency,
		Amount:        req.Stake.Neg(),
		USDValue:      req.Stake.Neg().Mul(usdPrice).Round(2),
		BalanceBefore: afterDebit.Add(req.Stake),
		BalanceAfter:  afterDebit,
		CreatedAt:     now,
	}}

	out, playErr := c.engine.Play(variant, req.Stake, game.Options(req.Options))
	if playErr != nil {
		return nil, c.refundAfterFault(ctx, state, round, txs, afterDebit, usdPrice, playErr)
	}
	if state, err = state.advance(StateResolved); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	balanceAfter := afterDebit
	if out.Payout.IsPositive() {
		balanceAfter, err = c.ledger.Credit(ctx, accountID, currency, out.Payout)
		if err != nil {
			// Payout could not be applied; put the stake back and void
			// the round rather than leave the player short.
			return nil, c.refundAfterFault(ctx, state, round, txs, afterDebit, usdPrice, err)
		}
		if state, err = state.advance(StateCredited); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
		}

		txs = append(txs, &model.Transaction{
			AccountID:     accountID,
			RoundID:       round.ID,
			Kind:          model.TxKindPayout,
			Currency:      currency,
			Amount:        out.Payout,
			USDValue:      out.Payout.Mul(usdPrice).Round(2),
			BalanceBefore: afterDebit,
			BalanceAfter:  balanceAfter,
			CreatedAt:     now,
		})
	}

	round.Result = out.Result
	round.Payout = out.Payout
	round.Multiplier = out.Multiplier
	round.Trace = out.Trace
	round.Status = model.RoundCompleted

	c.persist(ctx, round, txs)
	if state, err = state.advance(StateRecorded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	c.log.Info().
		Str("account_id", accountID).
		Str("round_id", round.ID.String()).
		Str("variant", round.Variant).
		Str("result", round.Result).
		Str("stake", round.Stake.String()).
		Str("payout", round.Payout.String()).
		Msg("Play settled")

	return &model.RoundResult{
		RoundID:      round.ID,
		Variant:      round.Variant,
		Result:       round.Result,
		Payout:       round.Payout,
		Multiplier:   round.Multiplier,
		Trace:        round.Trace,
		BalanceAfter: balanceAfter,
	}, nil
}

// refundAfterFault compensates a fault that happened after the stake was
// debited: the stake is credited back, the round is recorded voided with
// an errored result, and the original fault is returned to the caller.
func (c *Coordinator) refundAfterFault(
	ctx context.Context,
	state playState,
	round *model.Round,
	txs []*model.Transaction,
	afterDebit decimal.Decimal,
	usdPrice decimal.Decimal,
	cause error,
) error {
	afterRefund, refundErr := c.ledger.Credit(ctx, round.AccountID, round.Currency, round.Stake)
	if refundErr != nil {
		c.log.Error().
			Err(refundErr).
			Str("account_id", round.AccountID).
			Str("round_id", round.ID.String()).
			Str("stake", round.Stake.String()).
			Msg("Refund after settlement fault failed; account is short a stake")
		return fmt.Errorf("%w: %v (refund also failed: %v)", ErrSettlementFailed, cause, refundErr)
	}

	state, err := state.advance(StateRefunded)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	now := round.CreatedAt
	txs = append(txs, &model.Transaction{
		AccountID:     round.AccountID,
		RoundID:       round.ID,
		Kind:          model.TxKindRefund,
		Currency:      round.Currency,
		Amount:        round.Stake,
		USDValue:      round.Stake.Mul(usdPrice).Round(2),
		BalanceBefore: afterDebit,
		BalanceAfter:  afterRefund,
		CreatedAt:     now,
	})

	round.Result = model.ResultErrored
	round.Payout = decimal.Zero
	round.Multiplier = decimal.Zero
	round.Trace = map[string]any{"error": cause.Error()}
	round.Status = model.RoundVoided

	c.persist(ctx, round, txs)
	if _, err := state.advance(StateRecorded); err != nil {
		return fmt.Errorf("%w: %v", ErrSettlementFailed, err)
	}

	c.log.Warn().
		Err(cause).
		Str("account_id", round.AccountID).
		Str("round_id", round.ID.String()).
		Msg("Play refunded after settlement fault")

	// The caller sees the original fault; the account is whole.
	return cause
}

// persist records the round and its transactions, retrying a bounded
// number of times. Balances are the source of truth for money: a
// persistence failure after the balances were mutated is logged, never
// allowed to unwind the ledger.
func (c *Coordinator) persist(ctx context.Context, round *model.Round, txs []*model.Transaction) {
	var err error
	for attempt := 0; attempt < c.cfg.PersistRetries; attempt++ {
		if err = c.rounds.SaveRound(ctx, round, txs); err == nil {
			return
		}
		time.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}
	c.log.Error().
		Err(err).
		Str("round_id", round.ID.String()).
		Int("attempts", c.cfg.PersistRetries).
		Msg("Failed to persist round; ledger balances remain authoritative")
}
