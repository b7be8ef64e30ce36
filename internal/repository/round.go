package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"casino-core/internal/model"
)

// RoundStore persists rounds and their ledger transactions, and serves
// the read-only history and statistics views over them.
type RoundStore struct {
	pool *pgxpool.Pool
}

// NewRoundStore creates a new RoundStore instance.
func NewRoundStore(pool *pgxpool.Pool) *RoundStore {
	return &RoundStore{pool: pool}
}

// SaveRound writes a round and its transactions in a single database
// transaction. Rounds and transactions are append-only; this is the only
// write path.
func (r *RoundStore) SaveRound(ctx context.Context, round *model.Round, txs []*model.Transaction) error {
	trace, err := json.Marshal(round.Trace)
	if err != nil {
		return fmt.Errorf("failed to encode round trace: %w", err)
	}

	dbTx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback(ctx)

	const roundQuery = `
		INSERT INTO rounds (id, account_id, variant, stake_amount, stake_currency,
		                    result, payout, multiplier, trace, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = dbTx.Exec(ctx, roundQuery,
		round.ID,
		round.AccountID,
		round.Variant,
		round.Stake,
		round.Currency,
		round.Result,
		round.Payout,
		round.Multiplier,
		trace,
		round.Status,
		round.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert round: %w", err)
	}

	const txQuery = `
		INSERT INTO transactions (account_id, round_id, kind, currency, amount,
		                          usd_value, balance_before, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`
	for _, tx := range txs {
		err = dbTx.QueryRow(ctx, txQuery,
			tx.AccountID,
			tx.RoundID,
			tx.Kind,
			tx.Currency,
			tx.Amount,
			tx.USDValue,
			tx.BalanceBefore,
			tx.BalanceAfter,
			tx.CreatedAt,
		).Scan(&tx.ID)
		if err != nil {
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit round: %w", err)
	}

	return nil
}

// ListRounds retrieves an account's rounds, newest first, optionally
// filtered by variant.
func (r *RoundStore) ListRounds(ctx context.Context, accountID, variant string, limit int) ([]*model.Round, error) {
	const query = `
		SELECT id, account_id, variant, stake_amount, stake_currency,
		       result, payout, multiplier, trace, status, created_at
		FROM rounds
		WHERE account_id = $1 AND ($2 = '' OR variant = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, accountID, variant, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*model.Round
	for rows.Next() {
		var round model.Round
		var trace []byte
		err := rows.Scan(
			&round.ID,
			&round.AccountID,
			&round.Variant,
			&round.Stake,
			&round.Currency,
			&round.Result,
			&round.Payout,
			&round.Multiplier,
			&trace,
			&round.Status,
			&round.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		if len(trace) > 0 {
			if err := json.Unmarshal(trace, &round.Trace); err != nil {
				return nil, fmt.Errorf("failed to decode round trace: %w", err)
			}
		}
		rounds = append(rounds, &round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rounds: %w", err)
	}

	return rounds, nil
}

// GetStats aggregates an account's play history. Voided rounds are
// excluded: a refunded stake was never wagered.
func (r *RoundStore) GetStats(ctx context.Context, accountID string) (*model.AccountStats, error) {
	const query = `
		SELECT COUNT(*),
		       COALESCE(SUM(stake_amount), 0),
		       COALESCE(SUM(payout), 0),
		       COALESCE(SUM(CASE WHEN result = 'win' THEN 1 ELSE 0 END), 0),
		       COALESCE(MAX(CASE WHEN result = 'win' THEN payout ELSE 0 END), 0)
		FROM rounds
		WHERE account_id = $1 AND status = $2
	`

	stats := &model.AccountStats{}
	var wins int64
	err := r.pool.QueryRow(ctx, query, accountID, model.RoundCompleted).Scan(
		&stats.TotalRounds,
		&stats.TotalWagered,
		&stats.TotalWon,
		&wins,
		&stats.BiggestWin,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate stats: %w", err)
	}

	stats.NetProfit = stats.TotalWon.Sub(stats.TotalWagered)
	if stats.TotalRounds > 0 {
		stats.WinRate = decimalPercent(wins, stats.TotalRounds)
	}

	const favQuery = `
		SELECT variant FROM rounds
		WHERE account_id = $1 AND status = $2
		GROUP BY variant
		ORDER BY COUNT(*) DESC
		LIMIT 1
	`
	rows, err := r.pool.Query(ctx, favQuery, accountID, model.RoundCompleted)
	if err != nil {
		return nil, fmt.Errorf("failed to find favorite game: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&stats.FavoriteGame); err != nil {
			return nil, fmt.Errorf("failed to scan favorite game: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading favorite game: %w", err)
	}

	return stats, nil
}

// decimalPercent converts a win count into a percentage of total rounds
// at currency precision.
func decimalPercent(wins, total int64) decimal.Decimal {
	return decimal.NewFromInt(wins).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(total)).
		Round(2)
}
