package game

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// redNumbers is the standard European wheel layout. Zero is green and
// counts as neither red, black, odd, nor even.
var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true,
	14: true, 16: true, 18: true, 19: true, 21: true, 23: true,
	25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// playRoulette resolves a single spin of a European wheel (0-36).
// Color and parity bets pay 2:1, straight number bets pay 35:1.
func (e *Engine) playRoulette(stake decimal.Decimal, opts Options) (*Outcome, error) {
	betType, err := optString(opts, "bet_type", "red")
	if err != nil {
		return nil, err
	}

	var betValue int
	if betType == "number" {
		v, ok := opts["value"]
		if !ok || v == nil {
			return nil, fmt.Errorf("%w: number bet requires a value 0-36", ErrInvalidOptions)
		}
		betValue, err = optInt(opts, "value", 0)
		if err != nil {
			return nil, err
		}
		if betValue < 0 || betValue > 36 {
			return nil, fmt.Errorf("%w: number bet requires a value 0-36", ErrInvalidOptions)
		}
	}

	var multiplier int64
	switch betType {
	case "red", "black", "odd", "even":
		multiplier = 2
	case "number":
		multiplier = 35
	default:
		return nil, fmt.Errorf("%w: unknown bet type %q", ErrInvalidOptions, betType)
	}

	number := e.rng.IntN(37)

	var won bool
	switch betType {
	case "red":
		won = redNumbers[number]
	case "black":
		won = number > 0 && !redNumbers[number]
	case "odd":
		won = number > 0 && number%2 == 1
	case "even":
		won = number > 0 && number%2 == 0
	case "number":
		won = number == betValue
	}

	color := "black"
	switch {
	case number == 0:
		color = "green"
	case redNumbers[number]:
		color = "red"
	}

	trace := map[string]any{
		"number":   number,
		"color":    color,
		"bet_type": betType,
	}

	if !won {
		return outcome(ResultLoss, stake, decimal.Zero, trace), nil
	}

	payout := stake.Mul(decimal.NewFromInt(multiplier)).Mul(e.payoutFactor())
	return outcome(ResultWin, stake, payout, trace), nil
}
