// Package game implements the casino game engine: a pure, stateless
// computation that maps a variant, a stake, and game-specific options to
// an Outcome. The engine knows nothing about accounts or balances; the
// settlement layer owns those.
package game

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Variant identifies one of the supported game kinds. The set is closed:
// dispatch is an exhaustive switch, not an open registry.
type Variant string

// Supported game variants.
const (
	VariantDice      Variant = "dice"
	VariantCoinFlip  Variant = "coinflip"
	VariantSlots     Variant = "slots"
	VariantRoulette  Variant = "roulette"
	VariantCrash     Variant = "crash"
	VariantBlackjack Variant = "blackjack"
)

// Outcome result kinds. The settlement layer persists these verbatim.
const (
	ResultWin  = "win"
	ResultLoss = "loss"
	ResultPush = "push"
)

// Engine errors.
var (
	ErrUnsupportedGame = errors.New("unsupported game variant")
	ErrInvalidOptions  = errors.New("invalid game options")
	ErrInvalidStake    = errors.New("stake amount must be positive")
)

// Options carries variant-specific play parameters.
type Options map[string]any

// Outcome is the immutable result of one play. Payout and multiplier are
// rounded to currency precision here, at the boundary, never inside the
// per-variant math.
type Outcome struct {
	Result     string
	Payout     decimal.Decimal
	Multiplier decimal.Decimal
	Trace      map[string]any
}

// Engine computes game outcomes. It is stateless apart from the injected
// randomness source; house edge is configuration, not a constant.
type Engine struct {
	edge decimal.Decimal
	rng  Rand
}

// NewEngine creates an Engine with the given house edge (a fraction in
// [0, 1)) and randomness source.
func NewEngine(houseEdge decimal.Decimal, rng Rand) (*Engine, error) {
	if houseEdge.IsNegative() || houseEdge.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("house edge must be in [0, 1), got %s", houseEdge)
	}
	if rng == nil {
		return nil, errors.New("randomness source is required")
	}
	return &Engine{edge: houseEdge, rng: rng}, nil
}

// Supported reports whether the variant is one of the closed game set.
func Supported(v Variant) bool {
	switch v {
	case VariantDice, VariantCoinFlip, VariantSlots, VariantRoulette, VariantCrash, VariantBlackjack:
		return true
	}
	return false
}

// Variants lists the closed game set in catalog order.
func Variants() []Variant {
	return []Variant{
		VariantDice, VariantCoinFlip, VariantSlots,
		VariantRoulette, VariantCrash, VariantBlackjack,
	}
}

// Play resolves one play. The stake must be positive; platform min/max
// limits are the settlement coordinator's job. An unknown variant or an
// option outside the variant's domain fails without producing a partial
// Outcome.
func (e *Engine) Play(variant Variant, stake decimal.Decimal, opts Options) (*Outcome, error) {
	if !stake.IsPositive() {
		return nil, ErrInvalidStake
	}
	if opts == nil {
		opts = Options{}
	}

	switch variant {
	case VariantDice:
		return e.playDice(stake, opts)
	case VariantCoinFlip:
		return e.playCoinFlip(stake, opts)
	case VariantSlots:
		return e.playSlots(stake, opts)
	case VariantRoulette:
		return e.playRoulette(stake, opts)
	case VariantCrash:
		return e.playCrash(stake, opts)
	case VariantBlackjack:
		return e.playBlackjack(stake, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGame, variant)
	}
}

// payoutFactor is (1 - house_edge), applied to every fair payout.
func (e *Engine) payoutFactor() decimal.Decimal {
	return decimal.NewFromInt(1).Sub(e.edge)
}

// outcome builds a rounded Outcome from raw payout math. Multiplier is
// payout/stake on any positive payout (a blackjack push yields 1), zero
// otherwise.
func outcome(result string, stake, payout decimal.Decimal, trace map[string]any) *Outcome {
	payout = payout.Round(2)
	multiplier := decimal.Zero
	if payout.IsPositive() {
		multiplier = payout.Div(stake).Round(2)
	}
	return &Outcome{
		Result:     result,
		Payout:     payout,
		Multiplier: multiplier,
		Trace:      trace,
	}
}

// optString extracts a string option, falling back to a default. A value
// of the wrong type is an options error, not a silent default.
func optString(opts Options, key, def string) (string, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidOptions, key)
	}
	return s, nil
}

// optInt extracts an integer option, accepting the numeric types a JSON
// decoder may produce.
func optInt(opts Options, key string, def int) (int, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidOptions, key)
	}
}

// optFloat extracts a float option.
func optFloat(opts Options, key string, def float64) (float64, error) {
	v, ok := opts[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("%w: %s must be a number", ErrInvalidOptions, key)
	}
}
