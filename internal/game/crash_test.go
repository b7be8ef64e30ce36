package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// This draw crashes at ~1.8, below a 2.0 cashout.
func TestCrash_BustBeforeCashout(t *testing.T) {
	e := newTestEngine(t, "0.03", &scriptRand{floats: []float64{0.448933782}})

	out, err := e.Play(VariantCrash, decimal.NewFromInt(10), Options{"cashout_at": 2.0})
	require.NoError(t, err)

	assert.Equal(t, ResultLoss, out.Result)
	assert.True(t, out.Payout.IsZero())
	assert.InDelta(t, 1.8, out.Trace["crash_point"].(float64), 0.01)
	assert.Equal(t, 2.0, out.Trace["cashout_at"])
}

// r = 0.9 draws ~9.17: a 2.0 cashout clears it and pays 10 * 2 * 0.97.
func TestCrash_CashoutBeforeBust(t *testing.T) {
	e := newTestEngine(t, "0.03", &scriptRand{floats: []float64{0.9}})

	out, err := e.Play(VariantCrash, decimal.NewFromInt(10), Options{"cashout_at": 2.0})
	require.NoError(t, err)

	assert.Equal(t, ResultWin, out.Result)
	assert.Equal(t, "19.40", out.Payout.StringFixed(2))
}

// The floor draw crashes at exactly 1.0, below any legal cashout.
func TestCrash_FloorDrawAlwaysLoses(t *testing.T) {
	e := newTestEngine(t, "0", &scriptRand{floats: []float64{0}})

	out, err := e.Play(VariantCrash, decimal.NewFromInt(10), Options{"cashout_at": 1.01})
	require.NoError(t, err)
	assert.Equal(t, ResultLoss, out.Result)
}

func TestCrash_DefaultCashout(t *testing.T) {
	e := newTestEngine(t, "0", &scriptRand{floats: []float64{0.9}})

	out, err := e.Play(VariantCrash, decimal.NewFromInt(10), nil)
	require.NoError(t, err)

	assert.Equal(t, ResultWin, out.Result)
	assert.Equal(t, 2.0, out.Trace["cashout_at"])
	assert.Equal(t, "20.00", out.Payout.StringFixed(2))
}

func TestCrash_RejectsLowCashout(t *testing.T) {
	e := newTestEngine(t, "0.03", &scriptRand{})

	for _, cashout := range []float64{1.0, 1.005, 0.5, -2} {
		_, err := e.Play(VariantCrash, decimal.NewFromInt(10), Options{"cashout_at": cashout})
		assert.ErrorIs(t, err, ErrInvalidOptions, "cashout_at=%v", cashout)
	}
}

func TestCrash_PointAlwaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rng := NewSeededRand(
			rapid.Uint64().Draw(t, "seed1"),
			rapid.Uint64().Draw(t, "seed2"),
		)
		point := crashPoint(rng)
		assert.GreaterOrEqual(t, point, 1.0)
		assert.LessOrEqual(t, point, crashMax)
	})
}
