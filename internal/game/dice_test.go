package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Roll 73 over target 50: win chance 0.50, payout 10 / 0.50 * 0.98 = 19.60.
func TestDice_OverWinScenario(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{ints: []int{73}})

	out, err := e.Play(VariantDice, decimal.NewFromInt(10), Options{
		"prediction": "over",
		"target":     50,
	})
	require.NoError(t, err)

	assert.Equal(t, ResultWin, out.Result)
	assert.Equal(t, "19.60", out.Payout.StringFixed(2))
	assert.Equal(t, 73, out.Trace["roll"])
	assert.Equal(t, 50, out.Trace["target"])
	assert.Equal(t, "over", out.Trace["prediction"])
}

func TestDice_OverLoss(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{ints: []int{50}})

	out, err := e.Play(VariantDice, decimal.NewFromInt(10), Options{
		"prediction": "over",
		"target":     50,
	})
	require.NoError(t, err)

	// Landing exactly on the target is not over the target.
	assert.Equal(t, ResultLoss, out.Result)
	assert.True(t, out.Payout.IsZero())
}

func TestDice_UnderWin(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{ints: []int{12}})

	out, err := e.Play(VariantDice, decimal.NewFromInt(10), Options{
		"prediction": "under",
		"target":     25,
	})
	require.NoError(t, err)
	assert.Equal(t, ResultWin, out.Result)
	assert.True(t, out.Payout.GreaterThan(decimal.Zero))
}

func TestDice_RejectsImpossibleBets(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{})
	stake := decimal.NewFromInt(10)

	cases := []struct {
		name string
		opts Options
	}{
		{"over 100 cannot win", Options{"prediction": "over", "target": 100}},
		{"under 0 cannot win", Options{"prediction": "under", "target": 0}},
		{"target above range", Options{"target": 101}},
		{"target below range", Options{"target": -1}},
		{"unknown prediction", Options{"prediction": "exactly", "target": 50}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Play(VariantDice, stake, tc.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

// Edge cases at the ends of the range are still playable in the
// winnable direction.
func TestDice_BoundaryTargets(t *testing.T) {
	e := newTestEngine(t, "0.02", &scriptRand{ints: []int{100, 0}})

	out, err := e.Play(VariantDice, decimal.NewFromInt(10), Options{
		"prediction": "over", "target": 99,
	})
	require.NoError(t, err)
	assert.Equal(t, ResultWin, out.Result)

	out, err = e.Play(VariantDice, decimal.NewFromInt(10), Options{
		"prediction": "under", "target": 1,
	})
	require.NoError(t, err)
	assert.Equal(t, ResultWin, out.Result)
}

func TestDice_RollAlwaysInRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		target := rapid.IntRange(1, 99).Draw(t, "target")
		prediction := rapid.SampledFrom([]string{"over", "under"}).Draw(t, "prediction")

		e := newTestEngine(t, "0.02", NewSeededRand(
			rapid.Uint64().Draw(t, "seed1"),
			rapid.Uint64().Draw(t, "seed2"),
		))

		out, err := e.Play(VariantDice, decimal.NewFromInt(10), Options{
			"prediction": prediction,
			"target":     target,
		})
		require.NoError(t, err)

		roll := out.Trace["roll"].(int)
		assert.GreaterOrEqual(t, roll, 0)
		assert.LessOrEqual(t, roll, 100)

		won := (prediction == "over" && roll > target) ||
			(prediction == "under" && roll < target)
		if won {
			assert.Equal(t, ResultWin, out.Result)
			assert.True(t, out.Payout.GreaterThan(decimal.NewFromInt(10).Mul(decimal.NewFromFloat(0.98)).Sub(decimal.NewFromFloat(0.01))),
				"winning payout must beat the edge-adjusted stake")
		} else {
			assert.Equal(t, ResultLoss, out.Result)
			assert.True(t, out.Payout.IsZero())
		}
	})
}
