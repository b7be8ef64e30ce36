package game

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// Red 14 on a red bet at 2.7% edge: 10 * 2 * 0.973 = 19.46.
func TestRoulette_RedWinScenario(t *testing.T) {
	e := newTestEngine(t, "0.027", &scriptRand{ints: []int{14}})

	out, err := e.Play(VariantRoulette, decimal.NewFromInt(10), Options{"bet_type": "red"})
	require.NoError(t, err)

	assert.Equal(t, ResultWin, out.Result)
	assert.Equal(t, "19.46", out.Payout.StringFixed(2))
	assert.Equal(t, 14, out.Trace["number"])
	assert.Equal(t, "red", out.Trace["color"])
}

func TestRoulette_StraightNumberWin(t *testing.T) {
	e := newTestEngine(t, "0", &scriptRand{ints: []int{17}})

	out, err := e.Play(VariantRoulette, decimal.NewFromInt(1), Options{
		"bet_type": "number",
		"value":    17,
	})
	require.NoError(t, err)

	assert.Equal(t, ResultWin, out.Result)
	assert.Equal(t, "35.00", out.Payout.StringFixed(2))
}

// Zero is green: every color and parity bet loses on it.
func TestRoulette_ZeroBeatsOutsideBets(t *testing.T) {
	for _, bet := range []string{"red", "black", "odd", "even"} {
		t.Run(bet, func(t *testing.T) {
			e := newTestEngine(t, "0.027", &scriptRand{ints: []int{0}})

			out, err := e.Play(VariantRoulette, decimal.NewFromInt(10), Options{"bet_type": bet})
			require.NoError(t, err)

			assert.Equal(t, ResultLoss, out.Result)
			assert.Equal(t, "green", out.Trace["color"])
		})
	}
}

func TestRoulette_ZeroWinsStraightZeroBet(t *testing.T) {
	e := newTestEngine(t, "0", &scriptRand{ints: []int{0}})

	out, err := e.Play(VariantRoulette, decimal.NewFromInt(1), Options{
		"bet_type": "number",
		"value":    0,
	})
	require.NoError(t, err)
	assert.Equal(t, ResultWin, out.Result)
}

func TestRoulette_InvalidBets(t *testing.T) {
	e := newTestEngine(t, "0.027", &scriptRand{})
	stake := decimal.NewFromInt(10)

	cases := []struct {
		name string
		opts Options
	}{
		{"unknown bet type", Options{"bet_type": "column"}},
		{"number bet without value", Options{"bet_type": "number"}},
		{"number bet above range", Options{"bet_type": "number", "value": 37}},
		{"number bet below range", Options{"bet_type": "number", "value": -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.Play(VariantRoulette, stake, tc.opts)
			assert.ErrorIs(t, err, ErrInvalidOptions)
		})
	}
}

func TestRoulette_SpinAlwaysOnWheel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bet := rapid.SampledFrom([]string{"red", "black", "odd", "even"}).Draw(t, "bet")
		e := newTestEngine(t, "0.027", NewSeededRand(
			rapid.Uint64().Draw(t, "seed1"),
			rapid.Uint64().Draw(t, "seed2"),
		))

		out, err := e.Play(VariantRoulette, decimal.NewFromInt(10), Options{"bet_type": bet})
		require.NoError(t, err)

		number := out.Trace["number"].(int)
		assert.GreaterOrEqual(t, number, 0)
		assert.LessOrEqual(t, number, 36)

		color := out.Trace["color"].(string)
		switch {
		case number == 0:
			assert.Equal(t, "green", color)
		case redNumbers[number]:
			assert.Equal(t, "red", color)
		default:
			assert.Equal(t, "black", color)
		}
	})
}
