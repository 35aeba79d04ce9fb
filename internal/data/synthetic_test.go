package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-playback/internal/model"
)

func TestSyntheticIsDeterministic(t *testing.T) {
	a := Synthetic(SyntheticOptions{Bars: 400, Seed: 7})
	b := Synthetic(SyntheticOptions{Bars: 400, Seed: 7})
	assert.Equal(t, a, b)

	c := Synthetic(SyntheticOptions{Bars: 400, Seed: 8})
	assert.NotEqual(t, a, c)
}

func TestSyntheticShape(t *testing.T) {
	bars := Synthetic(SyntheticOptions{Bars: 500, Seed: 1})
	require.Len(t, bars, 500)
	assert.Equal(t, -1, model.NewSeries(bars).FirstUnordered())
	assert.Equal(t, int64(300), bars[1].Time-bars[0].Time)

	for i := 0; i < 19; i++ {
		assert.False(t, bars[i].BBUpper.Valid, "band needs 20 bars of history")
	}
	for _, b := range bars[19:] {
		require.True(t, b.BBUpper.Valid)
		assert.GreaterOrEqual(t, b.BBUpper.Value, b.BBLower.Value)
		assert.GreaterOrEqual(t, b.High, b.Low)
		assert.False(t, b.InTrade())
	}
}
