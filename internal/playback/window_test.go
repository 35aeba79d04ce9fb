package playback

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-playback/internal/model"
)

func TestExtractWindowMatchesSeries(t *testing.T) {
	series := model.NewSeries(bars(DefaultWindowSize + 25))

	for c := DefaultWindowSize; c <= series.Len(); c++ {
		w, err := ExtractWindow(series, c, DefaultWindowSize)
		require.NoError(t, err)

		require.Len(t, w.Price, DefaultWindowSize)
		require.Len(t, w.Upper, DefaultWindowSize)
		require.Len(t, w.Lower, DefaultWindowSize)
		assert.Equal(t, DefaultWindowSize, w.Len())
		assert.Equal(t, c-DefaultWindowSize, w.From)
		assert.Equal(t, c, w.To)

		for i := range w.Price {
			b := series.At(c - DefaultWindowSize + i)
			assert.Equal(t, b.Time, w.Price[i].Time)
			assert.Equal(t, b.Close, w.Price[i].Value.Value)
			assert.Equal(t, b.BBUpper, w.Upper[i].Value)
			assert.Equal(t, b.BBLower, w.Lower[i].Value)
			if i > 0 {
				assert.Greater(t, w.Price[i].Time, w.Price[i-1].Time)
			}
		}
	}
}

func TestExtractWindowPrecondition(t *testing.T) {
	series := model.NewSeries(bars(10))

	cases := []struct {
		name         string
		cursor, size int
	}{
		{"cursor before first full window", 4, 5},
		{"cursor past end", 11, 5},
		{"zero size", 5, 0},
		{"series shorter than window", 10, 11},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ExtractWindow(series, tc.cursor, tc.size)
			assert.ErrorIs(t, err, ErrCursorOutOfRange)
		})
	}

	w, err := ExtractWindow(series, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, w.Len())
}

func TestExtractWindowMissingBandsAreWhitespace(t *testing.T) {
	bs := bars(3)
	bs[0].BBUpper = model.None()
	bs[0].BBLower = model.None()
	series := model.NewSeries(bs)

	w, err := ExtractWindow(series, 3, 3)
	require.NoError(t, err)

	upper, err := json.Marshal(w.Upper[:2])
	require.NoError(t, err)
	assert.JSONEq(t, `[{"time": 1736985600}, {"time": 1736985900, "value": 2006}]`, string(upper))
}
