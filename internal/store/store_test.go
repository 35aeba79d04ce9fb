package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"backtest-playback/internal/model"
)

func TestStoreReplace(t *testing.T) {
	s := New()
	assert.True(t, s.Current().IsZero())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.Playable(1))

	_, ok := s.At(0)
	assert.False(t, ok)

	first := model.NewSeries([]model.Bar{{Time: 1, Close: 10}, {Time: 2, Close: 11}})
	s.Replace(first)
	assert.Equal(t, first.ID, s.Current().ID)
	assert.True(t, s.Playable(2))
	assert.False(t, s.Playable(3))

	bar, ok := s.At(1)
	assert.True(t, ok)
	assert.Equal(t, 11.0, bar.Close)

	_, ok = s.At(-1)
	assert.False(t, ok)

	second := model.NewSeries([]model.Bar{{Time: 5}})
	s.Replace(second)
	assert.Equal(t, second.ID, s.Current().ID)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, s.Replacements())
}
