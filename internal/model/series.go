package model

import (
	"github.com/google/uuid"
)

// Series is the immutable, ordered set of bars for one backtest run.
// Index is the only addressing scheme used during playback.
type Series struct {
	ID   uuid.UUID
	bars []Bar
}

// NewSeries copies bars into a new series with a fresh identity.
func NewSeries(bars []Bar) Series {
	cp := make([]Bar, len(bars))
	copy(cp, bars)
	return Series{ID: uuid.New(), bars: cp}
}

func (s Series) Len() int { return len(s.bars) }

// At returns the bar at index i. Callers are expected to stay within [0, Len()).
func (s Series) At(i int) Bar { return s.bars[i] }

// Bars returns a copy of the underlying bars.
func (s Series) Bars() []Bar {
	out := make([]Bar, len(s.bars))
	copy(out, s.bars)
	return out
}

// IsZero reports whether the series was never loaded.
func (s Series) IsZero() bool {
	return s.ID == uuid.Nil
}

// FirstUnordered returns the first index whose time does not strictly increase
// over its predecessor, or -1 when the series is well ordered.
func (s Series) FirstUnordered() int {
	for i := 1; i < len(s.bars); i++ {
		if s.bars[i].Time <= s.bars[i-1].Time {
			return i
		}
	}
	return -1
}
