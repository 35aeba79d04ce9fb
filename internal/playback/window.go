package playback

import (
	"encoding/json"
	"errors"
	"fmt"

	"backtest-playback/internal/model"
)

// DefaultWindowSize is the number of most recent bars shown on the chart.
const DefaultWindowSize = 300

var ErrCursorOutOfRange = errors.New("cursor out of range")

// Point is one {time, value} pair of a plotted channel.
// A point without a value is rendered as whitespace by the chart.
type Point struct {
	Time  int64
	Value model.OptFloat
}

func (p Point) MarshalJSON() ([]byte, error) {
	if !p.Value.Valid {
		return json.Marshal(struct {
			Time int64 `json:"time"`
		}{p.Time})
	}
	return json.Marshal(struct {
		Time  int64   `json:"time"`
		Value float64 `json:"value"`
	}{p.Time, p.Value.Value})
}

// Window holds the three parallel channels for bars [From, To).
type Window struct {
	From  int     `json:"from"`
	To    int     `json:"to"`
	Price []Point `json:"price"`
	Upper []Point `json:"upper"`
	Lower []Point `json:"lower"`
}

func (w Window) Len() int { return w.To - w.From }

// ExtractWindow returns the windowed price, upper band and lower band channels
// for the size bars ending just before cursor. It has no side effects.
func ExtractWindow(series model.Series, cursor, size int) (Window, error) {
	if size <= 0 || cursor < size || cursor > series.Len() {
		return Window{}, fmt.Errorf("%w: cursor=%d size=%d len=%d", ErrCursorOutOfRange, cursor, size, series.Len())
	}

	w := Window{
		From:  cursor - size,
		To:    cursor,
		Price: make([]Point, 0, size),
		Upper: make([]Point, 0, size),
		Lower: make([]Point, 0, size),
	}
	for i := w.From; i < w.To; i++ {
		b := series.At(i)
		w.Price = append(w.Price, Point{Time: b.Time, Value: model.Some(b.Close)})
		w.Upper = append(w.Upper, Point{Time: b.Time, Value: b.BBUpper})
		w.Lower = append(w.Lower, Point{Time: b.Time, Value: b.BBLower})
	}
	return w, nil
}
