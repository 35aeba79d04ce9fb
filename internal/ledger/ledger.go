package ledger

import (
	"sync"
	"time"

	"backtest-playback/internal/model"
	"backtest-playback/internal/playback"
)

// Row is one rendered tick. This is the artifact for "what was shown" during
// a playback, in the order it was shown.
type Row struct {
	Index      int              `csv:"index"`
	Generation uint64           `csv:"generation"`
	Cursor     int              `csv:"cursor"`
	TimeUTC    string           `csv:"time_utc"`
	Close      float64          `csv:"close"`
	Upper      model.OptFloat   `csv:"bb_upper"`
	Lower      model.OptFloat   `csv:"bb_lower"`
	State      model.TradeState `csv:"trade_state"`
	StopLoss   model.OptFloat   `csv:"stop_loss"`
	EntryPrice model.OptFloat   `csv:"entry_price"`
	Created    int              `csv:"markers_created"`
	Removed    int              `csv:"markers_removed"`
	NextDelay  int64            `csv:"next_delay_ms"`
}

// Recorder is a playback sink that keeps one Row per rendered frame.
// Combine it with a display sink through render.Tee.
type Recorder struct {
	mu     sync.Mutex
	rows   []Row
	clears int
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Render(f playback.Frame) {
	row := Row{
		Generation: f.Generation,
		Cursor:     f.Cursor,
		TimeUTC:    time.Unix(f.Time, 0).UTC().Format(time.RFC3339),
		Close:      f.Close,
		State:      f.TradeState,
		NextDelay:  f.NextDelay.Milliseconds(),
	}
	if n := len(f.Window.Upper); n > 0 {
		row.Upper = f.Window.Upper[n-1].Value
	}
	if n := len(f.Window.Lower); n > 0 {
		row.Lower = f.Window.Lower[n-1].Value
	}
	for _, c := range f.Markers {
		if c.Op == playback.MarkerRemove {
			row.Removed++
			continue
		}
		row.Created++
		switch c.Marker.Kind {
		case playback.MarkerStopLoss:
			row.StopLoss = model.Some(c.Marker.Price)
		case playback.MarkerEntry:
			row.EntryPrice = model.Some(c.Marker.Price)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	row.Index = len(r.rows)
	r.rows = append(r.rows, row)
}

func (r *Recorder) ClearMarkers(cmds []playback.MarkerCommand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clears++
}

// Rows returns a copy of the recorded rows.
func (r *Recorder) Rows() []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Row, len(r.rows))
	copy(out, r.rows)
	return out
}

// Generation returns the rows of one playback loop.
func (r *Recorder) Generation(gen uint64) []Row {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Row
	for _, row := range r.rows {
		if row.Generation == gen {
			out = append(out, row)
		}
	}
	return out
}

func (r *Recorder) Clears() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clears
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	r.clears = 0
}
