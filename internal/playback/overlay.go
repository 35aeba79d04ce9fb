package playback

import (
	"backtest-playback/internal/model"
)

// MarkerKind identifies which horizontal line a marker draws.
type MarkerKind string

const (
	MarkerStopLoss MarkerKind = "stop_loss"
	MarkerEntry    MarkerKind = "entry"
)

// MarkerID is an engine-assigned handle. Sinks map it to whatever the chart returns.
type MarkerID uint64

// Marker is a rendered horizontal price line tied to the active trade.
type Marker struct {
	ID        MarkerID   `json:"id"`
	Kind      MarkerKind `json:"kind"`
	Price     float64    `json:"price"`
	Title     string     `json:"title"`
	Color     string     `json:"color"`
	LineWidth int        `json:"line_width"`
}

type MarkerOp string

const (
	MarkerCreate MarkerOp = "create"
	MarkerRemove MarkerOp = "remove"
)

type MarkerCommand struct {
	Op     MarkerOp `json:"op"`
	Marker Marker   `json:"marker"`
}

// OverlayState is Flat (no markers) or InTrade (markers present).
type OverlayState string

const (
	OverlayFlat    OverlayState = "flat"
	OverlayInTrade OverlayState = "in_trade"
)

// OverlayTracker owns the stop-loss and entry markers. It is the only
// component allowed to create or remove them. Not safe for concurrent use;
// the scheduler serialises access.
type OverlayTracker struct {
	nextID MarkerID
	state  OverlayState
	stop   *Marker
	entry  *Marker
}

func NewOverlayTracker() *OverlayTracker {
	return &OverlayTracker{state: OverlayFlat}
}

// Apply evaluates bar and returns the marker commands for this tick.
// Prior markers are always removed first, so at most one marker of each kind
// is live afterwards. closed is true when a trade that was active on the
// previous tick is no longer active.
func (t *OverlayTracker) Apply(bar model.Bar) (cmds []MarkerCommand, closed bool) {
	wasInTrade := t.state == OverlayInTrade
	cmds = t.Clear()

	if !bar.InTrade() {
		return cmds, wasInTrade
	}

	t.state = OverlayInTrade
	if bar.TrailingSL.Valid {
		t.stop = t.newMarker(MarkerStopLoss, bar.TrailingSL.Value)
		cmds = append(cmds, MarkerCommand{Op: MarkerCreate, Marker: *t.stop})
	}
	t.entry = t.newMarker(MarkerEntry, bar.EntryPrice.Value)
	cmds = append(cmds, MarkerCommand{Op: MarkerCreate, Marker: *t.entry})
	return cmds, false
}

// Clear removes every live marker and returns to Flat.
func (t *OverlayTracker) Clear() []MarkerCommand {
	var cmds []MarkerCommand
	if t.stop != nil {
		cmds = append(cmds, MarkerCommand{Op: MarkerRemove, Marker: *t.stop})
		t.stop = nil
	}
	if t.entry != nil {
		cmds = append(cmds, MarkerCommand{Op: MarkerRemove, Marker: *t.entry})
		t.entry = nil
	}
	t.state = OverlayFlat
	return cmds
}

func (t *OverlayTracker) State() OverlayState { return t.state }

// Live returns the markers currently on the chart.
func (t *OverlayTracker) Live() []Marker {
	var out []Marker
	if t.stop != nil {
		out = append(out, *t.stop)
	}
	if t.entry != nil {
		out = append(out, *t.entry)
	}
	return out
}

func (t *OverlayTracker) newMarker(kind MarkerKind, price float64) *Marker {
	t.nextID++
	m := &Marker{ID: t.nextID, Kind: kind, Price: price, LineWidth: 2}
	switch kind {
	case MarkerStopLoss:
		m.Title, m.Color = "Stop Loss", "red"
	case MarkerEntry:
		m.Title, m.Color = "Entry Price", "yellow"
	}
	return m
}
