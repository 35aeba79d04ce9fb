package playback

import (
	"sync"
	"time"

	"backtest-playback/internal/model"
)

// manualClock queues callbacks until the test steps them.
type manualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
	delays  []time.Duration
}

type manualTimer struct {
	clock   *manualClock
	f       func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, f: f}
	c.pending = append(c.pending, t)
	c.delays = append(c.delays, d)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Step fires the oldest live timer and reports whether one was pending.
func (c *manualClock) Step() bool {
	c.mu.Lock()
	var next *manualTimer
	for len(c.pending) > 0 {
		t := c.pending[0]
		c.pending = c.pending[1:]
		if !t.stopped {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	c.mu.Unlock()

	if next == nil {
		return false
	}
	next.f()
	return true
}

// Drain steps until nothing is pending, up to limit callbacks.
func (c *manualClock) Drain(limit int) int {
	n := 0
	for n < limit && c.Step() {
		n++
	}
	return n
}

func (c *manualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (c *manualClock) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.delays))
	copy(out, c.delays)
	return out
}

// last returns the most recently armed timer.
func (c *manualClock) last() *manualTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.pending) == 0 {
		return nil
	}
	return c.pending[len(c.pending)-1]
}

// recordingSink applies marker commands to a live set and remembers the
// largest number of simultaneously live markers of each kind.
type recordingSink struct {
	frames   []Frame
	clears   [][]MarkerCommand
	finished []int
	live     map[MarkerID]Marker
	maxLive  map[MarkerKind]int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		live:    map[MarkerID]Marker{},
		maxLive: map[MarkerKind]int{},
	}
}

func (r *recordingSink) Render(f Frame) {
	r.frames = append(r.frames, f)
	r.apply(f.Markers)
}

func (r *recordingSink) ClearMarkers(cmds []MarkerCommand) {
	r.clears = append(r.clears, cmds)
	r.apply(cmds)
}

func (r *recordingSink) Finished(_ uint64, ticks int) {
	r.finished = append(r.finished, ticks)
}

func (r *recordingSink) apply(cmds []MarkerCommand) {
	for _, c := range cmds {
		switch c.Op {
		case MarkerCreate:
			r.live[c.Marker.ID] = c.Marker
		case MarkerRemove:
			delete(r.live, c.Marker.ID)
		}
	}
	counts := map[MarkerKind]int{}
	for _, m := range r.live {
		counts[m.Kind]++
	}
	for k, n := range counts {
		if n > r.maxLive[k] {
			r.maxLive[k] = n
		}
	}
}

func (r *recordingSink) cursors() []int {
	out := make([]int, len(r.frames))
	for i, f := range r.frames {
		out[i] = f.Cursor
	}
	return out
}

// bars builds n flat bars 5 minutes apart with bands and cumulative counters.
func bars(n int) []model.Bar {
	out := make([]model.Bar, n)
	for i := range out {
		c := 2000 + float64(i)
		out[i] = model.Bar{
			Time:        1736985600 + int64(i)*300,
			Close:       c,
			BBUpper:     model.Some(c + 5),
			BBLower:     model.Some(c - 5),
			EntryPrice:  model.Some(0),
			TrailingSL:  model.Some(0),
			TotalProfit: float64(i) / 10,
			TradeCount:  i,
		}
	}
	return out
}

// openTrade marks bars [from, to) as in trade at entry with a stop that trails up.
func openTrade(bs []model.Bar, from, to int, entry float64) {
	for i := from; i < to; i++ {
		bs[i].EntryPrice = model.Some(entry)
		bs[i].TrailingSL = model.Some(entry - 10 + float64(i-from))
	}
}
