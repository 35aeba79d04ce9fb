package playback

import (
	"sync"

	"github.com/asaskevich/EventBus"

	"backtest-playback/internal/model"
)

// TopicSummary is the bus topic summary snapshots are published on.
const TopicSummary = "playback:summary"

// Summary is the profit/trade-count snapshot pushed to the host when a trade closes.
type Summary struct {
	TotalProfit float64 `json:"total_profit"`
	TradeCount  int     `json:"trade_count"`
	Time        int64   `json:"time"`
	Cursor      int     `json:"cursor"`
	Generation  uint64  `json:"generation"`
}

// summaryAt reads the counters of the bar following the evaluated one, i.e.
// the bar at cursor. At the end of the series there is no following bar and
// the evaluated bar's counters are used instead.
func summaryAt(series model.Series, cursor int, gen uint64) Summary {
	idx := cursor
	if idx >= series.Len() {
		idx = series.Len() - 1
	}
	b := series.At(idx)
	return Summary{
		TotalProfit: b.TotalProfit,
		TradeCount:  b.TradeCount,
		Time:        b.Time,
		Cursor:      cursor,
		Generation:  gen,
	}
}

// SummaryEmitter publishes snapshots to whoever hosts the playback.
// Publishing never blocks on asynchronous subscribers and is never retried.
type SummaryEmitter struct {
	bus EventBus.Bus

	mu      sync.RWMutex
	latest  *Summary
	emitted int
}

// NewSummaryEmitter publishes on bus, or on a private bus when bus is nil.
func NewSummaryEmitter(bus EventBus.Bus) *SummaryEmitter {
	if bus == nil {
		bus = EventBus.New()
	}
	return &SummaryEmitter{bus: bus}
}

func (e *SummaryEmitter) Emit(s Summary) {
	e.mu.Lock()
	e.latest = &s
	e.emitted++
	e.mu.Unlock()

	e.bus.Publish(TopicSummary, s)
}

// Subscribe registers an asynchronous host callback.
func (e *SummaryEmitter) Subscribe(fn func(Summary)) error {
	return e.bus.SubscribeAsync(TopicSummary, fn, false)
}

// Latest returns the most recent snapshot, if any.
func (e *SummaryEmitter) Latest() (Summary, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.latest == nil {
		return Summary{}, false
	}
	return *e.latest, true
}

func (e *SummaryEmitter) Emitted() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.emitted
}

// Bus exposes the underlying bus, mainly so tests can subscribe synchronously
// or wait for asynchronous handlers.
func (e *SummaryEmitter) Bus() EventBus.Bus { return e.bus }
