package playback

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/model"
)

// Frame is everything a render sink needs for one tick.
type Frame struct {
	SeriesID       string           `json:"series_id"`
	Generation     uint64           `json:"generation"`
	Cursor         int              `json:"cursor"`
	Time           int64            `json:"time"`
	Close          float64          `json:"close"`
	TradeState     model.TradeState `json:"trade_state"`
	Window         Window           `json:"window"`
	Markers        []MarkerCommand  `json:"markers,omitempty"`
	ScrollToLatest bool             `json:"scroll_to_latest"`
	NextDelay      time.Duration    `json:"next_delay"`
}

// Sink consumes frames and marker teardown. Implementations must not call
// back into the scheduler.
type Sink interface {
	Render(f Frame)
	ClearMarkers(cmds []MarkerCommand)
}

// FinishNotifier is implemented by sinks that want to know when a loop
// reached the end of its series.
type FinishNotifier interface {
	Finished(gen uint64, ticks int)
}

type State string

const (
	StateIdle     State = "idle"
	StateRunning  State = "running"
	StateFinished State = "finished"
	StateStopped  State = "stopped"
)

// Scheduler is a self-rescheduling delayed-callback loop that advances the
// cursor one bar per tick. At most one callback is outstanding; callbacks from
// an earlier generation are discarded.
type Scheduler struct {
	mu         sync.Mutex
	clock      Clock
	windowSize int
	emitter    *SummaryEmitter
	tracker    *OverlayTracker

	generation uint64
	state      State
	timer      Timer
	series     model.Series
	delays     Delays
	sink       Sink
	cursor     int
	ticks      int
	lastDelay  time.Duration
}

func NewScheduler(clock Clock, windowSize int, emitter *SummaryEmitter) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	if emitter == nil {
		emitter = NewSummaryEmitter(nil)
	}
	return &Scheduler{
		clock:      clock,
		windowSize: windowSize,
		emitter:    emitter,
		tracker:    NewOverlayTracker(),
		state:      StateIdle,
	}
}

// Start stops any running loop and replays series from cursor = windowSize.
// The first tick runs before Start returns. Start is a no-op returning false
// when the series is shorter than one window.
func (s *Scheduler) Start(series model.Series, delays Delays, sink Sink) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	if series.Len() < s.windowSize {
		log.WithFields(log.Fields{
			"series": series.ID,
			"bars":   series.Len(),
			"window": s.windowSize,
		}).Info("playback: not enough bars for a full window, not starting")
		return false
	}

	s.series = series
	s.delays = delays
	s.sink = sink
	s.cursor = s.windowSize
	s.ticks = 0
	s.lastDelay = 0
	s.state = StateRunning

	log.WithFields(log.Fields{
		"series":     series.ID,
		"generation": s.generation,
		"bars":       series.Len(),
		"active":     delays.ActiveTrade,
		"general":    delays.General,
	}).Info("playback: started")

	s.tickLocked()
	return true
}

// Stop cancels the pending tick and removes live markers. It is idempotent
// and guarantees no further Render once it returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *Scheduler) stopLocked() {
	s.generation++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if removals := s.tracker.Clear(); len(removals) > 0 && s.sink != nil {
		s.sink.ClearMarkers(removals)
	}
	if s.state == StateRunning || s.state == StateFinished {
		log.WithFields(log.Fields{
			"series": s.series.ID,
			"cursor": s.cursor,
			"ticks":  s.ticks,
		}).Debug("playback: stopped")
		s.state = StateStopped
	}
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || s.state != StateRunning {
		return
	}
	s.timer = nil
	s.tickLocked()
}

func (s *Scheduler) tickLocked() {
	if s.cursor >= s.series.Len() {
		s.state = StateFinished
		log.WithFields(log.Fields{
			"series": s.series.ID,
			"ticks":  s.ticks,
		}).Info("playback: reached end of series")
		if fn, ok := s.sink.(FinishNotifier); ok {
			fn.Finished(s.generation, s.ticks)
		}
		return
	}

	window, err := ExtractWindow(s.series, s.cursor, s.windowSize)
	if err != nil {
		// Unreachable while windowSize <= cursor < len holds.
		log.WithError(err).Error("playback: window extraction failed")
		s.state = StateFinished
		return
	}

	evaluated := s.series.At(s.cursor - 1)
	cmds, closed := s.tracker.Apply(evaluated)
	if closed {
		s.emitter.Emit(summaryAt(s.series, s.cursor, s.generation))
	}

	// The delay after this tick is decided by the bar at the new cursor minus one.
	next := s.delays.For(s.series.At(s.cursor).InTrade())

	if s.sink != nil {
		s.sink.Render(Frame{
			SeriesID:       s.series.ID.String(),
			Generation:     s.generation,
			Cursor:         s.cursor,
			Time:           evaluated.Time,
			Close:          evaluated.Close,
			TradeState:     evaluated.State(),
			Window:         window,
			Markers:        cmds,
			ScrollToLatest: true,
			NextDelay:      next,
		})
	}

	s.cursor++
	s.ticks++
	s.lastDelay = next

	gen := s.generation
	s.timer = s.clock.AfterFunc(next, func() { s.fire(gen) })
}

// Snapshot is a point-in-time view of the scheduler.
type Snapshot struct {
	State       State         `json:"state"`
	Generation  uint64        `json:"generation"`
	Cursor      int           `json:"cursor"`
	Ticks       int           `json:"ticks"`
	WindowSize  int           `json:"window_size"`
	LastDelay   time.Duration `json:"last_delay"`
	LiveMarkers []Marker      `json:"live_markers"`
	Overlay     OverlayState  `json:"overlay"`
}

func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		State:       s.state,
		Generation:  s.generation,
		Cursor:      s.cursor,
		Ticks:       s.ticks,
		WindowSize:  s.windowSize,
		LastDelay:   s.lastDelay,
		LiveMarkers: s.tracker.Live(),
		Overlay:     s.tracker.State(),
	}
}

func (s *Scheduler) WindowSize() int { return s.windowSize }

func (s *Scheduler) Emitter() *SummaryEmitter { return s.emitter }
