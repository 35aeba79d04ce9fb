package playback

import (
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/model"
	"backtest-playback/internal/store"
)

// Options configures a Player.
type Options struct {
	WindowSize     int
	BaseFrameDelay time.Duration
	Speeds         Speeds
	Clock          Clock
	Emitter        *SummaryEmitter
}

// Player ties the series store, the speed configuration and the scheduler
// together and applies the restart policy: any change of series or speeds
// restarts playback from the first full window instead of resuming.
type Player struct {
	mu        sync.Mutex
	store     *store.Store
	scheduler *Scheduler
	sink      Sink
	base      time.Duration
	speeds    Speeds
	delays    Delays
	disposed  bool
}

func NewPlayer(st *store.Store, sink Sink, opts Options) (*Player, error) {
	if st == nil {
		st = store.New()
	}
	if opts.BaseFrameDelay == 0 {
		opts.BaseFrameDelay = DefaultBaseFrameDelay
	}
	if opts.Speeds == (Speeds{}) {
		opts.Speeds = DefaultSpeeds()
	}
	delays, err := opts.Speeds.Delays(opts.BaseFrameDelay)
	if err != nil {
		return nil, err
	}
	return &Player{
		store:     st,
		scheduler: NewScheduler(opts.Clock, opts.WindowSize, opts.Emitter),
		sink:      sink,
		base:      opts.BaseFrameDelay,
		speeds:    opts.Speeds,
		delays:    delays,
	}, nil
}

// Load replaces the series and restarts playback. It returns whether
// playback started; a series shorter than one window never starts.
func (p *Player) Load(series model.Series) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.store.Replace(series)
	if i := series.FirstUnordered(); i >= 0 {
		log.WithFields(log.Fields{"series": series.ID, "index": i}).Warn("player: bar times are not strictly increasing")
	}
	return p.restartLocked()
}

// SetSpeeds validates the multipliers and restarts playback when they changed.
func (p *Player) SetSpeeds(s Speeds) error {
	delays, err := s.Delays(p.base)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if s == p.speeds {
		return nil
	}
	p.speeds = s
	p.delays = delays
	log.WithFields(log.Fields{
		"active_trade_speed": s.ActiveTrade,
		"general_speed":      s.General,
	}).Info("player: speeds changed, restarting")
	p.restartLocked()
	return nil
}

// Replay restarts the current series from the beginning.
func (p *Player) Replay() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.restartLocked()
}

// Stop halts playback and removes markers. The series stays loaded.
func (p *Player) Stop() {
	p.scheduler.Stop()
}

// Dispose stops playback for good; later Load/Replay calls are ignored.
func (p *Player) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.disposed = true
	p.scheduler.Stop()
}

func (p *Player) restartLocked() bool {
	if p.disposed {
		return false
	}
	series := p.store.Current()
	if series.IsZero() {
		p.scheduler.Stop()
		return false
	}
	return p.scheduler.Start(series, p.delays, p.sink)
}

// Status is what the host shows about the current playback.
type Status struct {
	Snapshot
	SeriesID    string        `json:"series_id,omitempty"`
	Bars        int           `json:"bars"`
	Speeds      Speeds        `json:"speeds"`
	Delays      Delays        `json:"delays"`
	Estimated   time.Duration `json:"estimated_duration"`
	LastSummary *Summary      `json:"last_summary,omitempty"`
}

func (p *Player) Status() Status {
	p.mu.Lock()
	speeds, delays := p.speeds, p.delays
	p.mu.Unlock()

	series := p.store.Current()
	st := Status{
		Snapshot:  p.scheduler.Snapshot(),
		Bars:      series.Len(),
		Speeds:    speeds,
		Delays:    delays,
		Estimated: EstimateDuration(series, p.scheduler.WindowSize(), delays),
	}
	if !series.IsZero() {
		st.SeriesID = series.ID.String()
	}
	if s, ok := p.scheduler.Emitter().Latest(); ok {
		st.LastSummary = &s
	}
	return st
}

func (p *Player) Store() *store.Store { return p.store }

func (p *Player) Emitter() *SummaryEmitter { return p.scheduler.Emitter() }

func (p *Player) WindowSize() int { return p.scheduler.WindowSize() }
