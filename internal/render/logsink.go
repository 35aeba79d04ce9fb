package render

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/playback"
)

// LogSink renders frames as log lines. The CLI uses it to play a series in a
// terminal. Done is closed the first time a loop finishes.
type LogSink struct {
	Every int // log every Nth frame; marker changes are always logged

	mu       sync.Mutex
	frames   int
	done     chan struct{}
	doneOnce sync.Once
}

func NewLogSink(every int) *LogSink {
	if every <= 0 {
		every = 1
	}
	return &LogSink{Every: every, done: make(chan struct{})}
}

func (s *LogSink) Render(f playback.Frame) {
	s.mu.Lock()
	s.frames++
	n := s.frames
	s.mu.Unlock()

	entry := log.WithFields(log.Fields{
		"cursor": f.Cursor,
		"time":   f.Time,
		"close":  f.Close,
		"state":  f.TradeState,
		"next":   f.NextDelay,
	})
	for _, c := range f.Markers {
		if c.Op == playback.MarkerCreate {
			entry.WithFields(log.Fields{"marker": c.Marker.Title, "price": c.Marker.Price}).Debug("marker")
		}
	}
	if n%s.Every == 0 || len(f.Markers) > 0 {
		entry.Info("frame")
	}
}

func (s *LogSink) ClearMarkers(cmds []playback.MarkerCommand) {
	log.WithField("removed", len(cmds)).Info("markers cleared")
}

func (s *LogSink) Finished(gen uint64, ticks int) {
	log.WithFields(log.Fields{"generation": gen, "ticks": ticks}).Info("playback finished")
	s.doneOnce.Do(func() { close(s.done) })
}

// Summary logs a summary snapshot; it has the SummaryEmitter subscriber signature.
func (s *LogSink) Summary(sum playback.Summary) {
	log.WithFields(log.Fields{
		"total_profit": sum.TotalProfit,
		"trade_count":  sum.TradeCount,
		"time":         sum.Time,
	}).Info("trade closed")
}

func (s *LogSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *LogSink) Done() <-chan struct{} { return s.done }
