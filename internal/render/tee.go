package render

import "backtest-playback/internal/playback"

type tee []playback.Sink

// Tee fans one scheduler's output out to several sinks in order. Finished is
// forwarded to the sinks that implement playback.FinishNotifier.
func Tee(sinks ...playback.Sink) playback.Sink {
	return tee(sinks)
}

func (t tee) Render(f playback.Frame) {
	for _, s := range t {
		s.Render(f)
	}
}

func (t tee) ClearMarkers(cmds []playback.MarkerCommand) {
	for _, s := range t {
		s.ClearMarkers(cmds)
	}
}

func (t tee) Finished(gen uint64, ticks int) {
	for _, s := range t {
		if fn, ok := s.(playback.FinishNotifier); ok {
			fn.Finished(gen, ticks)
		}
	}
}
