package playback

import (
	"errors"
	"fmt"
	"math"
	"time"

	"backtest-playback/internal/model"
)

// DefaultBaseFrameDelay is the delay between ticks at speed 1.
const DefaultBaseFrameDelay = 40 * time.Millisecond

var ErrInvalidSpeed = errors.New("speed must be a finite number greater than zero")

// Speeds are the user-facing multipliers. Higher is faster.
type Speeds struct {
	ActiveTrade float64 `json:"active_trade_speed" yaml:"active_trade_speed"`
	General     float64 `json:"general_speed" yaml:"general_speed"`
}

func DefaultSpeeds() Speeds {
	return Speeds{ActiveTrade: 1, General: 1}
}

func (s Speeds) Validate() error {
	if !validSpeed(s.ActiveTrade) {
		return fmt.Errorf("active trade %w (got %v)", ErrInvalidSpeed, s.ActiveTrade)
	}
	if !validSpeed(s.General) {
		return fmt.Errorf("general %w (got %v)", ErrInvalidSpeed, s.General)
	}
	return nil
}

// Delays converts the multipliers into inter-tick delays: base / speed.
func (s Speeds) Delays(base time.Duration) (Delays, error) {
	if err := s.Validate(); err != nil {
		return Delays{}, err
	}
	if base <= 0 {
		return Delays{}, fmt.Errorf("base frame delay must be positive (got %v)", base)
	}
	return Delays{
		ActiveTrade: time.Duration(float64(base) / s.ActiveTrade),
		General:     time.Duration(float64(base) / s.General),
	}, nil
}

func validSpeed(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// Delays are the two inter-tick delays the scheduler chooses between.
type Delays struct {
	ActiveTrade time.Duration `json:"active_trade_delay"`
	General     time.Duration `json:"general_delay"`
}

// For applies the speed decision rule.
func (d Delays) For(activeTrade bool) time.Duration {
	if activeTrade {
		return d.ActiveTrade
	}
	return d.General
}

// EstimateDuration sums the delays a full playback of series would wait,
// starting at cursor windowSize. It returns zero when the series cannot play.
func EstimateDuration(series model.Series, windowSize int, d Delays) time.Duration {
	if windowSize <= 0 || series.Len() < windowSize {
		return 0
	}
	var total time.Duration
	// The tick at cursor c waits on bar c before the next tick.
	for c := windowSize; c < series.Len(); c++ {
		total += d.For(series.At(c).InTrade())
	}
	return total
}
