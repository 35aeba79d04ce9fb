package strategy

import (
	"fmt"
	"math"
)

// BandReversionParams configures a long-only strategy that buys a close
// below the lower band and exits on a trailing stop.
type BandReversionParams struct {
	TrailPct float64 // stop distance below the close, e.g. 0.004 for 0.4%
}

type BandReversion struct {
	Params BandReversionParams
}

func NewBandReversion(p BandReversionParams) (*BandReversion, error) {
	if p.TrailPct <= 0 || p.TrailPct >= 1 || math.IsNaN(p.TrailPct) {
		return nil, fmt.Errorf("trail_pct must be in (0, 1), got %v", p.TrailPct)
	}
	return &BandReversion{Params: p}, nil
}

func (s *BandReversion) Name() string { return "band_reversion" }

func (s *BandReversion) Decide(ctx Context) Decision {
	b := ctx.Bar
	trail := roundCents(b.Close * (1 - s.Params.TrailPct))

	if ctx.Position.Open {
		if b.Close <= ctx.Position.Stop {
			return Decision{Action: Exit}
		}
		// The stop only ever moves up.
		return Decision{Action: Hold, Stop: math.Max(ctx.Position.Stop, trail)}
	}
	if b.BBLower.Valid && b.Close < b.BBLower.Value {
		return Decision{Action: Enter, Stop: trail}
	}
	return Decision{Action: Hold}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
