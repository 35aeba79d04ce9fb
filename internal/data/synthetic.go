package data

import (
	"math"
	"math/rand"
	"time"

	"github.com/montanaflynn/stats"

	"backtest-playback/internal/model"
)

// SyntheticOptions shape a generated price history. Zero values pick the
// defaults used by the demo: 5-minute bars, a 20-bar band at 2 standard
// deviations.
type SyntheticOptions struct {
	Bars      int
	Seed      int64
	Start     time.Time
	Step      time.Duration
	StartPx   float64
	BandBars  int
	BandWidth float64
}

func (o *SyntheticOptions) defaults() {
	if o.Bars <= 0 {
		o.Bars = DefaultNumCandles
	}
	if o.Start.IsZero() {
		o.Start = time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)
	}
	if o.Step <= 0 {
		o.Step = 5 * time.Minute
	}
	if o.StartPx <= 0 {
		o.StartPx = 2000
	}
	if o.BandBars <= 1 {
		o.BandBars = 20
	}
	if o.BandWidth <= 0 {
		o.BandWidth = 2
	}
}

// Synthetic generates a seeded random walk with volatility bands. Trade
// columns are left flat; run a strategy over the bars to fill them.
// The same options always yield the same bars.
func Synthetic(opts SyntheticOptions) []model.Bar {
	opts.defaults()
	rng := rand.New(rand.NewSource(opts.Seed))

	bars := make([]model.Bar, opts.Bars)
	closes := make(stats.Float64Data, 0, opts.BandBars)

	px := opts.StartPx
	for i := range bars {
		open := px
		px = math.Max(1, px*(1+rng.NormFloat64()*0.0015))
		hi := math.Max(open, px) * (1 + rng.Float64()*0.0005)
		lo := math.Min(open, px) * (1 - rng.Float64()*0.0005)

		b := model.Bar{
			Time:  opts.Start.Add(time.Duration(i) * opts.Step).Unix(),
			Open:  round(open),
			High:  round(hi),
			Low:   round(lo),
			Close: round(px),
		}

		if len(closes) == opts.BandBars {
			closes = append(closes[1:], b.Close)
		} else {
			closes = append(closes, b.Close)
		}
		if len(closes) == opts.BandBars {
			mean, _ := stats.Mean(closes)
			sd, _ := stats.StandardDeviationSample(closes)
			b.BBUpper = model.Some(round(mean + opts.BandWidth*sd))
			b.BBLower = model.Some(round(mean - opts.BandWidth*sd))
		}
		b.EntryPrice = model.Some(0)
		b.TrailingSL = model.Some(0)
		bars[i] = b
	}
	return bars
}

func round(v float64) float64 {
	return math.Round(v*100) / 100
}
