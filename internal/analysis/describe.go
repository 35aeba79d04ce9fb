package analysis

import (
	"time"

	"github.com/montanaflynn/stats"

	"backtest-playback/internal/model"
)

// SeriesStats is a one-screen summary of a backtest run.
type SeriesStats struct {
	SeriesID string `json:"series_id"`
	Bars     int    `json:"bars"`

	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`

	MinClose    float64 `json:"min_close"`
	MaxClose    float64 `json:"max_close"`
	MeanClose   float64 `json:"mean_close"`
	StdDevClose float64 `json:"stddev_close"`
	P05Close    float64 `json:"p05_close"`
	P95Close    float64 `json:"p95_close"`

	SpreadP95P05 float64 `json:"spread_p95_p05"`

	InTradeBars  int     `json:"in_trade_bars"`
	InTradeRatio float64 `json:"in_trade_ratio"`

	FinalProfit     float64 `json:"final_profit"`
	FinalTradeCount int     `json:"final_trade_count"`

	Trades TradeStats `json:"trades"`
}

// TradeStats summarises closed trade profits.
type TradeStats struct {
	Count        int     `json:"count"`
	Open         int     `json:"open"`
	Wins         int     `json:"wins"`
	WinRate      float64 `json:"win_rate"`
	MeanProfit   float64 `json:"mean_profit"`
	MedianProfit float64 `json:"median_profit"`
	Best         float64 `json:"best"`
	Worst        float64 `json:"worst"`
	MeanBars     float64 `json:"mean_bars"`
}

func Describe(series model.Series) SeriesStats {
	out := SeriesStats{Bars: series.Len()}
	if series.IsZero() || series.Len() == 0 {
		return out
	}
	out.SeriesID = series.ID.String()

	first, last := series.At(0), series.At(series.Len()-1)
	out.StartUTC = first.Timestamp()
	out.EndUTC = last.Timestamp()
	out.FinalProfit = last.TotalProfit
	out.FinalTradeCount = last.TradeCount

	closes := make(stats.Float64Data, 0, series.Len())
	for i := 0; i < series.Len(); i++ {
		b := series.At(i)
		closes = append(closes, b.Close)
		if b.InTrade() {
			out.InTradeBars++
		}
	}
	out.InTradeRatio = float64(out.InTradeBars) / float64(series.Len())

	out.MinClose, _ = stats.Min(closes)
	out.MaxClose, _ = stats.Max(closes)
	out.MeanClose, _ = stats.Mean(closes)
	out.StdDevClose, _ = stats.StandardDeviation(closes)
	out.P05Close = percentile(closes, 5, out.MinClose)
	out.P95Close = percentile(closes, 95, out.MaxClose)
	out.SpreadP95P05 = out.P95Close - out.P05Close

	out.Trades = DescribeTrades(Segments(series))
	return out
}

// DescribeTrades computes profit statistics over closed segments.
func DescribeTrades(segments []TradeSegment) TradeStats {
	var ts TradeStats
	var profits, lengths stats.Float64Data
	for _, s := range segments {
		if !s.Closed {
			ts.Open++
			continue
		}
		profits = append(profits, s.Profit)
		lengths = append(lengths, float64(s.Bars))
		if s.Profit > 0 {
			ts.Wins++
		}
	}
	ts.Count = len(profits)
	if ts.Count == 0 {
		return ts
	}
	ts.WinRate = float64(ts.Wins) / float64(ts.Count)
	ts.MeanProfit, _ = stats.Mean(profits)
	ts.MedianProfit, _ = stats.Median(profits)
	ts.Best, _ = stats.Max(profits)
	ts.Worst, _ = stats.Min(profits)
	ts.MeanBars, _ = stats.Mean(lengths)
	return ts
}

// percentile falls back to def on inputs too small for the requested rank.
func percentile(data stats.Float64Data, p, def float64) float64 {
	v, err := stats.Percentile(data, p)
	if err != nil {
		return def
	}
	return v
}
