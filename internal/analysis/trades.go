package analysis

import (
	"time"

	"backtest-playback/internal/model"
)

// TradeSegment is one contiguous run of in-trade bars [Start, End).
type TradeSegment struct {
	Index int `json:"index"`

	Start int `json:"start"`
	End   int `json:"end"`
	Bars  int `json:"bars"`

	StartUTC time.Time `json:"start_utc"`
	EndUTC   time.Time `json:"end_utc"`

	EntryPrice float64        `json:"entry_price"`
	FirstStop  model.OptFloat `json:"first_stop"`
	LastStop   model.OptFloat `json:"last_stop"`

	// Profit is the change of the cumulative profit counter from the first
	// in-trade bar to the first flat bar after the run.
	Profit float64 `json:"profit"`

	// Closed is false when the series ends while the trade is still open.
	Closed bool `json:"closed"`
}

// Segments splits series into its trades, in order.
func Segments(series model.Series) []TradeSegment {
	var out []TradeSegment
	n := series.Len()
	for i := 0; i < n; {
		if !series.At(i).InTrade() {
			i++
			continue
		}
		start := i
		for i < n && series.At(i).InTrade() {
			i++
		}
		out = append(out, segment(series, len(out), start, i))
	}
	return out
}

func segment(series model.Series, idx, start, end int) TradeSegment {
	first := series.At(start)
	last := series.At(end - 1)
	seg := TradeSegment{
		Index:      idx,
		Start:      start,
		End:        end,
		Bars:       end - start,
		StartUTC:   first.Timestamp(),
		EndUTC:     last.Timestamp(),
		EntryPrice: first.EntryPrice.Value,
		FirstStop:  first.TrailingSL,
		LastStop:   last.TrailingSL,
		Closed:     end < series.Len(),
	}
	after := last
	if seg.Closed {
		after = series.At(end)
		seg.EndUTC = after.Timestamp()
	}
	seg.Profit = after.TotalProfit - first.TotalProfit
	return seg
}
