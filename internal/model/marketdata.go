package model

import "encoding/json"

// BacktestResponse matches the JSON shape returned by the backtest backend.
//
// Example:
//
//	{
//	  "chartData": [ {"time": 1736985600, "close": 2005.0, ...}, ... ],
//	  "trades": [ ... ],
//	  "summary": { ... }
//	}
//
// Only chartData is consumed by playback. trades and summary are kept raw so
// a snapshot written back to disk round-trips what the backend sent.
type BacktestResponse struct {
	ChartData []Bar           `json:"chartData"`
	Trades    json.RawMessage `json:"trades,omitempty"`
	Summary   json.RawMessage `json:"summary,omitempty"`
}

// HasChartData reports whether the chartData key was present and non-null.
// An empty array counts as present.
func (r *BacktestResponse) HasChartData() bool {
	return r != nil && r.ChartData != nil
}
