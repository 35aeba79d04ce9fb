package model

import "time"

// Bar is one time step of a backtest run as produced by the backend.
// Every analytics field is precomputed; the playback engine only reads them.
type Bar struct {
	// Time is a unix timestamp in seconds. Strictly increasing across a series.
	Time int64 `json:"time" csv:"time"`

	Open  float64 `json:"open,omitempty" csv:"open"`
	High  float64 `json:"high,omitempty" csv:"high"`
	Low   float64 `json:"low,omitempty" csv:"low"`
	Close float64 `json:"close" csv:"close"`

	// Volatility bands. Missing until the backend has enough history.
	BBUpper OptFloat `json:"bb_upper" csv:"bb_upper"`
	BBLower OptFloat `json:"bb_lower" csv:"bb_lower"`

	// EntryPrice of zero (or absent) means no trade is open at this bar.
	EntryPrice OptFloat `json:"entry_price" csv:"entry_price"`
	TrailingSL OptFloat `json:"trailing_sl" csv:"trailing_sl"`

	TotalProfit float64 `json:"total_profit" csv:"total_profit"`
	TradeCount  int     `json:"trade_count" csv:"trade_count"`
}

// InTrade reports whether a trade is open at this bar.
func (b Bar) InTrade() bool {
	return b.EntryPrice.Positive()
}

func (b Bar) State() TradeState {
	return TradeStateFromEntry(b.EntryPrice)
}

func (b Bar) Timestamp() time.Time {
	return time.Unix(b.Time, 0).UTC()
}
