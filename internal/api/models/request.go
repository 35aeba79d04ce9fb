package models

// LoadRequest is the body of POST /api/v1/playback/load. The body may be empty.
type LoadRequest struct {
	NumCandles int `json:"num_candles" binding:"omitempty,min=1,max=100000"`
}

// SpeedRequest is the body of PUT /api/v1/playback/speed.
// Both multipliers must be finite and greater than zero.
type SpeedRequest struct {
	ActiveTradeSpeed *float64 `json:"active_trade_speed" binding:"required"`
	GeneralSpeed     *float64 `json:"general_speed" binding:"required"`
}

// TradesQuery are the query parameters of GET /api/v1/series/trades.
type TradesQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=0"`
}
