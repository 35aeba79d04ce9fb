package models

import (
	"backtest-playback/internal/analysis"
	"backtest-playback/internal/playback"
)

// LoadResponse reports the series that was loaded and whether playback started.
type LoadResponse struct {
	SeriesID string          `json:"series_id"`
	Bars     int             `json:"bars"`
	Started  bool            `json:"started"`
	Message  string          `json:"message,omitempty"`
	Status   playback.Status `json:"status"`
}

// TradesResponse lists closed trades ranked by profit.
type TradesResponse struct {
	SeriesID string                 `json:"series_id"`
	Total    int                    `json:"total"`
	Open     int                    `json:"open"`
	Trades   []analysis.RankedTrade `json:"trades"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
