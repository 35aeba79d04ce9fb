package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"backtest-playback/internal/analysis"
	"backtest-playback/internal/api/models"
	"backtest-playback/internal/store"
)

// SeriesHandler serves read-only views of the loaded series
type SeriesHandler struct {
	store *store.Store
}

func NewSeriesHandler(st *store.Store) *SeriesHandler {
	return &SeriesHandler{store: st}
}

// Stats handles GET /api/v1/series/stats
func (h *SeriesHandler) Stats(c *gin.Context) {
	series := h.store.Current()
	if series.IsZero() {
		respondError(c, http.StatusNotFound, "NO_SERIES", "no series loaded", nil)
		return
	}
	c.JSON(http.StatusOK, analysis.Describe(series))
}

// Trades handles GET /api/v1/series/trades
func (h *SeriesHandler) Trades(c *gin.Context) {
	var q models.TradesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	series := h.store.Current()
	if series.IsZero() {
		respondError(c, http.StatusNotFound, "NO_SERIES", "no series loaded", nil)
		return
	}

	segments := analysis.Segments(series)
	ranked := analysis.RankTradesByProfit(segments, q.Limit)
	open := 0
	for _, s := range segments {
		if !s.Closed {
			open++
		}
	}
	c.JSON(http.StatusOK, models.TradesResponse{
		SeriesID: series.ID.String(),
		Total:    len(segments) - open,
		Open:     open,
		Trades:   ranked,
	})
}
