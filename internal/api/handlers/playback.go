package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/api/models"
	"backtest-playback/internal/data"
	"backtest-playback/internal/model"
	"backtest-playback/internal/playback"
)

// SeriesFetcher fetches a series from the backtest backend.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, params data.FetchParams) (model.Series, error)
}

// PlaybackHandler handles playback control requests
type PlaybackHandler struct {
	player     *playback.Player
	fetcher    SeriesFetcher
	numCandles int
}

// NewPlaybackHandler creates a new playback handler. numCandles is used when
// a load request does not name a history length.
func NewPlaybackHandler(player *playback.Player, fetcher SeriesFetcher, numCandles int) *PlaybackHandler {
	return &PlaybackHandler{player: player, fetcher: fetcher, numCandles: numCandles}
}

// Load handles POST /api/v1/playback/load
func (h *PlaybackHandler) Load(c *gin.Context) {
	var req models.LoadRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	if req.NumCandles == 0 {
		req.NumCandles = h.numCandles
	}

	series, err := h.fetcher.FetchSeries(c.Request.Context(), data.FetchParams{NumCandles: req.NumCandles})
	if err != nil {
		// The running playback, if any, is left untouched.
		log.WithError(err).WithField("num_candles", req.NumCandles).Error("load: backend fetch failed")
		var be *data.BackendError
		switch {
		case errors.As(err, &be):
			respondError(c, http.StatusBadGateway, be.Code, be.Message, map[string]interface{}{
				"status_code": be.StatusCode,
			})
		case errors.Is(err, data.ErrMissingChartData):
			respondError(c, http.StatusBadGateway, "MISSING_CHART_DATA", err.Error(), nil)
		default:
			respondError(c, http.StatusBadGateway, "DATA_FETCH_ERROR", err.Error(), nil)
		}
		return
	}

	c.JSON(http.StatusOK, h.load(series))
}

// LoadSeries handles POST /api/v1/playback/series
func (h *PlaybackHandler) LoadSeries(c *gin.Context) {
	var doc model.BacktestResponse
	if err := c.ShouldBindJSON(&doc); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	series, err := data.ToSeries(&doc)
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_CHART_DATA", err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, h.load(series))
}

func (h *PlaybackHandler) load(series model.Series) models.LoadResponse {
	started := h.player.Load(series)
	resp := models.LoadResponse{
		SeriesID: series.ID.String(),
		Bars:     series.Len(),
		Started:  started,
		Status:   h.player.Status(),
	}
	if !started {
		resp.Message = "series is shorter than one window; playback not started"
	}
	return resp
}

// SetSpeed handles PUT /api/v1/playback/speed
func (h *PlaybackHandler) SetSpeed(c *gin.Context) {
	var req models.SpeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}
	speeds := playback.Speeds{ActiveTrade: *req.ActiveTradeSpeed, General: *req.GeneralSpeed}
	if err := h.player.SetSpeeds(speeds); err != nil {
		code := "INVALID_CONFIG"
		if errors.Is(err, playback.ErrInvalidSpeed) {
			code = "INVALID_SPEED"
		}
		respondError(c, http.StatusBadRequest, code, err.Error(), nil)
		return
	}
	c.JSON(http.StatusOK, h.player.Status())
}

// Replay handles POST /api/v1/playback/replay
func (h *PlaybackHandler) Replay(c *gin.Context) {
	if !h.player.Replay() {
		respondError(c, http.StatusConflict, "NOT_PLAYABLE", "no series with at least one full window is loaded", map[string]interface{}{
			"window_size": h.player.WindowSize(),
			"bars":        h.player.Store().Len(),
		})
		return
	}
	c.JSON(http.StatusOK, h.player.Status())
}

// Stop handles POST /api/v1/playback/stop
func (h *PlaybackHandler) Stop(c *gin.Context) {
	h.player.Stop()
	c.JSON(http.StatusOK, h.player.Status())
}

// Status handles GET /api/v1/playback/status
func (h *PlaybackHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, h.player.Status())
}
