package api

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/api/handlers"
	"backtest-playback/internal/api/middleware"
	"backtest-playback/internal/api/models"
	"backtest-playback/internal/playback"
	"backtest-playback/internal/render"
)

// Deps are the components the HTTP surface is wired to.
type Deps struct {
	Player      *playback.Player
	Fetcher     handlers.SeriesFetcher
	Hub         *render.Hub
	NumCandles  int
	CORSOrigins []string
	StaticDir   string
}

// NewRouter builds the gin engine with middleware, API routes and, when
// StaticDir exists, the single-page app.
func NewRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(d.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	playbackHandler := handlers.NewPlaybackHandler(d.Player, d.Fetcher, d.NumCandles)
	seriesHandler := handlers.NewSeriesHandler(d.Player.Store())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/playback/load", playbackHandler.Load)
		api.POST("/playback/series", playbackHandler.LoadSeries)
		api.PUT("/playback/speed", playbackHandler.SetSpeed)
		api.POST("/playback/replay", playbackHandler.Replay)
		api.POST("/playback/stop", playbackHandler.Stop)
		api.GET("/playback/status", playbackHandler.Status)

		api.GET("/series/stats", seriesHandler.Stats)
		api.GET("/series/trades", seriesHandler.Trades)

		if d.Hub != nil {
			api.GET("/stream", handlers.Stream(d.Hub))
		}
	}

	serveStatic(router, d.StaticDir)
	return router
}

func serveStatic(router *gin.Engine, staticDir string) {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{Code: "NOT_FOUND", Message: "Not found"},
		})
	}
	if staticDir == "" {
		router.NoRoute(notFound)
		return
	}
	if _, err := os.Stat(staticDir); err != nil {
		log.Printf("Static directory %s not found, skipping static file serving", staticDir)
		router.NoRoute(notFound)
		return
	}

	router.Static("/assets", filepath.Join(staticDir, "assets"))
	router.StaticFile("/favicon.ico", filepath.Join(staticDir, "favicon.ico"))

	// Serve index.html for all non-API routes (SPA routing)
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			notFound(c)
			return
		}
		c.File(filepath.Join(staticDir, "index.html"))
	})
	log.Printf("Serving static files from %s", staticDir)
}
