package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/api"
	"backtest-playback/internal/config"
	"backtest-playback/internal/data"
	"backtest-playback/internal/logging"
	"backtest-playback/internal/playback"
	"backtest-playback/internal/render"
	"backtest-playback/internal/store"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_FILE"), "Path to YAML config (optional)")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logCloser, err := logging.Setup(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to configure logging: %v", err)
	}
	defer logCloser.Close()

	if cfg.Server.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	client := data.NewBacktestClient(cfg.Backend.URL, cfg.Backend.Timeout)
	client.Path = cfg.Backend.Path
	// The response cache is for local development only.
	if cfg.Backend.CacheEnabled && !cfg.Server.Production() {
		client.Cache = data.NewResponseCache(cfg.Backend.CacheTTL)
		defer client.Cache.Close()
	}

	hub := render.NewHub(cfg.Playback.WindowSize, render.DefaultChartStyle())
	defer hub.Close()

	emitter := playback.NewSummaryEmitter(nil)
	if err := hub.ForwardSummaries(emitter); err != nil {
		log.Fatalf("Failed to subscribe stream to summaries: %v", err)
	}

	player, err := playback.NewPlayer(store.New(), hub, playback.Options{
		WindowSize:     cfg.Playback.WindowSize,
		BaseFrameDelay: cfg.Playback.BaseFrameDelay,
		Speeds:         cfg.Playback.Speeds,
		Emitter:        emitter,
	})
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}
	defer player.Dispose()

	if cfg.Playback.AutoLoad {
		go autoLoad(client, player, cfg.Backend.NumCandles)
	}

	router := api.NewRouter(api.Deps{
		Player:      player,
		Fetcher:     client,
		Hub:         hub,
		NumCandles:  cfg.Backend.NumCandles,
		CORSOrigins: cfg.Server.CORSOrigins,
		StaticDir:   cfg.Server.StaticDir,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting API server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
}

// autoLoad fetches the default history once at startup, like the chart does
// when it mounts. A failure is logged and the server keeps running.
func autoLoad(client *data.BacktestClient, player *playback.Player, numCandles int) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	series, err := client.FetchSeries(ctx, data.FetchParams{NumCandles: numCandles})
	if err != nil {
		log.WithError(err).Warn("Initial load failed; POST /api/v1/playback/load to retry")
		return
	}
	player.Load(series)
}
