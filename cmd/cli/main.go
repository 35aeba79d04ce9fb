package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"backtest-playback/internal/analysis"
	"backtest-playback/internal/config"
	"backtest-playback/internal/data"
	"backtest-playback/internal/ledger"
	"backtest-playback/internal/logging"
	"backtest-playback/internal/model"
	"backtest-playback/internal/playback"
	"backtest-playback/internal/render"
	"backtest-playback/internal/store"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "cli",
	Short: "Play back and inspect precomputed backtest runs",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(); err != nil {
			return err
		}
		path, _ := cmd.Flags().GetString("config")
		c, err := config.Load(path)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.Logging.Level = lvl
		}
		if _, err := logging.Setup(c.Logging); err != nil {
			return err
		}
		cfg = c
		return nil
	},
	SilenceUsage: true,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a run in the terminal, one log line per frame",
	Example: `  cli play --data results/run.json --general-speed 4
  cli play --num-candles 500 --record results/frames.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		series, err := loadSeries(cmd)
		if err != nil {
			return err
		}

		active, _ := cmd.Flags().GetFloat64("active-trade-speed")
		general, _ := cmd.Flags().GetFloat64("general-speed")
		speeds := cfg.Playback.Speeds
		if cmd.Flags().Changed("active-trade-speed") {
			speeds.ActiveTrade = active
		}
		if cmd.Flags().Changed("general-speed") {
			speeds.General = general
		}
		every, _ := cmd.Flags().GetInt("every")
		recordPath, _ := cmd.Flags().GetString("record")

		logSink := render.NewLogSink(every)
		recorder := ledger.NewRecorder()
		emitter := playback.NewSummaryEmitter(nil)
		if err := emitter.Subscribe(logSink.Summary); err != nil {
			return err
		}

		player, err := playback.NewPlayer(store.New(), render.Tee(logSink, recorder), playback.Options{
			WindowSize:     cfg.Playback.WindowSize,
			BaseFrameDelay: cfg.Playback.BaseFrameDelay,
			Speeds:         speeds,
			Emitter:        emitter,
		})
		if err != nil {
			return err
		}
		defer player.Dispose()

		st := player.Status()
		log.Infof("Estimated playback: %v", playback.EstimateDuration(series, player.WindowSize(), st.Delays).Round(time.Millisecond))
		if !player.Load(series) {
			return fmt.Errorf("series has %d bars, need at least %d", series.Len(), player.WindowSize())
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-logSink.Done():
		case <-quit:
			log.Info("Interrupted")
		}
		player.Stop()
		emitter.Bus().WaitAsync()

		if recordPath != "" {
			if err := os.MkdirAll(filepath.Dir(recordPath), 0755); err != nil {
				return err
			}
			if err := ledger.WriteCSVFile(recordPath, recorder.Rows()); err != nil {
				return err
			}
			fmt.Printf("Wrote %d frames to %s\n", len(recorder.Rows()), recordPath)
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise a run and rank its trades",
	RunE: func(cmd *cobra.Command, args []string) error {
		series, err := loadSeries(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("top")

		st := analysis.Describe(series)
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Metric", "Value"})
		table.Append([]string{"Bars", strconv.Itoa(st.Bars)})
		table.Append([]string{"Start (UTC)", st.StartUTC.Format(time.RFC3339)})
		table.Append([]string{"End (UTC)", st.EndUTC.Format(time.RFC3339)})
		table.Append([]string{"Close min / max", fmt.Sprintf("%.2f / %.2f", st.MinClose, st.MaxClose)})
		table.Append([]string{"Close P05 / P95", fmt.Sprintf("%.2f / %.2f", st.P05Close, st.P95Close)})
		table.Append([]string{"In trade", fmt.Sprintf("%d bars (%.1f%%)", st.InTradeBars, st.InTradeRatio*100)})
		table.Append([]string{"Trades (closed / open)", fmt.Sprintf("%d / %d", st.Trades.Count, st.Trades.Open)})
		table.Append([]string{"Win rate", fmt.Sprintf("%.1f%%", st.Trades.WinRate*100)})
		table.Append([]string{"Mean / median profit", fmt.Sprintf("%.2f / %.2f", st.Trades.MeanProfit, st.Trades.MedianProfit)})
		table.Append([]string{"Total profit", fmt.Sprintf("%.2f", st.FinalProfit)})
		table.Append([]string{"Playback at current speeds", estimate(series).String()})
		table.Render()

		ranked := analysis.RankTradesByProfit(analysis.Segments(series), limit)
		if len(ranked) == 0 {
			return nil
		}
		fmt.Println()
		trades := tablewriter.NewWriter(os.Stdout)
		trades.SetHeader([]string{"Rank", "Entry (UTC)", "Bars", "Entry", "Last stop", "Profit"})
		for _, r := range ranked {
			trades.Append([]string{
				strconv.Itoa(r.Rank),
				r.StartUTC.Format("2006-01-02 15:04"),
				strconv.Itoa(r.Bars),
				fmt.Sprintf("%.2f", r.EntryPrice),
				fmtOpt(r.LastStop),
				fmt.Sprintf("%.2f", r.Profit),
			})
		}
		trades.Render()
		return nil
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Fetch a run from the backend and save it as JSON for offline playback",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		n, _ := cmd.Flags().GetInt("num-candles")
		if n == 0 {
			n = cfg.Backend.NumCandles
		}

		client := data.NewBacktestClient(cfg.Backend.URL, cfg.Backend.Timeout)
		client.Path = cfg.Backend.Path
		resp, err := client.Fetch(cmd.Context(), data.FetchParams{NumCandles: n})
		if err != nil {
			return fmt.Errorf("fetch backtest: %w", err)
		}
		if err := data.SaveBacktestJSON(resp, out); err != nil {
			return err
		}
		fmt.Printf("Saved %d bars to %s\n", len(resp.ChartData), out)
		return nil
	},
}

func loadSeries(cmd *cobra.Command) (model.Series, error) {
	if path, _ := cmd.Flags().GetString("data"); path != "" {
		return data.LoadFile(path)
	}
	n, _ := cmd.Flags().GetInt("num-candles")
	if n == 0 {
		n = cfg.Backend.NumCandles
	}
	client := data.NewBacktestClient(cfg.Backend.URL, cfg.Backend.Timeout)
	client.Path = cfg.Backend.Path
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return client.FetchSeries(ctx, data.FetchParams{NumCandles: n})
}

func estimate(series model.Series) time.Duration {
	delays, err := cfg.Playback.Speeds.Delays(cfg.Playback.BaseFrameDelay)
	if err != nil {
		return 0
	}
	return playback.EstimateDuration(series, cfg.Playback.WindowSize, delays).Round(time.Second)
}

func fmtOpt(o model.OptFloat) string {
	if !o.Valid {
		return "-"
	}
	return fmt.Sprintf("%.2f", o.Value)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to YAML config (optional)")
	rootCmd.PersistentFlags().String("log-level", "", "Override the configured log level")

	for _, c := range []*cobra.Command{playCmd, statsCmd} {
		c.Flags().String("data", "", "Path to a saved backend response (.json) or bar file (.csv); fetches from the backend when empty")
		c.Flags().Int("num-candles", 0, "History length to request from the backend (0 = config)")
	}

	playCmd.Flags().Float64("active-trade-speed", 1, "Speed multiplier while a trade is open")
	playCmd.Flags().Float64("general-speed", 1, "Speed multiplier while flat")
	playCmd.Flags().Int("every", 25, "Log every Nth frame")
	playCmd.Flags().String("record", "", "Write one CSV row per rendered frame to this path")

	statsCmd.Flags().Int("top", 10, "Number of ranked trades to show (0 = all)")

	snapshotCmd.Flags().String("out", "data/backtest.json", "Output JSON path")
	snapshotCmd.Flags().Int("num-candles", 0, "History length to request from the backend (0 = config)")

	rootCmd.AddCommand(playCmd, statsCmd, snapshotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
