package main

import (
	"flag"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/analysis"
	"backtest-playback/internal/backtest"
	"backtest-playback/internal/data"
	"backtest-playback/internal/ledger"
	"backtest-playback/internal/logging"
	"backtest-playback/internal/model"
	"backtest-playback/internal/playback"
	"backtest-playback/internal/render"
	"backtest-playback/internal/store"
	"backtest-playback/internal/strategy"
)

// Demo:
// - Generate a synthetic price history and run a band-reversion strategy over it (no backend needed)
// - Play it through the same scheduler the API uses, logging frames
// - Optionally save the run for `cli play --data` and the frames as CSV
func main() {
	bars := flag.Int("bars", 1200, "Number of bars to generate")
	seed := flag.Int64("seed", 42, "Random seed")
	trail := flag.Float64("trail", 0.004, "Trailing stop distance as a fraction of the close")
	window := flag.Int("window", playback.DefaultWindowSize, "Visible window size")
	active := flag.Float64("active-trade-speed", 4, "Speed multiplier while a trade is open")
	general := flag.Float64("general-speed", 20, "Speed multiplier while flat")
	every := flag.Int("every", 50, "Log every Nth frame")
	out := flag.String("out", "", "Optional path to save the generated run as backend JSON")
	record := flag.String("record", "", "Optional path to write the frame ledger CSV")
	flag.Parse()

	if _, err := logging.Setup(logging.Options{Level: "info"}); err != nil {
		panic(err)
	}

	strat, err := strategy.NewBandReversion(strategy.BandReversionParams{TrailPct: *trail})
	if err != nil {
		panic(err)
	}
	result, err := backtest.New().Run(data.Synthetic(data.SyntheticOptions{Bars: *bars, Seed: *seed}), strat)
	if err != nil {
		panic(err)
	}
	generated := result.Bars
	if *out != "" {
		if err := data.SaveBacktestJSON(&model.BacktestResponse{ChartData: generated}, *out); err != nil {
			panic(err)
		}
		fmt.Printf("Saved %d bars to %s\n", len(generated), *out)
	}

	series := model.NewSeries(generated)
	st := analysis.Describe(series)
	fmt.Printf("Generated %d bars with %s: %d closed trades (%d won), total profit %.2f\n",
		st.Bars, strat.Name(), result.Trades, result.Wins, st.FinalProfit)

	sink := render.NewLogSink(*every)
	recorder := ledger.NewRecorder()
	emitter := playback.NewSummaryEmitter(nil)
	if err := emitter.Subscribe(sink.Summary); err != nil {
		panic(err)
	}

	player, err := playback.NewPlayer(store.New(), render.Tee(sink, recorder), playback.Options{
		WindowSize: *window,
		Speeds:     playback.Speeds{ActiveTrade: *active, General: *general},
		Emitter:    emitter,
	})
	if err != nil {
		panic(err)
	}

	status := player.Status()
	fmt.Printf("Estimated playback: %v\n", playback.EstimateDuration(series, *window, status.Delays).Round(time.Millisecond))

	start := time.Now()
	if !player.Load(series) {
		log.Fatalf("need at least %d bars, got %d", *window, series.Len())
	}
	<-sink.Done()
	player.Dispose()
	emitter.Bus().WaitAsync()

	fmt.Printf("Played %d frames in %v\n", sink.Frames(), time.Since(start).Round(time.Millisecond))
	if last, ok := emitter.Latest(); ok {
		fmt.Printf("Last summary: total profit %.2f after %d trades\n", last.TotalProfit, last.TradeCount)
	}

	if *record != "" {
		if err := ledger.WriteCSVFile(*record, recorder.Rows()); err != nil {
			panic(err)
		}
		fmt.Printf("Wrote frame ledger to %s\n", *record)
	}
}
