package backtest

import (
	"fmt"
	"math"

	"backtest-playback/internal/model"
	"backtest-playback/internal/strategy"
)

type Engine struct{}

func New() *Engine { return &Engine{} }

type Result struct {
	Bars        []model.Bar
	TotalProfit float64
	Trades      int
	Wins        int
}

// Run walks bars through strat and returns copies with the trade columns
// (entry_price, trailing_sl, total_profit, trade_count) filled in. A trade
// is filled at the close of the bar that decides it; the exit bar is flat.
func (e *Engine) Run(bars []model.Bar, strat strategy.Strategy) (*Result, error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if len(bars) == 0 {
		return nil, fmt.Errorf("no bars")
	}

	res := &Result{Bars: make([]model.Bar, len(bars))}
	var pos strategy.Position

	for idx, b := range bars {
		d := strat.Decide(strategy.Context{Index: idx, Bar: b, Position: pos})

		switch d.Action {
		case strategy.Enter:
			if pos.Open {
				return nil, fmt.Errorf("bar %d: %s entered while already in a trade", idx, strat.Name())
			}
			pos = strategy.Position{Open: true, Entry: b.Close, Stop: d.Stop}
		case strategy.Exit:
			if !pos.Open {
				return nil, fmt.Errorf("bar %d: %s exited without a trade", idx, strat.Name())
			}
			pnl := b.Close - pos.Entry
			res.TotalProfit += pnl
			res.Trades++
			if pnl > 0 {
				res.Wins++
			}
			pos = strategy.Position{}
		case strategy.Hold:
			if pos.Open {
				pos.Stop = d.Stop
			}
		default:
			return nil, fmt.Errorf("bar %d: unknown action %q", idx, d.Action)
		}

		b.EntryPrice = model.Some(pos.Entry)
		b.TrailingSL = model.Some(pos.Stop)
		b.TotalProfit = math.Round(res.TotalProfit*100) / 100
		b.TradeCount = res.Trades
		res.Bars[idx] = b
	}
	return res, nil
}
