package analysis

import (
	"sort"
)

type RankedTrade struct {
	Rank int `json:"rank"`
	TradeSegment
}

// RankTradesByProfit sorts closed trades descending by profit. Ties keep
// series order. limit <= 0 returns every trade.
func RankTradesByProfit(segments []TradeSegment, limit int) []RankedTrade {
	out := make([]RankedTrade, 0, len(segments))
	for _, s := range segments {
		if !s.Closed {
			continue
		}
		out = append(out, RankedTrade{TradeSegment: s})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Profit > out[j].Profit
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}
