package model

// TradeState is a human-friendly trade mode for a bar.
// Keep these values stable; they are intended for CSV and stream output.
type TradeState string

const (
	TradeStateFlat    TradeState = "FLAT"
	TradeStateInTrade TradeState = "IN_TRADE"
)

func TradeStateFromEntry(entry OptFloat) TradeState {
	if entry.Positive() {
		return TradeStateInTrade
	}
	return TradeStateFlat
}
