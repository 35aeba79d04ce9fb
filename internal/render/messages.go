package render

import (
	"backtest-playback/internal/playback"
)

// Message types sent on the stream.
const (
	TypeHello    = "hello"
	TypeFrame    = "frame"
	TypeClear    = "clear"
	TypeSummary  = "summary"
	TypeFinished = "finished"
)

// Message is the envelope of every stream message.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// LineStyle is how the chart draws one channel.
type LineStyle struct {
	Color     string `json:"color"`
	LineWidth int    `json:"lineWidth"`
}

// ChartStyle is sent once per connection so clients need no hard-coded colours.
type ChartStyle struct {
	Background string    `json:"background"`
	Price      LineStyle `json:"price"`
	Upper      LineStyle `json:"upper"`
	Lower      LineStyle `json:"lower"`
}

func DefaultChartStyle() ChartStyle {
	return ChartStyle{
		Background: "#131722",
		Price:      LineStyle{Color: "#26a69a", LineWidth: 2},
		Upper:      LineStyle{Color: "#264fa6ff", LineWidth: 2},
		Lower:      LineStyle{Color: "#264fa6ff", LineWidth: 2},
	}
}

// Hello greets a new client with the style and, when playback is under way,
// the most recent frame and live markers.
type Hello struct {
	Style       ChartStyle        `json:"style"`
	WindowSize  int               `json:"window_size"`
	Last        *playback.Frame   `json:"last_frame,omitempty"`
	LiveMarkers []playback.Marker `json:"live_markers,omitempty"`
	Summary     *playback.Summary `json:"summary,omitempty"`
}

// Finished is sent when a loop reaches the end of its series.
type Finished struct {
	Generation uint64 `json:"generation"`
	Ticks      int    `json:"ticks"`
}
