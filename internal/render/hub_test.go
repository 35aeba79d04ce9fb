package render

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-playback/internal/playback"
)

type received struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func next(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg received
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func stopMarker(id playback.MarkerID, price float64) playback.Marker {
	return playback.Marker{ID: id, Kind: playback.MarkerStopLoss, Price: price, Title: "Stop Loss", Color: "red", LineWidth: 2}
}

func TestHubStreamsFramesAndSummaries(t *testing.T) {
	h := NewHub(300, DefaultChartStyle())
	conn := dial(t, h)

	hello := next(t, conn)
	require.Equal(t, TypeHello, hello.Type)
	var greeting Hello
	require.NoError(t, json.Unmarshal(hello.Data, &greeting))
	assert.Equal(t, 300, greeting.WindowSize)
	assert.Equal(t, "#26a69a", greeting.Style.Price.Color)
	assert.Nil(t, greeting.Last)
	assert.Equal(t, 1, h.Clients())

	h.Render(playback.Frame{
		Cursor:         301,
		Time:           1736985600,
		ScrollToLatest: true,
		Markers:        []playback.MarkerCommand{{Op: playback.MarkerCreate, Marker: stopMarker(1, 95)}},
	})
	frame := next(t, conn)
	assert.Equal(t, TypeFrame, frame.Type)
	var f playback.Frame
	require.NoError(t, json.Unmarshal(frame.Data, &f))
	assert.Equal(t, 301, f.Cursor)
	assert.True(t, f.ScrollToLatest)

	h.PublishSummary(playback.Summary{TotalProfit: 4.5, TradeCount: 1})
	summary := next(t, conn)
	assert.Equal(t, TypeSummary, summary.Type)
	assert.JSONEq(t, `{"total_profit": 4.5, "trade_count": 1, "time": 0, "cursor": 0, "generation": 0}`, string(summary.Data))

	h.ClearMarkers([]playback.MarkerCommand{{Op: playback.MarkerRemove, Marker: stopMarker(1, 95)}})
	assert.Equal(t, TypeClear, next(t, conn).Type)

	h.Finished(3, 42)
	fin := next(t, conn)
	assert.Equal(t, TypeFinished, fin.Type)
	assert.JSONEq(t, `{"generation": 3, "ticks": 42}`, string(fin.Data))
}

func TestHubGreetsLateJoinersWithCurrentState(t *testing.T) {
	h := NewHub(5, DefaultChartStyle())
	h.Render(playback.Frame{
		Cursor:  7,
		Markers: []playback.MarkerCommand{{Op: playback.MarkerCreate, Marker: stopMarker(4, 90)}},
	})
	h.PublishSummary(playback.Summary{TradeCount: 2})

	conn := dial(t, h)
	hello := next(t, conn)
	var greeting Hello
	require.NoError(t, json.Unmarshal(hello.Data, &greeting))

	require.NotNil(t, greeting.Last)
	assert.Equal(t, 7, greeting.Last.Cursor)
	require.Len(t, greeting.LiveMarkers, 1)
	assert.Equal(t, playback.MarkerID(4), greeting.LiveMarkers[0].ID)
	require.NotNil(t, greeting.Summary)
	assert.Equal(t, 2, greeting.Summary.TradeCount)
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	h := NewHub(5, DefaultChartStyle())
	conn := dial(t, h)
	next(t, conn)

	h.Close()
	assert.Equal(t, 0, h.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
}

func TestTeeForwardsToEverySink(t *testing.T) {
	a, b := NewLogSink(1), NewHub(5, DefaultChartStyle())
	sink := Tee(a, b)

	sink.Render(playback.Frame{Cursor: 5})
	sink.(playback.FinishNotifier).Finished(1, 1)

	assert.Equal(t, 1, a.Frames())
	select {
	case <-a.Done():
	default:
		t.Fatal("finish was not forwarded")
	}
}
