package render

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"backtest-playback/internal/playback"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 256
)

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub fans rendered frames, marker teardown and summaries out to WebSocket
// clients. It implements playback.Sink and playback.FinishNotifier.
// A client that falls sendBuffer messages behind is disconnected.
type Hub struct {
	upgrader   websocket.Upgrader
	style      ChartStyle
	windowSize int

	mu      sync.Mutex
	clients map[*client]struct{}
	last    *playback.Frame
	live    map[playback.MarkerID]playback.Marker
	summary *playback.Summary
	closed  bool
}

func NewHub(windowSize int, style ChartStyle) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // origin policy is enforced by the CORS middleware
			},
		},
		style:      style,
		windowSize: windowSize,
		clients:    make(map[*client]struct{}),
		live:       make(map[playback.MarkerID]playback.Marker),
	}
}

func (h *Hub) Render(f playback.Frame) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = &f
	h.applyLocked(f.Markers)
	h.broadcastLocked(TypeFrame, f)
}

func (h *Hub) ClearMarkers(cmds []playback.MarkerCommand) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.applyLocked(cmds)
	h.broadcastLocked(TypeClear, cmds)
}

func (h *Hub) Finished(gen uint64, ticks int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcastLocked(TypeFinished, Finished{Generation: gen, Ticks: ticks})
}

// PublishSummary forwards a summary snapshot to every client.
func (h *Hub) PublishSummary(s playback.Summary) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.summary = &s
	h.broadcastLocked(TypeSummary, s)
}

// ForwardSummaries subscribes the hub to emitter.
func (h *Hub) ForwardSummaries(emitter *playback.SummaryEmitter) error {
	return emitter.Subscribe(h.PublishSummary)
}

func (h *Hub) applyLocked(cmds []playback.MarkerCommand) {
	for _, c := range cmds {
		switch c.Op {
		case playback.MarkerCreate:
			h.live[c.Marker.ID] = c.Marker
		case playback.MarkerRemove:
			delete(h.live, c.Marker.ID)
		}
	}
}

func (h *Hub) broadcastLocked(typ string, data interface{}) {
	if len(h.clients) == 0 {
		return
	}
	raw, err := json.Marshal(Message{Type: typ, Data: data})
	if err != nil {
		log.WithError(err).Errorf("render: failed to encode %s message", typ)
		return
	}
	for c := range h.clients {
		select {
		case c.send <- raw:
		default:
			log.WithField("remote", c.conn.RemoteAddr().String()).Warn("render: client too slow, disconnecting")
			delete(h.clients, c)
			c.close()
		}
	}
}

func (h *Hub) helloLocked() Hello {
	hello := Hello{Style: h.style, WindowSize: h.windowSize, Last: h.last, Summary: h.summary}
	for _, m := range h.live {
		hello.LiveMarkers = append(hello.LiveMarkers, m)
	}
	sort.Slice(hello.LiveMarkers, func(i, j int) bool { return hello.LiveMarkers[i].ID < hello.LiveMarkers[j].ID })
	return hello
}

// ServeWS upgrades the request and streams messages until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("render: websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	raw, err := json.Marshal(Message{Type: TypeHello, Data: h.helloLocked()})
	if err == nil {
		c.send <- raw
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	log.WithFields(log.Fields{"remote": conn.RemoteAddr().String(), "clients": n}).Info("render: client connected")

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards client messages and unregisters the client on error.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("render: websocket read error: %v", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()
	for raw := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.unregister(c)
			return
		}
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}
