package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"MarketPulse/internal/domain/models"
	drepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
	snapshotLimit  = 50
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard clients connect from arbitrary origins.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Envelope is the wire format for every server push.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Signals   any       `json:"signals,omitempty"`
	Matches   any       `json:"matches,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type clientRequest struct {
	Type  string `json:"type"`
	Limit string `json:"limit,omitempty"`
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks websocket clients and fans out signal updates. It
// implements the Broadcaster port.
type Hub struct {
	store   drepo.Storage
	metrics drepo.Metrics
	log     *logger.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

func NewHub(store drepo.Storage, metrics drepo.Metrics, log *logger.Logger) *Hub {
	return &Hub{
		store:      store,
		metrics:    metrics,
		log:        log,
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan []byte, sendBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run owns the client registry until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWebsocketClients(n)
		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.metrics.SetWebsocketClients(n)
		case msg := <-h.broadcast:
			h.mu.RLock()
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer, drop the frame
				}
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.metrics.SetWebsocketClients(0)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastSignals pushes a signals_update frame to every client.
func (h *Hub) BroadcastSignals(signals []*models.Signal) {
	h.push(Envelope{Type: "signals_update", Data: signals, Timestamp: time.Now().UTC()})
}

// BroadcastMatches pushes a matches_update frame to every client.
func (h *Hub) BroadcastMatches(matches []*models.StrategicMatch) {
	h.push(Envelope{Type: "matches_update", Data: matches, Timestamp: time.Now().UTC()})
}

func (h *Hub) push(env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		h.log.Error("websocket marshal failed", logger.Error(err))
		return
	}
	select {
	case h.broadcast <- b:
	default:
		h.log.Warn("websocket broadcast queue full, frame dropped")
	}
}

// Handler upgrades the connection and serves the realtime protocol: an
// initial_data snapshot on connect, then pushed updates, with
// get_signals / get_matches request frames from the client.
func (h *Hub) Handler(c echo.Context) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return err
	}

	cl := &client{hub: h, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register <- cl

	go cl.writePump()
	go cl.readPump()

	cl.sendSnapshot(c.Request().Context(), "initial_data")
	return nil
}

func (c *client) sendSnapshot(ctx context.Context, frameType string) {
	signals, err := c.hub.store.QuerySignals(ctx, drepo.SignalFilter{Limit: snapshotLimit})
	if err != nil {
		c.hub.log.Warn("snapshot signals query failed", logger.Error(err))
	}
	matches, err := c.hub.store.QueryMatches(ctx, drepo.MatchFilter{Limit: snapshotLimit})
	if err != nil {
		c.hub.log.Warn("snapshot matches query failed", logger.Error(err))
	}

	b, err := json.Marshal(Envelope{
		Type:      frameType,
		Signals:   signals,
		Matches:   matches,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

func (c *client) reply(env Envelope) {
	b, err := json.Marshal(env)
	if err != nil {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// readPump outlives the HTTP handler, and net/http cancels the request
// context as soon as the handler returns, so per-frame queries run on a
// context tied to the connection instead.
func (c *client) readPump() {
	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		c.hub.unregister <- c
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var req clientRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			continue
		}
		limit := util.ParseIntDefault(req.Limit, snapshotLimit)
		switch req.Type {
		case "get_signals":
			signals, err := c.hub.store.QuerySignals(ctx, drepo.SignalFilter{Limit: limit})
			if err != nil {
				continue
			}
			c.reply(Envelope{Type: "signals_update", Data: signals, Timestamp: time.Now().UTC()})
		case "get_matches":
			matches, err := c.hub.store.QueryMatches(ctx, drepo.MatchFilter{Limit: limit})
			if err != nil {
				continue
			}
			c.reply(Envelope{Type: "matches_update", Data: matches, Timestamp: time.Now().UTC()})
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
