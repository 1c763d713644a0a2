// Package publish pushes beast snapshots to rendering clients over
// WebSocket. The engine stays decoupled: the daemon hands the hub each
// post-tick snapshot and the hub fans it out; a slow client is dropped,
// never waited on.
package publish

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBuffer is how many pending snapshots a client may lag before it
	// is dropped.
	sendBuffer = 8
)

// #region hub

// Hub tracks connected clients and the latest snapshot.
type Hub struct {
	log      zerolog.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	latest  []byte
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub returns an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The daemon serves the local display process only.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Publish fans the snapshot out to every connected client. Clients whose
// buffers are full are dropped.
func (h *Hub) Publish(b engine.Beast) {
	payload, err := json.Marshal(b)
	if err != nil {
		h.log.Error().Err(err).Msg("marshal snapshot")
		return
	}

	h.mu.Lock()
	h.latest = payload
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.log.Warn().Msg("dropping slow snapshot client")
			delete(h.clients, c)
			close(c.send)
		}
	}
	h.mu.Unlock()
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// #endregion hub

// #region handler

// Handler upgrades the connection and streams snapshots. A newly connected
// client immediately receives the latest snapshot, then every change.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.log.Warn().Err(err).Msg("websocket upgrade failed")
			return
		}

		c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

		h.mu.Lock()
		h.clients[c] = struct{}{}
		if h.latest != nil {
			c.send <- h.latest
		}
		h.mu.Unlock()

		go h.writePump(c)
		go h.readPump(c)
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.drop(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.drop(c)
				return
			}
		}
	}
}

// readPump consumes control frames and detects the client going away.
// Snapshot clients never send data.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

// #endregion handler
