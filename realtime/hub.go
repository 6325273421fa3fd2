package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wb-go/wbf/zlog"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// Event is the envelope written to clients.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type client struct {
	conn      *websocket.Conn
	send      chan Event
	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan Event, sendBuffer),
		done: make(chan struct{}),
	}
}

// enqueue never blocks. It reports false when the client's buffer is full.
func (c *client) enqueue(ev Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- ev:
		return true
	default:
		return false
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

// writePump is the only goroutine writing to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case <-c.done:
			return
		case ev := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans notifications out to every open connection of a user.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*client]struct{}
	upgrader websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}
	h := &Hub{clients: make(map[uint]map[*client]struct{})}
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, ok := allowed["*"]; ok {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
	return h
}

func (h *Hub) register(userID uint, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
}

func (h *Hub) unregister(userID uint, c *client) {
	h.mu.Lock()
	if set, ok := h.clients[userID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.clients, userID)
		}
	}
	h.mu.Unlock()
	c.close()
}

// Count returns the number of open connections for userID, or for all users when userID is 0.
func (h *Hub) Count(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if userID != 0 {
		return len(h.clients[userID])
	}
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Publish queues a notification event for the user's connections and
// returns without waiting on the network. A connection whose buffer is full
// is dropped.
func (h *Hub) Publish(userID uint, payload any) {
	h.mu.RLock()
	set := h.clients[userID]
	targets := make([]*client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	event := Event{Type: "notification", Data: payload}
	for _, c := range targets {
		if !c.enqueue(event) {
			zlog.Logger.Warn().Uint("user_id", userID).Msg("websocket client too slow, dropping connection")
			h.unregister(userID, c)
		}
	}
}

// ServeUser upgrades the request and keeps the connection registered for
// userID until the client goes away.
func (h *Hub) ServeUser(w http.ResponseWriter, r *http.Request, userID uint) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	c := newClient(conn)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.enqueue(Event{Type: "connected"})
	h.register(userID, c)
	defer h.unregister(userID, c)
	go c.writePump()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zlog.Logger.Warn().Err(err).Uint("user_id", userID).Msg("websocket closed unexpectedly")
			}
			return
		}
	}
}
