package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/PetoAdam/homenavi/household-service/internal/household"
	"github.com/PetoAdam/homenavi/household-service/internal/tenancy"

	"github.com/gorilla/websocket"
)

// Hub pushes household events to websocket clients. A client only ever
// receives events of the family it connected as.
type Hub struct {
	upgrader websocket.Upgrader
	identity tenancy.Identifier

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	family string
	conn   *websocket.Conn
	send   chan []byte
}

func NewHub(identity tenancy.Identifier) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				// Any origin: the caller names its family either way.
				return true
			},
		},
		identity: identity,
		clients:  map[*client]struct{}{},
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	family, err := h.identity.Identify(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	c := &client{family: family, conn: conn, send: make(chan []byte, 16)}
	h.addClient(c)
	slog.Debug("household ws client connected", "family", family)

	go h.writePump(c)
	h.readPump(c)
}

// Notify implements household.Notifier.
func (h *Hub) Notify(_ context.Context, ev household.Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.family != ev.Family {
			continue
		}
		select {
		case c.send <- b:
		default:
			// Slow client; drop it.
			delete(h.clients, c)
			close(c.send)
			_ = c.conn.Close()
		}
	}
	return nil
}

// Clients reports how many connections are open for family.
func (h *Hub) Clients(family string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for c := range h.clients {
		if c.family == family {
			n++
		}
	}
	return n
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
		_ = c.conn.Close()
	}
}

func (h *Hub) readPump(c *client) {
	defer h.removeClient(c)
	c.conn.SetReadLimit(1024)
	_ = c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(25 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
