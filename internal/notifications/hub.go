// Package notifications broadcasts progress and job lifecycle events
// (SPEC_FULL.md §4.11) to connected websocket clients.
//
// Grounded directly on the host application's internal/api WSHub: a
// client-set guarded by a mutex, a buffered per-client send channel, and a
// broadcast that marshals {event, data} and drops the message for any
// client whose send buffer is full rather than blocking. Adapted to drop
// the host application's JWT authentication (out of scope here) and its
// task-state replay cache, since this hub only ever carries the
// Controller's {inserted, total} progress shape and job:start/progress/
// complete/error lifecycle events, which are cheap to miss and not worth
// replaying to late joiners.
package notifications

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"nhooyr.io/websocket"
)

// Message is the wire envelope every broadcast is wrapped in.
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub tracks connected clients and fans broadcasts out to all of them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*client]bool)}
}

// Broadcast marshals event/data and fans it out to every connected client.
// A client whose send buffer is full is skipped rather than blocked on.
func (h *Hub) Broadcast(event string, data interface{}) {
	msg, err := json.Marshal(Message{Event: event, Data: data})
	if err != nil {
		slog.Error("failed to marshal event", "event", event, "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *Hub) addClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = true
}

func (h *Hub) removeClient(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		close(c.send)
		delete(h.clients, c)
	}
}

// ClientCount reports the number of currently connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket connection and relays
// every subsequent Broadcast to it until the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		slog.Error("websocket accept error", "error", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.addClient(c)
	slog.Info("client connected", "total", h.ClientCount())

	ctx := r.Context()
	go func() {
		defer conn.Close(websocket.StatusNormalClosure, "")
		for msg := range c.send {
			if err := conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		}
	}()

	for {
		if _, _, err := conn.Read(ctx); err != nil {
			break
		}
	}

	h.removeClient(c)
	slog.Info("client disconnected", "remaining", h.ClientCount())
}
