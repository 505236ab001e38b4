// Package live pushes server-side updates (private-note values, activity
// lines) to connected browsers over websockets, keyed by book.
package live

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan any
}

type Hub struct {
	mu      sync.RWMutex
	clients map[uint64]map[*client]struct{} // bookID -> clients
	log     *logrus.Logger
}

func NewHub(log *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[uint64]map[*client]struct{}),
		log:     log,
	}
}

// Serve upgrades the request and keeps the connection registered until the
// peer goes away. The read loop exists only to notice the close.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, bookID uint64) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	c := &client{conn: conn, send: make(chan any, 16)}

	h.mu.Lock()
	if h.clients[bookID] == nil {
		h.clients[bookID] = make(map[*client]struct{})
	}
	h.clients[bookID][c] = struct{}{}
	h.mu.Unlock()

	go func() {
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				break
			}
		}
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients[bookID], c)
	h.mu.Unlock()
	close(c.send)
}

func (h *Hub) publish(bookID uint64, msg any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[bookID] {
		select {
		case c.send <- msg:
		default:
			// slow client, drop rather than block the turn
		}
	}
}

// NotesUpdated pushes the freshly appended private-note value.
func (h *Hub) NotesUpdated(bookID uint64, value string) {
	h.publish(bookID, map[string]any{"type": "ai_notes", "value": value})
}

// Activity pushes one-line action summaries for the activity log.
func (h *Hub) Activity(bookID uint64, lines []string) {
	if len(lines) == 0 {
		return
	}
	h.publish(bookID, map[string]any{"type": "activity", "lines": lines})
}
