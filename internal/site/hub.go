package site

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeTimeout = 5 * time.Second
	clientBuffer = 8
)

type reloadEvent struct {
	Type       string `json:"type"`
	Generation uint64 `json:"generation"`
}

// Hub fans reload events out to connected websocket clients. Clients only
// listen; anything they send is discarded.
type Hub struct {
	mu      sync.Mutex
	clients map[*subscriber]struct{}
	accept  *websocket.AcceptOptions
}

type subscriber struct {
	msgs chan []byte
}

// NewHub creates a Hub. originPatterns are passed to websocket.Accept; with
// none, only same-host origins are accepted.
func NewHub(originPatterns ...string) *Hub {
	return &Hub{
		clients: make(map[*subscriber]struct{}),
		accept:  &websocket.AcceptOptions{OriginPatterns: originPatterns},
	}
}

// ServeHTTP upgrades the request and streams events until the client goes
// away or the request context ends.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, h.accept)
	if err != nil {
		slog.Warn("websocket accept failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	defer conn.CloseNow()

	sub := &subscriber{msgs: make(chan []byte, clientBuffer)}
	h.add(sub)
	defer h.remove(sub)

	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		case msg := <-sub.msgs:
			if err := write(ctx, conn, msg); err != nil {
				slog.Debug("websocket write failed", "remote", r.RemoteAddr, "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg []byte) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, msg)
}

// Broadcast sends v as JSON to every client. A client whose buffer is full
// misses the event.
func (h *Hub) Broadcast(v any) {
	msg, err := json.Marshal(v)
	if err != nil {
		slog.Error("encoding broadcast", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.clients {
		select {
		case sub.msgs <- msg:
		default:
			slog.Warn("websocket client lagging, event dropped")
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) add(sub *subscriber) {
	h.mu.Lock()
	h.clients[sub] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	delete(h.clients, sub)
	h.mu.Unlock()
}
