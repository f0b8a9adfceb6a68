package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/karthikdoguparthi/KisaanGrow/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	broadcastQueue = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Hub pushes events to connected websocket clients. Run owns the client set.
type Hub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, broadcastQueue),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			for client := range h.clients {
				h.drop(client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.setCount()
			h.log.Debug("live client connected", slog.Int("clients", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
			h.log.Debug("live client disconnected", slog.Int("clients", len(h.clients)))

		case message := <-h.broadcast:
			for client := range h.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					h.log.Warn("write to live client", slog.Any("error", err))
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *websocket.Conn) {
	delete(h.clients, client)
	_ = client.Close()
	h.setCount()
}

func (h *Hub) setCount() {
	h.count.Store(int64(len(h.clients)))
	metrics.LiveSubscribers.Set(float64(len(h.clients)))
}

// Clients reports the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Publish queues e for broadcast. Events are dropped when the queue is full.
func (h *Hub) Publish(_ context.Context, e Event) error {
	message, err := json.Marshal(e)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- message:
	default:
		h.log.Warn("live broadcast queue full, dropping event", slog.String("type", e.Type))
	}
	return nil
}

func (h *Hub) Close() error {
	return nil
}

// ServeHTTP upgrades the request and keeps the client registered until it
// disconnects. Client messages are read and discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade", slog.Any("error", err))
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.unregister <- conn:
			case <-h.done:
			}
		}()

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.log.Warn("websocket read", slog.Any("error", err))
				}
				return
			}
		}
	}()
}
