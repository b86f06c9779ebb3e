package statsfeed

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Path is where the feed is served.
	Path       = "/stats"
	sendBuffer = 4
)

// Message is one stats update on the wire.
type Message struct {
	Count int     `json:"count"`
	Area  float64 `json:"area"`
}

type client struct {
	writer *SafeWriter
	send   chan Message
	once   sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
		_ = c.writer.Close()
	})
}

// Hub fans stats snapshots out to websocket clients. PublishStats never
// blocks the caller: a slow client drops its oldest pending update.
type Hub struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	last    Message
	hasLast bool
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// PublishStats implements the engine's stats sink.
func (h *Hub) PublishStats(count int, area float64) {
	msg := Message{Count: count, Area: area}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.last = msg
	h.hasLast = true
	for c := range h.clients {
		enqueue(c, msg)
	}
}

func enqueue(c *client, msg Message) {
	select {
	case c.send <- msg:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- msg:
	default:
	}
}

// Clients is the number of connected viewers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("statsfeed: upgrade: %v", err)
		return
	}
	c := &client{writer: NewSafeWriter(conn), send: make(chan Message, sendBuffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	if h.hasLast {
		enqueue(c, h.last)
	}
	h.mu.Unlock()

	go h.writeLoop(c)

	// Viewers never send; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.remove(c)
}

func (h *Hub) writeLoop(c *client) {
	for msg := range c.send {
		if err := c.writer.WriteJSON(msg); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.close()
	}
}

// Close disconnects every client. Calling it twice is a no-op.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.writer.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"))
		c.close()
	}
	return nil
}

// Serve runs an HTTP server for the hub on addr until ctx is done.
func Serve(ctx context.Context, addr string, h *Hub) error {
	mux := http.NewServeMux()
	mux.Handle(Path, h)
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = h.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("statsfeed: shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("statsfeed: listen %s: %w", addr, err)
	}
}
