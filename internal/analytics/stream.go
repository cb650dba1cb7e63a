package analytics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"github.com/spiralogic/elemental/pkg/types"
)

// StreamHub fans decisions out to connected WebSocket clients. It is both a
// Sink and an http.Handler: the host mounts it wherever its debug surface
// lives — the engine itself never listens on a socket.
type StreamHub struct {
	clients    map[streamClient]bool
	broadcast  chan []byte
	register   chan streamClient
	unregister chan streamClient
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// streamClient allows both real connections and mock clients in tests.
type streamClient interface {
	sendChannel() chan []byte
	close()
}

type wsClient struct {
	hub  *StreamHub
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) sendChannel() chan []byte { return c.send }

func (c *wsClient) close() {
	if c.conn != nil {
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}
}

// NewStreamHub creates a hub. Call Run (usually in a goroutine) before
// recording, and Close to shut down.
func NewStreamHub() *StreamHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &StreamHub{
		clients:    make(map[streamClient]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan streamClient),
		unregister: make(chan streamClient),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Close is called.
func (h *StreamHub) Run() {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("analytics: stream client connected (total: %d)", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.sendChannel())
			}
			count := len(h.clients)
			h.mu.Unlock()
			log.Printf("analytics: stream client disconnected (total: %d)", count)

		case data := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.sendChannel() <- data:
				default:
					// Slow consumer: disconnect rather than block the hub.
					close(client.sendChannel())
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()

		case <-h.ctx.Done():
			return
		}
	}
}

// Record implements Sink. A full broadcast buffer drops the decision; the
// stream is a live debug view, not a durable log.
func (h *StreamHub) Record(_ context.Context, d *types.Decision) error {
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- data:
	default:
		log.Printf("analytics: stream buffer full, dropping decision %s", d.ID)
	}
	return nil
}

// dropClient hands a client back to the hub loop, or gives up when the hub
// has already shut down. Without the ctx branch a pump exiting after Close
// would block forever on the unregister channel.
func (h *StreamHub) dropClient(c streamClient) {
	select {
	case h.unregister <- c:
	case <-h.ctx.Done():
	}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *StreamHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Printf("analytics: stream upgrade failed: %v", err)
		return
	}

	client := &wsClient{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 64),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// writePump sends broadcast frames to one connection.
func (c *wsClient) writePump() {
	defer func() {
		c.hub.dropClient(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for data := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := c.conn.Write(ctx, websocket.MessageText, data)
		cancel()
		if err != nil {
			return
		}
	}
}

// readPump drains client frames to detect disconnection.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.dropClient(c)
		_ = c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		if _, _, err := c.conn.Read(context.Background()); err != nil {
			return
		}
	}
}

// Close implements Sink: it stops the hub loop and disconnects all clients.
func (h *StreamHub) Close() error {
	h.cancel()
	<-h.done

	h.mu.Lock()
	for client := range h.clients {
		close(client.sendChannel())
		client.close()
	}
	h.clients = make(map[streamClient]bool)
	h.mu.Unlock()
	return nil
}
