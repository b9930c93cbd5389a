// Package relay carries chat traffic between the browser, the environment
// orchestrator and the negotiation agents.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"negotiation-gateway/internal/common/metrics"
)

type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// MessageHandler receives raw text frames sent by a browser client.
type MessageHandler func(ctx context.Context, data []byte)

// Hub fans messages out to every connected browser. All client bookkeeping
// happens on the Run goroutine.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	onMessage  MessageHandler
	done       chan struct{}
	count      atomic.Int64
	logger     Logger
}

func NewHub(log Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		onMessage:  func(context.Context, []byte) {},
		done:       make(chan struct{}),
		logger:     log,
	}
}

// OnMessage sets the browser message handler. Call before Run.
func (h *Hub) OnMessage(fn MessageHandler) {
	h.onMessage = fn
}

// Run serves register, unregister and broadcast until ctx is done, then
// disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for c := range h.clients {
			h.drop(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case c := <-h.register:
			h.clients[c] = struct{}{}
			h.count.Store(int64(len(h.clients)))
			metrics.WebSocketClients.Set(float64(len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.drop(c)
			}

		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow consumer
					h.logger.Warn("dropping slow websocket client", nil)
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *Client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Store(int64(len(h.clients)))
	metrics.WebSocketClients.Set(float64(len(h.clients)))
}

// Broadcast queues v as JSON for every open client.
func (h *Hub) Broadcast(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode broadcast: %w", err)
	}
	select {
	case h.broadcast <- data:
		return nil
	default:
		return fmt.Errorf("broadcast queue full")
	}
}

// Clients is the number of registered clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}
