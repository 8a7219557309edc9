package sse

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/kbukum/chatgate/logger"
	"github.com/kbukum/chatgate/observability"
)

// Publisher sends keyed events to interested subscribers.
type Publisher interface {
	Publish(key string, data []byte)
}

// Client is one subscriber.
type Client struct {
	id     string
	filter string
	events chan []byte
}

// NewClient creates a subscriber receiving events whose key matches the
// glob filter. An empty filter matches everything.
func NewClient(id, filter string) *Client {
	if filter == "" {
		filter = "*"
	}
	return &Client{
		id:     id,
		filter: filter,
		events: make(chan []byte, 64),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() string { return c.id }

// Filter returns the client's key filter.
func (c *Client) Filter() string { return c.filter }

// Events returns the channel the client reads from. It is closed when
// the client is unregistered or the hub stops.
func (c *Client) Events() <-chan []byte { return c.events }

// Send queues data without blocking. It returns false when the client is
// too slow and the event was dropped.
func (c *Client) Send(data []byte) bool {
	select {
	case c.events <- data:
		return true
	default:
		logger.Warn("sse: client queue full, dropping event", logger.Fields("client_id", c.id))
		return false
	}
}

func (c *Client) matches(key string) bool {
	ok, err := filepath.Match(c.filter, key)
	return err == nil && ok
}

type message struct {
	key  string
	data []byte
}

// Hub routes published events to matching clients. All client-set
// mutations happen on the Run goroutine.
type Hub struct {
	clients    map[string]*Client
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
}

var (
	_ Publisher                   = (*Hub)(nil)
	_ observability.HealthChecker = (*Hub)(nil)
)

// NewHub creates a hub. Call Run before publishing.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
	}
}

// Run processes registrations and broadcasts until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.id]; ok {
				close(old.events)
			}
			h.clients[c.id] = c
			n := len(h.clients)
			h.mu.Unlock()
			logger.Debug("sse: client registered", logger.Fields("client_id", c.id, "filter", c.filter, "clients", n))

		case c := <-h.unregister:
			h.mu.Lock()
			if cur, ok := h.clients[c.id]; ok && cur == c {
				delete(h.clients, c.id)
				close(c.events)
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.deliver(m)
		}
	}
}

// Stop closes every client and makes Run return. Safe to call twice.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		close(c.events)
		delete(h.clients, id)
	}
}

// Register adds c. It returns false if the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes c. It is a no-op after Stop.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues data for every client whose filter matches key. When the
// queue is full or the hub has stopped the event is dropped.
func (h *Hub) Publish(key string, data []byte) {
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- message{key: key, data: data}:
	default:
		logger.Warn("sse: hub queue full, dropping event", logger.Fields("key", key))
	}
}

func (h *Hub) deliver(m message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		if c.matches(m.key) {
			c.Send(m.data)
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// CheckHealth reports the hub as up with its subscriber count.
func (h *Hub) CheckHealth(context.Context) observability.Health {
	status := observability.HealthStatusUp
	select {
	case <-h.done:
		status = observability.HealthStatusDown
	default:
	}
	return observability.Health{
		Name:    "activity-hub",
		Status:  status,
		Message: fmt.Sprintf("%d subscribers", h.ClientCount()),
	}
}
