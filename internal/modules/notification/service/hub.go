package notification

import (
	"context"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const clientBuffer = 32

// Hub keeps the connected real-time clients of this process.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Subscription]struct{}
}

// Subscription receives encoded events until it is closed.
type Subscription struct {
	hub  *Hub
	C    chan []byte
	once sync.Once
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*Subscription]struct{})}
}

func (h *Hub) Subscribe() *Subscription {
	sub := &Subscription{hub: h, C: make(chan []byte, clientBuffer)}
	h.mu.Lock()
	h.clients[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.clients, s)
		s.hub.mu.Unlock()
		close(s.C)
	})
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast hands data to every client. Slow clients lose the message.
func (h *Hub) Broadcast(data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.clients {
		select {
		case sub.C <- data:
		default:
			log.Printf("notification: dropping event for slow client")
		}
	}
}

// Publish makes the hub usable as a Publisher when Redis is not configured.
func (h *Hub) Publish(ctx context.Context, event Event) {
	data, err := event.Encode()
	if err != nil {
		log.Printf("notification: failed to encode %s: %v", event.Name, err)
		return
	}
	h.Broadcast(data)
}

// Run relays events published on the Redis channel to local clients until
// ctx is done.
func (h *Hub) Run(ctx context.Context, rdb *redis.Client) {
	if rdb == nil {
		return
	}

	pubsub := rdb.Subscribe(ctx, Channel)
	defer pubsub.Close()

	// Wait for confirmation that subscription is created
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Printf("notification: failed to subscribe to %s: %v", Channel, err)
		return
	}

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.Broadcast([]byte(msg.Payload))
		case <-ctx.Done():
			return
		}
	}
}
