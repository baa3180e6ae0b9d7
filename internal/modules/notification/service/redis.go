package notification

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel shared by all instances.
const Channel = "evote:events"

const publishTimeout = 3 * time.Second

// RedisPublisher publishes to Redis so every instance's Hub relays the event.
type RedisPublisher struct {
	rdb      *redis.Client
	fallback *Hub
}

func NewRedisPublisher(rdb *redis.Client, fallback *Hub) *RedisPublisher {
	return &RedisPublisher{rdb: rdb, fallback: fallback}
}

func (p *RedisPublisher) Publish(_ context.Context, event Event) {
	data, err := event.Encode()
	if err != nil {
		log.Printf("notification: failed to encode %s: %v", event.Name, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := p.rdb.Publish(ctx, Channel, data).Err(); err != nil {
			log.Printf("notification: redis publish %s failed: %v", event.Name, err)
			// Local clients still get it.
			if p.fallback != nil {
				p.fallback.Broadcast(data)
			}
		}
	}()
}

// NewPublisher picks the Redis-backed publisher when rdb is set.
func NewPublisher(rdb *redis.Client, hub *Hub) Publisher {
	if rdb == nil {
		return hub
	}
	return NewRedisPublisher(rdb, hub)
}
