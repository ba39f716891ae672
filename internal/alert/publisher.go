package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yourusername/arb-scanner/internal/models"
)

// Event is the payload broadcast for each newly alerted opportunity
type Event struct {
	Fingerprint string                `json:"fingerprint"`
	Opportunity models.ArbOpportunity `json:"opportunity"`
	PublishedAt time.Time             `json:"published_at"`
}

// Publisher broadcasts alerted opportunities to live consumers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisPublisher publishes events as JSON on a Redis channel
type RedisPublisher struct {
	client  redis.UniversalClient
	channel string
}

// NewRedisPublisher creates a publisher for the given channel
func NewRedisPublisher(client redis.UniversalClient, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Channel returns the Redis channel name
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// Publish encodes the event and publishes it
func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode alert event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish alert event: %w", err)
	}
	return nil
}

// Subscribe streams decoded events from the channel until ctx is done.
// Payloads that fail to decode are dropped.
func (p *RedisPublisher) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := p.client.Subscribe(ctx, p.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", p.channel, err)
	}

	out := make(chan Event, 64)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}
