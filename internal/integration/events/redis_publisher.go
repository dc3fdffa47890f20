package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/savings-circle/backend/internal/domain/entity"
)

// RedisPublisher publishes events as JSON on a Redis channel, and on a per group
// channel "<channel>:<group id>" for group scoped events.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher creates a new RedisPublisher.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{
		client:  client,
		channel: channel,
	}
}

// Name implements Handler.
func (p *RedisPublisher) Name() string {
	return "redis"
}

// Handle publishes the event.
func (p *RedisPublisher) Handle(ctx context.Context, event entity.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, p.channel, payload)
	if event.GroupID != uuid.Nil {
		pipe.Publish(ctx, GroupChannel(p.channel, event.GroupID), payload)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// GroupChannel returns the channel carrying the events of one group.
func GroupChannel(channel string, groupID uuid.UUID) string {
	return channel + ":" + groupID.String()
}
