package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Channel names for the order lifecycle.
const (
	OrderCreatedChannel       = "order.created"
	OrderPaidChannel          = "order.paid"
	OrderStatusChangedChannel = "order.status_changed"
)

type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) error
}

type RedisPublisher struct {
	client *redis.Client
}

func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return p.client.Publish(ctx, channel, data).Err()
}
