package checkout

import (
	"context"
	"encoding/json"
	"fmt"

	"labcart/models"
	"labcart/utils"

	"github.com/go-redis/redis/v8"
)

// RedisPublisher implements Publisher over Redis pub/sub. Concurrent
// sessions of the same identity subscribe to the identity's cart channel;
// the booking channel is global for the presentation layer.
type RedisPublisher struct {
	Client *redis.Client
}

func (p *RedisPublisher) CartChanged(ctx context.Context, event models.CartChangedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal cart event: %w", err)
	}
	if err := p.Client.Publish(ctx, utils.CartEventChannel+event.UserKey, data).Err(); err != nil {
		return fmt.Errorf("publish cart event: %w", err)
	}
	return nil
}

func (p *RedisPublisher) BookingConfirmed(ctx context.Context, event models.BookingConfirmedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal booking event: %w", err)
	}
	if err := p.Client.Publish(ctx, utils.BookingEventChannel, data).Err(); err != nil {
		return fmt.Errorf("publish booking event: %w", err)
	}
	return nil
}
