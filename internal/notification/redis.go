package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"localcart-be/internal/logger"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultRedisChannel = "localcart:notifications"

var errMissingShop = errors.New("envelope without shop id")

type envelope struct {
	ShopID  int64   `json:"shopId"`
	Message Message `json:"message"`
}

// RedisBroadcaster shares live delivery between instances. Publish goes
// through a Redis channel and Run fans every envelope into the local
// Registry, so a vendor connected to any instance gets the message.
type RedisBroadcaster struct {
	*Registry

	client  redis.UniversalClient
	channel string
}

func NewRedisBroadcaster(client redis.UniversalClient, channel string, local *Registry) *RedisBroadcaster {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	return &RedisBroadcaster{Registry: local, client: client, channel: channel}
}

// Publish returns the number of instances listening on the channel.
func (b *RedisBroadcaster) Publish(ctx context.Context, shopID int64, msg Message) (int, error) {
	body, err := json.Marshal(envelope{ShopID: shopID, Message: msg})
	if err != nil {
		return 0, err
	}

	n, err := b.client.Publish(ctx, b.channel, body).Result()
	if err != nil {
		return 0, fmt.Errorf("redis publish: %w", err)
	}
	return int(n), nil
}

// Run blocks until ctx is done.
func (b *RedisBroadcaster) Run(ctx context.Context) error {
	log := logger.L().With(
		zap.String("component", "RedisBroadcaster"),
		zap.String("channel", b.channel),
	)

	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	log.Info("subscribed to notification channel")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			if err := b.handle(m.Payload); err != nil {
				log.Warn("bad notification envelope", zap.Error(err))
			}
		}
	}
}

func (b *RedisBroadcaster) handle(payload string) error {
	var env envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		return err
	}
	if env.ShopID <= 0 {
		return errMissingShop
	}
	b.Registry.deliver(env.ShopID, env.Message)
	return nil
}
