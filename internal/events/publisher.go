package events

import (
	"context"

	"localcart-be/internal/logger"

	"go.uber.org/zap"
)

const (
	OrderPlaced        = "order.placed"
	OrderStatusChanged = "order.status_changed"
)

// Publisher emits domain events to whoever listens downstream.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
	Close()
}

// Nop drops events. It is used when no broker is configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, routingKey string, _ any) error {
	logger.FromCtx(ctx).Debug("event dropped, no broker configured",
		zap.String("routing_key", routingKey),
	)
	return nil
}

func (Nop) Close() {}
