package notification

import (
	"context"
	"fmt"
	"time"

	"localcart-be/internal/logger"

	"go.uber.org/zap"
)

// Notifier tells shops about new orders. Failures are logged and never
// reach the customer.
type Notifier struct {
	store       Repository
	broadcaster Broadcaster
	now         func() time.Time
}

func NewNotifier(store Repository, broadcaster Broadcaster) *Notifier {
	return &Notifier{store: store, broadcaster: broadcaster, now: time.Now}
}

func (n *Notifier) NotifyOrderPlaced(ctx context.Context, orderID int64, lineShopIDs []int64) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Notifier"),
		zap.String("method", "NotifyOrderPlaced"),
		zap.Int64("order_id", orderID),
	)

	for _, shopID := range distinct(lineShopIDs) {
		id := orderID
		msg := Message{
			ShopID:    shopID,
			OrderID:   &id,
			Type:      TypeOrderPlaced,
			Message:   fmt.Sprintf("New order received, id=%d", orderID),
			CreatedAt: n.now().UTC(),
		}

		if n.store != nil {
			if err := n.store.Create(ctx, &msg); err != nil {
				log.Warn("notification not recorded", zap.Int64("shop_id", shopID), zap.Error(err))
			}
		}

		reached, err := n.broadcaster.Publish(ctx, shopID, msg)
		if err != nil {
			log.Warn("notification not delivered", zap.Int64("shop_id", shopID), zap.Error(err))
			continue
		}
		log.Debug("notification published", zap.Int64("shop_id", shopID), zap.Int("reached", reached))
	}
}

// distinct keeps first-appearance order.
func distinct(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
