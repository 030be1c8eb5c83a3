package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"localcart-be/internal/address"
	"localcart-be/internal/events"
	"localcart-be/internal/logger"
	"localcart-be/internal/metrics"
	"localcart-be/internal/shop"
	"localcart-be/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultPaymentMethod = "cash"

type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error)
	UserOrders(ctx context.Context) ([]*Order, error)
	ShopOrders(ctx context.Context, shopID int64) ([]*Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error)
}

// AddressBook returns the caller's saved address.
type AddressBook interface {
	Get(ctx context.Context, addressID uuid.UUID) (*address.Address, error)
}

type ShopAuthorizer interface {
	Authorize(ctx context.Context, shopID int64) (*shop.Shop, error)
}

// ShopNotifier tells every shop on a placed order about it.
type ShopNotifier interface {
	NotifyOrderPlaced(ctx context.Context, orderID int64, lineShopIDs []int64)
}

// PlacedEvent is published after an order commits.
type PlacedEvent struct {
	OrderID     int64            `json:"orderId"`
	UserID      int64            `json:"userId"`
	Total       decimal.Decimal  `json:"total"`
	Fulfillment shop.Fulfillment `json:"fulfillment"`
	ShopIDs     []int64          `json:"shopIds"`
	PlacedAt    time.Time        `json:"placedAt"`
}

type StatusChangedEvent struct {
	OrderID int64  `json:"orderId"`
	From    Status `json:"from"`
	To      Status `json:"to"`
	ByUser  int64  `json:"byUser"`
}

type service struct {
	repo      Repository
	addresses AddressBook
	shops     ShopAuthorizer
	notifier  ShopNotifier
	events    events.Publisher
}

func NewService(
	repo Repository,
	addresses AddressBook,
	shops ShopAuthorizer,
	notifier ShopNotifier,
	publisher events.Publisher,
) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &service{
		repo:      repo,
		addresses: addresses,
		shops:     shops,
		notifier:  notifier,
		events:    publisher,
	}
}

func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "PlaceOrder"),
		zap.Int64("user_id", userID),
		zap.String("email", utils.GetUserEmailFromContext(ctx)),
	)

	if len(input.Items) == 0 {
		return nil, ErrEmptyCart
	}

	sum := decimal.Zero
	for i, l := range input.Items {
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		sum = sum.Add(l.Subtotal())
	}

	if input.Total.IsNegative() {
		return nil, fmt.Errorf("%w: total must not be negative", ErrInvalidOrder)
	}

	// the declared total is stored as sent
	if !sum.Equal(input.Total) {
		log.Warn("declared total differs from line sum",
			zap.String("declared", input.Total.String()),
			zap.String("computed", sum.String()),
		)
	}

	snapshot, err := s.snapshotAddress(ctx, input.Address)
	if err != nil {
		return nil, err
	}

	method := strings.TrimSpace(input.PaymentMethod)
	if method == "" {
		method = defaultPaymentMethod
	}

	o := &Order{
		UserID:          userID,
		Total:           input.Total,
		Status:          StatusPending,
		PaymentMethod:   method,
		DeliveryAddress: snapshot,
	}

	timer := metrics.StartTimer()
	if err := s.repo.CreateOrderTx(ctx, o, input.Items); err != nil {
		log.Error("failed to place order", zap.Error(err))
		return nil, err
	}

	log.Info("order placed",
		zap.Int64("order_id", o.ID),
		zap.Int("lines", len(o.Items)),
		zap.String("fulfillment", string(o.Fulfillment)),
		zap.Duration("tx", timer.Duration()),
	)

	// Nothing after commit may fail the order.
	s.notifier.NotifyOrderPlaced(ctx, o.ID, o.LineShopIDs())

	if err := s.events.Publish(ctx, events.OrderPlaced, PlacedEvent{
		OrderID:     o.ID,
		UserID:      o.UserID,
		Total:       o.Total,
		Fulfillment: o.Fulfillment,
		ShopIDs:     distinctShopIDs(input.Items),
		PlacedAt:    o.CreatedAt,
	}); err != nil {
		log.Warn("failed to publish order event", zap.Error(err))
	}

	return o, nil
}

func (s *service) snapshotAddress(ctx context.Context, ref *AddressRef) (*address.Snapshot, error) {
	if ref == nil {
		return nil, nil
	}

	if ref.ID != nil {
		addr, err := s.addresses.Get(ctx, *ref.ID)
		if err != nil {
			return nil, err
		}
		return addr.Snapshot(), nil
	}

	if ref.Inline == nil || strings.TrimSpace(ref.Inline.Line1) == "" {
		return nil, fmt.Errorf("%w: address needs an id or line1", ErrInvalidOrder)
	}
	return ref.Inline, nil
}

func (s *service) UserOrders(ctx context.Context) ([]*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ShopOrders(ctx context.Context, shopID int64) ([]*Order, error) {
	if _, err := s.shops.Authorize(ctx, shopID); err != nil {
		return nil, err
	}
	return s.repo.ListByShop(ctx, shopID)
}

func (s *service) UpdateStatus(ctx context.Context, orderID int64, status Status) (*Order, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Order"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", orderID),
		zap.String("status", string(status)),
	)

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatus, status)
	}

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeStatusChange(ctx, o, userID, status); err != nil {
		log.Warn("status change denied", zap.Error(err))
		return nil, err
	}

	if !o.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidStatus, o.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, o.Status, status); err != nil {
		return nil, err
	}

	from := o.Status
	o.Status = status
	log.Info("order status updated", zap.String("from", string(from)))

	if err := s.events.Publish(ctx, events.OrderStatusChanged, StatusChangedEvent{
		OrderID: orderID,
		From:    from,
		To:      status,
		ByUser:  userID,
	}); err != nil {
		log.Warn("failed to publish status event", zap.Error(err))
	}

	return o, nil
}

// authorizeStatusChange lets admins and owners of a shop on the order move
// it forward. The customer may only cancel while it is still pending.
func (s *service) authorizeStatusChange(ctx context.Context, o *Order, userID int64, to Status) error {
	if utils.IsAdmin(ctx) {
		return nil
	}

	if o.UserID == userID && to == StatusCanceled && o.Status == StatusPending {
		return nil
	}

	seen := make(map[int64]bool)
	for _, id := range o.LineShopIDs() {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, err := s.shops.Authorize(ctx, id); err == nil {
			return nil
		}
	}

	return ErrForbidden
}
