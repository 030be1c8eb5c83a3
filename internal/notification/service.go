package notification

import (
	"context"

	"localcart-be/internal/logger"
	"localcart-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]Message, error)
	MarkRead(ctx context.Context, id int64) error

	// StreamShop returns the shop the caller may watch. requested is the
	// optional shop id from the query string; 0 means the caller's own shop.
	StreamShop(ctx context.Context, requested int64) (int64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// vendorShop resolves the shop bound to the caller's token.
func vendorShop(ctx context.Context) (int64, error) {
	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return 0, ErrUnauthorized
	}
	if utils.GetUserRoleFromContext(ctx) != utils.RoleVendor {
		return 0, ErrForbidden
	}
	shopID, ok := utils.GetShopIDFromContext(ctx)
	if !ok || shopID <= 0 {
		return 0, ErrForbidden
	}
	return shopID, nil
}

func (s *service) StreamShop(ctx context.Context, requested int64) (int64, error) {
	shopID, err := vendorShop(ctx)
	if err != nil {
		return 0, err
	}
	if requested != 0 && requested != shopID {
		logger.FromCtx(ctx).Warn("stream requested for another shop",
			zap.Int64("shop_id", shopID),
			zap.Int64("requested", requested),
		)
		return 0, ErrForbidden
	}
	return shopID, nil
}

func (s *service) List(ctx context.Context) ([]Message, error) {
	shopID, err := vendorShop(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByShop(ctx, shopID, listLimit)
}

func (s *service) MarkRead(ctx context.Context, id int64) error {
	shopID, err := vendorShop(ctx)
	if err != nil {
		return err
	}
	return s.repo.MarkRead(ctx, shopID, id)
}
