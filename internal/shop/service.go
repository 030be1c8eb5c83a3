package shop

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"localcart-be/internal/logger"
	"localcart-be/internal/utils"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxSlugAttempts   = 20
	maxCreateAttempts = 3
)

type Service interface {
	GetBySlug(ctx context.Context, slug string) (*Shop, error)
	GetByOwner(ctx context.Context, ownerID int64) (*Shop, error)
	Create(ctx context.Context, input CreateShopInput) (*Shop, error)

	// Authorize loads the shop and checks the caller owns it (admins pass).
	Authorize(ctx context.Context, shopID int64) (*Shop, error)
}

type service struct {
	repo          Repository
	minOrderValue decimal.Decimal
}

func NewService(repo Repository, defaultMinOrderValue decimal.Decimal) Service {
	return &service{repo: repo, minOrderValue: defaultMinOrderValue}
}

func (s *service) GetBySlug(ctx context.Context, slugStr string) (*Shop, error) {
	slugStr = strings.TrimSpace(slugStr)
	if slugStr == "" {
		return nil, ErrShopNotFound
	}
	return s.repo.GetBySlug(ctx, slugStr)
}

func (s *service) GetByOwner(ctx context.Context, ownerID int64) (*Shop, error) {
	return s.repo.GetByOwner(ctx, ownerID)
}

func (s *service) Create(ctx context.Context, input CreateShopInput) (*Shop, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Shop"),
		zap.String("method", "Create"),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if role := utils.GetUserRoleFromContext(ctx); role != utils.RoleVendor && role != utils.RoleAdmin {
		return nil, ErrForbidden
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidShop)
	}

	minOrder := s.minOrderValue
	if input.MinOrderValue != nil {
		if input.MinOrderValue.IsNegative() {
			return nil, fmt.Errorf("%w: minimum order value must not be negative", ErrInvalidShop)
		}
		minOrder = *input.MinOrderValue
	}

	sh := &Shop{
		OwnerID:       userID,
		Name:          name,
		Latitude:      input.Latitude,
		Longitude:     input.Longitude,
		MinOrderValue: minOrder,
	}

	// a concurrent create can take the slug between the check and the insert
	for attempt := 1; ; attempt++ {
		shopSlug, err := s.uniqueSlug(ctx, name)
		if err != nil {
			log.Error("slug generation failed", zap.Error(err))
			return nil, err
		}
		sh.Slug = shopSlug

		err = s.repo.Create(ctx, sh)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrSlugTaken) || attempt == maxCreateAttempts {
			return nil, err
		}
		log.Warn("slug collision, retrying", zap.String("slug", sh.Slug), zap.Int("attempt", attempt))
	}

	log.Info("shop created", zap.Int64("shop_id", sh.ID), zap.String("slug", sh.Slug))
	return sh, nil
}

func (s *service) uniqueSlug(ctx context.Context, name string) (string, error) {
	base := slug.Make(name)
	if base == "" {
		return "", fmt.Errorf("%w: name has no usable characters", ErrInvalidShop)
	}

	candidate := base
	for i := 2; i <= maxSlugAttempts+1; i++ {
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}

	return "", fmt.Errorf("%w: slug %q is taken", ErrInvalidShop, base)
}

func (s *service) Authorize(ctx context.Context, shopID int64) (*Shop, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	sh, err := s.repo.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}

	if sh.OwnerID != userID && !utils.IsAdmin(ctx) {
		logger.FromCtx(ctx).Warn("shop access denied",
			zap.Int64("shop_id", shopID),
			zap.Int64("user_id", userID),
		)
		return nil, ErrForbidden
	}

	return sh, nil
}
