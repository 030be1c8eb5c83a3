package user

import (
	"context"
	"errors"
	"strings"

	"localcart-be/internal/logger"
	"localcart-be/internal/shop"
	"localcart-be/internal/utils"

	"go.uber.org/zap"
)

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Generate(userID int64, email, role string, shopID *int64) (string, error)
}

// ShopLookup finds the shop a vendor owns.
type ShopLookup interface {
	GetByOwner(ctx context.Context, ownerID int64) (*shop.Shop, error)
}

type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)

	// Refresh reissues the caller's token, picking up a shop opened since
	// the last login.
	Refresh(ctx context.Context) (*Session, error)
}

type service struct {
	repo   Repository
	tokens TokenIssuer
	shops  ShopLookup
}

func NewService(repo Repository, tokens TokenIssuer, shops ShopLookup) Service {
	return &service{repo: repo, tokens: tokens, shops: shops}
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "User"),
		zap.String("method", "Register"),
	)

	role := strings.ToLower(strings.TrimSpace(input.Role))
	if role == "" {
		role = utils.RoleCustomer
	}
	if role != utils.RoleCustomer && role != utils.RoleVendor {
		return nil, ErrInvalidRole
	}

	hashed, err := HashPassword(input.Password)
	if err != nil {
		log.Error("failed to hash password", zap.Error(err))
		return nil, err
	}

	u := &User{
		Name:     strings.TrimSpace(input.Name),
		Email:    strings.ToLower(strings.TrimSpace(input.Email)),
		Password: hashed,
		Role:     role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info("user registered", zap.Int64("user_id", u.ID), zap.String("role", role))
	return s.session(ctx, u)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPasswordHash(input.Password, u.Password) {
		logger.FromCtx(ctx).Info("password mismatch", zap.Int64("user_id", u.ID))
		return nil, ErrInvalidCredentials
	}

	return s.session(ctx, u)
}

func (s *service) Refresh(ctx context.Context) (*Session, error) {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.session(ctx, u)
}

func (s *service) session(ctx context.Context, u *User) (*Session, error) {
	var shopID *int64
	if u.Role == utils.RoleVendor && s.shops != nil {
		sh, err := s.shops.GetByOwner(ctx, u.ID)
		switch {
		case err == nil:
			shopID = &sh.ID
		case errors.Is(err, shop.ErrShopNotFound):
		default:
			return nil, err
		}
	}

	token, err := s.tokens.Generate(u.ID, u.Email, u.Role, shopID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to sign token", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, err
	}

	return &Session{Token: token, User: u, ShopID: shopID}, nil
}
