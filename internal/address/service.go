package address

import (
	"context"
	"fmt"
	"strings"

	"localcart-be/internal/logger"
	"localcart-be/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context) ([]*Address, error)
	Get(ctx context.Context, addressID uuid.UUID) (*Address, error)

	// Save creates an address when input.ID is empty, otherwise edits the
	// caller's address with that id in place.
	Save(ctx context.Context, input SaveAddressInput) (*Address, error)
	Delete(ctx context.Context, addressID uuid.UUID) error

	SetDefault(ctx context.Context, addressID uuid.UUID) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(
	ctx context.Context,
) ([]*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "List"),
		zap.Int64("user_id", userID),
	)

	log.Info("listing addresses")

	return s.repo.GetByUserID(ctx, userID)
}

func (s *service) Get(
	ctx context.Context,
	addressID uuid.UUID,
) (*Address, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Get"),
		zap.String("address_id", addressID.String()),
	)

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	addr, err := s.repo.GetByID(ctx, addressID)
	if err != nil {
		log.Warn("address lookup failed", zap.Error(err))
		return nil, err
	}

	// another user's address is reported as missing
	if addr.UserID != userID || !addr.IsActive {
		log.Warn("unauthorized address access", zap.Int64("user_id", userID))
		return nil, ErrAddressNotFound
	}

	return addr, nil
}

func (s *service) Save(
	ctx context.Context,
	input SaveAddressInput,
) (*Address, error) {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Save"),
		zap.Int64("user_id", userID),
	)

	if err := validate(input); err != nil {
		return nil, err
	}

	addr := &Address{
		UserID:     userID,
		Name:       strings.TrimSpace(input.Name),
		Phone:      strings.TrimSpace(input.Phone),
		Line1:      strings.TrimSpace(input.Line1),
		Line2:      input.Line2,
		City:       strings.TrimSpace(input.City),
		Province:   strings.TrimSpace(input.Province),
		PostalCode: strings.TrimSpace(input.PostalCode),
		Country:    strings.TrimSpace(input.Country),
		IsActive:   true,
		IsDefault:  input.SetAsDefault,
	}

	if input.ID == "" {
		addr.ID = uuid.New()
		if err := s.repo.Create(ctx, addr); err != nil {
			log.Error("failed to create address", zap.Error(err))
			return nil, err
		}
		log.Info("address created", zap.String("address_id", addr.ID.String()))
		return addr, nil
	}

	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid address id", ErrInvalidAddress)
	}

	if _, err := s.owned(ctx, id, userID); err != nil {
		return nil, err
	}

	addr.ID = id
	if err := s.repo.Update(ctx, addr); err != nil {
		log.Error("failed to update address", zap.Error(err))
		return nil, err
	}

	log.Info("address updated", zap.String("address_id", id.String()))
	return addr, nil
}

// owned loads an active address of userID. Other users' addresses are
// reported as missing; lookup failures pass through.
func (s *service) owned(ctx context.Context, id uuid.UUID, userID int64) (*Address, error) {
	addr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if addr.UserID != userID || !addr.IsActive {
		logger.FromCtx(ctx).Warn("unauthorized address access",
			zap.String("address_id", id.String()),
			zap.Int64("user_id", userID),
		)
		return nil, ErrAddressNotFound
	}
	return addr, nil
}

func (s *service) Delete(
	ctx context.Context,
	addressID uuid.UUID,
) error {

	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}

	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "Delete"),
		zap.String("address_id", addressID.String()),
		zap.Int64("user_id", userID),
	)

	if _, err := s.owned(ctx, addressID, userID); err != nil {
		return err
	}

	if err := s.repo.Deactivate(ctx, addressID); err != nil {
		return err
	}

	log.Info("address deleted")
	return nil
}

func (s *service) SetDefault(
	ctx context.Context,
	addressID uuid.UUID,
) error {
	userID, ok := utils.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUnauthenticated
	}
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Address"),
		zap.String("method", "SetDefault"),
		zap.String("address_id", addressID.String()),
		zap.Int64("user_id", userID),
	)

	if _, err := s.owned(ctx, addressID, userID); err != nil {
		return err
	}

	if err := s.repo.SetDefault(ctx, userID, addressID); err != nil {
		log.Error("failed to set default address", zap.Error(err))
		return err
	}

	log.Info("default address set")
	return nil
}

func validate(in SaveAddressInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidAddress)
	case strings.TrimSpace(in.Line1) == "":
		return fmt.Errorf("%w: line1 is required", ErrInvalidAddress)
	case strings.TrimSpace(in.City) == "":
		return fmt.Errorf("%w: city is required", ErrInvalidAddress)
	}
	return nil
}
