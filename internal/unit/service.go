package unit

import (
	"context"
	"fmt"
	"strings"

	"localcart-be/internal/logger"

	"go.uber.org/zap"
)

type Service interface {
	List(ctx context.Context, category string) ([]Unit, error)
	Create(ctx context.Context, name, category string) (*Unit, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, category string) ([]Unit, error) {
	c := Category(strings.TrimSpace(category))
	if c != "" && !c.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidUnit, category)
	}
	return s.repo.List(ctx, c)
}

// Create returns the existing unit when the label is already known.
func (s *service) Create(ctx context.Context, name, category string) (*Unit, error) {
	name = strings.TrimSpace(name)
	c := Category(strings.TrimSpace(category))

	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidUnit)
	}
	if !c.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidUnit, category)
	}

	u, err := s.repo.GetOrCreate(ctx, name, c)
	if err != nil {
		return nil, err
	}

	logger.FromCtx(ctx).Info("unit ready",
		zap.String("service", "Unit"),
		zap.Int64("unit_id", u.ID),
		zap.String("name", u.Name),
	)

	return u, nil
}
