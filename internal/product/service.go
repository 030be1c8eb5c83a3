package product

import (
	"context"
	"fmt"
	"strings"

	"localcart-be/internal/logger"
	"localcart-be/internal/shop"
	"localcart-be/internal/unit"
	"localcart-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	ListByShop(ctx context.Context, shopID int64) ([]*Product, error)
	Get(ctx context.Context, id int64) (*Product, error)
	Create(ctx context.Context, input SaveProductInput) (*Product, error)
	Update(ctx context.Context, id int64, input SaveProductInput) (*Product, error)
	AdjustStock(ctx context.Context, id int64, adj StockAdjustment) (int, error)
}

// ShopAuthorizer checks the caller owns a shop.
type ShopAuthorizer interface {
	Authorize(ctx context.Context, shopID int64) (*shop.Shop, error)
}

// UnitCatalog creates unit labels on first use.
type UnitCatalog interface {
	Create(ctx context.Context, name, category string) (*unit.Unit, error)
}

type service struct {
	repo  Repository
	shops ShopAuthorizer
	units UnitCatalog
}

func NewService(repo Repository, shops ShopAuthorizer, units UnitCatalog) Service {
	return &service{repo: repo, shops: shops, units: units}
}

func (s *service) ListByShop(ctx context.Context, shopID int64) ([]*Product, error) {
	if shopID <= 0 {
		return nil, fmt.Errorf("%w: shopId is required", ErrInvalidProduct)
	}
	return s.repo.ListByShop(ctx, shopID)
}

func (s *service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Create(ctx context.Context, input SaveProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Product"),
		zap.String("method", "Create"),
		zap.Int64("shop_id", input.ShopID),
	)

	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return nil, ErrUnauthorized
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.ShopID <= 0 {
		return nil, fmt.Errorf("%w: shopId is required", ErrInvalidProduct)
	}

	if _, err := s.shops.Authorize(ctx, input.ShopID); err != nil {
		return nil, err
	}

	units, err := s.resolveUnits(ctx, input.Units)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ShopID:      input.ShopID,
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    strings.TrimSpace(input.Category),
		Subcategory: strings.TrimSpace(input.Subcategory),
		ImageURL:    input.ImageURL,
		Units:       units,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		log.Error("failed to create product", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (s *service) Update(ctx context.Context, id int64, input SaveProductInput) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Product"),
		zap.String("method", "Update"),
		zap.Int64("product_id", id),
	)

	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return nil, ErrUnauthorized
	}

	if err := validateInput(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// products never move between shops
	if _, err := s.shops.Authorize(ctx, existing.ShopID); err != nil {
		return nil, err
	}

	units, err := s.resolveUnits(ctx, input.Units)
	if err != nil {
		return nil, err
	}

	p := &Product{
		ID:          id,
		ShopID:      existing.ShopID,
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Stock:       input.Stock,
		Category:    strings.TrimSpace(input.Category),
		Subcategory: strings.TrimSpace(input.Subcategory),
		ImageURL:    input.ImageURL,
		Units:       units,
	}

	if err := s.repo.Update(ctx, p); err != nil {
		log.Error("failed to update product", zap.Error(err))
		return nil, err
	}

	log.Info("product updated", zap.Int("units", len(units)))
	return p, nil
}

func (s *service) AdjustStock(ctx context.Context, id int64, adj StockAdjustment) (int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("service", "Product"),
		zap.String("method", "AdjustStock"),
		zap.Int64("product_id", id),
	)

	if _, ok := utils.GetUserIDFromContext(ctx); !ok {
		return 0, ErrUnauthorized
	}
	if adj.Delta == 0 {
		return 0, fmt.Errorf("%w: delta must not be zero", ErrInvalidProduct)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}

	if _, err := s.shops.Authorize(ctx, p.ShopID); err != nil {
		return 0, err
	}

	stock, err := s.repo.AdjustStock(ctx, id, adj.ProductUnitID, adj.Delta)
	if err != nil {
		return 0, err
	}

	log.Info("stock adjusted", zap.Int("delta", adj.Delta), zap.Int("stock", stock))
	return stock, nil
}

// resolveUnits turns unit inputs into product units, creating unknown
// labels in the catalog.
func (s *service) resolveUnits(ctx context.Context, inputs []UnitInput) ([]ProductUnit, error) {
	units := make([]ProductUnit, 0, len(inputs))
	seen := make(map[int64]bool, len(inputs))

	for i, in := range inputs {
		if in.Price.IsNegative() || in.Stock < 0 {
			return nil, fmt.Errorf("%w: unit %d has negative price or stock", ErrInvalidProduct, i)
		}

		pu := ProductUnit{Price: in.Price, Stock: in.Stock}

		switch {
		case in.UnitID != nil && *in.UnitID > 0:
			pu.UnitID = *in.UnitID
			pu.UnitName = strings.TrimSpace(in.Name)
		case strings.TrimSpace(in.Name) != "":
			category := in.Category
			if category == "" {
				category = string(unit.CategoryQuantity)
			}
			u, err := s.units.Create(ctx, in.Name, category)
			if err != nil {
				return nil, err
			}
			pu.UnitID = u.ID
			pu.UnitName = u.Name
		default:
			return nil, fmt.Errorf("%w: unit %d needs an id or a name", ErrInvalidProduct, i)
		}

		if seen[pu.UnitID] {
			return nil, fmt.Errorf("%w: unit %d listed twice", ErrInvalidProduct, pu.UnitID)
		}
		seen[pu.UnitID] = true
		units = append(units, pu)
	}

	return units, nil
}

func validateInput(in SaveProductInput) error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidProduct)
	case in.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidProduct)
	case in.Stock < 0:
		return fmt.Errorf("%w: stock must not be negative", ErrInvalidProduct)
	}
	return nil
}
