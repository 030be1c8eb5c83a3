package product

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          int64           `json:"id"`
	ShopID      int64           `json:"shopId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	ImageURL    *string         `json:"imageUrl,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	Units       []ProductUnit   `json:"units"`
}

// ProductUnit is a sellable variant of a product, priced and stocked per unit.
type ProductUnit struct {
	ID       int64           `json:"id"`
	UnitID   int64           `json:"unitId"`
	UnitName string          `json:"unitName"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

type SaveProductInput struct {
	ShopID      int64           `json:"shopId" form:"shopId"`
	Name        string          `json:"name" form:"name"`
	Price       decimal.Decimal `json:"price" form:"price"`
	Stock       int             `json:"stock" form:"stock"`
	Category    string          `json:"category" form:"category"`
	Subcategory string          `json:"subcategory" form:"subcategory"`
	ImageURL    *string         `json:"imageUrl" form:"-"`
	Units       []UnitInput     `json:"units" form:"-"`
}

// UnitInput references a catalog unit by id, or by name when the label may
// not exist yet.
type UnitInput struct {
	UnitID   *int64          `json:"unitId"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Stock    int             `json:"stock"`
}

// StockAdjustment targets the product itself, or one of its units when
// ProductUnitID is set.
type StockAdjustment struct {
	ProductUnitID *int64 `json:"productUnitId"`
	Delta         int    `json:"delta"`
}
