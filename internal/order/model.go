package order

import (
	"time"

	"localcart-be/internal/address"
	"localcart-be/internal/shop"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusAccepted  Status = "ACCEPTED"
	StatusPreparing Status = "PREPARING"
	StatusReady     Status = "READY"
	StatusCompleted Status = "COMPLETED"
	StatusRejected  Status = "REJECTED"
	StatusCanceled  Status = "CANCELED"
)

var transitions = map[Status][]Status{
	StatusPending:   {StatusAccepted, StatusRejected, StatusCanceled},
	StatusAccepted:  {StatusPreparing, StatusCanceled},
	StatusPreparing: {StatusReady, StatusCanceled},
	StatusReady:     {StatusCompleted},
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusPreparing, StatusReady,
		StatusCompleted, StatusRejected, StatusCanceled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCanceled
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type Order struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"userId"`
	Total           decimal.Decimal   `json:"total"`
	Status          Status            `json:"status"`
	Fulfillment     shop.Fulfillment  `json:"fulfillment"`
	PaymentMethod   string            `json:"paymentMethod"`
	DeliveryAddress *address.Snapshot `json:"address,omitempty"`
	CreatedAt       time.Time         `json:"createdAt"`
	Items           []OrderLine       `json:"items"`
}

// OrderLine keeps a copy of the product name, price and image as they were
// when the order was placed.
type OrderLine struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     *string         `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	ShopID    int64           `json:"shopId"`

	UnitID  *int64  `json:"unitId,omitempty"`
	Unit    *string `json:"unit,omitempty"`
	SizeID  *int64  `json:"sizeId,omitempty"`
	Size    *string `json:"size,omitempty"`
	ColorID *int64  `json:"colorId,omitempty"`
	Color   *string `json:"color,omitempty"`
}

// LineShopIDs lists the shop of every line in line order, duplicates kept.
func (o *Order) LineShopIDs() []int64 {
	ids := make([]int64, len(o.Items))
	for i, l := range o.Items {
		ids[i] = l.ShopID
	}
	return ids
}

type PlaceOrderInput struct {
	Items         []CartLine      `json:"items"`
	Total         decimal.Decimal `json:"total"`
	Address       *AddressRef     `json:"address"`
	PaymentMethod string          `json:"paymentMethod"`
}

type UpdateStatusInput struct {
	Status Status `json:"status" binding:"required"`
}
