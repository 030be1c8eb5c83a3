package shop

import (
	"time"

	"github.com/shopspring/decimal"
)

type Fulfillment string

const (
	FulfillmentTakeaway Fulfillment = "takeaway"
	FulfillmentDelivery Fulfillment = "delivery"
)

type Shop struct {
	ID            int64           `db:"id" json:"id"`
	OwnerID       int64           `db:"owner_id" json:"ownerId"`
	Slug          string          `db:"slug" json:"slug"`
	Name          string          `db:"name" json:"name"`
	Latitude      *float64        `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64        `db:"longitude" json:"longitude,omitempty"`
	MinOrderValue decimal.Decimal `db:"min_order_value" json:"minOrderValue"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}

type CreateShopInput struct {
	Name          string           `json:"name" binding:"required"`
	Latitude      *float64         `json:"latitude"`
	Longitude     *float64         `json:"longitude"`
	MinOrderValue *decimal.Decimal `json:"minOrderValue"`
}

// Classify decides takeaway vs delivery. A total equal to the minimum
// already qualifies for delivery.
func Classify(total, minOrderValue decimal.Decimal) Fulfillment {
	if total.LessThan(minOrderValue) {
		return FulfillmentTakeaway
	}
	return FulfillmentDelivery
}
