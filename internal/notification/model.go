package notification

import "time"

const TypeOrderPlaced = "order.placed"

// Message is both the stored notification row and the SSE payload.
type Message struct {
	ID        int64     `db:"id" json:"id,omitempty"`
	ShopID    int64     `db:"shop_id" json:"shopId"`
	OrderID   *int64    `db:"order_id" json:"orderId,omitempty"`
	Type      string    `db:"type" json:"type"`
	Message   string    `db:"message" json:"message"`
	Read      bool      `db:"is_read" json:"read"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type Stats struct {
	Shops       int    `json:"shops"`
	Subscribers int    `json:"subscribers"`
	Published   uint64 `json:"published"`
	Delivered   uint64 `json:"delivered"`
	Dropped     uint64 `json:"dropped"`
}
