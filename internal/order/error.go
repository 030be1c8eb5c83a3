package order

import "errors"

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCartLine = errors.New("invalid cart line")
	ErrInvalidOrder    = errors.New("invalid order")
	ErrUnknownShop     = errors.New("unknown shop")
	ErrInvalidStatus   = errors.New("invalid status transition")
	ErrStatusConflict  = errors.New("order status changed concurrently")
)
