package product

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInvalidProduct    = errors.New("invalid product")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidImage      = errors.New("invalid image")
	ErrUnauthorized      = errors.New("unauthorized")
)
