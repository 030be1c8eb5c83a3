package shop

import "errors"

var (
	ErrShopNotFound = errors.New("shop not found")
	ErrInvalidShop  = errors.New("invalid shop")
	ErrForbidden    = errors.New("forbidden: not the shop owner")
	ErrUnauthorized = errors.New("unauthenticated")
	ErrSlugTaken    = errors.New("shop slug already taken")
)
