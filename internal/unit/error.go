package unit

import "errors"

var (
	ErrInvalidUnit  = errors.New("invalid unit")
	ErrUnitNotFound = errors.New("unit not found")
)
