package address

import (
	"github.com/google/uuid"
)

type Address struct {
	ID     uuid.UUID `json:"id" db:"id"`
	UserID int64     `json:"-" db:"user_id"`

	Name  string `json:"name" db:"name"`
	Phone string `json:"phone" db:"phone"`

	Line1 string  `json:"line1" db:"line1"`
	Line2 *string `json:"line2,omitempty" db:"line2"`

	City       string `json:"city" db:"city"`
	Province   string `json:"province" db:"province"`
	PostalCode string `json:"postalCode" db:"postal_code"`
	Country    string `json:"country" db:"country"`

	IsDefault bool `json:"isDefault" db:"is_default"`
	IsActive  bool `json:"-" db:"is_active"`
}

// SaveAddressInput creates a new address when ID is empty, otherwise edits
// the caller's existing one.
type SaveAddressInput struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Phone        string  `json:"phone"`
	Line1        string  `json:"line1"`
	Line2        *string `json:"line2"`
	City         string  `json:"city"`
	Province     string  `json:"province"`
	PostalCode   string  `json:"postalCode"`
	Country      string  `json:"country"`
	SetAsDefault bool    `json:"setAsDefault"`
}
