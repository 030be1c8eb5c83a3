package address

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// Snapshot is the by-value copy of an address stored on an order, so later
// edits to the address book never rewrite order history.
type Snapshot struct {
	ID         string  `json:"id,omitempty"`
	Name       string  `json:"name"`
	Phone      string  `json:"phone"`
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city"`
	Province   string  `json:"province"`
	PostalCode string  `json:"postalCode"`
	Country    string  `json:"country"`
}

func (a *Address) Snapshot() *Snapshot {
	return &Snapshot{
		ID:         a.ID.String(),
		Name:       a.Name,
		Phone:      a.Phone,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Province:   a.Province,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

// Value stores the snapshot as jsonb.
func (s *Snapshot) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Snapshot) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return errors.New("address snapshot: unsupported column type")
	}
}
