package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"localcart-be/internal/address"
	"localcart-be/internal/unit"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineKind string

const (
	// LinePlain is a product, optionally sold in a specific unit.
	LinePlain LineKind = "plain"
	// LineVariant is a product picked by size and/or color label.
	LineVariant LineKind = "variant"
)

// CartLine is one checkout item, normalized when the request is decoded.
// Plain lines may carry UnitID; variant lines carry SizeLabel/ColorLabel.
type CartLine struct {
	Kind       LineKind
	ProductID  int64
	UnitID     *int64
	SizeLabel  string
	ColorLabel string

	ShopID   int64
	Name     string
	Price    decimal.Decimal
	Quantity int
	Image    *string
}

type rawCartLine struct {
	ID        json.RawMessage `json:"id"`
	ProductID json.RawMessage `json:"productId"`
	UnitID    json.RawMessage `json:"unitId"`
	ShopID    json.RawMessage `json:"shopId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Image     *string         `json:"image"`
	Size      json.RawMessage `json:"size"`
	Color     json.RawMessage `json:"color"`
}

// UnmarshalJSON accepts ids as numbers or strings, a composite
// "<productId>-<unitId>" id, and size/color as a string or an object with
// a name or label.
func (l *CartLine) UnmarshalJSON(b []byte) error {
	var raw rawCartLine
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCartLine, err)
	}

	idRaw := raw.ProductID
	if isEmptyJSON(idRaw) {
		idRaw = raw.ID
	}
	id, err := rawString(idRaw)
	if err != nil {
		return fmt.Errorf("%w: id: %v", ErrInvalidCartLine, err)
	}

	size, err := rawLabel(raw.Size)
	if err != nil {
		return fmt.Errorf("%w: size: %v", ErrInvalidCartLine, err)
	}
	color, err := rawLabel(raw.Color)
	if err != nil {
		return fmt.Errorf("%w: color: %v", ErrInvalidCartLine, err)
	}

	shopStr, err := rawString(raw.ShopID)
	if err != nil {
		return fmt.Errorf("%w: shopId: %v", ErrInvalidCartLine, err)
	}

	out := CartLine{
		Name:     strings.TrimSpace(raw.Name),
		Price:    raw.Price,
		Quantity: raw.Quantity,
		Image:    raw.Image,
	}

	if shopStr != "" {
		if out.ShopID, err = strconv.ParseInt(shopStr, 10, 64); err != nil {
			return fmt.Errorf("%w: shopId %q", ErrInvalidCartLine, shopStr)
		}
	}

	if size != "" || color != "" {
		out.Kind = LineVariant
		out.SizeLabel = size
		out.ColorLabel = color
		if out.ProductID, err = strconv.ParseInt(id, 10, 64); err != nil {
			return fmt.Errorf("%w: variant line needs a numeric product id, got %q", ErrInvalidCartLine, id)
		}
		*l = out
		return nil
	}

	out.Kind = LinePlain
	productPart, unitPart, composite := strings.Cut(id, "-")
	if out.ProductID, err = strconv.ParseInt(productPart, 10, 64); err != nil {
		return fmt.Errorf("%w: product id %q", ErrInvalidCartLine, id)
	}

	if !composite {
		unitPart, err = rawString(raw.UnitID)
		if err != nil {
			return fmt.Errorf("%w: unitId: %v", ErrInvalidCartLine, err)
		}
	}
	if unitPart != "" {
		unitID, err := strconv.ParseInt(unitPart, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: unit id %q", ErrInvalidCartLine, unitPart)
		}
		out.UnitID = &unitID
	}

	*l = out
	return nil
}

func (l CartLine) Validate() error {
	switch {
	case l.ProductID <= 0:
		return fmt.Errorf("%w: product id must be positive", ErrInvalidCartLine)
	case l.ShopID <= 0:
		return fmt.Errorf("%w: shop id must be positive", ErrInvalidCartLine)
	case l.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", ErrInvalidCartLine)
	case l.Price.IsNegative():
		return fmt.Errorf("%w: price must not be negative", ErrInvalidCartLine)
	case l.Kind != LinePlain && l.Kind != LineVariant:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidCartLine, l.Kind)
	}
	return nil
}

func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// collectLabels gathers the distinct variant labels and unit ids of an order.
func collectLabels(lines []CartLine) unit.Labels {
	var labels unit.Labels
	for _, l := range lines {
		if l.Kind != LineVariant {
			labels.AddUnitID(l.UnitID)
			continue
		}
		labels.AddSize(l.SizeLabel)
		labels.AddColor(l.ColorLabel)
	}
	return labels
}

// distinctShopIDs keeps first-appearance order.
func distinctShopIDs(lines []CartLine) []int64 {
	ids := []int64{}
	seen := make(map[int64]bool, len(lines))
	for _, l := range lines {
		if seen[l.ShopID] {
			continue
		}
		seen[l.ShopID] = true
		ids = append(ids, l.ShopID)
	}
	return ids
}

// AddressRef is either the id of a saved address or an inline address.
type AddressRef struct {
	ID     *uuid.UUID
	Inline *address.Snapshot
}

func (a *AddressRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if isEmptyJSON(b) {
		return nil
	}

	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		id, err := uuid.Parse(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%w: address id %q", ErrInvalidOrder, s)
		}
		a.ID = &id
		return nil
	}

	var snap address.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("%w: address: %v", ErrInvalidOrder, err)
	}
	if id, err := uuid.Parse(snap.ID); err == nil {
		a.ID = &id
	}
	a.Inline = &snap
	return nil
}

func isEmptyJSON(b json.RawMessage) bool {
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}

// rawString reads a JSON string or number as trimmed text.
func rawString(b json.RawMessage) (string, error) {
	if isEmptyJSON(b) {
		return "", nil
	}
	b = bytes.TrimSpace(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// rawLabel reads a label given as a string or as {"name"} / {"label"}.
func rawLabel(b json.RawMessage) (string, error) {
	if isEmptyJSON(b) {
		return "", nil
	}
	b = bytes.TrimSpace(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	var obj struct {
		Name  string `json:"name"`
		Label string `json:"label"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return "", err
	}
	if name := strings.TrimSpace(obj.Name); name != "" {
		return name, nil
	}
	return strings.TrimSpace(obj.Label), nil
}
