package unit

import "strings"

type Category string

const (
	CategoryQuantity Category = "quantity"
	CategoryClothing Category = "clothing"
	CategoryColor    Category = "color"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryQuantity, CategoryClothing, CategoryColor:
		return true
	}
	return false
}

type Unit struct {
	ID       int64    `db:"id" json:"id"`
	Name     string   `db:"name" json:"name"`
	Category Category `db:"category" json:"category"`
}

// Labels collects the distinct size and color labels and quantity unit ids
// of one order, keeping first-seen order.
type Labels struct {
	Sizes   []string
	Colors  []string
	UnitIDs []int64

	seenSizes  map[string]struct{}
	seenColors map[string]struct{}
	seenUnits  map[int64]struct{}
}

func (l *Labels) Empty() bool {
	return len(l.Sizes) == 0 && len(l.Colors) == 0 && len(l.UnitIDs) == 0
}

// AddUnitID ignores nil and non-positive ids.
func (l *Labels) AddUnitID(id *int64) {
	if id == nil || *id <= 0 {
		return
	}
	if l.seenUnits == nil {
		l.seenUnits = make(map[int64]struct{})
	}
	if _, ok := l.seenUnits[*id]; ok {
		return
	}
	l.seenUnits[*id] = struct{}{}
	l.UnitIDs = append(l.UnitIDs, *id)
}

func (l *Labels) AddSize(label string) {
	l.Sizes = appendDistinct(l.Sizes, &l.seenSizes, label)
}

func (l *Labels) AddColor(label string) {
	l.Colors = appendDistinct(l.Colors, &l.seenColors, label)
}

func appendDistinct(list []string, seen *map[string]struct{}, label string) []string {
	label = strings.TrimSpace(label)
	if label == "" {
		return list
	}
	if *seen == nil {
		*seen = make(map[string]struct{})
	}
	if _, ok := (*seen)[label]; ok {
		return list
	}
	(*seen)[label] = struct{}{}
	return append(list, label)
}

// Resolution maps submitted labels to unit ids per category and records
// which submitted unit ids are existing quantity units.
type Resolution struct {
	Sizes  map[string]int64
	Colors map[string]int64
	Units  map[int64]bool
}

// UnitID returns id when it names a quantity unit, nil otherwise.
func (r *Resolution) UnitID(id *int64) *int64 {
	if id == nil || !r.Units[*id] {
		return nil
	}
	v := *id
	return &v
}

// SizeID returns nil for empty or unresolved labels.
func (r *Resolution) SizeID(label string) *int64 {
	return lookup(r.Sizes, label)
}

func (r *Resolution) ColorID(label string) *int64 {
	return lookup(r.Colors, label)
}

func lookup(m map[string]int64, label string) *int64 {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil
	}
	id, ok := m[label]
	if !ok {
		return nil
	}
	return &id
}
