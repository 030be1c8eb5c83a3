package unit

import (
	"context"

	"localcart-be/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Resolver maps the size/color labels and unit ids of an order to unit
// rows of the matching category with a single lookup.
type Resolver struct {
	repo Repository
}

func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve never fails on unknown labels or ids; they are absent from the
// returned maps and resolve to no variant.
func (r *Resolver) Resolve(ctx context.Context, q sqlx.QueryerContext, labels Labels) (*Resolution, error) {
	res := &Resolution{
		Sizes:  make(map[string]int64, len(labels.Sizes)),
		Colors: make(map[string]int64, len(labels.Colors)),
		Units:  make(map[int64]bool, len(labels.UnitIDs)),
	}
	if labels.Empty() {
		return res, nil
	}

	units, err := r.repo.Lookup(ctx, q, labels)
	if err != nil {
		return nil, err
	}

	for _, u := range units {
		switch u.Category {
		case CategoryClothing:
			res.Sizes[u.Name] = u.ID
		case CategoryColor:
			res.Colors[u.Name] = u.ID
		case CategoryQuantity:
			res.Units[u.ID] = true
		}
	}

	missing := len(labels.Sizes) - len(res.Sizes) +
		len(labels.Colors) - len(res.Colors) +
		len(labels.UnitIDs) - len(res.Units)
	if missing > 0 {
		logger.FromCtx(ctx).Warn("unresolved variant references",
			zap.Strings("sizes", labels.Sizes),
			zap.Strings("colors", labels.Colors),
			zap.Int64s("unit_ids", labels.UnitIDs),
			zap.Int("missing", missing),
		)
	}

	return res, nil
}
