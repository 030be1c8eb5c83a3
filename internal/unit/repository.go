package unit

import (
	"context"
	"database/sql"

	"localcart-be/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	List(ctx context.Context, category Category) ([]Unit, error)
	GetOrCreate(ctx context.Context, name string, category Category) (*Unit, error)

	// Lookup finds the units named by labels in a single query run on q,
	// so callers can resolve inside their own transaction.
	Lookup(ctx context.Context, q sqlx.QueryerContext, labels Labels) ([]Unit, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: sqlx.NewDb(db, "postgres")}
}

func (r *repository) List(ctx context.Context, category Category) ([]Unit, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Unit"),
		zap.String("method", "List"),
		zap.String("category", string(category)),
	)

	q := `SELECT id, name, category FROM units`
	args := []any{}
	if category != "" {
		q += ` WHERE category = $1`
		args = append(args, category)
	}
	q += ` ORDER BY category, name`

	units := []Unit{}
	if err := r.db.SelectContext(ctx, &units, q, args...); err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	return units, nil
}

func (r *repository) GetOrCreate(ctx context.Context, name string, category Category) (*Unit, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Unit"),
		zap.String("method", "GetOrCreate"),
		zap.String("name", name),
		zap.String("category", string(category)),
	)

	// the no-op update makes RETURNING yield the existing row on conflict
	const q = `
		INSERT INTO units (name, category)
		VALUES ($1, $2)
		ON CONFLICT (name, category) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, name, category
	`

	var u Unit
	if err := r.db.QueryRowxContext(ctx, q, name, category).StructScan(&u); err != nil {
		log.Error("upsert failed", zap.Error(err))
		return nil, err
	}

	return &u, nil
}

func (r *repository) Lookup(
	ctx context.Context,
	q sqlx.QueryerContext,
	labels Labels,
) ([]Unit, error) {

	if labels.Empty() {
		return nil, nil
	}

	const query = `
		SELECT id, name, category
		FROM units
		WHERE (category = $1 AND name = ANY($2))
		   OR (category = $3 AND name = ANY($4))
		   OR (category = $5 AND id = ANY($6))
	`

	var rows []Unit
	if err := sqlx.SelectContext(ctx, q, &rows, query,
		CategoryClothing, pq.Array(labels.Sizes),
		CategoryColor, pq.Array(labels.Colors),
		CategoryQuantity, pq.Array(labels.UnitIDs),
	); err != nil {
		logger.FromCtx(ctx).Error("unit lookup failed",
			zap.String("repo", "Unit"),
			zap.String("method", "Lookup"),
			zap.Error(err),
		)
		return nil, err
	}

	return rows, nil
}
