package shop

import (
	"context"
	"database/sql"
	"errors"

	"localcart-be/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Shop, error)
	GetBySlug(ctx context.Context, slug string) (*Shop, error)
	GetByOwner(ctx context.Context, ownerID int64) (*Shop, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	Create(ctx context.Context, s *Shop) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: sqlx.NewDb(db, "postgres")}
}

const shopColumns = `id, owner_id, slug, name, latitude, longitude, min_order_value, created_at`

func (r *repository) get(ctx context.Context, method, where string, arg any) (*Shop, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Shop"),
		zap.String("method", method),
		zap.Any("key", arg),
	)

	var s Shop
	err := r.db.GetContext(ctx, &s, `SELECT `+shopColumns+` FROM shops WHERE `+where+` LIMIT 1`, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShopNotFound
	}
	if err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	return &s, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Shop, error) {
	return r.get(ctx, "GetByID", "id = $1", id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Shop, error) {
	return r.get(ctx, "GetBySlug", "slug = $1", slug)
}

func (r *repository) GetByOwner(ctx context.Context, ownerID int64) (*Shop, error) {
	return r.get(ctx, "GetByOwner", "owner_id = $1 ORDER BY id", ownerID)
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM shops WHERE slug = $1)`, slug).Scan(&exists)
	return exists, err
}

func (r *repository) Create(ctx context.Context, s *Shop) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Shop"),
		zap.String("method", "Create"),
		zap.String("slug", s.Slug),
	)

	const q = `
		INSERT INTO shops (owner_id, slug, name, latitude, longitude, min_order_value)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, q,
		s.OwnerID, s.Slug, s.Name, s.Latitude, s.Longitude, s.MinOrderValue,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			log.Warn("slug taken on insert")
			return ErrSlugTaken
		}
		log.Error("insert failed", zap.Error(err))
		return err
	}

	return nil
}
