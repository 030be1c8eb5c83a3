package notification

import (
	"context"
	"database/sql"

	"localcart-be/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const listLimit = 50

type Repository interface {
	Create(ctx context.Context, m *Message) error
	ListByShop(ctx context.Context, shopID int64, limit int) ([]Message, error)
	MarkRead(ctx context.Context, shopID, id int64) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: sqlx.NewDb(db, "postgres")}
}

func (r *repository) Create(ctx context.Context, m *Message) error {
	const q = `
		INSERT INTO notifications (shop_id, order_id, type, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, q, m.ShopID, m.OrderID, m.Type, m.Message).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		logger.FromCtx(ctx).Error("insert notification failed",
			zap.String("repo", "Notification"),
			zap.String("method", "Create"),
			zap.Int64("shop_id", m.ShopID),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (r *repository) ListByShop(ctx context.Context, shopID int64, limit int) ([]Message, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Notification"),
		zap.String("method", "ListByShop"),
		zap.Int64("shop_id", shopID),
	)

	if limit <= 0 || limit > listLimit {
		limit = listLimit
	}

	const q = `
		SELECT id, shop_id, order_id, type, message, is_read, created_at
		FROM notifications
		WHERE shop_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	msgs := []Message{}
	if err := r.db.SelectContext(ctx, &msgs, q, shopID, limit); err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}
	return msgs, nil
}

func (r *repository) MarkRead(ctx context.Context, shopID, id int64) error {
	const q = `
		UPDATE notifications
		SET is_read = true
		WHERE id = $1 AND shop_id = $2
	`

	res, err := r.db.ExecContext(ctx, q, id, shopID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
