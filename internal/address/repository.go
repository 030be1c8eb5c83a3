package address

import (
	"context"
	"database/sql"
	"errors"

	"localcart-be/internal/logger"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Repository interface {
	GetByUserID(ctx context.Context, userID int64) ([]*Address, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Address, error)

	// Create and Update write the address in one transaction. When
	// addr.IsDefault is set the user's previous default is cleared in the
	// same transaction, so a failed write keeps the old default.
	Create(ctx context.Context, addr *Address) error
	Update(ctx context.Context, addr *Address) error
	Deactivate(ctx context.Context, id uuid.UUID) error

	// SetDefault moves the user's default to addressID atomically.
	SetDefault(ctx context.Context, userID int64, addressID uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: sqlx.NewDb(db, "postgres")}
}

const selectAddresses = `
	SELECT
		id, user_id, name, phone, line1, line2,
		city, province, postal_code, country,
		is_default, is_active
	FROM addresses
`

const clearDefault = `
	UPDATE addresses
	SET is_default = false, updated_at = NOW()
	WHERE user_id = $1 AND is_default = true
`

func (r *repository) GetByUserID(ctx context.Context, userID int64) ([]*Address, error) {
	const q = selectAddresses + `
		WHERE user_id = $1 AND is_active = true
		ORDER BY is_default DESC, created_at DESC
	`

	res := []*Address{}
	if err := r.db.SelectContext(ctx, &res, q, userID); err != nil {
		logger.FromCtx(ctx).Error("query failed",
			zap.String("repo", "Address"),
			zap.String("method", "GetByUserID"),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		return nil, err
	}
	return res, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Address, error) {
	const q = selectAddresses + `WHERE id = $1 AND is_active = true`

	var a Address
	err := r.db.GetContext(ctx, &a, q, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("query failed",
			zap.String("repo", "Address"),
			zap.String("method", "GetByID"),
			zap.String("address_id", id.String()),
			zap.Error(err),
		)
		return nil, err
	}
	return &a, nil
}

func (r *repository) Create(ctx context.Context, addr *Address) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Create"),
		zap.String("address_id", addr.ID.String()),
	)

	const q = `
		INSERT INTO addresses (
			id, user_id, name, phone, line1, line2,
			city, province, postal_code, country,
			is_default, is_active
		) VALUES (
			:id, :user_id, :name, :phone, :line1, :line2,
			:city, :province, :postal_code, :country,
			:is_default, :is_active
		)
	`

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if addr.IsDefault {
			if _, err := tx.ExecContext(ctx, clearDefault, addr.UserID); err != nil {
				return err
			}
		}
		_, err := tx.NamedExecContext(ctx, q, addr)
		return err
	})
	if err != nil {
		log.Error("insert failed", zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) Update(ctx context.Context, addr *Address) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "Update"),
		zap.String("address_id", addr.ID.String()),
	)

	const q = `
		UPDATE addresses
		SET name = $3, phone = $4, line1 = $5, line2 = $6,
		    city = $7, province = $8, postal_code = $9, country = $10,
		    is_default = $11, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND is_active = true
	`

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if addr.IsDefault {
			if _, err := tx.ExecContext(ctx, clearDefault, addr.UserID); err != nil {
				return err
			}
		}
		res, err := tx.ExecContext(ctx, q,
			addr.ID, addr.UserID,
			addr.Name, addr.Phone, addr.Line1, addr.Line2,
			addr.City, addr.Province, addr.PostalCode, addr.Country,
			addr.IsDefault,
		)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
	if err != nil && !errors.Is(err, ErrAddressNotFound) {
		log.Error("update failed", zap.Error(err))
	}
	return err
}

func (r *repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	const q = `
		UPDATE addresses
		SET is_active = false, is_default = false, updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		logger.FromCtx(ctx).Error("deactivate failed",
			zap.String("repo", "Address"),
			zap.String("method", "Deactivate"),
			zap.String("address_id", id.String()),
			zap.Error(err),
		)
	}
	return err
}

func (r *repository) SetDefault(ctx context.Context, userID int64, addressID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Address"),
		zap.String("method", "SetDefault"),
		zap.Int64("user_id", userID),
		zap.String("address_id", addressID.String()),
	)

	const q = `
		UPDATE addresses
		SET is_default = true, updated_at = NOW()
		WHERE user_id = $1 AND id = $2 AND is_active = true
	`

	err := r.inTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, clearDefault, userID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, userID, addressID)
		if err != nil {
			return err
		}
		return expectOne(res)
	})
	if err != nil && !errors.Is(err, ErrAddressNotFound) {
		log.Error("set default failed", zap.Error(err))
	}
	return err
}

func (r *repository) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func expectOne(res sql.Result) error {
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrAddressNotFound
	}
	return nil
}
