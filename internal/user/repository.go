package user

import (
	"context"
	"database/sql"
	"errors"

	"localcart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const uniqueViolation = "23505"

type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *User) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "User"),
		zap.String("method", "Create"),
	)

	const q = `
		INSERT INTO users (name, email, password, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, q, u.Name, u.Email, u.Password, u.Role).
		Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailExists
		}
		log.Error("failed to insert user", zap.String("email", u.Email), zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
		SELECT id, name, email, password, role, created_at
		FROM users
		WHERE email = $1
	`
	return r.scanOne(ctx, "FindByEmail", q, email)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*User, error) {
	const q = `
		SELECT id, name, email, password, role, created_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(ctx, "GetByID", q, id)
}

func (r *repository) scanOne(ctx context.Context, method, q string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, q, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		logger.FromCtx(ctx).Error("query user failed",
			zap.String("repo", "User"),
			zap.String("method", method),
			zap.Error(err),
		)
		return nil, err
	}
	return &u, nil
}
