package shop

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shopCols = []string{"id", "owner_id", "slug", "name", "latitude", "longitude", "min_order_value", "created_at"}

func TestRepository_GetBySlug(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM shops WHERE slug = \$1`).
			WithArgs("green-grocer").
			WillReturnRows(sqlmock.NewRows(shopCols).
				AddRow(1, 10, "green-grocer", "Green Grocer", 12.97, 77.59, "200.00", time.Now()))

		s, err := repo.GetBySlug(context.Background(), "green-grocer")
		require.NoError(t, err)
		assert.Equal(t, int64(1), s.ID)
		assert.Equal(t, "Green Grocer", s.Name)
		assert.True(t, s.MinOrderValue.Equal(decimal.NewFromInt(200)))
		require.NotNil(t, s.Latitude)
		assert.InDelta(t, 12.97, *s.Latitude, 0.001)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM shops WHERE slug = \$1`).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetBySlug(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrShopNotFound)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM shops WHERE id = \$1`).
			WithArgs(int64(3)).
			WillReturnError(errors.New("db error"))

		_, err := repo.GetByID(context.Background(), 3)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrShopNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT .* FROM shops WHERE owner_id = \$1 ORDER BY id LIMIT 1`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(shopCols).
			AddRow(4, 10, "bakery", "Bakery", nil, nil, "150", time.Now()))

	s, err := repo.GetByOwner(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), s.ID)
	assert.Nil(t, s.Latitude)
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	now := time.Now()

	s := &Shop{OwnerID: 10, Slug: "bakery", Name: "Bakery", MinOrderValue: decimal.NewFromInt(200)}

	mock.ExpectQuery(`INSERT INTO shops`).
		WithArgs(int64(10), "bakery", "Bakery", nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(8, now))

	err = repo.Create(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, int64(8), s.ID)
	assert.Equal(t, now, s.CreatedAt)

	t.Run("Slug unique violation", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO shops`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "shops_slug_key"})

		err := repo.Create(context.Background(), &Shop{OwnerID: 10, Slug: "bakery", Name: "Bakery"})
		assert.ErrorIs(t, err, ErrSlugTaken)
	})

	t.Run("Other error passes through", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO shops`).
			WillReturnError(errors.New("db down"))

		err := repo.Create(context.Background(), &Shop{OwnerID: 10, Slug: "bakery", Name: "Bakery"})
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrSlugTaken)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SlugExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("bakery").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.SlugExists(context.Background(), "bakery")
	require.NoError(t, err)
	assert.True(t, exists)
}
