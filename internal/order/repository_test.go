package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"localcart-be/internal/shop"
	"localcart-be/internal/unit"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (Repository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db, unit.NewResolver(unit.NewRepository(db))), mock, db
}

// Product A (no variant, qty 2, price 50) and Product B (size "Large",
// qty 1, price 80) against a shop with minimum 200.
func scenarioLines() []CartLine {
	return []CartLine{
		{Kind: LinePlain, ProductID: 1, ShopID: 7, Name: "Product A", Price: decimal.NewFromInt(50), Quantity: 2},
		{Kind: LineVariant, ProductID: 2, ShopID: 7, Name: "Product B", SizeLabel: "Large", Price: decimal.NewFromInt(80), Quantity: 1},
	}
}

func expectShops(mock sqlmock.Sqlmock, ids []int64, rows *sqlmock.Rows) {
	mock.ExpectQuery(`SELECT id, min_order_value FROM shops WHERE id = ANY\(\$1\)`).
		WithArgs(pq.Array(ids)).
		WillReturnRows(rows)
}

const unitsLookup = `SELECT id, name, category FROM units WHERE \(category = \$1 AND name = ANY\(\$2\)\)`

func expectUnits(mock sqlmock.Sqlmock, sizes, colors []string, unitIDs []int64, rows *sqlmock.Rows) {
	mock.ExpectQuery(unitsLookup).
		WithArgs("clothing", pq.Array(sizes), "color", pq.Array(colors), "quantity", pq.Array(unitIDs)).
		WillReturnRows(rows)
}

func unitRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "category"})
}

func TestRepository_CreateOrderTx(t *testing.T) {
	ctx := context.Background()

	t.Run("TwoLinesResolvedSizeTakeaway", func(t *testing.T) {
		repo, mock, _ := newTestRepo(t)

		o := &Order{UserID: 1, Total: decimal.NewFromInt(180), Status: StatusPending, PaymentMethod: "cash"}

		mock.ExpectBegin()
		expectShops(mock, []int64{7}, sqlmock.NewRows([]string{"id", "min_order_value"}).AddRow(7, "200"))
		expectUnits(mock, []string{"Large"}, nil, nil, unitRows().AddRow(31, "Large", "clothing"))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(int64(1), sqlmock.AnyArg(), "PENDING", "takeaway", "cash", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(100, time.Now()))
		mock.ExpectExec(`INSERT INTO order_lines`).
			WithArgs(
				100, 1, "Product A", sqlmock.AnyArg(), nil, 2, 7, nil, nil, nil,
				100, 2, "Product B", sqlmock.AnyArg(), nil, 1, 7, nil, 31, nil,
			).
			WillReturnResult(sqlmock.NewResult(0, 2))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateOrderTx(ctx, o, scenarioLines()))

		assert.Equal(t, int64(100), o.ID)
		assert.Equal(t, shop.FulfillmentTakeaway, o.Fulfillment)
		require.Len(t, o.Items, 2)
		assert.Nil(t, o.Items[0].SizeID)
		require.NotNil(t, o.Items[1].SizeID)
		assert.Equal(t, int64(31), *o.Items[1].SizeID)
		assert.Equal(t, "Large", *o.Items[1].Size)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("TotalAtMinimumIsDelivery", func(t *testing.T) {
		repo, mock, _ := newTestRepo(t)

		o := &Order{UserID: 1, Total: decimal.NewFromInt(200), Status: StatusPending, PaymentMethod: "cash"}
		lines := []CartLine{{Kind: LinePlain, ProductID: 1, UnitID: ptr(3), ShopID: 7, Name: "A", Price: decimal.NewFromInt(100), Quantity: 2}}

		mock.ExpectBegin()
		expectShops(mock, []int64{7}, sqlmock.NewRows([]string{"id", "min_order_value"}).AddRow(7, "200.00"))
		expectUnits(mock, nil, nil, []int64{3}, unitRows().AddRow(3, "kg", "quantity"))
		mock.ExpectQuery(`INSERT INTO orders`).
			WithArgs(int64(1), sqlmock.AnyArg(), "PENDING", "delivery", "cash", nil).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(101, time.Now()))
		mock.ExpectExec(`INSERT INTO order_lines`).
			WithArgs(101, 1, "A", sqlmock.AnyArg(), nil, 2, 7, 3, nil, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateOrderTx(ctx, o, lines))
		assert.Equal(t, shop.FulfillmentDelivery, o.Fulfillment)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnresolvedLabelBecomesNull", func(t *testing.T) {
		repo, mock, _ := newTestRepo(t)

		o := &Order{UserID: 1, Total: decimal.NewFromInt(80), Status: StatusPending, PaymentMethod: "cash"}
		lines := []CartLine{{Kind: LineVariant, ProductID: 2, ShopID: 7, Name: "B", ColorLabel: "Mauve", Price: decimal.NewFromInt(80), Quantity: 1}}

		mock.ExpectBegin()
		expectShops(mock, []int64{7}, sqlmock.NewRows([]string{"id", "min_order_value"}).AddRow(7, "200"))
		expectUnits(mock, nil, []string{"Mauve"}, nil, unitRows())
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(102, time.Now()))
		mock.ExpectExec(`INSERT INTO order_lines`).
			WithArgs(102, 2, "B", sqlmock.AnyArg(), nil, 1, 7, nil, nil, nil).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateOrderTx(ctx, o, lines))
		assert.Nil(t, o.Items[0].ColorID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("PlainUnitIDMustBeQuantityUnit", func(t *testing.T) {
		repo, mock, _ := newTestRepo(t)

		o := &Order{UserID: 1, Total: decimal.NewFromInt(30), Status: StatusPending, PaymentMethod: "cash"}
		lines := []CartLine{
			// 999 is a color row, 404 does not exist
			{Kind: LinePlain, ProductID: 1, UnitID: ptr(999), ShopID: 7, Name: "A", Price: decimal.NewFromInt(10), Quantity: 1},
			{Kind: LinePlain, ProductID: 2, UnitID: ptr(404), ShopID: 7, Name: "B", Price: decimal.NewFromInt(10), Quantity: 1},
			{Kind: LinePlain, ProductID: 3, UnitID: ptr(3), ShopID: 7, Name: "C", Price: decimal.NewFromInt(10), Quantity: 1},
		}

		mock.ExpectBegin()
		expectShops(mock, []int64{7}, sqlmock.NewRows([]string{"id", "min_order_value"}).AddRow(7, "200"))
		expectUnits(mock, nil, nil, []int64{999, 404, 3}, unitRows().AddRow(3, "kg", "quantity"))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(104, time.Now()))
		mock.ExpectExec(`INSERT INTO order_lines`).
			WithArgs(
				104, 1, "A", sqlmock.AnyArg(), nil, 1, 7, nil, nil, nil,
				104, 2, "B", sqlmock.AnyArg(), nil, 1, 7, nil, nil, nil,
				104, 3, "C", sqlmock.AnyArg(), nil, 1, 7, 3, nil, nil,
			).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		require.NoError(t, repo.CreateOrderTx(ctx, o, lines))
		assert.Nil(t, o.Items[0].UnitID)
		assert.Nil(t, o.Items[1].UnitID)
		require.NotNil(t, o.Items[2].UnitID)
		assert.Equal(t, int64(3), *o.Items[2].UnitID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UnknownShopRollsBack", func(t *testing.T) {
		repo, mock, _ := newTestRepo(t)

		lines := scenarioLines()
		lines[1].ShopID = 8

		mock.ExpectBegin()
		expectShops(mock, []int64{7, 8}, sqlmock.NewRows([]string{"id", "min_order_value"}).AddRow(7, "200"))
		mock.ExpectRollback()

		err := repo.CreateOrderTx(ctx, &Order{UserID: 1, Status: StatusPending}, lines)
		assert.ErrorIs(t, err, ErrUnknownShop)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("LineInsertFailureLeavesNothing", func(t *testing.T) {
		repo, mock, _ := newTestRepo(t)

		o := &Order{UserID: 1, Total: decimal.NewFromInt(180), Status: StatusPending, PaymentMethod: "cash"}

		mock.ExpectBegin()
		expectShops(mock, []int64{7}, sqlmock.NewRows([]string{"id", "min_order_value"}).AddRow(7, "200"))
		mock.ExpectQuery(`FROM units`).
			WillReturnRows(unitRows().AddRow(31, "Large", "clothing"))
		mock.ExpectQuery(`INSERT INTO orders`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(103, time.Now()))
		mock.ExpectExec(`INSERT INTO order_lines`).
			WillReturnError(errors.New("fk violation"))
		mock.ExpectRollback()

		err := repo.CreateOrderTx(ctx, o, scenarioLines())
		assert.Error(t, err)
		assert.Nil(t, o.Items)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("EmptyCart", func(t *testing.T) {
		repo, mock, _ := newTestRepo(t)
		err := repo.CreateOrderTx(ctx, &Order{}, nil)
		assert.ErrorIs(t, err, ErrEmptyCart)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

var historyColumns = []string{
	"id", "user_id", "total", "status", "fulfillment", "payment_method", "delivery_address", "created_at",
	"line_id", "product_id", "name", "price", "image", "quantity", "shop_id",
	"unit_id", "unit_name", "size_id", "size_name", "color_id", "color_name",
}

func historyRows(now time.Time) *sqlmock.Rows {
	addr := []byte(`{"name":"Home","line1":"Jl. Mawar 1","city":"Bandung"}`)
	return sqlmock.NewRows(historyColumns).
		AddRow(11, 1, "180", "PENDING", "takeaway", "cash", addr, now,
			1, 1, "Product A", "50", nil, 2, 7, nil, nil, nil, nil, nil, nil).
		AddRow(11, 1, "180", "PENDING", "takeaway", "cash", addr, now,
			2, 2, "Product B", "80", nil, 1, 7, nil, nil, 31, "Large", nil, nil).
		AddRow(10, 1, "250", "COMPLETED", "delivery", "cash", nil, now.Add(-time.Hour),
			3, 5, "Rice", "125", "http://x/r.png", 2, 9, 4, "kg", nil, nil, 40, "Red")
}

func TestRepository_ListByUser(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	now := time.Now()

	mock.ExpectQuery(`FROM orders o JOIN order_lines l .* WHERE o.user_id = \$1 ORDER BY o.created_at DESC, o.id DESC, l.id`).
		WithArgs(int64(1)).
		WillReturnRows(historyRows(now))

	orders, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	first := orders[0]
	assert.Equal(t, int64(11), first.ID)
	assert.Equal(t, shop.FulfillmentTakeaway, first.Fulfillment)
	require.NotNil(t, first.DeliveryAddress)
	assert.Equal(t, "Jl. Mawar 1", first.DeliveryAddress.Line1)
	require.Len(t, first.Items, 2)
	assert.Equal(t, "Large", *first.Items[1].Size)

	second := orders[1]
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Nil(t, second.DeliveryAddress)
	require.Len(t, second.Items, 1)
	assert.Equal(t, "kg", *second.Items[0].Unit)
	assert.Equal(t, "Red", *second.Items[0].Color)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListByUser_Stable(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 2; i++ {
		mock.ExpectQuery(`WHERE o.user_id = \$1`).
			WithArgs(int64(1)).
			WillReturnRows(historyRows(now))
	}

	a, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	b, err := repo.ListByUser(context.Background(), 1)
	require.NoError(t, err)

	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	assert.Equal(t, string(ja), string(jb))
}

func TestRepository_ListByShop(t *testing.T) {
	repo, mock, _ := newTestRepo(t)

	mock.ExpectQuery(`WHERE l.shop_id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	orders, err := repo.ListByShop(context.Background(), 9)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)

	mock.ExpectQuery(`WHERE l.shop_id = \$1`).
		WillReturnError(errors.New("db down"))

	_, err = repo.ListByShop(context.Background(), 9)
	assert.Error(t, err)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, _ := newTestRepo(t)

	mock.ExpectQuery(`WHERE o.id = \$1`).
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows(historyColumns))

	_, err := repo.GetByID(context.Background(), 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock, _ := newTestRepo(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE orders SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = \$3`).
		WithArgs("ACCEPTED", int64(11), "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.UpdateStatus(ctx, 11, StatusPending, StatusAccepted))

	mock.ExpectExec(`UPDATE orders SET status`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.UpdateStatus(ctx, 11, StatusPending, StatusAccepted), ErrStatusConflict)

	assert.NoError(t, mock.ExpectationsWereMet())
}
