package order

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"localcart-be/internal/address"
	"localcart-be/internal/logger"
	"localcart-be/internal/shop"
	"localcart-be/internal/unit"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	// CreateOrderTx persists the header and every line atomically. On success
	// o carries its id, fulfillment, creation time and items.
	CreateOrderTx(ctx context.Context, o *Order, lines []CartLine) error

	ListByUser(ctx context.Context, userID int64) ([]*Order, error)
	// ListByShop returns orders touching the shop with only that shop's lines.
	ListByShop(ctx context.Context, shopID int64) ([]*Order, error)
	GetByID(ctx context.Context, id int64) (*Order, error)

	// UpdateStatus moves the order from one status to the next and fails with
	// ErrStatusConflict when the current status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to Status) error
}

type repository struct {
	db       *sqlx.DB
	resolver *unit.Resolver
}

func NewRepository(db *sql.DB, resolver *unit.Resolver) Repository {
	return &repository{db: sqlx.NewDb(db, "postgres"), resolver: resolver}
}

type shopMinimum struct {
	ID            int64           `db:"id"`
	MinOrderValue decimal.Decimal `db:"min_order_value"`
}

type orderLineRow struct {
	OrderID   int64           `db:"order_id"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Image     *string         `db:"image"`
	Quantity  int             `db:"quantity"`
	ShopID    int64           `db:"shop_id"`
	UnitID    *int64          `db:"unit_id"`
	SizeID    *int64          `db:"size_id"`
	ColorID   *int64          `db:"color_id"`
}

func (r *repository) CreateOrderTx(
	ctx context.Context,
	o *Order,
	lines []CartLine,
) error {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "CreateOrderTx"),
		zap.Int64("user_id", o.UserID),
		zap.Int("lines", len(lines)),
	)

	if len(lines) == 0 {
		return ErrEmptyCart
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("begin failed", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	// 1. Every line must point at an existing shop
	shopIDs := distinctShopIDs(lines)

	var shops []shopMinimum
	if err := tx.SelectContext(ctx, &shops,
		`SELECT id, min_order_value FROM shops WHERE id = ANY($1)`,
		pq.Array(shopIDs),
	); err != nil {
		log.Error("shop lookup failed", zap.Error(err))
		return err
	}

	minimum, err := requireShops(shopIDs, shops)
	if err != nil {
		log.Warn("order references unknown shop", zap.Error(err))
		return err
	}
	o.Fulfillment = shop.Classify(o.Total, minimum)

	// 2. Resolve unit ids and size/color labels once for the whole order
	res, err := r.resolver.Resolve(ctx, tx, collectLabels(lines))
	if err != nil {
		log.Error("variant resolution failed", zap.Error(err))
		return err
	}

	// 3. Header
	const insertOrder = `
		INSERT INTO orders (user_id, total, status, fulfillment, payment_method, delivery_address)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	if err := tx.QueryRowxContext(ctx, insertOrder,
		o.UserID, o.Total, o.Status, o.Fulfillment, o.PaymentMethod, o.DeliveryAddress,
	).Scan(&o.ID, &o.CreatedAt); err != nil {
		log.Error("insert order failed", zap.Error(err))
		return err
	}

	// 4. All lines in one statement
	rows := make([]orderLineRow, len(lines))
	items := make([]OrderLine, len(lines))
	for i, l := range lines {
		row := orderLineRow{
			OrderID:   o.ID,
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Image:     l.Image,
			Quantity:  l.Quantity,
			ShopID:    l.ShopID,
		}
		if l.Kind == LinePlain {
			row.UnitID = res.UnitID(l.UnitID)
		} else {
			row.SizeID = res.SizeID(l.SizeLabel)
			row.ColorID = res.ColorID(l.ColorLabel)
		}
		rows[i] = row
		items[i] = lineFromRow(row, l)
	}

	const insertLines = `
		INSERT INTO order_lines (
			order_id, product_id, name, price, image, quantity,
			shop_id, unit_id, size_id, color_id
		) VALUES (
			:order_id, :product_id, :name, :price, :image, :quantity,
			:shop_id, :unit_id, :size_id, :color_id
		)
	`

	result, err := tx.NamedExecContext(ctx, insertLines, rows)
	if err != nil {
		log.Error("insert lines failed", zap.Error(err))
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n != int64(len(rows)) {
		log.Error("line insert count mismatch", zap.Int64("inserted", n))
		return fmt.Errorf("inserted %d of %d order lines", n, len(rows))
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", zap.Error(err))
		return err
	}

	o.Items = items
	log.Info("order persisted",
		zap.Int64("order_id", o.ID),
		zap.String("fulfillment", string(o.Fulfillment)),
	)

	return nil
}

// requireShops checks every referenced shop was found and returns the
// largest minimum order value among them.
func requireShops(ids []int64, found []shopMinimum) (decimal.Decimal, error) {
	byID := make(map[int64]decimal.Decimal, len(found))
	for _, s := range found {
		byID[s.ID] = s.MinOrderValue
	}

	minimum := decimal.Zero
	for _, id := range ids {
		v, ok := byID[id]
		if !ok {
			return decimal.Zero, fmt.Errorf("%w: %d", ErrUnknownShop, id)
		}
		if v.GreaterThan(minimum) {
			minimum = v
		}
	}
	return minimum, nil
}

func lineFromRow(row orderLineRow, l CartLine) OrderLine {
	out := OrderLine{
		ProductID: row.ProductID,
		Name:      row.Name,
		Price:     row.Price,
		Image:     row.Image,
		Quantity:  row.Quantity,
		ShopID:    row.ShopID,
		UnitID:    row.UnitID,
		SizeID:    row.SizeID,
		ColorID:   row.ColorID,
	}
	if row.SizeID != nil {
		out.Size = &l.SizeLabel
	}
	if row.ColorID != nil {
		out.Color = &l.ColorLabel
	}
	return out
}

// historyRow is one row of orders x order_lines with unit names joined in.
type historyRow struct {
	ID              int64             `db:"id"`
	UserID          int64             `db:"user_id"`
	Total           decimal.Decimal   `db:"total"`
	Status          Status            `db:"status"`
	Fulfillment     shop.Fulfillment  `db:"fulfillment"`
	PaymentMethod   string            `db:"payment_method"`
	DeliveryAddress *address.Snapshot `db:"delivery_address"`
	CreatedAt       time.Time         `db:"created_at"`

	LineID    int64           `db:"line_id"`
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	Price     decimal.Decimal `db:"price"`
	Image     *string         `db:"image"`
	Quantity  int             `db:"quantity"`
	ShopID    int64           `db:"shop_id"`
	UnitID    *int64          `db:"unit_id"`
	UnitName  *string         `db:"unit_name"`
	SizeID    *int64          `db:"size_id"`
	SizeName  *string         `db:"size_name"`
	ColorID   *int64          `db:"color_id"`
	ColorName *string         `db:"color_name"`
}

const selectHistory = `
	SELECT
		o.id, o.user_id, o.total, o.status, o.fulfillment,
		o.payment_method, o.delivery_address, o.created_at,
		l.id AS line_id, l.product_id, l.name, l.price, l.image,
		l.quantity, l.shop_id,
		l.unit_id, un.name AS unit_name,
		l.size_id, sz.name AS size_name,
		l.color_id, cl.name AS color_name
	FROM orders o
	JOIN order_lines l ON l.order_id = o.id
	LEFT JOIN units un ON un.id = l.unit_id
	LEFT JOIN units sz ON sz.id = l.size_id
	LEFT JOIN units cl ON cl.id = l.color_id
`

const historyOrder = ` ORDER BY o.created_at DESC, o.id DESC, l.id`

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]*Order, error) {
	return r.history(ctx, "ListByUser", selectHistory+` WHERE o.user_id = $1`+historyOrder, userID)
}

func (r *repository) ListByShop(ctx context.Context, shopID int64) ([]*Order, error) {
	return r.history(ctx, "ListByShop", selectHistory+` WHERE l.shop_id = $1`+historyOrder, shopID)
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Order, error) {
	orders, err := r.history(ctx, "GetByID", selectHistory+` WHERE o.id = $1 ORDER BY l.id`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrOrderNotFound
	}
	return orders[0], nil
}

func (r *repository) history(ctx context.Context, method, q string, key int64) ([]*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", method),
		zap.Int64("key", key),
	)

	var rows []historyRow
	if err := r.db.SelectContext(ctx, &rows, q, key); err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	orders := foldHistory(rows)
	log.Debug("history loaded", zap.Int("orders", len(orders)), zap.Int("rows", len(rows)))
	return orders, nil
}

// foldHistory nests flat rows into orders, keeping the order rows arrive in.
func foldHistory(rows []historyRow) []*Order {
	orders := []*Order{}
	byID := make(map[int64]*Order)

	for _, row := range rows {
		o, ok := byID[row.ID]
		if !ok {
			o = &Order{
				ID:              row.ID,
				UserID:          row.UserID,
				Total:           row.Total,
				Status:          row.Status,
				Fulfillment:     row.Fulfillment,
				PaymentMethod:   row.PaymentMethod,
				DeliveryAddress: row.DeliveryAddress,
				CreatedAt:       row.CreatedAt,
				Items:           []OrderLine{},
			}
			byID[row.ID] = o
			orders = append(orders, o)
		}

		o.Items = append(o.Items, OrderLine{
			ID:        row.LineID,
			ProductID: row.ProductID,
			Name:      row.Name,
			Price:     row.Price,
			Image:     row.Image,
			Quantity:  row.Quantity,
			ShopID:    row.ShopID,
			UnitID:    row.UnitID,
			Unit:      row.UnitName,
			SizeID:    row.SizeID,
			Size:      row.SizeName,
			ColorID:   row.ColorID,
			Color:     row.ColorName,
		})
	}

	return orders
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Order"),
		zap.String("method", "UpdateStatus"),
		zap.Int64("order_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)

	const q = `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	res, err := r.db.ExecContext(ctx, q, to, id, from)
	if err != nil {
		log.Error("update failed", zap.Error(err))
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		log.Warn("status changed underneath")
		return ErrStatusConflict
	}

	return nil
}
