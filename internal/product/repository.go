package product

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"localcart-be/internal/logger"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Repository interface {
	ListByShop(ctx context.Context, shopID int64) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)

	// Create and Update write the product and replace its units in one
	// transaction. Update keeps the product id.
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error

	// AdjustStock applies delta to the product, or to one of its units when
	// unitRowID is set, and returns the new stock. Stock never goes negative.
	AdjustStock(ctx context.Context, productID int64, unitRowID *int64, delta int) (int, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: sqlx.NewDb(db, "postgres")}
}

// productRow is one row of products LEFT JOIN product_units.
type productRow struct {
	ID          int64           `db:"id"`
	ShopID      int64           `db:"shop_id"`
	Name        string          `db:"name"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Category    string          `db:"category"`
	Subcategory string          `db:"subcategory"`
	ImageURL    *string         `db:"image_url"`
	CreatedAt   time.Time       `db:"created_at"`

	PUID      sql.NullInt64       `db:"pu_id"`
	UnitID    sql.NullInt64       `db:"unit_id"`
	UnitName  sql.NullString      `db:"unit_name"`
	UnitPrice decimal.NullDecimal `db:"unit_price"`
	UnitStock sql.NullInt64       `db:"unit_stock"`
}

type productUnitRow struct {
	ProductID int64           `db:"product_id"`
	UnitID    int64           `db:"unit_id"`
	Price     decimal.Decimal `db:"price"`
	Stock     int             `db:"stock"`
}

const selectProducts = `
	SELECT
		p.id, p.shop_id, p.name, p.price, p.stock,
		p.category, p.subcategory, p.image_url, p.created_at,
		pu.id AS pu_id, pu.unit_id, u.name AS unit_name,
		pu.price AS unit_price, pu.stock AS unit_stock
	FROM products p
	LEFT JOIN product_units pu ON pu.product_id = p.id
	LEFT JOIN units u ON u.id = pu.unit_id
`

func (r *repository) ListByShop(ctx context.Context, shopID int64) ([]*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "ListByShop"),
		zap.Int64("shop_id", shopID),
	)

	var rows []productRow
	q := selectProducts + ` WHERE p.shop_id = $1 ORDER BY p.id, pu.id`
	if err := r.db.SelectContext(ctx, &rows, q, shopID); err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	return foldProducts(rows), nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (*Product, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "GetByID"),
		zap.Int64("product_id", id),
	)

	var rows []productRow
	q := selectProducts + ` WHERE p.id = $1 ORDER BY pu.id`
	if err := r.db.SelectContext(ctx, &rows, q, id); err != nil {
		log.Error("query failed", zap.Error(err))
		return nil, err
	}

	products := foldProducts(rows)
	if len(products) == 0 {
		return nil, ErrProductNotFound
	}
	return products[0], nil
}

// foldProducts groups joined rows by product id, keeping first-seen order.
func foldProducts(rows []productRow) []*Product {
	products := []*Product{}
	byID := make(map[int64]*Product, len(rows))

	for _, row := range rows {
		p, ok := byID[row.ID]
		if !ok {
			p = &Product{
				ID:          row.ID,
				ShopID:      row.ShopID,
				Name:        row.Name,
				Price:       row.Price,
				Stock:       row.Stock,
				Category:    row.Category,
				Subcategory: row.Subcategory,
				ImageURL:    row.ImageURL,
				CreatedAt:   row.CreatedAt,
				Units:       []ProductUnit{},
			}
			byID[row.ID] = p
			products = append(products, p)
		}

		if !row.PUID.Valid {
			continue
		}
		p.Units = append(p.Units, ProductUnit{
			ID:       row.PUID.Int64,
			UnitID:   row.UnitID.Int64,
			UnitName: row.UnitName.String,
			Price:    row.UnitPrice.Decimal,
			Stock:    int(row.UnitStock.Int64),
		})
	}

	return products
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "Create"),
		zap.Int64("shop_id", p.ShopID),
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO products (shop_id, name, price, stock, category, subcategory, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	if err := tx.QueryRowxContext(ctx, q,
		p.ShopID, p.Name, p.Price, p.Stock, p.Category, p.Subcategory, p.ImageURL,
	).Scan(&p.ID, &p.CreatedAt); err != nil {
		log.Error("insert product failed", zap.Error(err))
		return err
	}

	if err := insertUnits(ctx, tx, p); err != nil {
		log.Error("insert units failed", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		log.Error("commit failed", zap.Error(err))
		return err
	}

	log.Info("product created", zap.Int64("product_id", p.ID), zap.Int("units", len(p.Units)))
	return nil
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "Update"),
		zap.Int64("product_id", p.ID),
	)

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const q = `
		UPDATE products
		SET name = $2, price = $3, stock = $4,
		    category = $5, subcategory = $6,
		    image_url = COALESCE($7, image_url)
		WHERE id = $1
		RETURNING shop_id, image_url, created_at
	`

	err = tx.QueryRowxContext(ctx, q,
		p.ID, p.Name, p.Price, p.Stock, p.Category, p.Subcategory, p.ImageURL,
	).Scan(&p.ShopID, &p.ImageURL, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrProductNotFound
	}
	if err != nil {
		log.Error("update product failed", zap.Error(err))
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM product_units WHERE product_id = $1`, p.ID); err != nil {
		log.Error("delete units failed", zap.Error(err))
		return err
	}

	if err := insertUnits(ctx, tx, p); err != nil {
		log.Error("insert units failed", zap.Error(err))
		return err
	}

	return tx.Commit()
}

// insertUnits writes every unit of p in a single statement and fills in the
// generated row ids.
func insertUnits(ctx context.Context, tx *sqlx.Tx, p *Product) error {
	if len(p.Units) == 0 {
		return nil
	}

	rows := make([]productUnitRow, len(p.Units))
	for i, u := range p.Units {
		rows[i] = productUnitRow{ProductID: p.ID, UnitID: u.UnitID, Price: u.Price, Stock: u.Stock}
	}

	q, args, err := sqlx.Named(`
		INSERT INTO product_units (product_id, unit_id, price, stock)
		VALUES (:product_id, :unit_id, :price, :stock)
	`, rows)
	if err != nil {
		return err
	}

	var ids []int64
	if err := tx.SelectContext(ctx, &ids, tx.Rebind(q+` RETURNING id`), args...); err != nil {
		return err
	}
	for i := range ids {
		if i < len(p.Units) {
			p.Units[i].ID = ids[i]
		}
	}

	return nil
}

func (r *repository) AdjustStock(
	ctx context.Context,
	productID int64,
	unitRowID *int64,
	delta int,
) (int, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("repo", "Product"),
		zap.String("method", "AdjustStock"),
		zap.Int64("product_id", productID),
		zap.Int("delta", delta),
	)

	var (
		stock int
		err   error
	)

	if unitRowID == nil {
		const q = `
			UPDATE products
			SET stock = stock + $1
			WHERE id = $2 AND stock + $1 >= 0
			RETURNING stock
		`
		err = r.db.QueryRowContext(ctx, q, delta, productID).Scan(&stock)
	} else {
		const q = `
			UPDATE product_units
			SET stock = stock + $1
			WHERE id = $2 AND product_id = $3 AND stock + $1 >= 0
			RETURNING stock
		`
		err = r.db.QueryRowContext(ctx, q, delta, *unitRowID, productID).Scan(&stock)
	}

	if errors.Is(err, sql.ErrNoRows) {
		log.Warn("stock adjustment rejected")
		return 0, ErrInsufficientStock
	}
	if err != nil {
		log.Error("update failed", zap.Error(err))
		return 0, err
	}

	return stock, nil
}
