package postgres

import (
	"context"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

var productColumns = []string{
	"id", "store_id", "category_id", "name", "description", "price",
	"sale_price", "max_included_quantity", "excess_unit_price",
	"daily_stock", "current_stock", "stock_last_reset",
	"allow_same_day_scheduling", "is_available",
}

const selectProducts = `
    SELECT
        id,
        store_id,
        category_id,
        name,
        description,
        price,
        sale_price,
        max_included_quantity,
        excess_unit_price,
        daily_stock,
        current_stock,
        stock_last_reset,
        allow_same_day_scheduling,
        is_available
    FROM products
`

func (r *ProductRepository) BulkCreate(ctx context.Context, products []models.ProductRecord) error {
	_, err := r.pool.CopyFrom(
		ctx,
		pgx.Identifier{"products"},
		productColumns,
		pgx.CopyFromSlice(len(products), func(i int) ([]interface{}, error) {
			p := products[i]
			return []interface{}{
				p.ID,
				p.StoreID,
				p.CategoryID,
				p.Name,
				p.Description,
				p.Price,
				p.SalePrice,
				p.MaxIncludedQuantity,
				p.ExcessUnitPrice,
				p.DailyStock,
				p.CurrentStock,
				p.StockLastReset,
				p.AllowSameDayScheduling,
				p.IsAvailable,
			}, nil
		}),
	)
	return err
}

func (r *ProductRepository) GetByStore(ctx context.Context, storeID string) ([]models.ProductRecord, error) {
	return r.query(ctx, selectProducts+` WHERE store_id = $1 ORDER BY category_id, name`, storeID)
}

func (r *ProductRepository) GetByIDs(ctx context.Context, storeID string, ids []string) ([]models.ProductRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return r.query(ctx, selectProducts+` WHERE store_id = $1 AND id = ANY($2)`, storeID, ids)
}

// ResetDailyStock sets current_stock back to daily_stock for products whose
// last reset is before day, and returns how many were refilled.
func (r *ProductRepository) ResetDailyStock(ctx context.Context, day time.Time) (int64, error) {
	query := `
        UPDATE products
        SET current_stock = daily_stock,
            stock_last_reset = $1::date
        WHERE daily_stock IS NOT NULL
          AND (stock_last_reset IS NULL OR stock_last_reset < $1::date)
    `
	tag, err := r.pool.Exec(ctx, query, day.Format(models.DateLayout))
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *ProductRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM products").Scan(&count)
	return count, err
}

func (r *ProductRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.ProductRecord, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []models.ProductRecord
	for rows.Next() {
		var p models.ProductRecord
		err := rows.Scan(
			&p.ID,
			&p.StoreID,
			&p.CategoryID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.SalePrice,
			&p.MaxIncludedQuantity,
			&p.ExcessUnitPrice,
			&p.DailyStock,
			&p.CurrentStock,
			&p.StockLastReset,
			&p.AllowSameDayScheduling,
			&p.IsAvailable,
		)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}
