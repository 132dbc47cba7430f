package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

const decrementStock = `
    UPDATE products
    SET current_stock = CASE WHEN daily_stock IS NULL THEN current_stock ELSE current_stock - $2 END
    WHERE id = $1
      AND (daily_stock IS NULL OR current_stock >= $2)
`

const selectStock = `SELECT GREATEST(COALESCE(current_stock, 0), 0) FROM products WHERE id = $1`

func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var address []byte
	if order.Address != nil {
		if address, err = json.Marshal(order.Address); err != nil {
			return fmt.Errorf("encode address: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO orders (
            id, store_id, customer_name, customer_phone, customer_email,
            fulfillment, address, scheduled_for, payment_method,
            subtotal, delivery_fee, total, status, notes, created_at, confirmed_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
        )
    `,
		order.ID,
		order.StoreID,
		order.Customer.Name,
		order.Customer.Phone,
		order.Customer.Email,
		string(order.Fulfillment),
		address,
		order.ScheduledFor,
		order.PaymentMethod,
		order.Subtotal,
		order.DeliveryFee,
		order.Total,
		order.Status,
		order.Notes,
		order.CreatedAt,
		order.ConfirmedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order %s: %w", order.ID, err)
	}

	rows := make([][]interface{}, 0, len(order.Items))
	for i, item := range order.Items {
		addons, err := json.Marshal(item.Addons)
		if err != nil {
			return fmt.Errorf("encode addons: %w", err)
		}
		rows = append(rows, []interface{}{
			order.ID, i, item.ProductID, item.ProductName, item.Quantity,
			item.UnitPrice, item.BaseCost, item.AddonsTotal, item.LineTotal,
			addons, item.Note,
		})
	}
	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"order_items"},
		[]string{
			"order_id", "position", "product_id", "product_name", "quantity",
			"unit_price", "base_cost", "addons_total", "line_total", "addons", "note",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert items of order %s: %w", order.ID, err)
	}

	if models.CommitsOnPlacement(order.PaymentMethod) {
		if err := takeStock(ctx, tx, order.Items); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) ConfirmPayment(ctx context.Context, orderID string, at time.Time) (*models.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	if status != models.OrderStatusPendingPayment {
		return nil, fmt.Errorf("order %s is %s: %w", orderID, status, repositories.ErrOrderNotPending)
	}

	items, err := getItems(ctx, tx, orderID)
	if err != nil {
		return nil, err
	}
	if err := takeStock(ctx, tx, items); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `UPDATE orders SET status = $2, confirmed_at = $3 WHERE id = $1`,
		orderID, models.OrderStatusConfirmed, at)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return r.Get(ctx, orderID)
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*models.Order, error) {
	orders, err := r.list(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, fmt.Errorf("order %s: %w", id, repositories.ErrNotFound)
	}
	return orders[0], nil
}

// ListBetween returns orders created in [from, to).
func (r *OrderRepository) ListBetween(ctx context.Context, from, to time.Time) ([]*models.Order, error) {
	return r.list(ctx, `WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (r *OrderRepository) list(ctx context.Context, where string, args ...interface{}) ([]*models.Order, error) {
	query := `
        SELECT
            id, store_id, customer_name, customer_phone, customer_email,
            fulfillment, address, scheduled_for, payment_method,
            subtotal, delivery_fee, total, status, notes, created_at, confirmed_at
        FROM orders
    ` + where + ` ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		var fulfillment string
		var address []byte
		err := rows.Scan(
			&order.ID,
			&order.StoreID,
			&order.Customer.Name,
			&order.Customer.Phone,
			&order.Customer.Email,
			&fulfillment,
			&address,
			&order.ScheduledFor,
			&order.PaymentMethod,
			&order.Subtotal,
			&order.DeliveryFee,
			&order.Total,
			&order.Status,
			&order.Notes,
			&order.CreatedAt,
			&order.ConfirmedAt,
		)
		if err != nil {
			return nil, err
		}
		order.Fulfillment = models.FulfillmentType(fulfillment)
		if len(address) > 0 {
			order.Address = &models.Address{}
			if err := json.Unmarshal(address, order.Address); err != nil {
				return nil, fmt.Errorf("decode address of order %s: %w", order.ID, err)
			}
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	for _, order := range orders {
		if order.Items, err = getItems(ctx, r.pool, order.ID); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func getItems(ctx context.Context, q querier, orderID string) ([]models.OrderItem, error) {
	rows, err := q.Query(ctx, `
        SELECT product_id, product_name, quantity, unit_price, base_cost,
               addons_total, line_total, addons, note
        FROM order_items
        WHERE order_id = $1
        ORDER BY position
    `, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var addons []byte
		err := rows.Scan(
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.UnitPrice,
			&item.BaseCost,
			&item.AddonsTotal,
			&item.LineTotal,
			&addons,
			&item.Note,
		)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(addons, &item.Addons); err != nil {
			return nil, fmt.Errorf("decode addons of order %s: %w", orderID, err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// takeStock applies the guarded decrement per product in ID order. A product
// with too few units left aborts the transaction.
func takeStock(ctx context.Context, tx pgx.Tx, items []models.OrderItem) error {
	quantities := make(map[string]int)
	var order []string
	for _, item := range items {
		if _, ok := quantities[item.ProductID]; !ok {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}
	sort.Strings(order)

	for _, productID := range order {
		tag, err := tx.Exec(ctx, decrementStock, productID, quantities[productID])
		if err != nil {
			return fmt.Errorf("decrement stock of %s: %w", productID, err)
		}
		if tag.RowsAffected() == 0 {
			available, err := stockLeft(ctx, tx, productID)
			if err != nil {
				return err
			}
			return &repositories.InsufficientStockError{ProductID: productID, Requested: quantities[productID], Available: available}
		}
	}
	return nil
}

// stockLeft reads what the failed decrement saw. A missing product has none.
func stockLeft(ctx context.Context, tx pgx.Tx, productID string) (int, error) {
	var available int
	err := tx.QueryRow(ctx, selectStock, productID).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read stock of %s: %w", productID, err)
	}
	return available, nil
}
