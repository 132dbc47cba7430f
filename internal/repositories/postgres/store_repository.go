package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type StoreRepository struct {
	pool *pgxpool.Pool
}

func NewStoreRepository(pool *pgxpool.Pool) *StoreRepository {
	return &StoreRepository{pool: pool}
}

const storeColumns = `
    id, name, phone, weekly_schedule, special_dates, delivery_schedule,
    same_day_cutoff_time, allow_scheduling, minimum_order, delivery_fee`

func (r *StoreRepository) Create(ctx context.Context, store *models.Store) error {
	weekly, err := json.Marshal(store.WeeklySchedule)
	if err != nil {
		return fmt.Errorf("encode weekly schedule: %w", err)
	}
	special, err := json.Marshal(store.SpecialDates)
	if err != nil {
		return fmt.Errorf("encode special dates: %w", err)
	}
	delivery, err := json.Marshal(store.DeliverySchedule)
	if err != nil {
		return fmt.Errorf("encode delivery schedule: %w", err)
	}

	query := `
        INSERT INTO stores (` + storeColumns + `
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10
        )
    `
	_, err = r.pool.Exec(ctx, query,
		store.ID,
		store.Name,
		store.Phone,
		weekly,
		special,
		delivery,
		store.SameDayCutoffTime,
		store.AllowScheduling,
		store.MinimumOrder,
		store.DeliveryFee,
	)
	return err
}

func (r *StoreRepository) Get(ctx context.Context, id string) (*models.Store, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id)
	store, err := scanStore(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("store %s: %w", id, repositories.ErrNotFound)
	}
	return store, err
}

func (r *StoreRepository) GetAll(ctx context.Context) ([]*models.Store, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+storeColumns+` FROM stores ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*models.Store
	for rows.Next() {
		store, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

func (r *StoreRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM stores").Scan(&count)
	return count, err
}

// DeleteAll removes stores and everything that references them.
func (r *StoreRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, "TRUNCATE TABLE order_items, orders, addon_items, addon_categories, products, stores")
	return err
}

func scanStore(row pgx.Row) (*models.Store, error) {
	store := &models.Store{}
	var weekly, special, delivery []byte
	err := row.Scan(
		&store.ID,
		&store.Name,
		&store.Phone,
		&weekly,
		&special,
		&delivery,
		&store.SameDayCutoffTime,
		&store.AllowScheduling,
		&store.MinimumOrder,
		&store.DeliveryFee,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(weekly, &store.WeeklySchedule); err != nil {
		return nil, fmt.Errorf("decode weekly schedule of store %s: %w", store.ID, err)
	}
	if err := json.Unmarshal(special, &store.SpecialDates); err != nil {
		return nil, fmt.Errorf("decode special dates of store %s: %w", store.ID, err)
	}
	if err := json.Unmarshal(delivery, &store.DeliverySchedule); err != nil {
		return nil, fmt.Errorf("decode delivery schedule of store %s: %w", store.ID, err)
	}
	return store, nil
}
