package repositories

import (
	"context"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
)

type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	Get(ctx context.Context, id string) (*models.Store, error)
	GetAll(ctx context.Context) ([]*models.Store, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type ProductRepository interface {
	BulkCreate(ctx context.Context, products []models.ProductRecord) error
	GetByStore(ctx context.Context, storeID string) ([]models.ProductRecord, error)
	GetByIDs(ctx context.Context, storeID string, ids []string) ([]models.ProductRecord, error)
	// ResetDailyStock refills every finite-stock product not yet reset on day.
	ResetDailyStock(ctx context.Context, day time.Time) (int64, error)
	Count(ctx context.Context) (int, error)
}

type AddonRepository interface {
	BulkCreate(ctx context.Context, categories []models.AddonCategory) error
	Create(ctx context.Context, category *models.AddonCategory) error
	GetCategoriesByProducts(ctx context.Context, productIDs []string) (map[string][]models.AddonCategory, error)
}

type OrderRepository interface {
	// Create persists the order. Orders that commit on placement take their
	// stock in the same transaction.
	Create(ctx context.Context, order *models.Order) error
	// ConfirmPayment takes stock for a pending order and marks it confirmed.
	ConfirmPayment(ctx context.Context, orderID string, at time.Time) (*models.Order, error)
	Get(ctx context.Context, id string) (*models.Order, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]*models.Order, error)
}
