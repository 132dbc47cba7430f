package memory

import (
	"context"
	"testing"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func seeded(t *testing.T) *DB {
	t.Helper()
	db := New()
	ctx := context.Background()
	require.NoError(t, db.Stores().Create(ctx, &models.Store{ID: "s1"}))
	require.NoError(t, db.Products().BulkCreate(ctx, []models.ProductRecord{
		{ID: "cake", StoreID: "s1", DailyStock: intPtr(5), CurrentStock: intPtr(2)},
		{ID: "pie", StoreID: "s1", DailyStock: intPtr(5), CurrentStock: intPtr(5)},
		{ID: "coffee", StoreID: "s1"},
	}))
	return db
}

func order(id, method string, items ...models.OrderItem) *models.Order {
	status := models.OrderStatusPendingPayment
	if models.CommitsOnPlacement(method) {
		status = models.OrderStatusConfirmed
	}
	return &models.Order{ID: id, StoreID: "s1", PaymentMethod: method, Status: status, Items: items, CreatedAt: time.Now()}
}

func current(t *testing.T, db *DB, id string) int {
	t.Helper()
	recs, err := db.Products().GetByIDs(context.Background(), "s1", []string{id})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	return *recs[0].CurrentStock
}

func TestCreateCashOrderIsAllOrNothing(t *testing.T) {
	db := seeded(t)
	ctx := context.Background()

	err := db.Orders().Create(ctx, order("o1", models.PaymentMethodCash,
		models.OrderItem{ProductID: "pie", Quantity: 2},
		models.OrderItem{ProductID: "cake", Quantity: 2},
		models.OrderItem{ProductID: "cake", Quantity: 1},
	))
	short, ok := repositories.IsInsufficientStock(err)
	require.True(t, ok)
	assert.Equal(t, "cake", short.ProductID)
	assert.Equal(t, 3, short.Requested)
	assert.Equal(t, 2, short.Available)
	assert.Equal(t, 5, current(t, db, "pie"))

	_, err = db.Orders().Get(ctx, "o1")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestConfirmPaymentTakesStockOnce(t *testing.T) {
	db := seeded(t)
	ctx := context.Background()

	require.NoError(t, db.Orders().Create(ctx, order("o1", models.PaymentMethodPix,
		models.OrderItem{ProductID: "cake", Quantity: 2},
		models.OrderItem{ProductID: "coffee", Quantity: 9},
	)))
	assert.Equal(t, 2, current(t, db, "cake"))

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	confirmed, err := db.Orders().ConfirmPayment(ctx, "o1", at)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusConfirmed, confirmed.Status)
	assert.Equal(t, at, *confirmed.ConfirmedAt)
	assert.Equal(t, 0, current(t, db, "cake"))

	_, err = db.Orders().ConfirmPayment(ctx, "o1", at)
	assert.ErrorIs(t, err, repositories.ErrOrderNotPending)
	_, err = db.Orders().ConfirmPayment(ctx, "missing", at)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestResetDailyStockOncePerDay(t *testing.T) {
	db := seeded(t)
	ctx := context.Background()
	day := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)

	n, err := db.Products().ResetDailyStock(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 5, current(t, db, "cake"))

	n, err = db.Products().ResetDailyStock(ctx, day.Add(6*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = db.Products().ResetDailyStock(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
