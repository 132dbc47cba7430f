// Package memory keeps stores, products, add-ons and orders in process. It
// follows the Postgres adapter's rules for stock: guarded decrements, all or
// nothing per order.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories"
)

type DB struct {
	mu         sync.Mutex
	stores     map[string]models.Store
	products   map[string]models.ProductRecord
	categories map[string]models.AddonCategory
	orders     map[string]models.Order
}

func New() *DB {
	return &DB{
		stores:     make(map[string]models.Store),
		products:   make(map[string]models.ProductRecord),
		categories: make(map[string]models.AddonCategory),
		orders:     make(map[string]models.Order),
	}
}

func (db *DB) Stores() repositories.StoreRepository     { return storeRepo{db} }
func (db *DB) Products() repositories.ProductRepository { return productRepo{db} }
func (db *DB) Addons() repositories.AddonRepository     { return addonRepo{db} }
func (db *DB) Orders() repositories.OrderRepository     { return orderRepo{db} }

// Load seeds the database from a catalog.
func (db *DB) Load(ctx context.Context, c *models.Catalog) error {
	if err := db.Stores().Create(ctx, &c.Store); err != nil {
		return err
	}
	records := make([]models.ProductRecord, len(c.Products))
	for i, rec := range c.Products {
		if rec.StoreID == "" {
			rec.StoreID = c.Store.ID
		}
		records[i] = rec
	}
	if err := db.Products().BulkCreate(ctx, records); err != nil {
		return err
	}
	return db.Addons().BulkCreate(ctx, c.AddonCategories)
}

type storeRepo struct{ db *DB }

func (r storeRepo) Create(_ context.Context, store *models.Store) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.stores[store.ID] = *store
	return nil
}

func (r storeRepo) Get(_ context.Context, id string) (*models.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	s, ok := r.db.stores[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (r storeRepo) GetAll(_ context.Context) ([]*models.Store, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]*models.Store, 0, len(r.db.stores))
	for _, s := range r.db.stores {
		s := s
		out = append(out, &s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r storeRepo) Count(_ context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.stores), nil
}

func (r storeRepo) DeleteAll(_ context.Context) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.stores = make(map[string]models.Store)
	r.db.products = make(map[string]models.ProductRecord)
	r.db.categories = make(map[string]models.AddonCategory)
	r.db.orders = make(map[string]models.Order)
	return nil
}

type productRepo struct{ db *DB }

func (r productRepo) BulkCreate(_ context.Context, products []models.ProductRecord) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range products {
		r.db.products[p.ID] = p
	}
	return nil
}

func (r productRepo) GetByStore(_ context.Context, storeID string) ([]models.ProductRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.ProductRecord
	for _, p := range r.db.products {
		if p.StoreID == storeID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r productRepo) GetByIDs(_ context.Context, storeID string, ids []string) ([]models.ProductRecord, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []models.ProductRecord
	for _, id := range ids {
		if p, ok := r.db.products[id]; ok && p.StoreID == storeID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r productRepo) ResetDailyStock(_ context.Context, day time.Time) (int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := day.Format(models.DateLayout)
	y, m, d := day.Date()

	var n int64
	for id, p := range r.db.products {
		if p.DailyStock == nil {
			continue
		}
		if p.StockLastReset != nil && p.StockLastReset.Format(models.DateLayout) >= key {
			continue
		}
		current := *p.DailyStock
		p.CurrentStock = &current
		reset := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		p.StockLastReset = &reset
		r.db.products[id] = p
		n++
	}
	return n, nil
}

func (r productRepo) Count(_ context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.db.products), nil
}

type addonRepo struct{ db *DB }

func (r addonRepo) BulkCreate(ctx context.Context, categories []models.AddonCategory) error {
	for i := range categories {
		if err := r.Create(ctx, &categories[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r addonRepo) Create(_ context.Context, category *models.AddonCategory) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.categories[category.ID] = *category
	return nil
}

func (r addonRepo) GetCategoriesByProducts(_ context.Context, productIDs []string) (map[string][]models.AddonCategory, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		wanted[id] = true
	}
	out := make(map[string][]models.AddonCategory)
	for _, c := range r.db.categories {
		if wanted[c.ProductID] {
			out[c.ProductID] = append(out[c.ProductID], c)
		}
	}
	for id := range out {
		cs := out[id]
		sort.Slice(cs, func(i, j int) bool {
			if cs[i].SortOrder != cs[j].SortOrder {
				return cs[i].SortOrder < cs[j].SortOrder
			}
			return cs[i].ID < cs[j].ID
		})
	}
	return out, nil
}

type orderRepo struct{ db *DB }

func (r orderRepo) Create(_ context.Context, order *models.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if models.CommitsOnPlacement(order.PaymentMethod) {
		if err := r.db.takeStock(order.Items); err != nil {
			return err
		}
	}
	r.db.orders[order.ID] = *order
	return nil
}

func (r orderRepo) ConfirmPayment(_ context.Context, orderID string, at time.Time) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	order, ok := r.db.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if order.Status != models.OrderStatusPendingPayment {
		return nil, repositories.ErrOrderNotPending
	}
	if err := r.db.takeStock(order.Items); err != nil {
		return nil, err
	}
	order.Status = models.OrderStatusConfirmed
	order.ConfirmedAt = &at
	r.db.orders[orderID] = order
	return &order, nil
}

func (r orderRepo) Get(_ context.Context, id string) (*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	order, ok := r.db.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &order, nil
}

func (r orderRepo) ListBetween(_ context.Context, from, to time.Time) ([]*models.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*models.Order
	for _, o := range r.db.orders {
		if !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// takeStock must be called with mu held. Nothing is written unless every
// product has enough units.
func (db *DB) takeStock(items []models.OrderItem) error {
	wanted := make(map[string]int)
	for _, item := range items {
		wanted[item.ProductID] += item.Quantity
	}
	ids := make([]string, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		p, ok := db.products[id]
		if !ok || p.DailyStock == nil {
			continue
		}
		current := *p.DailyStock
		if p.CurrentStock != nil {
			current = *p.CurrentStock
		}
		if current < wanted[id] {
			return &repositories.InsufficientStockError{ProductID: id, Requested: wanted[id], Available: max(current, 0)}
		}
	}
	for _, id := range ids {
		p, ok := db.products[id]
		if !ok || p.DailyStock == nil {
			continue
		}
		current := *p.DailyStock
		if p.CurrentStock != nil {
			current = *p.CurrentStock
		}
		current -= wanted[id]
		p.CurrentStock = &current
		db.products[id] = p
	}
	return nil
}
