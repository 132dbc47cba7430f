// Package storefront runs checkout sessions for a store on top of the
// repositories and the event publisher.
package storefront

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/chrisdamba/foodstore/internal/checkout"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/pricing"
	"github.com/chrisdamba/foodstore/internal/repositories"
	"github.com/chrisdamba/foodstore/internal/scheduling"
	"github.com/chrisdamba/foodstore/internal/stock"
	"go.uber.org/zap"
)

const DefaultDaysAhead = scheduling.DefaultHorizon

// EventPublisher receives orders once they are persisted.
type EventPublisher interface {
	OrderPlaced(order *models.Order) error
	OrderConfirmed(order *models.Order) error
}

type Repositories struct {
	Stores   repositories.StoreRepository
	Products repositories.ProductRepository
	Addons   repositories.AddonRepository
	Orders   repositories.OrderRepository
}

type Options struct {
	Scheduling scheduling.Options
	DaysAhead  int
}

type Service struct {
	repos     Repositories
	publisher EventPublisher
	logger    *zap.Logger
	opts      Options

	mu        sync.Mutex
	lastReset string // store-local day of the last successful reset
}

func NewService(repos Repositories, publisher EventPublisher, logger *zap.Logger, opts Options) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.DaysAhead <= 0 {
		opts.DaysAhead = DefaultDaysAhead
	}
	opts.Scheduling.Horizon = opts.DaysAhead
	return &Service{repos: repos, publisher: publisher, logger: logger, opts: opts}
}

// Session is one customer's view of a store: a catalog snapshot with its own
// stock cache. It is not safe for concurrent use.
type Session struct {
	svc        *Service
	store      models.Store
	products   map[string]models.Product
	categories map[string][]models.AddonCategory
	stock      *stock.Manager
	scheduler  *scheduling.Manager
	assembler  *checkout.Assembler
}

// Open refills the daily stock if the store-local day has turned and loads a
// catalog snapshot for storeID.
func (s *Service) Open(ctx context.Context, storeID string) (*Session, error) {
	store, err := s.repos.Stores.Get(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load store %s: %w", storeID, err)
	}

	if err := s.resetDailyStock(ctx); err != nil {
		return nil, err
	}

	records, err := s.repos.Products.GetByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("load products for %s: %w", storeID, err)
	}

	products := make(map[string]models.Product, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		p, warnings := models.NewProductFromRecord(rec)
		for _, w := range warnings {
			s.logger.Warn("product record", zap.String("store_id", storeID), zap.String("warning", w))
		}
		products[p.ID] = p
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)

	categories, err := s.repos.Addons.GetCategoriesByProducts(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load addon categories: %w", err)
	}

	snapshot := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, products[id])
	}
	stk := stock.NewManager(snapshot)
	scheduler := scheduling.NewManager(stk, s.opts.Scheduling)

	return &Session{
		svc:        s,
		store:      *store,
		products:   products,
		categories: categories,
		stock:      stk,
		scheduler:  scheduler,
		assembler:  checkout.NewAssembler(stk, scheduler),
	}, nil
}

func (ss *Session) Store() models.Store { return ss.store }

func (ss *Session) Stock() *stock.Manager { return ss.stock }

func (ss *Session) Scheduler() *scheduling.Manager { return ss.scheduler }

// Products lists the snapshot ordered by ID.
func (ss *Session) Products() []models.Product {
	out := make([]models.Product, 0, len(ss.products))
	for _, p := range ss.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (ss *Session) Categories(productID string) []models.AddonCategory {
	return ss.categories[productID]
}

type AddonPick struct {
	CategoryID string `json:"category_id"`
	ItemID     string `json:"item_id"`
	Quantity   int    `json:"quantity"`
}

type LineRequest struct {
	ProductID string      `json:"product_id"`
	Quantity  int         `json:"quantity"`
	Addons    []AddonPick `json:"addons"`
	Note      string      `json:"note"`
}

// ResolveCart turns product and add-on IDs into cart lines. Add-on picks go
// through the capped selection, so a pick over a category limit is rejected.
func (ss *Session) ResolveCart(items []LineRequest) ([]models.CartLine, error) {
	var errs checkout.ValidationErrors
	lines := make([]models.CartLine, 0, len(items))

	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)
		product, ok := ss.products[item.ProductID]
		if !ok {
			errs = append(errs, checkout.ValidationError{
				Kind: checkout.KindValidation, Field: field, Code: checkout.CodeUnknownProduct,
				Message: fmt.Sprintf("unknown product %q", item.ProductID), ProductID: item.ProductID,
			})
			continue
		}
		if !product.IsAvailable {
			errs = append(errs, checkout.ValidationError{
				Kind: checkout.KindAvailability, Field: field, Code: checkout.CodeProductUnavailable,
				Message: fmt.Sprintf("%s is not available", product.Name), ProductID: product.ID,
			})
			continue
		}

		selection := models.NewAddonSelection(ss.categories[product.ID])
		for j, pick := range item.Addons {
			if err := selection.Add(pick.CategoryID, pick.ItemID, pick.Quantity); err != nil {
				errs = append(errs, checkout.ValidationError{
					Kind: checkout.KindValidation, Field: fmt.Sprintf("%s.addons[%d]", field, j),
					Code: checkout.CodeInvalidAddon, Message: err.Error(), ProductID: product.ID,
				})
			}
		}

		lines = append(lines, models.CartLine{
			Product:  product,
			Quantity: item.Quantity,
			Addons:   selection,
			Note:     item.Note,
		})
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return lines, nil
}

// OrderRequest is the wire form of a checkout request.
type OrderRequest struct {
	Items         []LineRequest          `json:"items"`
	Customer      models.Customer        `json:"customer"`
	Fulfillment   models.FulfillmentType `json:"fulfillment"`
	Address       *models.Address        `json:"delivery_address"`
	ScheduledFor  string                 `json:"scheduled_for"`
	PaymentMethod string                 `json:"payment_method"`
	Notes         string                 `json:"notes"`
}

// Prepare resolves the cart of req into a checkout request.
func (ss *Session) Prepare(req OrderRequest) (checkout.Request, error) {
	lines, err := ss.ResolveCart(req.Items)
	if err != nil {
		return checkout.Request{}, err
	}
	return checkout.Request{
		StoreID:       ss.store.ID,
		Lines:         lines,
		Customer:      req.Customer,
		Fulfillment:   req.Fulfillment,
		Address:       req.Address,
		ScheduledFor:  strings.TrimSpace(req.ScheduledFor),
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}, nil
}

func (ss *Session) Slots(fulfillment models.FulfillmentType, lines []models.CartLine) []scheduling.Slot {
	return ss.scheduler.GetAvailableSlots(ss.store, fulfillment, ss.svc.opts.DaysAhead, lines)
}

// Quote is a priced cart with every failure that would block placing it.
type Quote struct {
	Totals pricing.OrderTotals        `json:"totals"`
	Errors checkout.ValidationErrors `json:"errors,omitempty"`
}

func (q Quote) Valid() bool { return len(q.Errors) == 0 }

// Quote prices the request without placing anything. Lines with a
// non-positive quantity are left out of the totals.
func (ss *Session) Quote(req checkout.Request) Quote {
	req.StoreID = ss.store.ID
	fee := pricing.DeliveryFeeFor(req.Fulfillment, ss.store.DeliveryFee)
	var valid []models.CartLine
	for _, line := range req.Lines {
		if line.Quantity > 0 {
			valid = append(valid, line)
		}
	}
	return Quote{
		Totals: pricing.CalculateOrderTotal(valid, fee),
		Errors: ss.assembler.Validate(req, ss.store),
	}
}

// PlaceOrder builds and persists the order. Cash orders take stock in the
// same transaction; the session cache follows only after the commit.
func (ss *Session) PlaceOrder(ctx context.Context, req checkout.Request) (*models.Order, error) {
	req.StoreID = ss.store.ID
	order, err := ss.assembler.BuildOrder(req, ss.store)
	if err != nil {
		return nil, err
	}

	if err := ss.svc.repos.Orders.Create(ctx, order); err != nil {
		if short, ok := repositories.IsInsufficientStock(err); ok {
			return nil, ss.stockConflict(short)
		}
		return nil, fmt.Errorf("persist order: %w", err)
	}

	logger := ss.svc.logger.With(zap.String("order_id", order.ID), zap.String("store_id", order.StoreID))
	logger.Info("order placed",
		zap.String("status", order.Status),
		zap.String("payment_method", order.PaymentMethod),
		zap.String("total", order.Total.StringFixed(2)))

	if order.Status == models.OrderStatusConfirmed {
		ss.commit(order)
	}
	ss.svc.publishPlaced(logger, order)
	return order, nil
}

// ConfirmPayment confirms a pending order placed in this session's store.
func (ss *Session) ConfirmPayment(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := ss.svc.ConfirmPayment(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.StoreID == ss.store.ID {
		ss.commit(order)
	}
	return order, nil
}

func (ss *Session) commit(order *models.Order) {
	for _, item := range order.Items {
		ss.stock.ReduceStock(item.ProductID, item.Quantity)
	}
}

func (ss *Session) stockConflict(short *repositories.InsufficientStockError) checkout.ValidationErrors {
	name := short.ProductID
	if p, ok := ss.products[short.ProductID]; ok {
		name = p.Name
	}
	return checkout.ValidationErrors{{
		Kind:      checkout.KindAvailability,
		Field:     "items",
		Code:      checkout.CodeInsufficientStock,
		Message:   fmt.Sprintf("only %d of %s left when the order was placed, %d requested", short.Available, name, short.Requested),
		ProductID: short.ProductID,
		Available: &short.Available,
	}}
}

// resetDailyStock refills daily stock at most once per store-local day.
func (s *Service) resetDailyStock(ctx context.Context) error {
	today := scheduling.NewManager(nil, s.opts.Scheduling).Today()
	day := today.Format(models.DateLayout)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastReset == day {
		return nil
	}
	n, err := s.repos.Products.ResetDailyStock(ctx, today)
	if err != nil {
		return fmt.Errorf("reset daily stock: %w", err)
	}
	if n > 0 {
		s.logger.Info("daily stock reset", zap.String("day", day), zap.Int64("products", n))
	}
	s.lastReset = day
	return nil
}

// ConfirmPayment takes stock for a pending order and marks it confirmed.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) (*models.Order, error) {
	now := scheduling.NewManager(nil, s.opts.Scheduling).Now()
	order, err := s.repos.Orders.ConfirmPayment(ctx, orderID, now)
	if err != nil {
		return nil, fmt.Errorf("confirm payment for %s: %w", orderID, err)
	}
	logger := s.logger.With(zap.String("order_id", order.ID), zap.String("store_id", order.StoreID))
	logger.Info("payment confirmed")
	s.publishConfirmed(logger, order)
	return order, nil
}

// publishPlaced reports a new order, plus its confirmation when it was paid on
// placement. The order is already committed, so failures are only logged.
func (s *Service) publishPlaced(logger *zap.Logger, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.OrderPlaced(order); err != nil {
		logger.Error("publish order placed", zap.Error(err))
	}
	if order.Status == models.OrderStatusConfirmed {
		s.publishConfirmed(logger, order)
	}
}

func (s *Service) publishConfirmed(logger *zap.Logger, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.OrderConfirmed(order); err != nil {
		logger.Error("publish order confirmed", zap.Error(err))
	}
}
