// Package simulator drives synthetic demand through a storefront session so
// pricing, stock and scheduling can be exercised without a database.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/chrisdamba/foodstore/internal/checkout"
	"github.com/chrisdamba/foodstore/internal/factories"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories"
	"github.com/chrisdamba/foodstore/internal/repositories/memory"
	"github.com/chrisdamba/foodstore/internal/scheduling"
	"github.com/chrisdamba/foodstore/internal/storefront"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Simulator struct {
	Config      *models.Config
	Catalog     *models.Catalog
	Shoppers    []*Shopper
	Patterns    []DemandPattern
	CurrentTime time.Time
	Rng         *rand.Rand
	Stats       Stats

	// OnStep is called after every simulated minute.
	OnStep func()

	end     time.Time
	db      *memory.DB
	service *storefront.Service
	logger  *zap.Logger
}

func NewSimulator(config *models.Config, catalog *models.Catalog, publisher storefront.EventPublisher, logger *zap.Logger) (*Simulator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc, err := config.Scheduling.Location()
	if err != nil {
		return nil, err
	}

	sc := config.Simulation
	seed := sc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	factories.Seed(seed)

	start := sc.StartDate
	if start.IsZero() {
		start = time.Now()
	}
	y, m, d := start.Date()
	start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	days := max(sc.Days, 1)

	sim := &Simulator{
		Config:      config,
		Catalog:     catalog,
		Patterns:    DefaultDemandPatterns,
		CurrentTime: start,
		Rng:         rand.New(rand.NewSource(seed)),
		Stats:       Stats{RejectedByCode: make(map[string]int), Revenue: decimal.Zero},
		end:         start.AddDate(0, 0, days),
		db:          memory.New(),
		logger:      logger,
	}
	sim.service = storefront.NewService(storefront.Repositories{
		Stores:   sim.db.Stores(),
		Products: sim.db.Products(),
		Addons:   sim.db.Addons(),
		Orders:   sim.db.Orders(),
	}, publisher, logger, storefront.Options{
		Scheduling: scheduling.Options{
			Now:          func() time.Time { return sim.CurrentTime },
			Location:     loc,
			SlotInterval: config.Scheduling.SlotInterval,
			LeadTime:     config.Scheduling.LeadTime,
		},
		DaysAhead: config.Scheduling.DaysAhead,
	})
	return sim, nil
}

// Steps is the number of simulated minutes Run will cover.
func (s *Simulator) Steps() int {
	return int(s.end.Sub(s.CurrentTime) / time.Minute)
}

func (s *Simulator) Run(ctx context.Context) (Stats, error) {
	if err := s.db.Load(ctx, s.Catalog); err != nil {
		return s.Stats, fmt.Errorf("load catalog: %w", err)
	}
	s.initializeShoppers()

	s.logger.Info("simulation starting",
		zap.Time("from", s.CurrentTime),
		zap.Time("to", s.end),
		zap.Int("shoppers", len(s.Shoppers)))

	for s.CurrentTime.Before(s.end) {
		if err := ctx.Err(); err != nil {
			return s.Stats, err
		}
		if s.storeOpen() {
			for _, shopper := range s.Shoppers {
				if !s.shouldPlaceOrder(shopper) {
					continue
				}
				if err := s.placeOrder(ctx, shopper); err != nil {
					return s.Stats, err
				}
			}
		}
		if s.OnStep != nil {
			s.OnStep()
		}
		s.CurrentTime = s.CurrentTime.Add(time.Minute)
	}

	s.logger.Info("simulation completed",
		zap.Int("placed", s.Stats.Placed),
		zap.Int("confirmed", s.Stats.Confirmed),
		zap.Int("rejected", s.Stats.Rejected),
		zap.String("revenue", s.Stats.Revenue.StringFixed(2)))
	return s.Stats, nil
}

func (s *Simulator) initializeShoppers() {
	cf := &factories.CustomerFactory{}
	n := max(s.Config.Simulation.Customers, 1)
	freq := s.Config.Simulation.OrderFrequency
	if freq <= 0 {
		freq = 0.2
	}

	s.Shoppers = make([]*Shopper, n)
	for i := range s.Shoppers {
		s.Shoppers[i] = &Shopper{
			Customer:        cf.CreateCustomer(),
			Address:         cf.CreateAddress(),
			OrderFrequency:  freq * (0.5 + s.Rng.Float64()),
			PrefersDelivery: s.Rng.Float64() < 0.65,
			PaymentMethod:   s.pickPaymentMethod(),
		}
	}
}

func (s *Simulator) storeOpen() bool {
	open, close, ok := s.Catalog.Store.BusinessHours(s.CurrentTime)
	if !ok {
		return false
	}
	now := models.ClockOf(s.CurrentTime)
	return now >= open && now < close
}

func (s *Simulator) shouldPlaceOrder(shopper *Shopper) bool {
	factor := demandMultiplier(s.Patterns, s.CurrentTime)
	if isPeakHour(s.CurrentTime) && s.Config.Simulation.PeakHourFactor > 0 {
		factor *= s.Config.Simulation.PeakHourFactor
	}
	if isWeekend(s.CurrentTime) && s.Config.Simulation.WeekendFactor > 0 {
		factor *= s.Config.Simulation.WeekendFactor
	}

	probability := shopper.OrderFrequency * factor / (24 * 60)
	return s.Rng.Float64() < probability
}

func (s *Simulator) placeOrder(ctx context.Context, shopper *Shopper) error {
	session, err := s.service.Open(ctx, s.Catalog.Store.ID)
	if err != nil {
		return err
	}

	items := s.buildCart(session)
	if len(items) == 0 {
		return nil
	}
	lines, err := session.ResolveCart(items)
	if err != nil {
		return s.reject(err)
	}

	req := checkout.Request{
		Lines:         lines,
		Customer:      shopper.Customer,
		Fulfillment:   models.FulfillmentPickup,
		PaymentMethod: shopper.PaymentMethod,
	}
	if shopper.PrefersDelivery {
		addr := shopper.Address
		req.Fulfillment = models.FulfillmentDelivery
		req.Address = &addr
	}
	if session.Store().AllowScheduling && s.Rng.Float64() < 0.2 {
		if slots := session.Slots(req.Fulfillment, lines); len(slots) > 0 {
			req.ScheduledFor = slots[s.Rng.Intn(len(slots))].String()
		}
	}

	order, err := session.PlaceOrder(ctx, req)
	if err != nil {
		return s.reject(err)
	}
	s.Stats.Placed++

	if order.Status == models.OrderStatusPendingPayment {
		// some shoppers never finish paying
		if s.Rng.Float64() >= 0.9 {
			s.Stats.Pending++
			return nil
		}
		order, err = session.ConfirmPayment(ctx, order.ID)
		if err != nil {
			if _, ok := repositories.IsInsufficientStock(err); ok {
				s.Stats.PaymentFailed++
				return nil
			}
			return err
		}
	}
	s.Stats.Confirmed++
	s.Stats.Revenue = s.Stats.Revenue.Add(order.Total)
	return nil
}

// reject counts validation failures and passes anything else through.
func (s *Simulator) reject(err error) error {
	var verrs checkout.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	s.Stats.Rejected++
	for _, e := range verrs {
		s.Stats.RejectedByCode[e.Code]++
	}
	s.logger.Debug("order rejected", zap.Time("at", s.CurrentTime), zap.Error(err))
	return nil
}
