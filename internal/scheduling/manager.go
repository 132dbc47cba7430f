// Package scheduling enumerates the delivery and pickup slots a store can offer.
package scheduling

import (
	"sort"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/stock"
)

const (
	DefaultSlotInterval = 30 * time.Minute
	DefaultHorizon      = 7
)

type Options struct {
	// Now defaults to time.Now.
	Now func() time.Time
	// Location is the store's local time zone. Defaults to time.Local.
	Location *time.Location
	// SlotInterval is the step between offered times. Defaults to 30 minutes.
	SlotInterval time.Duration
	// LeadTime is the minimum distance between now and the first slot.
	LeadTime time.Duration
	// Horizon is the last day after today Offers accepts. Defaults to 7.
	Horizon int
}

type Manager struct {
	stock    *stock.Manager
	now      func() time.Time
	loc      *time.Location
	interval time.Duration
	lead     time.Duration
	horizon  int
}

// NewManager returns a scheduler that filters today's slots against stk. A nil
// stk is seeded from the cart lines on each call.
func NewManager(stk *stock.Manager, opts Options) *Manager {
	m := &Manager{
		stock:    stk,
		now:      opts.Now,
		loc:      opts.Location,
		interval: opts.SlotInterval,
		lead:     opts.LeadTime,
		horizon:  opts.Horizon,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.loc == nil {
		m.loc = time.Local
	}
	if m.interval < time.Minute {
		m.interval = DefaultSlotInterval
	}
	if m.lead < 0 {
		m.lead = 0
	}
	if m.horizon <= 0 {
		m.horizon = DefaultHorizon
	}
	return m
}

// Location returns the time zone slots are expressed in.
func (m *Manager) Location() *time.Location {
	return m.loc
}

// Now returns the current time in the store's time zone.
func (m *Manager) Now() time.Time {
	return m.now().In(m.loc)
}

// Today returns the store-local calendar day of now at midnight.
func (m *Manager) Today() time.Time {
	now := m.now().In(m.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, m.loc)
}

// GetAvailableSlots lists the slots from today through today+daysAhead in
// chronological order. Overlapping delivery windows produce duplicates; use
// Dedupe when each slot must appear once. A store that does not allow
// scheduling offers no slots.
func (m *Manager) GetAvailableSlots(store models.Store, fulfillment models.FulfillmentType, daysAhead int, lines []models.CartLine) []Slot {
	if !store.AllowScheduling {
		return nil
	}
	daysAhead = max(daysAhead, 0)

	now := m.now().In(m.loc)
	earliest := now.Add(m.lead)
	today := m.Today()
	step := models.Clock(m.interval / time.Minute)

	var slots []Slot
	for i := 0; i <= daysAhead; i++ {
		day := today.AddDate(0, 0, i)
		if i == 0 && !m.SameDayAllowed(store, lines) {
			continue
		}
		open, close, ok := store.BusinessHours(day)
		if !ok {
			continue
		}

		var daySlots []Slot
		date := day.Format(models.DateLayout)
		for _, w := range fulfillmentWindows(store, fulfillment, open, close) {
			for t := w.start; t < w.end; t += step {
				if !t.On(day, m.loc).After(earliest) {
					continue
				}
				daySlots = append(daySlots, Slot{Date: date, Time: t.String()})
			}
		}
		sort.SliceStable(daySlots, func(a, b int) bool { return daySlots[a].Time < daySlots[b].Time })
		slots = append(slots, daySlots...)
	}
	return slots
}

// SameDayAllowed reports whether today can be offered at all: the cutoff has
// not passed, every product allows same-day scheduling and every finite-stock
// line is available.
func (m *Manager) SameDayAllowed(store models.Store, lines []models.CartLine) bool {
	if cutoff, ok := store.Cutoff(); ok && models.ClockOf(m.now().In(m.loc)) >= cutoff {
		return false
	}
	for _, line := range lines {
		if !line.Product.AllowSameDayScheduling {
			return false
		}
	}

	stk := m.stock
	if stk == nil {
		stk = stock.NewManager(nil)
	}
	return len(stk.Shortages(lines)) == 0
}

// Offers reports whether slot is among the slots currently offered, looking no
// further than the horizon.
func (m *Manager) Offers(store models.Store, fulfillment models.FulfillmentType, slot Slot, lines []models.CartLine) bool {
	day, err := time.ParseInLocation(models.DateLayout, slot.Date, m.loc)
	if err != nil {
		return false
	}
	daysAhead := int(day.Sub(m.Today()).Round(24*time.Hour) / (24 * time.Hour))
	if daysAhead < 0 || daysAhead > m.horizon {
		return false
	}
	for _, s := range m.GetAvailableSlots(store, fulfillment, daysAhead, lines) {
		if s == slot {
			return true
		}
	}
	return false
}

type window struct {
	start, end models.Clock
}

// fulfillmentWindows intersects business hours with the enabled delivery
// windows. Pickup, and stores without enabled delivery windows, use business
// hours as is.
func fulfillmentWindows(store models.Store, fulfillment models.FulfillmentType, open, close models.Clock) []window {
	business := []window{{start: open, end: close}}
	if fulfillment != models.FulfillmentDelivery {
		return business
	}

	var out []window
	enabled := false
	for _, dw := range store.DeliverySchedule {
		start, end, ok := dw.Window()
		if !ok {
			if dw.Enabled {
				enabled = true
			}
			continue
		}
		enabled = true
		start, end = max(start, open), min(end, close)
		if start < end {
			out = append(out, window{start: start, end: end})
		}
	}
	if !enabled {
		return business
	}
	return out
}
