// Package stock tracks available-to-sell quantities for one checkout session.
package stock

import (
	"math"

	"github.com/chrisdamba/foodstore/internal/models"
)

// Unlimited is reported for products without a daily quota.
const Unlimited = math.MaxInt

// Manager is a local cache of available stock seeded from a product snapshot.
// It is not safe for concurrent use; build one per session.
type Manager struct {
	available map[string]int
	tracked   map[string]bool
}

func NewManager(products []models.Product) *Manager {
	m := &Manager{
		available: make(map[string]int, len(products)),
		tracked:   make(map[string]bool, len(products)),
	}
	for _, p := range products {
		m.Load(p)
	}
	return m
}

// Load adds or replaces a product's entry from its current snapshot.
func (m *Manager) Load(p models.Product) {
	if !p.HasFiniteStock() {
		m.available[p.ID] = Unlimited
		m.tracked[p.ID] = false
		return
	}
	m.available[p.ID] = max(0, p.CurrentStock)
	m.tracked[p.ID] = true
}

// GetAvailableStock returns the units left to sell. Unknown products report 0.
func (m *Manager) GetAvailableStock(productID string) int {
	return m.available[productID]
}

func (m *Manager) CheckAvailability(productID string, quantity int) bool {
	avail, ok := m.available[productID]
	if !ok {
		return false
	}
	return quantity <= avail
}

// ReduceStock decrements a tracked product, never below zero. Untracked and
// unknown products are left alone.
func (m *Manager) ReduceStock(productID string, quantity int) {
	if !m.tracked[productID] || quantity <= 0 {
		return
	}
	m.available[productID] = max(0, m.available[productID]-quantity)
}

// IsTracked reports whether the product is sold from a finite daily quota.
func (m *Manager) IsTracked(productID string) bool {
	return m.tracked[productID]
}

// Snapshot copies the tracked quantities.
func (m *Manager) Snapshot() map[string]int {
	out := make(map[string]int, len(m.available))
	for id, n := range m.available {
		if m.tracked[id] {
			out[id] = n
		}
	}
	return out
}

// Shortage describes a finite-stock product the cart asks too much of.
type Shortage struct {
	ProductID   string
	ProductName string
	Requested   int
	Available   int
}

// Shortages checks every finite-stock product in lines. Quantities of lines
// sharing a product are summed before the check. Products missing from the
// cache are seeded from the line's snapshot. Results follow first appearance
// in lines.
func (m *Manager) Shortages(lines []models.CartLine) []Shortage {
	requested := make(map[string]int)
	var order []models.Product
	for _, line := range lines {
		if !line.Product.HasFiniteStock() {
			continue
		}
		if _, seen := requested[line.Product.ID]; !seen {
			order = append(order, line.Product)
		}
		requested[line.Product.ID] += line.Quantity
	}

	var out []Shortage
	for _, p := range order {
		if _, known := m.available[p.ID]; !known {
			m.Load(p)
		}
		if !m.CheckAvailability(p.ID, requested[p.ID]) {
			out = append(out, Shortage{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   requested[p.ID],
				Available:   m.GetAvailableStock(p.ID),
			})
		}
	}
	return out
}
