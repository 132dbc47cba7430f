package simulator

import (
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/storefront"
)

func (s *Simulator) pickPaymentMethod() string {
	switch r := s.Rng.Float64(); {
	case r < 0.4:
		return models.PaymentMethodCash
	case r < 0.75:
		return models.PaymentMethodCard
	default:
		return models.PaymentMethodPix
	}
}

func (s *Simulator) buildCart(session *storefront.Session) []storefront.LineRequest {
	var available []models.Product
	for _, p := range session.Products() {
		if p.IsAvailable {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return nil
	}

	n := 1 + s.Rng.Intn(3)
	items := make([]storefront.LineRequest, 0, n)
	for i := 0; i < n; i++ {
		product := available[s.Rng.Intn(len(available))]
		items = append(items, storefront.LineRequest{
			ProductID: product.ID,
			Quantity:  s.pickQuantity(),
			Addons:    s.pickAddons(session.Categories(product.ID)),
		})
	}
	return items
}

func (s *Simulator) pickQuantity() int {
	switch r := s.Rng.Float64(); {
	case r < 0.6:
		return 1
	case r < 0.85:
		return 2
	default:
		return 3 + s.Rng.Intn(4)
	}
}

// pickAddons always satisfies required categories and sometimes adds optional ones.
func (s *Simulator) pickAddons(categories []models.AddonCategory) []storefront.AddonPick {
	var picks []storefront.AddonPick
	for _, c := range categories {
		minSel, maxSel := c.Bounds()
		if minSel == 0 && s.Rng.Float64() >= 0.3 {
			continue
		}

		var items []models.AddonItem
		for _, item := range c.Items {
			if item.IsAvailable {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}

		want := max(minSel, 1)
		if c.IsMultiple && s.Rng.Float64() < 0.5 {
			want++
		}
		if maxSel > 0 {
			want = min(want, maxSel)
		}
		want = min(want, len(items))

		for _, idx := range s.Rng.Perm(len(items))[:want] {
			picks = append(picks, storefront.AddonPick{
				CategoryID: c.ID,
				ItemID:     items[idx].ID,
				Quantity:   1 + s.Rng.Intn(2),
			})
		}
	}
	return picks
}
