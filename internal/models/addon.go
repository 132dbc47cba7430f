package models

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrAddonUnavailable     = errors.New("addon item is not available")
	ErrAddonLimitReached    = errors.New("addon category selection limit reached")
	ErrUnknownAddonCategory = errors.New("addon category does not belong to product")
	ErrAddonNotInCategory   = errors.New("addon item does not belong to category")
)

type AddonItem struct {
	ID          string          `json:"id" mapstructure:"id"`
	CategoryID  string          `json:"category_id" mapstructure:"category_id"`
	Name        string          `json:"name" mapstructure:"name"`
	Price       decimal.Decimal `json:"price" mapstructure:"price"`
	IsAvailable bool            `json:"is_available" mapstructure:"is_available"`
}

type AddonCategory struct {
	ID         string      `json:"id" mapstructure:"id"`
	ProductID  string      `json:"product_id" mapstructure:"product_id"`
	Name       string      `json:"name" mapstructure:"name"`
	IsRequired bool        `json:"is_required" mapstructure:"is_required"`
	IsMultiple bool        `json:"is_multiple" mapstructure:"is_multiple"`
	MinSelect  int         `json:"min_select" mapstructure:"min_select"`
	MaxSelect  int         `json:"max_select" mapstructure:"max_select"`
	SortOrder  int         `json:"sort_order" mapstructure:"sort_order"`
	Items      []AddonItem `json:"items" mapstructure:"items"`
}

// Bounds returns the selection limits after normalising inconsistent rows.
// A max of 0 means unbounded and only happens for multi-select categories.
func (c AddonCategory) Bounds() (minSelect, maxSelect int) {
	minSelect = max(c.MinSelect, 0)
	if c.IsRequired && minSelect < 1 {
		minSelect = 1
	}
	if !c.IsMultiple {
		return min(minSelect, 1), 1
	}
	maxSelect = c.MaxSelect
	if maxSelect > 0 && maxSelect < minSelect {
		maxSelect = minSelect
	}
	if maxSelect < 0 {
		maxSelect = 0
	}
	return minSelect, maxSelect
}

func (c AddonCategory) FindItem(itemID string) (AddonItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return AddonItem{}, false
}

type SelectedAddon struct {
	Item     AddonItem `json:"item" mapstructure:"item"`
	Quantity int       `json:"quantity" mapstructure:"quantity"`
	// Multiple is copied from the owning category; single-select picks always count once.
	Multiple bool `json:"multiple" mapstructure:"multiple"`
}

// EffectiveQuantity is the quantity billed for this pick.
func (s SelectedAddon) EffectiveQuantity() int {
	if !s.Multiple || s.Quantity < 1 {
		return 1
	}
	return s.Quantity
}

// AddonSelection holds the add-ons picked for one cart line, keyed by category.
// Bounds are enforced on insert.
type AddonSelection struct {
	categories map[string]AddonCategory
	picks      map[string][]SelectedAddon
}

func NewAddonSelection(categories []AddonCategory) *AddonSelection {
	s := &AddonSelection{
		categories: make(map[string]AddonCategory, len(categories)),
		picks:      make(map[string][]SelectedAddon),
	}
	for _, c := range categories {
		s.categories[c.ID] = c
	}
	return s
}

// Add inserts an item into its category. Single-select categories replace the
// current pick; multi-select categories refuse to grow beyond their maximum.
// Selecting an already picked item updates its quantity.
func (s *AddonSelection) Add(categoryID, itemID string, quantity int) error {
	category, ok := s.categories[categoryID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAddonCategory, categoryID)
	}
	item, ok := category.FindItem(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrAddonNotInCategory, itemID)
	}
	if !item.IsAvailable {
		return fmt.Errorf("%w: %s", ErrAddonUnavailable, item.Name)
	}
	if quantity < 1 {
		quantity = 1
	}

	pick := SelectedAddon{Item: item, Quantity: quantity, Multiple: category.IsMultiple}
	if !category.IsMultiple {
		pick.Quantity = 1
		s.picks[categoryID] = []SelectedAddon{pick}
		return nil
	}

	current := s.picks[categoryID]
	for i := range current {
		if current[i].Item.ID == itemID {
			current[i].Quantity = quantity
			return nil
		}
	}

	_, maxSelect := category.Bounds()
	if maxSelect > 0 && len(current) >= maxSelect {
		return fmt.Errorf("%w: %s allows %d", ErrAddonLimitReached, category.Name, maxSelect)
	}
	s.picks[categoryID] = append(current, pick)
	return nil
}

func (s *AddonSelection) Remove(categoryID, itemID string) {
	current := s.picks[categoryID]
	for i := range current {
		if current[i].Item.ID == itemID {
			s.picks[categoryID] = append(current[:i], current[i+1:]...)
			break
		}
	}
	if len(s.picks[categoryID]) == 0 {
		delete(s.picks, categoryID)
	}
}

// Items returns every pick ordered by category sort order, then insertion order.
func (s *AddonSelection) Items() []SelectedAddon {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.picks))
	for id := range s.picks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ci, cj := s.categories[ids[i]], s.categories[ids[j]]
		if ci.SortOrder != cj.SortOrder {
			return ci.SortOrder < cj.SortOrder
		}
		return ids[i] < ids[j]
	})

	var items []SelectedAddon
	for _, id := range ids {
		items = append(items, s.picks[id]...)
	}
	return items
}

// Count returns how many distinct items are picked in a category.
func (s *AddonSelection) Count(categoryID string) int {
	if s == nil {
		return 0
	}
	return len(s.picks[categoryID])
}

// Shortfall describes a category picked below its minimum.
type Shortfall struct {
	Category AddonCategory
	Min      int
	Selected int
}

// Validate lists the categories whose minimum is not met.
func (s *AddonSelection) Validate() []Shortfall {
	if s == nil {
		return nil
	}
	var out []Shortfall
	for _, c := range s.categories {
		minSelect, _ := c.Bounds()
		if n := len(s.picks[c.ID]); n < minSelect {
			out = append(out, Shortfall{Category: c, Min: minSelect, Selected: n})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category.SortOrder != out[j].Category.SortOrder {
			return out[i].Category.SortOrder < out[j].Category.SortOrder
		}
		return out[i].Category.ID < out[j].Category.ID
	})
	return out
}
