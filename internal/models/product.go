package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PriceTier bills units beyond IncludedQuantity at ExcessUnitPrice.
type PriceTier struct {
	IncludedQuantity int             `json:"included_quantity"`
	ExcessUnitPrice  decimal.Decimal `json:"excess_unit_price"`
}

type Product struct {
	ID                     string              `json:"id"`
	StoreID                string              `json:"store_id"`
	CategoryID             string              `json:"category_id"`
	Name                   string              `json:"name"`
	Description            string              `json:"description"`
	Price                  decimal.Decimal     `json:"price"`
	SalePrice              decimal.NullDecimal `json:"sale_price"`
	Tier                   *PriceTier          `json:"tier,omitempty"`
	DailyStock             *int                `json:"daily_stock"`
	CurrentStock           int                 `json:"current_stock"`
	StockLastReset         time.Time           `json:"stock_last_reset"`
	AllowSameDayScheduling bool                `json:"allow_same_day_scheduling"`
	IsAvailable            bool                `json:"is_available"`
}

// ProductRecord mirrors a products row. Tier columns are independent and may be
// half configured upstream.
type ProductRecord struct {
	ID                     string              `mapstructure:"id"`
	StoreID                string              `mapstructure:"store_id"`
	CategoryID             string              `mapstructure:"category_id"`
	Name                   string              `mapstructure:"name"`
	Description            string              `mapstructure:"description"`
	Price                  decimal.Decimal     `mapstructure:"price"`
	SalePrice              decimal.NullDecimal `mapstructure:"sale_price"`
	MaxIncludedQuantity    *int                `mapstructure:"max_included_quantity"`
	ExcessUnitPrice        decimal.NullDecimal `mapstructure:"excess_unit_price"`
	DailyStock             *int                `mapstructure:"daily_stock"`
	CurrentStock           *int                `mapstructure:"current_stock"`
	StockLastReset         *time.Time          `mapstructure:"stock_last_reset"`
	AllowSameDayScheduling *bool               `mapstructure:"allow_same_day_scheduling"`
	IsAvailable            bool                `mapstructure:"is_available"`
}

// NewProductFromRecord converts a row into a Product. Inconsistent tier or
// stock columns are corrected and returned as warnings rather than errors.
func NewProductFromRecord(rec ProductRecord) (Product, []string) {
	var warnings []string

	p := Product{
		ID:                     rec.ID,
		StoreID:                rec.StoreID,
		CategoryID:             rec.CategoryID,
		Name:                   rec.Name,
		Description:            rec.Description,
		Price:                  rec.Price,
		SalePrice:              rec.SalePrice,
		AllowSameDayScheduling: true,
		IsAvailable:            rec.IsAvailable,
	}
	if rec.AllowSameDayScheduling != nil {
		p.AllowSameDayScheduling = *rec.AllowSameDayScheduling
	}
	if rec.StockLastReset != nil {
		p.StockLastReset = *rec.StockLastReset
	}

	switch {
	case rec.MaxIncludedQuantity != nil && rec.ExcessUnitPrice.Valid:
		if *rec.MaxIncludedQuantity < 0 {
			warnings = append(warnings, fmt.Sprintf("product %s: negative max_included_quantity, tier ignored", rec.ID))
			break
		}
		p.Tier = &PriceTier{
			IncludedQuantity: *rec.MaxIncludedQuantity,
			ExcessUnitPrice:  rec.ExcessUnitPrice.Decimal,
		}
	case rec.MaxIncludedQuantity != nil:
		warnings = append(warnings, fmt.Sprintf("product %s: max_included_quantity without excess_unit_price, tier ignored", rec.ID))
	case rec.ExcessUnitPrice.Valid:
		warnings = append(warnings, fmt.Sprintf("product %s: excess_unit_price without max_included_quantity, tier ignored", rec.ID))
	}

	if rec.DailyStock != nil {
		daily := *rec.DailyStock
		if daily < 0 {
			daily = 0
		}
		p.DailyStock = &daily

		current := daily
		if rec.CurrentStock != nil {
			current = *rec.CurrentStock
		}
		if current < 0 || current > daily {
			warnings = append(warnings, fmt.Sprintf("product %s: current_stock %d outside [0, %d], clamped", rec.ID, current, daily))
			current = max(0, min(current, daily))
		}
		p.CurrentStock = current
	}

	return p, warnings
}

// EffectivePrice is the sale price when set and positive, the list price otherwise.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice.Valid && p.SalePrice.Decimal.IsPositive() {
		return p.SalePrice.Decimal
	}
	return p.Price
}

// HasFiniteStock reports whether the product is sold from a daily quota.
func (p Product) HasFiniteStock() bool {
	return p.DailyStock != nil
}

// Pricing resolves the product into its pricing variant.
func (p Product) Pricing() Pricing {
	if p.Tier != nil {
		return TieredPricing{
			IncludedQuantity: p.Tier.IncludedQuantity,
			Price:            p.EffectivePrice(),
			ExcessUnitPrice:  p.Tier.ExcessUnitPrice,
		}
	}
	return FlatPricing{Price: p.EffectivePrice()}
}

// Pricing is either FlatPricing or TieredPricing.
type Pricing interface {
	UnitPrice() decimal.Decimal
	BaseCost(quantity int) decimal.Decimal
}

type FlatPricing struct {
	Price decimal.Decimal
}

func (f FlatPricing) UnitPrice() decimal.Decimal { return f.Price }

func (f FlatPricing) BaseCost(quantity int) decimal.Decimal {
	return f.Price.Mul(decimal.NewFromInt(int64(quantity)))
}

type TieredPricing struct {
	IncludedQuantity int
	Price            decimal.Decimal
	ExcessUnitPrice  decimal.Decimal
}

func (t TieredPricing) UnitPrice() decimal.Decimal { return t.Price }

func (t TieredPricing) BaseCost(quantity int) decimal.Decimal {
	included := min(quantity, t.IncludedQuantity)
	excess := max(0, quantity-t.IncludedQuantity)
	return t.Price.Mul(decimal.NewFromInt(int64(included))).
		Add(t.ExcessUnitPrice.Mul(decimal.NewFromInt(int64(excess))))
}
