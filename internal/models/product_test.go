package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewProductFromRecord_Tier(t *testing.T) {
	tests := []struct {
		name         string
		maxIncluded  *int
		excess       decimal.NullDecimal
		wantTier     bool
		wantWarnings int
	}{
		{"flat", nil, decimal.NullDecimal{}, false, 0},
		{"tiered", intPtr(2), decimal.NewNullDecimal(decimal.RequireFromString("4.00")), true, 0},
		{"threshold without excess price", intPtr(2), decimal.NullDecimal{}, false, 1},
		{"excess price without threshold", nil, decimal.NewNullDecimal(decimal.RequireFromString("4.00")), false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, warnings := NewProductFromRecord(ProductRecord{
				ID:                  "p1",
				Price:               decimal.RequireFromString("10.00"),
				MaxIncludedQuantity: tt.maxIncluded,
				ExcessUnitPrice:     tt.excess,
			})
			assert.Len(t, warnings, tt.wantWarnings)
			assert.Equal(t, tt.wantTier, p.Tier != nil)
			if tt.wantTier {
				assert.IsType(t, TieredPricing{}, p.Pricing())
			} else {
				assert.IsType(t, FlatPricing{}, p.Pricing())
			}
		})
	}
}

func TestNewProductFromRecord_StockClamped(t *testing.T) {
	p, warnings := NewProductFromRecord(ProductRecord{ID: "p1", DailyStock: intPtr(3), CurrentStock: intPtr(7)})
	require.Len(t, warnings, 1)
	assert.Equal(t, 3, p.CurrentStock)

	p, warnings = NewProductFromRecord(ProductRecord{ID: "p2", DailyStock: intPtr(3), CurrentStock: intPtr(-2)})
	require.Len(t, warnings, 1)
	assert.Equal(t, 0, p.CurrentStock)

	p, warnings = NewProductFromRecord(ProductRecord{ID: "p3", DailyStock: intPtr(5)})
	assert.Empty(t, warnings)
	assert.Equal(t, 5, p.CurrentStock)
	assert.True(t, p.HasFiniteStock())
	assert.True(t, p.AllowSameDayScheduling)
}

func TestProduct_EffectivePrice(t *testing.T) {
	p := Product{Price: decimal.RequireFromString("10.00")}
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("10.00")))

	p.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("8.50"))
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("8.50")))

	p.SalePrice = decimal.NewNullDecimal(decimal.Zero)
	assert.True(t, p.EffectivePrice().Equal(decimal.RequireFromString("10.00")))
}

func TestTieredPricing_BaseCost(t *testing.T) {
	tier := TieredPricing{
		IncludedQuantity: 2,
		Price:            decimal.RequireFromString("10.00"),
		ExcessUnitPrice:  decimal.RequireFromString("4.00"),
	}
	assert.Equal(t, "32.00", tier.BaseCost(5).StringFixed(2))
	assert.Equal(t, "20.00", tier.BaseCost(2).StringFixed(2))
	assert.Equal(t, "10.00", tier.BaseCost(1).StringFixed(2))
}
