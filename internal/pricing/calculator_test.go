package pricing

import (
	"testing"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tieredProduct() models.Product {
	return models.Product{
		ID:    "combo",
		Price: dec("10.00"),
		Tier:  &models.PriceTier{IncludedQuantity: 2, ExcessUnitPrice: dec("4.00")},
	}
}

func TestCalculateLineTotal_Tiered(t *testing.T) {
	lt := CalculateLineTotal(tieredProduct(), 5, nil)
	assert.Equal(t, "32.00", lt.BaseCost.StringFixed(2))
	assert.Equal(t, "32.00", lt.Total.StringFixed(2))
	assert.Equal(t, "10.00", lt.UnitPrice.StringFixed(2))
}

func TestCalculateLineTotal_TierFormula(t *testing.T) {
	p := tieredProduct()
	p.SalePrice = decimal.NewNullDecimal(dec("7.50"))

	for q := 1; q <= 10; q++ {
		lt := CalculateLineTotal(p, q, nil)
		var want decimal.Decimal
		if q <= 2 {
			want = dec("7.50").Mul(decimal.NewFromInt(int64(q)))
		} else {
			want = dec("15.00").Add(dec("4.00").Mul(decimal.NewFromInt(int64(q - 2))))
		}
		assert.True(t, want.Equal(lt.BaseCost), "q=%d want %s got %s", q, want, lt.BaseCost)
	}
}

func TestCalculateLineTotal_Flat(t *testing.T) {
	p := models.Product{ID: "burger", Price: dec("12.90")}
	lt := CalculateLineTotal(p, 3, nil)
	assert.Equal(t, "38.70", lt.BaseCost.StringFixed(2))
}

func TestCalculateLineTotal_AddonsNotMultipliedByQuantity(t *testing.T) {
	p := models.Product{ID: "burger", Price: dec("10.00")}
	addons := []models.SelectedAddon{
		{Item: models.AddonItem{ID: "bacon", Price: dec("3.00")}, Quantity: 2, Multiple: true},
		{Item: models.AddonItem{ID: "cheddar", Price: dec("2.50")}, Quantity: 4, Multiple: false},
		{Item: models.AddonItem{ID: "onion", Price: dec("1.00")}, Quantity: 0, Multiple: true},
	}

	lt := CalculateLineTotal(p, 4, addons)
	assert.Equal(t, "40.00", lt.BaseCost.StringFixed(2))
	assert.Equal(t, "9.50", lt.AddonsTotal.StringFixed(2))
	assert.Equal(t, "49.50", lt.Total.StringFixed(2))
}

func TestCalculateOrderTotal(t *testing.T) {
	lines := []models.CartLine{
		{Product: tieredProduct(), Quantity: 5},
		{Product: models.Product{ID: "soda", Price: dec("0.10")}, Quantity: 3},
	}
	fee := dec("6.99")

	delivery := CalculateOrderTotal(lines, DeliveryFeeFor(models.FulfillmentDelivery, fee))
	require.Len(t, delivery.Lines, 2)
	assert.True(t, delivery.Subtotal.Equal(dec("32.30")))
	assert.True(t, delivery.Total.Equal(delivery.Subtotal.Add(fee)))

	pickup := CalculateOrderTotal(lines, DeliveryFeeFor(models.FulfillmentPickup, fee))
	assert.True(t, pickup.DeliveryFee.IsZero())
	assert.True(t, pickup.Total.Equal(pickup.Subtotal))
}

func TestCalculateOrderTotal_NoIntermediateRounding(t *testing.T) {
	line := models.CartLine{Product: models.Product{ID: "x", Price: dec("0.333")}, Quantity: 1}
	totals := CalculateOrderTotal([]models.CartLine{line, line, line}, decimal.Zero)
	assert.Equal(t, "0.999", totals.Total.String())
	assert.Equal(t, "1.00", totals.Total.StringFixed(2))
}
