package pricing

import (
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/shopspring/decimal"
)

// LineTotal is the priced breakdown of one cart line. Values are unrounded.
type LineTotal struct {
	UnitPrice   decimal.Decimal `json:"unit_price"`
	BaseCost    decimal.Decimal `json:"base_cost"`
	AddonsTotal decimal.Decimal `json:"addons_total"`
	Total       decimal.Decimal `json:"total"`
}

type OrderTotals struct {
	Lines       []LineTotal     `json:"lines"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	DeliveryFee decimal.Decimal `json:"delivery_fee"`
	Total       decimal.Decimal `json:"total"`
}

// CalculateLineTotal prices quantity units of product plus the selected add-ons.
// Add-ons are charged once per line, not per unit. quantity is expected to be
// validated by the caller.
func CalculateLineTotal(product models.Product, quantity int, addons []models.SelectedAddon) LineTotal {
	p := product.Pricing()
	base := p.BaseCost(quantity)
	addonsTotal := AddonsTotal(addons)

	return LineTotal{
		UnitPrice:   p.UnitPrice(),
		BaseCost:    base,
		AddonsTotal: addonsTotal,
		Total:       base.Add(addonsTotal),
	}
}

func AddonsTotal(addons []models.SelectedAddon) decimal.Decimal {
	total := decimal.Zero
	for _, a := range addons {
		total = total.Add(a.Item.Price.Mul(decimal.NewFromInt(int64(a.EffectiveQuantity()))))
	}
	return total
}

// CalculateLine prices a cart line.
func CalculateLine(line models.CartLine) LineTotal {
	return CalculateLineTotal(line.Product, line.Quantity, line.Addons.Items())
}

// CalculateOrderTotal sums the lines and adds deliveryFee. Pass the result of
// DeliveryFeeFor so pickup orders carry no fee.
func CalculateOrderTotal(lines []models.CartLine, deliveryFee decimal.Decimal) OrderTotals {
	totals := OrderTotals{
		Lines:       make([]LineTotal, 0, len(lines)),
		Subtotal:    decimal.Zero,
		DeliveryFee: deliveryFee,
	}
	for _, line := range lines {
		lt := CalculateLine(line)
		totals.Lines = append(totals.Lines, lt)
		totals.Subtotal = totals.Subtotal.Add(lt.Total)
	}
	totals.Total = totals.Subtotal.Add(deliveryFee)
	return totals
}

// DeliveryFeeFor returns the fee charged for a fulfillment type.
func DeliveryFeeFor(fulfillment models.FulfillmentType, fee decimal.Decimal) decimal.Decimal {
	if fulfillment != models.FulfillmentDelivery || fee.IsNegative() {
		return decimal.Zero
	}
	return fee
}
