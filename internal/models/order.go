package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"id"`
	StoreID       string          `json:"store_id"`
	Customer      Customer        `json:"customer"`
	Fulfillment   FulfillmentType `json:"fulfillment"`
	Address       *Address        `json:"delivery_address,omitempty"`
	ScheduledFor  string          `json:"scheduled_for"` // empty means as soon as possible
	PaymentMethod string          `json:"payment_method"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DeliveryFee   decimal.Decimal `json:"delivery_fee"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	Notes         string          `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty"`
}

// IsScheduled reports whether the customer picked a slot instead of ASAP.
func (o Order) IsScheduled() bool {
	return o.ScheduledFor != ""
}

type OrderItem struct {
	ProductID   string           `json:"product_id"`
	ProductName string           `json:"product_name"`
	Quantity    int              `json:"quantity"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	BaseCost    decimal.Decimal  `json:"base_cost"`
	AddonsTotal decimal.Decimal  `json:"addons_total"`
	LineTotal   decimal.Decimal  `json:"line_total"`
	Addons      []OrderItemAddon `json:"addons,omitempty"`
	Note        string           `json:"note,omitempty"`
}

type OrderItemAddon struct {
	AddonID    string          `json:"addon_id"`
	CategoryID string          `json:"category_id"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
}
