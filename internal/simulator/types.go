package simulator

import (
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/shopspring/decimal"
)

// Shopper is a simulated customer with a fixed ordering habit.
type Shopper struct {
	Customer        models.Customer
	Address         models.Address
	OrderFrequency  float64 // orders per day
	PrefersDelivery bool
	PaymentMethod   string
}

type Stats struct {
	Placed         int             `json:"placed"`
	Confirmed      int             `json:"confirmed"`
	Pending        int             `json:"pending"`
	PaymentFailed  int             `json:"payment_failed"`
	Rejected       int             `json:"rejected"`
	RejectedByCode map[string]int  `json:"rejected_by_code"`
	Revenue        decimal.Decimal `json:"revenue"`
}
