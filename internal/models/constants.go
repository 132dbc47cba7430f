package models

const (
	OrderStatusPendingPayment = "pending_payment"
	OrderStatusConfirmed      = "confirmed"
	OrderStatusPreparing      = "preparing"
	OrderStatusReady          = "ready"
	OrderStatusOutForDelivery = "out_for_delivery"
	OrderStatusDelivered      = "delivered"
	OrderStatusCancelled      = "cancelled"

	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodPix  = "pix"
)

// FulfillmentType is how the order leaves the store.
type FulfillmentType string

const (
	FulfillmentDelivery FulfillmentType = "delivery"
	FulfillmentPickup   FulfillmentType = "pickup"
)

func (f FulfillmentType) Valid() bool {
	return f == FulfillmentDelivery || f == FulfillmentPickup
}

// IsKnownPaymentMethod reports whether the method is one the storefront accepts.
func IsKnownPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodPix:
		return true
	}
	return false
}

// CommitsOnPlacement reports whether stock is taken as soon as the order is placed.
// Card and PIX orders wait for payment confirmation.
func CommitsOnPlacement(method string) bool {
	return method == PaymentMethodCash
}
