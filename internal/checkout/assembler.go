// Package checkout validates a cart against store rules and assembles the
// order handed to persistence.
package checkout

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/pricing"
	"github.com/chrisdamba/foodstore/internal/scheduling"
	"github.com/chrisdamba/foodstore/internal/stock"
	"github.com/lucsky/cuid"
	"github.com/shopspring/decimal"
)

const (
	minNameLength  = 2
	maxNameLength  = 100
	minPhoneDigits = 10
	maxPhoneDigits = 13
)

type Request struct {
	StoreID       string
	Lines         []models.CartLine
	Customer      models.Customer
	Fulfillment   models.FulfillmentType
	Address       *models.Address
	ScheduledFor  string // empty means as soon as possible
	PaymentMethod string
	Notes         string
}

// Assembler only reads the stock cache; committing stock is the caller's job
// once the order is persisted or paid.
type Assembler struct {
	stock     *stock.Manager
	scheduler *scheduling.Manager
	newID     func() string
}

func NewAssembler(stk *stock.Manager, scheduler *scheduling.Manager) *Assembler {
	if stk == nil {
		stk = stock.NewManager(nil)
	}
	if scheduler == nil {
		scheduler = scheduling.NewManager(stk, scheduling.Options{})
	}
	return &Assembler{stock: stk, scheduler: scheduler, newID: cuid.New}
}

// Validate runs every check and returns all failures in check order.
func (a *Assembler) Validate(req Request, store models.Store) ValidationErrors {
	var errs ValidationErrors

	errs = append(errs, validateCart(req.Lines)...)
	errs = append(errs, validateCustomer(req.Customer)...)

	if !req.Fulfillment.Valid() {
		errs = append(errs, invalid("fulfillment", CodeInvalidFulfillment, "unknown fulfillment type %q", req.Fulfillment))
	} else if req.Fulfillment == models.FulfillmentDelivery {
		errs = append(errs, validateAddress(req.Address)...)
	}

	for _, s := range a.stock.Shortages(validLines(req.Lines)) {
		errs = append(errs, ValidationError{
			Kind:      KindAvailability,
			Field:     "items",
			Code:      CodeInsufficientStock,
			Message:   fmt.Sprintf("only %d of %s available, %d requested", s.Available, productLabel(s.ProductID, s.ProductName), s.Requested),
			ProductID: s.ProductID,
			Available: available(s.Available),
		})
	}

	if len(req.Lines) > 0 && store.MinimumOrder.IsPositive() {
		subtotal := pricing.CalculateOrderTotal(validLines(req.Lines), decimal.Zero).Subtotal
		if subtotal.LessThan(store.MinimumOrder) {
			errs = append(errs, invalid("subtotal", CodeBelowMinimum, "minimum order is %s, cart subtotal is %s",
				store.MinimumOrder.StringFixed(2), subtotal.StringFixed(2)))
		}
	}

	for i, line := range req.Lines {
		for _, sf := range line.Addons.Validate() {
			e := invalid(fmt.Sprintf("items[%d].addons.%s", i, sf.Category.ID), CodeAddonRequired,
				"%s requires at least %d selection(s), %d selected", sf.Category.Name, sf.Min, sf.Selected)
			e.ProductID = line.Product.ID
			errs = append(errs, e)
		}
	}

	errs = append(errs, a.validateSchedule(req, store)...)

	if !models.IsKnownPaymentMethod(req.PaymentMethod) {
		errs = append(errs, invalid("payment_method", CodeInvalidPayment, "unknown payment method %q", req.PaymentMethod))
	}

	return errs
}

// BuildOrder validates req and returns the priced order. Cash orders are
// created confirmed; card and PIX orders wait for payment.
func (a *Assembler) BuildOrder(req Request, store models.Store) (*models.Order, error) {
	if errs := a.Validate(req, store); len(errs) > 0 {
		return nil, errs
	}

	fee := pricing.DeliveryFeeFor(req.Fulfillment, store.DeliveryFee)
	totals := pricing.CalculateOrderTotal(req.Lines, fee)
	now := a.scheduler.Now()

	order := &models.Order{
		ID:            a.newID(),
		StoreID:       store.ID,
		Customer:      normalizeCustomer(req.Customer),
		Fulfillment:   req.Fulfillment,
		PaymentMethod: req.PaymentMethod,
		Items:         make([]models.OrderItem, 0, len(req.Lines)),
		Subtotal:      totals.Subtotal,
		DeliveryFee:   totals.DeliveryFee,
		Total:         totals.Total,
		Status:        models.OrderStatusPendingPayment,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedAt:     now,
	}
	if req.Fulfillment == models.FulfillmentDelivery {
		addr := *req.Address
		order.Address = &addr
	}
	if req.ScheduledFor != "" {
		slot, _ := scheduling.ParseSlot(req.ScheduledFor)
		order.ScheduledFor = slot.String()
	}
	if models.CommitsOnPlacement(req.PaymentMethod) {
		order.Status = models.OrderStatusConfirmed
		order.ConfirmedAt = &now
	}

	for i, line := range req.Lines {
		lt := totals.Lines[i]
		item := models.OrderItem{
			ProductID:   line.Product.ID,
			ProductName: line.Product.Name,
			Quantity:    line.Quantity,
			UnitPrice:   lt.UnitPrice,
			BaseCost:    lt.BaseCost,
			AddonsTotal: lt.AddonsTotal,
			LineTotal:   lt.Total,
			Note:        strings.TrimSpace(line.Note),
		}
		for _, sa := range line.Addons.Items() {
			item.Addons = append(item.Addons, models.OrderItemAddon{
				AddonID:    sa.Item.ID,
				CategoryID: sa.Item.CategoryID,
				Name:       sa.Item.Name,
				Price:      sa.Item.Price,
				Quantity:   sa.EffectiveQuantity(),
			})
		}
		order.Items = append(order.Items, item)
	}

	return order, nil
}

func (a *Assembler) validateSchedule(req Request, store models.Store) ValidationErrors {
	if req.ScheduledFor == "" {
		return nil
	}
	slot, err := scheduling.ParseSlot(req.ScheduledFor)
	if err != nil {
		return ValidationErrors{invalid("scheduled_for", CodeInvalidSchedule, "expected YYYY-MM-DDTHH:MM, got %q", req.ScheduledFor)}
	}
	if !store.AllowScheduling {
		return ValidationErrors{invalid("scheduled_for", CodeSchedulingDisabled, "store does not accept scheduled orders")}
	}
	if !req.Fulfillment.Valid() {
		return nil
	}
	if !a.scheduler.Offers(store, req.Fulfillment, slot, validLines(req.Lines)) {
		return ValidationErrors{invalid("scheduled_for", CodeSlotUnavailable, "slot %s is not available", slot)}
	}
	return nil
}

func validateCart(lines []models.CartLine) ValidationErrors {
	if len(lines) == 0 {
		return ValidationErrors{invalid("items", CodeCartEmpty, "cart is empty")}
	}
	var errs ValidationErrors
	for i, line := range lines {
		if line.Quantity < 1 {
			e := invalid(fmt.Sprintf("items[%d].quantity", i), CodeInvalidQuantity, "quantity must be at least 1")
			e.ProductID = line.Product.ID
			errs = append(errs, e)
		}
	}
	return errs
}

func validateCustomer(c models.Customer) ValidationErrors {
	var errs ValidationErrors

	name := strings.TrimSpace(c.Name)
	if n := utf8.RuneCountInString(name); n < minNameLength || n > maxNameLength {
		errs = append(errs, invalid("customer.name", CodeInvalidName, "name must have between %d and %d characters", minNameLength, maxNameLength))
	}

	if digits, ok := phoneDigits(c.Phone); !ok || len(digits) < minPhoneDigits || len(digits) > maxPhoneDigits {
		errs = append(errs, invalid("customer.phone", CodeInvalidPhone, "phone must have between %d and %d digits", minPhoneDigits, maxPhoneDigits))
	}

	if email := strings.TrimSpace(c.Email); email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			errs = append(errs, invalid("customer.email", CodeInvalidEmail, "invalid email address"))
		}
	}
	return errs
}

func validateAddress(addr *models.Address) ValidationErrors {
	if addr == nil {
		addr = &models.Address{}
	}
	required := []struct {
		field, value string
	}{
		{"address.street", addr.Street},
		{"address.number", addr.Number},
		{"address.neighborhood", addr.Neighborhood},
		{"address.city", addr.City},
	}
	var errs ValidationErrors
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, invalid(r.field, CodeRequired, "%s is required for delivery", strings.TrimPrefix(r.field, "address.")))
		}
	}
	return errs
}

// phoneDigits strips common separators. ok is false when anything else is present.
func phoneDigits(phone string) (string, bool) {
	var b strings.Builder
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+' || r == '.':
		default:
			return "", false
		}
	}
	return b.String(), true
}

func normalizeCustomer(c models.Customer) models.Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	if digits, ok := phoneDigits(c.Phone); ok {
		c.Phone = digits
	}
	return c
}

func validLines(lines []models.CartLine) []models.CartLine {
	out := make([]models.CartLine, 0, len(lines))
	for _, line := range lines {
		if line.Quantity >= 1 {
			out = append(out, line)
		}
	}
	return out
}

func productLabel(id, name string) string {
	if name != "" {
		return name
	}
	return id
}

func available(n int) *int {
	return &n
}
