package checkout

import (
	"fmt"
	"strings"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindAvailability ErrorKind = "availability"
)

const (
	CodeCartEmpty          = "cart_empty"
	CodeInvalidQuantity    = "invalid_quantity"
	CodeInvalidName        = "invalid_name"
	CodeInvalidPhone       = "invalid_phone"
	CodeInvalidEmail       = "invalid_email"
	CodeInvalidFulfillment = "invalid_fulfillment"
	CodeRequired           = "required"
	CodeInsufficientStock  = "insufficient_stock"
	CodeBelowMinimum       = "below_minimum_order"
	CodeAddonRequired      = "addon_required"
	CodeInvalidSchedule    = "invalid_schedule"
	CodeSchedulingDisabled = "scheduling_disabled"
	CodeSlotUnavailable    = "slot_unavailable"
	CodeInvalidPayment     = "invalid_payment_method"
	CodeUnknownProduct     = "unknown_product"
	CodeProductUnavailable = "product_unavailable"
	CodeInvalidAddon       = "invalid_addon"
)

// ValidationError is one field-tagged checkout failure. Availability failures
// carry the product and how many units are left.
type ValidationError struct {
	Kind      ErrorKind `json:"kind"`
	Field     string    `json:"field"`
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	ProductID string    `json:"product_id,omitempty"`
	Available *int      `json:"available,omitempty"` // always set for availability errors
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every independent failure found in a request.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "checkout validation failed: " + strings.Join(msgs, "; ")
}

// Err returns nil when there are no failures.
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// ByCode returns the failures with the given code.
func (v ValidationErrors) ByCode(code string) ValidationErrors {
	var out ValidationErrors
	for _, e := range v {
		if e.Code == code {
			out = append(out, e)
		}
	}
	return out
}

func (v ValidationErrors) HasKind(kind ErrorKind) bool {
	for _, e := range v {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

func invalid(field, code, format string, args ...any) ValidationError {
	return ValidationError{Kind: KindValidation, Field: field, Code: code, Message: fmt.Sprintf(format, args...)}
}
