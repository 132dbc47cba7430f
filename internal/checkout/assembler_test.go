package checkout

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/scheduling"
	"github.com/chrisdamba/foodstore/internal/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Monday 2026-10-19 09:00 UTC.
var fixedNow = time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)

func testStore() models.Store {
	day := models.DaySchedule{Open: "10:00", Close: "20:00"}
	return models.Store{
		ID: "store-1",
		WeeklySchedule: models.WeeklySchedule{
			"monday": day, "tuesday": day, "wednesday": day, "thursday": day,
			"friday": day, "saturday": day, "sunday": {Closed: true},
		},
		DeliverySchedule:  []models.DeliveryWindow{{Name: "all day", Start: "10:00", End: "20:00", Enabled: true}},
		SameDayCutoffTime: "18:00",
		AllowScheduling:   true,
		MinimumOrder:      dec("20.00"),
		DeliveryFee:       dec("5.00"),
	}
}

func productA() models.Product {
	daily := 3
	return models.Product{
		ID: "A", Name: "Pudding", Price: dec("12.00"),
		DailyStock: &daily, CurrentStock: 1,
		AllowSameDayScheduling: true, IsAvailable: true,
	}
}

func burger() models.Product {
	return models.Product{ID: "burger", Name: "Burger", Price: dec("15.00"), AllowSameDayScheduling: true, IsAvailable: true}
}

func validRequest() Request {
	return Request{
		StoreID:       "store-1",
		Lines:         []models.CartLine{{Product: burger(), Quantity: 2}},
		Customer:      models.Customer{Name: "Ana Souza", Phone: "(11) 98765-4321", Email: "ana@example.com"},
		Fulfillment:   models.FulfillmentDelivery,
		Address:       &models.Address{Street: "Rua A", Number: "10", Neighborhood: "Centro", City: "São Paulo"},
		PaymentMethod: models.PaymentMethodCash,
	}
}

func newAssembler(products ...models.Product) *Assembler {
	stk := stock.NewManager(products)
	sched := scheduling.NewManager(stk, scheduling.Options{
		Now:      func() time.Time { return fixedNow },
		Location: time.UTC,
	})
	a := NewAssembler(stk, sched)
	a.newID = func() string { return "order-1" }
	return a
}

func TestValidate_Valid(t *testing.T) {
	a := newAssembler(burger())
	assert.Empty(t, a.Validate(validRequest(), testStore()))
}

func TestValidate_CollectsIndependentFailuresInOrder(t *testing.T) {
	req := validRequest()
	req.Lines = nil
	req.Customer = models.Customer{Name: "A", Phone: "123"}
	req.Address = &models.Address{Street: "Rua A"}
	req.PaymentMethod = "cheque"

	errs := newAssembler().Validate(req, testStore())

	var codes []string
	for _, e := range errs {
		codes = append(codes, e.Code)
	}
	assert.Equal(t, []string{
		CodeCartEmpty,
		CodeInvalidName,
		CodeInvalidPhone,
		CodeRequired, CodeRequired, CodeRequired,
		CodeInvalidPayment,
	}, codes)
	assert.Equal(t, "address.number", errs[3].Field)
}

func TestValidate_AvailabilityNamesProduct(t *testing.T) {
	req := validRequest()
	req.Lines = []models.CartLine{{Product: productA(), Quantity: 2}}

	errs := newAssembler(productA()).Validate(req, testStore())
	stockErrs := errs.ByCode(CodeInsufficientStock)
	require.Len(t, stockErrs, 1)
	assert.Equal(t, KindAvailability, stockErrs[0].Kind)
	assert.Equal(t, "A", stockErrs[0].ProductID)
	require.NotNil(t, stockErrs[0].Available)
	assert.Equal(t, 1, *stockErrs[0].Available)
	assert.True(t, errs.HasKind(KindAvailability))
}

func TestValidate_SoldOutKeepsZeroAvailableOnTheWire(t *testing.T) {
	soldOut := productA()
	soldOut.CurrentStock = 0
	req := validRequest()
	req.Lines = []models.CartLine{{Product: soldOut, Quantity: 2}}

	stockErrs := newAssembler(soldOut).Validate(req, testStore()).ByCode(CodeInsufficientStock)
	require.Len(t, stockErrs, 1)

	raw, err := json.Marshal(stockErrs)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"product_id":"A"`)
	assert.Contains(t, string(raw), `"available":0`)

	raw, err = json.Marshal(newAssembler(burger()).Validate(Request{}, testStore()).ByCode(CodeCartEmpty))
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "available")
}

func TestValidate_MinimumOrder(t *testing.T) {
	req := validRequest()
	req.Lines = []models.CartLine{{Product: burger(), Quantity: 1}}

	errs := newAssembler(burger()).Validate(req, testStore())
	require.Len(t, errs, 1)
	assert.Equal(t, CodeBelowMinimum, errs[0].Code)
}

func TestValidate_PickupNeedsNoAddress(t *testing.T) {
	req := validRequest()
	req.Fulfillment = models.FulfillmentPickup
	req.Address = nil
	assert.Empty(t, newAssembler(burger()).Validate(req, testStore()))

	req.Fulfillment = "drone"
	errs := newAssembler(burger()).Validate(req, testStore())
	require.Len(t, errs, 1)
	assert.Equal(t, CodeInvalidFulfillment, errs[0].Code)
}

func TestValidate_InvalidQuantity(t *testing.T) {
	req := validRequest()
	req.Lines = append(req.Lines, models.CartLine{Product: burger(), Quantity: 0})
	errs := newAssembler(burger()).Validate(req, testStore())
	require.Len(t, errs, 1)
	assert.Equal(t, "items[1].quantity", errs[0].Field)
}

func TestValidate_RequiredAddons(t *testing.T) {
	bread := models.AddonCategory{
		ID: "bread", Name: "Bread", IsRequired: true,
		Items: []models.AddonItem{{ID: "brioche", CategoryID: "bread", Name: "Brioche", IsAvailable: true}},
	}
	req := validRequest()
	req.Lines[0].Addons = models.NewAddonSelection([]models.AddonCategory{bread})

	errs := newAssembler(burger()).Validate(req, testStore())
	require.Len(t, errs, 1)
	assert.Equal(t, CodeAddonRequired, errs[0].Code)
	assert.Equal(t, "burger", errs[0].ProductID)

	require.NoError(t, req.Lines[0].Addons.Add("bread", "brioche", 1))
	assert.Empty(t, newAssembler(burger()).Validate(req, testStore()))
}

func TestValidate_ScheduledFor(t *testing.T) {
	a := newAssembler(burger())
	store := testStore()

	tests := []struct {
		name      string
		slot      string
		configure func(*models.Store)
		wantCode  string
	}{
		{name: "offered", slot: "2026-10-20T12:00"},
		{name: "malformed", slot: "tomorrow noon", wantCode: CodeInvalidSchedule},
		{name: "closed sunday", slot: "2026-10-25T12:00", wantCode: CodeSlotUnavailable},
		{name: "outside hours", slot: "2026-10-20T21:00", wantCode: CodeSlotUnavailable},
		{name: "in the past", slot: "2026-10-18T12:00", wantCode: CodeSlotUnavailable},
		{name: "last day of horizon", slot: "2026-10-26T12:00"},
		{name: "past horizon", slot: "2026-10-27T12:00", wantCode: CodeSlotUnavailable},
		{name: "a year out", slot: "2027-10-19T12:00", wantCode: CodeSlotUnavailable},
		{name: "disabled", slot: "2026-10-20T12:00", configure: func(s *models.Store) { s.AllowScheduling = false }, wantCode: CodeSchedulingDisabled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := store
			if tt.configure != nil {
				tt.configure(&s)
			}
			req := validRequest()
			req.ScheduledFor = tt.slot
			errs := a.Validate(req, s)
			if tt.wantCode == "" {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantCode, errs[0].Code)
		})
	}
}

func TestBuildOrder_Delivery(t *testing.T) {
	sauces := models.AddonCategory{
		ID: "sauces", Name: "Sauces", IsMultiple: true, MaxSelect: 3,
		Items: []models.AddonItem{{ID: "bbq", CategoryID: "sauces", Name: "BBQ", Price: dec("2.00"), IsAvailable: true}},
	}
	req := validRequest()
	req.Lines[0].Addons = models.NewAddonSelection([]models.AddonCategory{sauces})
	require.NoError(t, req.Lines[0].Addons.Add("sauces", "bbq", 2))
	req.ScheduledFor = "2026-10-20T12:00"

	order, err := newAssembler(burger()).BuildOrder(req, testStore())
	require.NoError(t, err)

	assert.Equal(t, "order-1", order.ID)
	assert.Equal(t, "11987654321", order.Customer.Phone)
	assert.Equal(t, "34.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "5.00", order.DeliveryFee.StringFixed(2))
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.DeliveryFee)))
	assert.Equal(t, "2026-10-20T12:00", order.ScheduledFor)
	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	require.NotNil(t, order.ConfirmedAt)
	require.NotNil(t, order.Address)

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "30.00", item.BaseCost.StringFixed(2))
	assert.Equal(t, "4.00", item.AddonsTotal.StringFixed(2))
	require.Len(t, item.Addons, 1)
	assert.Equal(t, 2, item.Addons[0].Quantity)
}

func TestBuildOrder_PickupCardIsPending(t *testing.T) {
	req := validRequest()
	req.Fulfillment = models.FulfillmentPickup
	req.PaymentMethod = models.PaymentMethodPix

	order, err := newAssembler(burger()).BuildOrder(req, testStore())
	require.NoError(t, err)
	assert.True(t, order.DeliveryFee.IsZero())
	assert.True(t, order.Total.Equal(order.Subtotal))
	assert.Nil(t, order.Address)
	assert.False(t, order.IsScheduled())
	assert.Equal(t, models.OrderStatusPendingPayment, order.Status)
	assert.Nil(t, order.ConfirmedAt)
}

func TestBuildOrder_ReturnsValidationErrorsAndLeavesStock(t *testing.T) {
	a := newAssembler(productA())
	req := validRequest()
	req.Lines = []models.CartLine{{Product: productA(), Quantity: 2}}

	order, err := a.BuildOrder(req, testStore())
	assert.Nil(t, order)

	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs))
	assert.Equal(t, 1, a.stock.GetAvailableStock("A"))
}
