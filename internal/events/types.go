package events

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/shopspring/decimal"
)

const (
	EventOrderPlaced    = "order_placed"
	EventOrderConfirmed = "order_confirmed"
)

// OrderPlacedEvent is emitted once an order is persisted. Money is in cents.
type OrderPlacedEvent struct {
	Timestamp        int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType        string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	OrderID          string `json:"orderId" parquet:"name=orderId,type=BYTE_ARRAY,convertedtype=UTF8"`
	StoreID          string `json:"storeId" parquet:"name=storeId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Fulfillment      string `json:"fulfillment" parquet:"name=fulfillment,type=BYTE_ARRAY,convertedtype=UTF8"`
	PaymentMethod    string `json:"paymentMethod" parquet:"name=paymentMethod,type=BYTE_ARRAY,convertedtype=UTF8"`
	ScheduledFor     string `json:"scheduledFor" parquet:"name=scheduledFor,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status           string `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	Items            string `json:"itemIds" parquet:"name=itemIds,type=BYTE_ARRAY,convertedtype=UTF8"`
	ItemCount        int32  `json:"itemCount" parquet:"name=itemCount,type=INT32"`
	SubtotalCents    int64  `json:"subtotalCents" parquet:"name=subtotalCents,type=INT64"`
	DeliveryFeeCents int64  `json:"deliveryFeeCents" parquet:"name=deliveryFeeCents,type=INT64"`
	TotalCents       int64  `json:"totalCents" parquet:"name=totalCents,type=INT64"`
	OrderPlacedAt    int64  `json:"orderPlacedAt" parquet:"name=orderPlacedAt,type=INT64"`
}

// OrderConfirmedEvent is emitted when a pending order is paid, or straight
// after placement for cash orders.
type OrderConfirmedEvent struct {
	Timestamp     int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType     string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	OrderID       string `json:"orderId" parquet:"name=orderId,type=BYTE_ARRAY,convertedtype=UTF8"`
	StoreID       string `json:"storeId" parquet:"name=storeId,type=BYTE_ARRAY,convertedtype=UTF8"`
	PaymentMethod string `json:"paymentMethod" parquet:"name=paymentMethod,type=BYTE_ARRAY,convertedtype=UTF8"`
	Status        string `json:"status" parquet:"name=status,type=BYTE_ARRAY,convertedtype=UTF8"`
	TotalCents    int64  `json:"totalCents" parquet:"name=totalCents,type=INT64"`
	ConfirmedAt   int64  `json:"confirmedAt" parquet:"name=confirmedAt,type=INT64"`
}

func NewOrderPlacedEvent(order *models.Order) OrderPlacedEvent {
	ids := make([]string, 0, len(order.Items))
	var count int32
	for _, item := range order.Items {
		ids = append(ids, item.ProductID)
		count += int32(item.Quantity)
	}
	return OrderPlacedEvent{
		Timestamp:        order.CreatedAt.Unix(),
		EventType:        EventOrderPlaced,
		OrderID:          order.ID,
		StoreID:          order.StoreID,
		Fulfillment:      string(order.Fulfillment),
		PaymentMethod:    order.PaymentMethod,
		ScheduledFor:     order.ScheduledFor,
		Status:           order.Status,
		Items:            strings.Join(ids, ","),
		ItemCount:        count,
		SubtotalCents:    Cents(order.Subtotal),
		DeliveryFeeCents: Cents(order.DeliveryFee),
		TotalCents:       Cents(order.Total),
		OrderPlacedAt:    order.CreatedAt.Unix(),
	}
}

func NewOrderConfirmedEvent(order *models.Order) OrderConfirmedEvent {
	confirmedAt := order.CreatedAt
	if order.ConfirmedAt != nil {
		confirmedAt = *order.ConfirmedAt
	}
	return OrderConfirmedEvent{
		Timestamp:     confirmedAt.Unix(),
		EventType:     EventOrderConfirmed,
		OrderID:       order.ID,
		StoreID:       order.StoreID,
		PaymentMethod: order.PaymentMethod,
		Status:        order.Status,
		TotalCents:    Cents(order.Total),
		ConfirmedAt:   confirmedAt.Unix(),
	}
}

// Cents rounds an amount half away from zero to whole cents.
func Cents(amount decimal.Decimal) int64 {
	return amount.Round(2).Shift(2).IntPart()
}

// Topics maps each configured topic to the event it carries.
type Topics struct {
	OrderPlaced    string
	OrderConfirmed string
}

// newEvent returns an empty event for topic, used to decode messages back into
// typed rows.
func (t Topics) newEvent(topic string) (interface{}, error) {
	switch topic {
	case t.OrderPlaced:
		return new(OrderPlacedEvent), nil
	case t.OrderConfirmed:
		return new(OrderConfirmedEvent), nil
	}
	return nil, fmt.Errorf("unknown topic: %s", topic)
}

func (t Topics) decode(topic string, msg []byte) (interface{}, error) {
	obj, err := t.newEvent(topic)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(msg, obj); err != nil {
		return nil, fmt.Errorf("decode %s message: %w", topic, err)
	}
	return reflect.ValueOf(obj).Elem().Interface(), nil
}
