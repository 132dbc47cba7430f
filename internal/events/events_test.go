package events

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/foodstore/internal/events/producers"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

var topics = Topics{OrderPlaced: "order_placed_events", OrderConfirmed: "order_confirmed_events"}

func sampleOrder() *models.Order {
	created := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	confirmed := created.Add(5 * time.Minute)
	return &models.Order{
		ID:            "o1",
		StoreID:       "s1",
		Fulfillment:   models.FulfillmentDelivery,
		PaymentMethod: models.PaymentMethodCard,
		Status:        models.OrderStatusConfirmed,
		Items: []models.OrderItem{
			{ProductID: "box", Quantity: 5},
			{ProductID: "coffee", Quantity: 2},
		},
		Subtotal:    decimal.RequireFromString("45.005"),
		DeliveryFee: decimal.RequireFromString("7.90"),
		Total:       decimal.RequireFromString("52.905"),
		CreatedAt:   created,
		ConfirmedAt: &confirmed,
	}
}

func TestNewOrderPlacedEvent(t *testing.T) {
	ev := NewOrderPlacedEvent(sampleOrder())
	assert.Equal(t, EventOrderPlaced, ev.EventType)
	assert.Equal(t, "box,coffee", ev.Items)
	assert.Equal(t, int32(7), ev.ItemCount)
	assert.Equal(t, int64(4501), ev.SubtotalCents)
	assert.Equal(t, int64(790), ev.DeliveryFeeCents)
	assert.Equal(t, int64(5291), ev.TotalCents)

	confirmed := NewOrderConfirmedEvent(sampleOrder())
	assert.Equal(t, sampleOrder().ConfirmedAt.Unix(), confirmed.ConfirmedAt)
}

func TestPublisher_Console(t *testing.T) {
	var buf bytes.Buffer
	p := NewPublisher(NewConsoleOutput(&buf), topics, nil)

	require.NoError(t, p.OrderPlaced(sampleOrder()))
	require.NoError(t, p.OrderConfirmed(sampleOrder()))
	require.NoError(t, p.Close())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "[order_placed_events] {"))
	assert.True(t, strings.HasPrefix(lines[1], "[order_confirmed_events] {"))
}

func TestPublisher_KafkaUsesOrderKey(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		assert.Equal(t, "o1", string(key))
		assert.Equal(t, "order_placed_events", msg.Topic)
		return nil
	})

	p := NewPublisher(producers.NewSaramaProducerFrom(mock, nil), topics, nil)
	require.NoError(t, p.OrderPlaced(sampleOrder()))
	require.NoError(t, p.Close())
}

func TestJSONOutput_Partitions(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir, "events")
	p := NewPublisher(out, topics, nil)

	require.NoError(t, p.OrderPlaced(sampleOrder()))
	require.NoError(t, p.OrderPlaced(sampleOrder()))
	require.NoError(t, p.Close())

	data, err := os.ReadFile(filepath.Join(dir, "events", "order_placed_events", "year=2026/month=10/day=19/hour=12", "data.json"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)

	var ev OrderPlacedEvent
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &ev))
	assert.Equal(t, "o1", ev.OrderID)
}

func TestCSVOutput(t *testing.T) {
	dir := t.TempDir()
	p := NewPublisher(NewCSVOutput(dir, "events"), topics, nil)
	require.NoError(t, p.OrderConfirmed(sampleOrder()))
	require.NoError(t, p.Close())

	data, err := os.ReadFile(filepath.Join(dir, "events", "order_confirmed_events", "year=2026/month=10/day=19/hour=12", "data.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "confirmedAt,eventType,orderId,paymentMethod,status,storeId,timestamp,totalCents", lines[0])
	assert.Contains(t, lines[1], ",5291")
}

func TestParquetOutput_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	out := NewParquetOutput(dir, "events", topics, nil)
	p := NewPublisher(out, topics, nil)

	require.NoError(t, p.OrderPlaced(sampleOrder()))
	require.NoError(t, p.Close())

	path := filepath.Join(dir, "events", "order_placed_events", "year=2026/month=10/day=19/hour=12", "data.parquet")
	fr, err := local.NewLocalFileReader(path)
	require.NoError(t, err)
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(OrderPlacedEvent), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.Equal(t, int64(1), pr.GetNumRows())
	rows := make([]OrderPlacedEvent, 1)
	require.NoError(t, pr.Read(&rows))
	assert.Equal(t, "o1", rows[0].OrderID)
	assert.Equal(t, int64(5291), rows[0].TotalCents)
}

func TestParquetOutput_UnknownTopic(t *testing.T) {
	out := NewParquetOutput(t.TempDir(), "events", topics, nil)
	assert.Error(t, out.WriteMessage("unknown", []byte(`{"timestamp": 1}`)))
}
