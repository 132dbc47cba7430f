package producers

import (
	"context"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/foodstore/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaramaConfig_Valid(t *testing.T) {
	cfg := NewSaramaConfig(models.KafkaConfig{SessionTimeoutMs: 6000})
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.Producer.Return.Successes)
}

func TestSaramaProducer_WriteKeyedMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"orderId":"o1"}` {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewSaramaProducerFrom(mock, nil)
	require.NoError(t, p.WriteKeyedMessage("order_placed_events", "o1", []byte(`{"orderId":"o1"}`)))
	assert.ErrorIs(t, p.WriteMessage("order_placed_events", []byte(`{}`)), sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	err       error
	closed    bool
}

func (f *fakeChannel) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	f.declared = append(f.declared, name+":"+kind)
	return nil
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	if f.err != nil {
		return f.err
	}
	f.keys = append(f.keys, exchange+"/"+key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQProducer(t *testing.T) {
	ch := &fakeChannel{}
	p, err := NewRabbitMQProducerFrom(ch, "orders_topic", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"orders_topic:topic"}, ch.declared)

	require.NoError(t, p.WriteKeyedMessage("order_confirmed_events", "o1", []byte(`{"orderId":"o1"}`)))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "orders_topic/order_confirmed_events", ch.keys[0])
	assert.Equal(t, "o1", ch.published[0].MessageId)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)

	ch.err = errors.New("channel closed")
	assert.Error(t, p.WriteMessage("order_placed_events", []byte(`{}`)))

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}
