package producers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chrisdamba/foodstore/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// Channel is the part of an AMQP channel the producer uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// RabbitMQProducer publishes events to a topic exchange using the event
// topic as routing key.
type RabbitMQProducer struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
	logger   *zap.Logger
}

func NewRabbitMQProducer(cfg models.RabbitMQConfig, logger *zap.Logger) (*RabbitMQProducer, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	p, err := NewRabbitMQProducerFrom(ch, cfg.Exchange, logger)
	if err != nil {
		conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

// NewRabbitMQProducerFrom declares the exchange on an open channel.
func NewRabbitMQProducerFrom(ch Channel, exchange string, logger *zap.Logger) (*RabbitMQProducer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &RabbitMQProducer{ch: ch, exchange: exchange, logger: logger}, nil
}

func (r *RabbitMQProducer) WriteMessage(topic string, msg []byte) error {
	return r.WriteKeyedMessage(topic, "", msg)
}

func (r *RabbitMQProducer) WriteKeyedMessage(topic, key string, msg []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.ch.PublishWithContext(ctx, r.exchange, topic, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    key,
		Timestamp:    time.Now(),
		Body:         msg,
	})
	if err != nil {
		r.logger.Error("failed to publish message", zap.String("exchange", r.exchange), zap.String("topic", topic), zap.Error(err))
		return fmt.Errorf("failed to publish message: %w", err)
	}
	return nil
}

func (r *RabbitMQProducer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	err := r.ch.Close()
	if r.conn != nil && !r.conn.IsClosed() {
		if cerr := r.conn.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}
