package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/chrisdamba/foodstore/internal/cloudwriter"
	"github.com/chrisdamba/foodstore/internal/events/producers"
	"github.com/chrisdamba/foodstore/internal/models"
	"github.com/chrisdamba/foodstore/internal/repositories/postgres"
	"go.uber.org/zap"
)

// KeyedOutput is implemented by destinations that can route by message key.
type KeyedOutput interface {
	WriteKeyedMessage(topic, key string, msg []byte) error
}

// Publisher serializes order events onto an OutputDestination.
type Publisher struct {
	out    OutputDestination
	topics Topics
	logger *zap.Logger
}

func NewPublisher(out OutputDestination, topics Topics, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{out: out, topics: topics, logger: logger}
}

func (p *Publisher) OrderPlaced(order *models.Order) error {
	return p.publish(p.topics.OrderPlaced, order.ID, NewOrderPlacedEvent(order))
}

func (p *Publisher) OrderConfirmed(order *models.Order) error {
	return p.publish(p.topics.OrderConfirmed, order.ID, NewOrderConfirmedEvent(order))
}

func (p *Publisher) publish(topic, key string, event interface{}) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event for %s: %w", topic, err)
	}
	if keyed, ok := p.out.(KeyedOutput); ok {
		err = keyed.WriteKeyedMessage(topic, key, msg)
	} else {
		err = p.out.WriteMessage(topic, msg)
	}
	if err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	p.logger.Debug("event published", zap.String("topic", topic), zap.String("order_id", key))
	return nil
}

func (p *Publisher) Close() error {
	return p.out.Close()
}

func TopicsFrom(cfg models.EventsConfig) Topics {
	return Topics{OrderPlaced: cfg.OrderTopic, OrderConfirmed: cfg.ConfirmedTopic}
}

// NewOutputDestination builds the destination selected in cfg.Events.
// console writes to stdout.
func NewOutputDestination(ctx context.Context, cfg *models.Config, stdout io.Writer, logger *zap.Logger) (OutputDestination, error) {
	ev := cfg.Events
	switch ev.Destination {
	case "", "console":
		return NewConsoleOutput(stdout), nil
	case "json":
		return NewJSONOutput(ev.OutputPath, ev.OutputFolder), nil
	case "csv":
		return NewCSVOutput(ev.OutputPath, ev.OutputFolder), nil
	case "parquet":
		out := NewParquetOutput(ev.OutputPath, ev.OutputFolder, TopicsFrom(ev), logger)
		if cfg.Export.OutputDestination == "cloud" {
			factory, err := cloudwriter.NewWriterFactory(ctx, cfg.Export.CloudStorage)
			if err != nil {
				return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
			}
			out.WithCloudStorage(factory, cfg.Export.CloudStorage.BucketName)
		}
		return out, nil
	case "kafka":
		producer, err := producers.NewSaramaProducer(cfg.Kafka, logger)
		if err != nil {
			return nil, err
		}
		return producer, nil
	case "postgres":
		pool, err := postgres.Connect(ctx, cfg.Database.DSN())
		if err != nil {
			return nil, err
		}
		return NewPostgresOutput(pool, pool.Close), nil
	case "rabbitmq":
		producer, err := producers.NewRabbitMQProducer(cfg.RabbitMQ, logger)
		if err != nil {
			return nil, err
		}
		return producer, nil
	default:
		return nil, fmt.Errorf("unsupported events destination: %s", ev.Destination)
	}
}
