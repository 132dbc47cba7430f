package producers

import (
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/foodstore/internal/models"
	"go.uber.org/zap"
)

type SaramaProducer struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
}

// NewSaramaConfig returns the producer settings used for order events.
func NewSaramaConfig(cfg models.KafkaConfig) *sarama.Config {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Producer.Idempotent = true
	saramaConfig.Net.MaxOpenRequests = 1
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second
	saramaConfig.Version = sarama.V2_8_0_0

	if cfg.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	}
	return saramaConfig
}

func NewSaramaProducer(cfg models.KafkaConfig, logger *zap.Logger) (*SaramaProducer, error) {
	brokerList := strings.Split(cfg.BrokerList, ",")
	producer, err := sarama.NewSyncProducer(brokerList, NewSaramaConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("sarama producer created", zap.Strings("brokers", brokerList))
	return &SaramaProducer{producer: producer, logger: logger}, nil
}

// NewSaramaProducerFrom wraps an existing producer, such as a mock.
func NewSaramaProducerFrom(producer sarama.SyncProducer, logger *zap.Logger) *SaramaProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaramaProducer{producer: producer, logger: logger}
}

func (s *SaramaProducer) WriteMessage(topic string, msg []byte) error {
	return s.WriteKeyedMessage(topic, "", msg)
}

// WriteKeyedMessage sends msg with key so events of one order share a partition.
func (s *SaramaProducer) WriteKeyedMessage(topic, key string, msg []byte) error {
	if s.producer == nil {
		return fmt.Errorf("sarama producer is not initialized")
	}

	pm := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	}
	if key != "" {
		pm.Key = sarama.StringEncoder(key)
	}
	partition, offset, err := s.producer.SendMessage(pm)
	if err != nil {
		s.logger.Error("failed to send message", zap.String("topic", topic), zap.Error(err))
		return err
	}
	s.logger.Debug("message sent",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (s *SaramaProducer) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
