package kafka

import (
	"encoding/json"
	"fmt"

	"import-broker/internal/config"
	"import-broker/internal/logger"
	"import-broker/internal/models"

	"github.com/IBM/sarama"
)

// Producer publishes domain events to Kafka.
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer creates a synchronous Kafka producer.
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.RequiredAcks = sarama.WaitForAll
	saramaCfg.Producer.Retry.Max = 3
	saramaCfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("Successfully connected to Kafka producer")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close shuts the producer down.
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishRatesUpdated announces a freshly fetched rate table.
func (p *Producer) PublishRatesUpdated(table *models.RateTable) error {
	event, err := models.NewEvent(models.EventTypeRatesUpdated, table)
	if err != nil {
		return fmt.Errorf("failed to build rates event: %w", err)
	}
	return p.publishEvent(p.topics.Rates, *event)
}

// PublishQuoteCreated announces a saved quote.
func (p *Producer) PublishQuoteCreated(quote *models.Quote) error {
	event, err := models.NewEvent(models.EventTypeQuoteCreated, quote)
	if err != nil {
		return fmt.Errorf("failed to build quote event: %w", err)
	}
	return p.publishEvent(p.topics.Quotes, *event)
}

// PublishInquiryCreated announces a new customer inquiry.
func (p *Producer) PublishInquiryCreated(inquiry *models.Inquiry) error {
	event, err := models.NewEvent(models.EventTypeInquiryCreated, inquiry)
	if err != nil {
		return fmt.Errorf("failed to build inquiry event: %w", err)
	}
	return p.publishEvent(p.topics.Inquiries, *event)
}

// publishEvent marshals and sends an event to a topic.
func (p *Producer) publishEvent(topic string, event models.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(data),
	}

	partition, offset, err := p.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":     topic,
		"type":      event.Type,
		"partition": partition,
		"offset":    offset,
	}).Debug("Event published")

	return nil
}
