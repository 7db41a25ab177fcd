package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/lofarb/fund-monitor/internal/models"
)

// Producer publishes notification audit events to Kafka.
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishFundNotified publishes an audit event for a ledgered fund,
// keyed by fund id so per-fund event ordering is preserved.
func (p *Producer) PublishFundNotified(ctx context.Context, rec *models.FundRecord, phase string, delivered bool) error {
	event := models.NotificationEvent{
		EventType:   models.EventFundNotified,
		FundID:      rec.FundID,
		FundName:    rec.FundName,
		PremiumRate: rec.PremiumRate,
		Phase:       phase,
		Delivered:   delivered,
		Timestamp:   time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(rec.FundID),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
