// internal/services/order_events.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ermimobile/emobile-backend/internal/models"
)

const (
	OrderEventCreated         = "order.created"
	OrderEventStatusChanged   = "order.status_changed"
	OrderEventReceiptAttached = "order.receipt_attached"
	OrderEventDeleted         = "order.deleted"

	publishTimeout = 5 * time.Second
)

type OrderEvent struct {
	Type           string               `json:"type"`
	OrderID        uuid.UUID            `json:"order_id"`
	UserID         *uuid.UUID           `json:"user_id,omitempty"`
	Status         models.OrderStatus   `json:"status,omitempty"`
	PreviousStatus models.OrderStatus   `json:"previous_status,omitempty"`
	PaymentMethod  models.PaymentMethod `json:"payment_method,omitempty"`
	Total          decimal.Decimal      `json:"total"`
	OccurredAt     time.Time            `json:"occurred_at"`
}

func newOrderEvent(eventType string, order *models.Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Total:         order.Total,
		OccurredAt:    time.Now().UTC(),
	}
}

// OrderPublisher announces committed order changes. Failures are logged, never returned.
type OrderPublisher interface {
	Publish(ctx context.Context, event OrderEvent)
	Close() error
}

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Events go out one at a time from request handlers
const kafkaBatchTimeout = 10 * time.Millisecond

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           kafkaBatchTimeout,
		AllowAutoTopicCreation: true,
	}
}

type KafkaOrderPublisher struct {
	writer MessageWriter
}

func NewKafkaOrderPublisher(writer MessageWriter) *KafkaOrderPublisher {
	return &KafkaOrderPublisher{writer: writer}
}

func (p *KafkaOrderPublisher) Publish(ctx context.Context, event OrderEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).WithField("order_id", event.OrderID).Error("Failed to encode order event")
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// Keyed by order so one order's events share a partition
	msg := kafka.Message{
		Key:   []byte(fmt.Sprintf("order-%s", event.OrderID)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"order_id": event.OrderID,
			"event":    event.Type,
		}).Error("Failed to publish order event")
	}
}

func (p *KafkaOrderPublisher) Close() error {
	return p.writer.Close()
}

// LogOrderPublisher writes events to the log when no broker is configured.
type LogOrderPublisher struct{}

func (LogOrderPublisher) Publish(ctx context.Context, event OrderEvent) {
	logrus.WithFields(logrus.Fields{
		"order_id": event.OrderID,
		"event":    event.Type,
		"status":   event.Status,
		"total":    event.Total.String(),
	}).Info("Order event")
}

func (LogOrderPublisher) Close() error {
	return nil
}
