package events

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// BookingCompleter finalizes a booking after payment settlement. Implemented
// by the application layer; declared here so the consumer does not depend on it.
type BookingCompleter interface {
	CompleteBooking(ctx context.Context, bookingID uuid.UUID) error
}

// PaymentEventConsumer listens to payment events and completes bookings.
type PaymentEventConsumer struct {
	consumer  *Consumer
	completer BookingCompleter
	logger    *zap.Logger
}

// NewPaymentEventConsumer creates a new PaymentEventConsumer.
func NewPaymentEventConsumer(
	brokers []string,
	groupID string,
	completer BookingCompleter,
	logger *zap.Logger,
) *PaymentEventConsumer {
	consumer := NewConsumer(brokers, groupID, TopicPaymentEvents, logger)
	return &PaymentEventConsumer{
		consumer:  consumer,
		completer: completer,
		logger:    logger,
	}
}

// Start begins consuming payment events. This blocks until the context is cancelled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	var cloudEvent CloudEvent
	if err := json.Unmarshal(msg.Value, &cloudEvent); err != nil {
		c.logger.Error("failed to parse cloud event from payment topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case PaymentSucceeded:
		return c.handlePaymentSucceeded(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled payment event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *PaymentEventConsumer) handlePaymentSucceeded(ctx context.Context, cloudEvent CloudEvent) error {
	var evt PaymentSucceededEvent
	if err := cloudEvent.ParseData(&evt); err != nil {
		c.logger.Error("failed to parse PaymentSucceededEvent data",
			zap.Error(err),
		)
		return nil // Don't retry malformed data
	}

	c.logger.Info("processing payment succeeded event",
		zap.String("booking_id", evt.BookingID.String()),
		zap.String("payment_id", evt.PaymentID.String()),
	)

	if err := c.completer.CompleteBooking(ctx, evt.BookingID); err != nil {
		c.logger.Error("failed to complete booking after payment",
			zap.String("booking_id", evt.BookingID.String()),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("booking completed after payment settlement",
		zap.String("booking_id", evt.BookingID.String()),
	)
	return nil
}
