package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/voyago/service-booking/internal/events"
)

// Dispatcher sends the booking-confirmation notification. Dispatch is
// best-effort: the booking is already persisted when it runs, so failures
// are logged by the caller and never affect the booking outcome.
type Dispatcher interface {
	SendBookingNotification(ctx context.Context, evt events.BookingConfirmedEvent) error
}

// KafkaDispatcher publishes confirmation notifications on the booking topic,
// where the notification service picks them up.
type KafkaDispatcher struct {
	producer *events.Producer
	source   string
	logger   *zap.Logger
}

// NewKafkaDispatcher creates a KafkaDispatcher.
func NewKafkaDispatcher(producer *events.Producer, source string, logger *zap.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{
		producer: producer,
		source:   source,
		logger:   logger,
	}
}

// SendBookingNotification publishes a BookingConfirmedEvent keyed by booking ID.
func (d *KafkaDispatcher) SendBookingNotification(ctx context.Context, evt events.BookingConfirmedEvent) error {
	ce, err := events.NewCloudEvent(d.source, events.BookingConfirmed, evt)
	if err != nil {
		return err
	}
	return d.producer.Publish(ctx, events.TopicBookingEvents, evt.BookingID.String(), ce)
}
