package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics shared with the other marketplace services.
const (
	TopicBookingEvents = "booking.events"
	TopicPaymentEvents = "payment.events"
)

// Event types published on booking.events.
const (
	BookingConfirmed = "booking.confirmed"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"
)

// Event types consumed from payment.events.
const (
	PaymentSucceeded = "payment.succeeded"
)

// BookingConfirmedEvent is published when a booking is created.
type BookingConfirmedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	UserID     uuid.UUID `json:"user_id"`
	ItemKind   string    `json:"item_kind"`
	ItemName   string    `json:"item_name"`
	Email      string    `json:"email"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published when a booking is cancelled.
type BookingCancelledEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	CancelledBy uuid.UUID `json:"cancelled_by"`
	Reason      string    `json:"reason"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published after payment settles a booking.
type BookingCompletedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	Reference  string    `json:"reference"`
	UserID     uuid.UUID `json:"user_id"`
	TotalCents int64     `json:"total_cents"`
	Currency   string    `json:"currency"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentSucceededEvent is consumed from the payment service.
type PaymentSucceededEvent struct {
	PaymentID   uuid.UUID `json:"payment_id"`
	BookingID   uuid.UUID `json:"booking_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}
