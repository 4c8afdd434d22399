package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/voyago/service-booking/internal/domain"
)

const referenceChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain. It snapshots the
// booked item, the customer's details, and the quoted price at the moment of
// confirmation; the quote is never recomputed after creation.
type Booking struct {
	id        uuid.UUID
	reference string
	userID    uuid.UUID
	item      ItemRef
	itemName  string
	details   Details
	quote     Quote
	status    BookingStatus

	completedAt *time.Time
	cancelledAt *time.Time
	cancelNote  string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateReference creates a booking reference in the format "VG-XXXXXX".
func generateReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(referenceChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking reference: %w", err)
		}
		result[i] = referenceChars[n.Int64()]
	}
	return "VG-" + string(result), nil
}

// NewBooking creates a new Booking aggregate with status=confirmed. All
// required-field invariants are re-checked here even when the caller's form
// layer already enforced them.
func NewBooking(
	userID uuid.UUID,
	item ItemRef,
	itemName string,
	details Details,
	bounds GuestBounds,
	quote Quote,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if !item.Kind.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid item kind: %s", item.Kind))
	}
	if item.ID == uuid.Nil {
		return nil, domain.NewValidationError("item ID is required")
	}
	if itemName == "" {
		return nil, domain.NewValidationError("item name is required")
	}
	if err := details.Validate(bounds); err != nil {
		return nil, err
	}
	if quote.SubtotalCents <= 0 {
		return nil, domain.NewValidationError("quote subtotal must be positive")
	}
	if quote.TotalCents < 0 || quote.TotalCents != quote.SubtotalCents-quote.DiscountCents {
		return nil, domain.NewValidationError("quote totals are inconsistent")
	}

	reference, err := generateReference()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:        uuid.New(),
		reference: reference,
		userID:    userID,
		item:      item,
		itemName:  itemName,
		details:   details,
		quote:     quote,
		status:    StatusConfirmed,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	reference string,
	userID uuid.UUID,
	item ItemRef,
	itemName string,
	details Details,
	quote Quote,
	status BookingStatus,
	completedAt *time.Time,
	cancelledAt *time.Time,
	cancelNote string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:          id,
		reference:   reference,
		userID:      userID,
		item:        item,
		itemName:    itemName,
		details:     details,
		quote:       quote,
		status:      status,
		completedAt: completedAt,
		cancelledAt: cancelledAt,
		cancelNote:  cancelNote,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// Reference returns the human-readable booking reference.
func (b *Booking) Reference() string { return b.reference }

// UserID returns the booking customer's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// Item returns the reference to the booked item.
func (b *Booking) Item() ItemRef { return b.item }

// ItemName returns the display name of the booked item at booking time.
func (b *Booking) ItemName() string { return b.itemName }

// Details returns the customer-supplied booking details.
func (b *Booking) Details() Details { return b.details }

// Quote returns the price breakdown snapshotted at confirmation.
func (b *Booking) Quote() Quote { return b.quote }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// CompletedAt returns the completion time, or nil if not completed.
func (b *Booking) CompletedAt() *time.Time { return b.completedAt }

// CancelledAt returns the cancellation time, or nil if not cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// CancelNote returns the cancellation reason.
func (b *Booking) CancelNote() string { return b.cancelNote }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Complete transitions the booking from confirmed to completed after
// payment settlement.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	now := time.Now().UTC()
	b.status = StatusCompleted
	b.completedAt = &now
	b.updatedAt = now
	return nil
}

// Cancel transitions the booking to cancelled if it is not in a terminal state.
func (b *Booking) Cancel(reason string) error {
	if !b.status.CanBeCancelled() {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.cancelNote = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
