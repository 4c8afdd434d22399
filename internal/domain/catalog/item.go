package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/voyago/service-booking/internal/domain/booking"
)

// ItemStatus represents the lifecycle state of a catalog item.
type ItemStatus string

const (
	ItemStatusActive   ItemStatus = "active"
	ItemStatusArchived ItemStatus = "archived"
)

// Item is a bookable catalog entry: a tour, accommodation, event or
// vehicle. It is the server-side source of truth for the base price and
// guest bounds the booking flow works with.
type Item struct {
	id             uuid.UUID
	kind           booking.ItemKind
	name           string
	description    string
	location       string
	basePriceCents int64
	currency       string
	minGuests      int
	maxGuests      int
	status         ItemStatus
	createdAt      time.Time
	updatedAt      time.Time
}

// NewItem creates a new active catalog item with validated fields.
func NewItem(
	kind booking.ItemKind,
	name, description, location string,
	basePriceCents int64,
	currency string,
	minGuests, maxGuests int,
) (*Item, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("invalid item kind: %s", kind)
	}
	if name == "" {
		return nil, fmt.Errorf("item name is required")
	}
	if basePriceCents <= 0 {
		return nil, fmt.Errorf("base price must be positive")
	}
	if minGuests < 1 {
		minGuests = booking.DefaultGuestBounds.Min
	}
	if maxGuests < minGuests {
		maxGuests = booking.DefaultGuestBounds.Max
	}

	now := time.Now().UTC()
	return &Item{
		id:             uuid.New(),
		kind:           kind,
		name:           name,
		description:    description,
		location:       location,
		basePriceCents: basePriceCents,
		currency:       currency,
		minGuests:      minGuests,
		maxGuests:      maxGuests,
		status:         ItemStatusActive,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds an Item from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	kind booking.ItemKind,
	name, description, location string,
	basePriceCents int64,
	currency string,
	minGuests, maxGuests int,
	status ItemStatus,
	createdAt, updatedAt time.Time,
) *Item {
	return &Item{
		id:             id,
		kind:           kind,
		name:           name,
		description:    description,
		location:       location,
		basePriceCents: basePriceCents,
		currency:       currency,
		minGuests:      minGuests,
		maxGuests:      maxGuests,
		status:         status,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// --- Getters ---

func (i *Item) ID() uuid.UUID            { return i.id }
func (i *Item) Kind() booking.ItemKind   { return i.kind }
func (i *Item) Name() string             { return i.name }
func (i *Item) Description() string      { return i.description }
func (i *Item) Location() string         { return i.location }
func (i *Item) BasePriceCents() int64    { return i.basePriceCents }
func (i *Item) Currency() string         { return i.currency }
func (i *Item) MinGuests() int           { return i.minGuests }
func (i *Item) MaxGuests() int           { return i.maxGuests }
func (i *Item) Status() ItemStatus       { return i.status }
func (i *Item) CreatedAt() time.Time     { return i.createdAt }
func (i *Item) UpdatedAt() time.Time     { return i.updatedAt }

// IsBookable returns true if the item currently accepts new bookings.
func (i *Item) IsBookable() bool { return i.status == ItemStatusActive }

// GuestBounds returns the allowed guest-count range for this item.
func (i *Item) GuestBounds() booking.GuestBounds {
	return booking.GuestBounds{Min: i.minGuests, Max: i.maxGuests}
}

// Ref returns the booking-domain reference for this item.
func (i *Item) Ref() booking.ItemRef {
	return booking.ItemRef{Kind: i.kind, ID: i.id}
}

// Archive removes the item from the bookable catalog.
func (i *Item) Archive() {
	i.status = ItemStatusArchived
	i.updatedAt = time.Now().UTC()
}
