package booking

import "github.com/google/uuid"

// ItemKind is the category of bookable item. It determines both the pricing
// rule (per-night vs per-booking) and which foreign key the persisted
// booking row carries.
type ItemKind string

const (
	KindTour          ItemKind = "tour"
	KindAccommodation ItemKind = "accommodation"
	KindEvent         ItemKind = "event"
	KindVehicle       ItemKind = "vehicle"
)

// IsValid returns true if the item kind is recognized.
func (k ItemKind) IsValid() bool {
	switch k {
	case KindTour, KindAccommodation, KindEvent, KindVehicle:
		return true
	}
	return false
}

// PricedPerNight returns true if items of this kind are priced per night of
// the stay. Everything except accommodation is priced per booking instance,
// regardless of the date span.
func (k ItemKind) PricedPerNight() bool {
	return k == KindAccommodation
}

// String returns the string representation of the kind.
func (k ItemKind) String() string {
	return string(k)
}

// ItemRef identifies the bookable item a booking is for.
type ItemRef struct {
	Kind ItemKind  `json:"kind"`
	ID   uuid.UUID `json:"id"`
}
