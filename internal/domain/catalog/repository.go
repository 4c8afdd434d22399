package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/voyago/service-booking/internal/domain/booking"
)

// ItemRepository defines the persistence contract for catalog items.
type ItemRepository interface {
	// FindByID retrieves an item by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindByRef retrieves the item a booking refers to, checking the kind matches.
	FindByRef(ctx context.Context, ref booking.ItemRef) (*Item, error)

	// ListByKind retrieves active items of one kind with pagination.
	ListByKind(ctx context.Context, kind booking.ItemKind, page, limit int) ([]*Item, int64, error)

	// ListActive retrieves all active items with pagination.
	ListActive(ctx context.Context, page, limit int) ([]*Item, int64, error)

	// Save persists a new item.
	Save(ctx context.Context, item *Item) error
}
