package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	catalogDomain "github.com/voyago/service-booking/internal/domain/catalog"
)

// CreateItemRequest holds the data to list a new catalog item.
type CreateItemRequest struct {
	Kind           string `json:"kind" binding:"required"`
	Name           string `json:"name" binding:"required"`
	Description    string `json:"description"`
	Location       string `json:"location"`
	BasePriceCents int64  `json:"base_price_cents" binding:"required,min=1"`
	MinGuests      int    `json:"min_guests"`
	MaxGuests      int    `json:"max_guests"`
}

// ItemDTO is the response representation of a catalog item.
type ItemDTO struct {
	ID             uuid.UUID `json:"id"`
	Kind           string    `json:"kind"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Location       string    `json:"location,omitempty"`
	BasePriceCents int64     `json:"base_price_cents"`
	Currency       string    `json:"currency"`
	MinGuests      int       `json:"min_guests"`
	MaxGuests      int       `json:"max_guests"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CatalogService exposes the bookable-item read model and partner listing.
type CatalogService struct {
	repo   catalogDomain.ItemRepository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo catalogDomain.ItemRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListItems returns active items, optionally filtered by kind.
func (s *CatalogService) ListItems(ctx context.Context, kind string, page, limit int) (*domain.PaginatedResult[ItemDTO], error) {
	var (
		items []*catalogDomain.Item
		total int64
		err   error
	)
	if kind != "" {
		k := bookingDomain.ItemKind(kind)
		if !k.IsValid() {
			return nil, domain.NewFieldValidationError("kind", "unknown item kind")
		}
		items, total, err = s.repo.ListByKind(ctx, k, page, limit)
	} else {
		items, total, err = s.repo.ListActive(ctx, page, limit)
	}
	if err != nil {
		return nil, err
	}

	dtos := make([]ItemDTO, len(items))
	for i, item := range items {
		dtos[i] = toItemDTO(item)
	}
	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetItem returns a single catalog item by ID.
func (s *CatalogService) GetItem(ctx context.Context, id uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(item)
	return &dto, nil
}

// CreateItem lists a new item in the catalog (partner).
func (s *CatalogService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemDTO, error) {
	item, err := catalogDomain.NewItem(
		bookingDomain.ItemKind(req.Kind),
		req.Name,
		req.Description,
		req.Location,
		req.BasePriceCents,
		domain.CurrencyUSD,
		req.MinGuests,
		req.MaxGuests,
	)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}
	if err := s.repo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("catalog item created",
		zap.String("item_id", item.ID().String()),
		zap.String("kind", string(item.Kind())),
	)

	dto := toItemDTO(item)
	return &dto, nil
}

func toItemDTO(item *catalogDomain.Item) ItemDTO {
	return ItemDTO{
		ID:             item.ID(),
		Kind:           string(item.Kind()),
		Name:           item.Name(),
		Description:    item.Description(),
		Location:       item.Location(),
		BasePriceCents: item.BasePriceCents(),
		Currency:       item.Currency(),
		MinGuests:      item.MinGuests(),
		MaxGuests:      item.MaxGuests(),
		Status:         string(item.Status()),
		CreatedAt:      item.CreatedAt(),
	}
}
