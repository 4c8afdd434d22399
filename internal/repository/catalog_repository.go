package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voyago/service-booking/internal/domain"
	bookingDomain "github.com/voyago/service-booking/internal/domain/booking"
	catalogDomain "github.com/voyago/service-booking/internal/domain/catalog"
)

// ItemModel is the GORM model for the catalog_items table.
type ItemModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Kind           string    `gorm:"not null;size:20;index"`
	Name           string    `gorm:"not null;size:200"`
	Description    string    `gorm:"size:2000"`
	Location       string    `gorm:"size:200"`
	BasePriceCents int64     `gorm:"not null"`
	Currency       string    `gorm:"not null;size:3;default:'USD'"`
	MinGuests      int       `gorm:"not null;default:1"`
	MaxGuests      int       `gorm:"not null;default:10"`
	Status         string    `gorm:"not null;size:20;index"`
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ItemModel) TableName() string {
	return "catalog_items"
}

// GormItemRepository is the GORM-based implementation of ItemRepository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID retrieves an item by its unique identifier.
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalogDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Item", id.String())
		}
		return nil, domain.NewUnavailableError("failed to find catalog item", err)
	}
	return toDomainItem(&model), nil
}

// FindByRef retrieves the item a booking refers to. The stored kind must
// match the requested kind; a kind mismatch is reported as not found so
// callers cannot book an item under the wrong pricing rule.
func (r *GormItemRepository) FindByRef(ctx context.Context, ref bookingDomain.ItemRef) (*catalogDomain.Item, error) {
	var model ItemModel
	if err := r.db.WithContext(ctx).Where("id = ? AND kind = ?", ref.ID, string(ref.Kind)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError(string(ref.Kind), ref.ID.String())
		}
		return nil, domain.NewUnavailableError("failed to find catalog item", err)
	}
	return toDomainItem(&model), nil
}

// ListByKind retrieves active items of one kind with pagination.
func (r *GormItemRepository) ListByKind(ctx context.Context, kind bookingDomain.ItemKind, page, limit int) ([]*catalogDomain.Item, int64, error) {
	return r.list(ctx, r.db.Where("kind = ? AND status = ?", string(kind), string(catalogDomain.ItemStatusActive)), page, limit)
}

// ListActive retrieves all active items with pagination.
func (r *GormItemRepository) ListActive(ctx context.Context, page, limit int) ([]*catalogDomain.Item, int64, error) {
	return r.list(ctx, r.db.Where("status = ?", string(catalogDomain.ItemStatusActive)), page, limit)
}

func (r *GormItemRepository) list(ctx context.Context, query *gorm.DB, page, limit int) ([]*catalogDomain.Item, int64, error) {
	var total int64
	if err := query.WithContext(ctx).Model(&ItemModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count catalog items: %w", err)
	}

	var models []ItemModel
	offset := (page - 1) * limit
	if err := query.WithContext(ctx).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list catalog items: %w", err)
	}

	items := make([]*catalogDomain.Item, len(models))
	for i, m := range models {
		items[i] = toDomainItem(&m)
	}
	return items, total, nil
}

// Save persists a new item.
func (r *GormItemRepository) Save(ctx context.Context, item *catalogDomain.Item) error {
	model := &ItemModel{
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
		UpdatedAt:      item.UpdatedAt(),
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return domain.NewUnavailableError("failed to save catalog item", err)
	}
	return nil
}

func toDomainItem(m *ItemModel) *catalogDomain.Item {
	return catalogDomain.Reconstruct(
		m.ID,
		bookingDomain.ItemKind(m.Kind),
		m.Name,
		m.Description,
		m.Location,
		m.BasePriceCents,
		m.Currency,
		m.MinGuests,
		m.MaxGuests,
		catalogDomain.ItemStatus(m.Status),
		m.CreatedAt,
		m.UpdatedAt,
	)
}
