package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/logida/backend/internal/domain/inventory"
)

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// ListByProductAndStatus lists the inventory records of a product in a given
// stock status across all warehouses of the tenant
func (r *GormInventoryRepository) ListByProductAndStatus(ctx context.Context, tenantID, productID uuid.UUID, status inventory.StockStatus) ([]inventory.InventoryRecord, error) {
	var records []inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND product_id = ? AND status = ?", tenantID, productID, status).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates an inventory record
func (r *GormInventoryRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// Update persists changes to an existing inventory record
func (r *GormInventoryRepository) Update(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

var _ inventory.Repository = (*GormInventoryRepository)(nil)
