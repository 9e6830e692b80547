package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/logida/backend/internal/domain/shared"
	"github.com/logida/backend/internal/domain/trade"
)

// GormSalesReturnRepository implements SalesReturnRepository using GORM
type GormSalesReturnRepository struct {
	db *gorm.DB
}

// NewGormSalesReturnRepository creates a new GormSalesReturnRepository
func NewGormSalesReturnRepository(db *gorm.DB) *GormSalesReturnRepository {
	return &GormSalesReturnRepository{db: db}
}

// FindByOrderAndExternalID finds a return by its external identity within
// an order. This is the idempotency lookup for refund ingestion.
func (r *GormSalesReturnRepository) FindByOrderAndExternalID(ctx context.Context, orderID uuid.UUID, externalID string) (*trade.SalesReturn, error) {
	var ret trade.SalesReturn
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("order_id = ? AND external_id = ?", orderID, externalID).
		First(&ret).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &ret, nil
}

// Save creates a return together with its lines
func (r *GormSalesReturnRepository) Save(ctx context.Context, ret *trade.SalesReturn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(ret).Error
	})
}

var _ trade.SalesReturnRepository = (*GormSalesReturnRepository)(nil)
