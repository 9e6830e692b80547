package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/logida/backend/internal/domain/shared"
)

// StockStatus classifies an inventory record's stock condition. Only
// "available" stock counts toward the quantity pushed to external platforms.
type StockStatus string

const (
	StockStatusAvailable  StockStatus = "available"
	StockStatusDamaged    StockStatus = "damaged"
	StockStatusQuarantine StockStatus = "quarantine"
)

// InventoryRecord tracks the stock of one product in one warehouse under one
// stock status. OnHand counts physical units, Reserved counts units already
// allocated to open orders.
type InventoryRecord struct {
	shared.TenantAggregateRoot
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_wh_status,priority:1"`
	WarehouseID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_inventory_product_wh_status,priority:2"`
	Status      StockStatus     `gorm:"type:varchar(20);not null;default:'available';uniqueIndex:idx_inventory_product_wh_status,priority:3"`
	OnHand      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Reserved    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (InventoryRecord) TableName() string {
	return "inventory_records"
}

// NewInventoryRecord creates a new inventory record
func NewInventoryRecord(tenantID, productID, warehouseID uuid.UUID, status StockStatus) (*InventoryRecord, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Inventory record requires a product")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Inventory record requires a warehouse")
	}

	return &InventoryRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		WarehouseID:         warehouseID,
		Status:              status,
		OnHand:              decimal.Zero,
		Reserved:            decimal.Zero,
	}, nil
}

// Available returns the quantity free to promise: on hand minus reserved
func (r *InventoryRecord) Available() decimal.Decimal {
	return r.OnHand.Sub(r.Reserved)
}

// Adjust applies a delta to the on-hand quantity
func (r *InventoryRecord) Adjust(delta decimal.Decimal) error {
	next := r.OnHand.Add(delta)
	if next.IsNegative() {
		return shared.ErrInsufficientStock
	}

	r.OnHand = next
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// Reserve allocates quantity to an open order
func (r *InventoryRecord) Reserve(quantity decimal.Decimal) error {
	if quantity.IsNegative() || quantity.IsZero() {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if r.Available().LessThan(quantity) {
		return shared.ErrInsufficientStock
	}

	r.Reserved = r.Reserved.Add(quantity)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// Release returns previously reserved quantity to available stock
func (r *InventoryRecord) Release(quantity decimal.Decimal) error {
	if quantity.GreaterThan(r.Reserved) {
		return shared.NewDomainError("INVALID_QUANTITY", "Cannot release more than reserved")
	}

	r.Reserved = r.Reserved.Sub(quantity)
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// TotalAvailable sums the available quantity over a set of records
func TotalAvailable(records []InventoryRecord) decimal.Decimal {
	total := decimal.Zero
	for i := range records {
		total = total.Add(records[i].Available())
	}
	return total
}

// Repository defines persistence operations for inventory records
type Repository interface {
	ListByProductAndStatus(ctx context.Context, tenantID, productID uuid.UUID, status StockStatus) ([]InventoryRecord, error)
	Save(ctx context.Context, record *InventoryRecord) error
	Update(ctx context.Context, record *InventoryRecord) error
}
