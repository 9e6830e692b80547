package partner

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/logida/backend/internal/domain/shared"
)

// Warehouse represents a physical fulfillment site. Priority orders the
// warehouses for default selection: externally sourced orders are routed to
// the highest-priority active warehouse of the tenant. This is a deliberate
// single-target policy, not a per-item allocation algorithm.
type Warehouse struct {
	shared.TenantAggregateRoot
	Code     string `gorm:"type:varchar(50);not null;uniqueIndex:idx_warehouse_tenant_code,priority:2"`
	Name     string `gorm:"type:varchar(200);not null"`
	Priority int    `gorm:"not null;default:0"`
	IsActive bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Warehouse) TableName() string {
	return "warehouses"
}

// NewWarehouse creates a new active warehouse
func NewWarehouse(tenantID uuid.UUID, code, name string, priority int) (*Warehouse, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Warehouse code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Warehouse name cannot be empty")
	}

	return &Warehouse{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		Priority:            priority,
		IsActive:            true,
	}, nil
}

// SetPriority changes the warehouse's selection priority
func (w *Warehouse) SetPriority(priority int) {
	w.Priority = priority
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// Deactivate removes the warehouse from default selection
func (w *Warehouse) Deactivate() {
	w.IsActive = false
	w.UpdatedAt = time.Now()
	w.IncrementVersion()
}

// WarehouseRepository defines persistence operations for warehouses
type WarehouseRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Warehouse, error)
	// FindDefaultForTenant returns the highest-priority active warehouse,
	// or shared.ErrNotFound when the tenant has none configured.
	FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*Warehouse, error)
	Save(ctx context.Context, warehouse *Warehouse) error
}
