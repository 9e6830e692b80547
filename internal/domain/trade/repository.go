package trade

import (
	"context"

	"github.com/google/uuid"
)

// SalesOrderRepository defines persistence operations for sales orders.
// FindByExternalOrderID is the idempotency lookup for webhook ingestion; the
// unique index on (tenant, external source, external order ID) remains the
// correctness backstop when two deliveries race past the existence check.
type SalesOrderRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*SalesOrder, error)
	FindByExternalOrderID(ctx context.Context, tenantID uuid.UUID, source, externalOrderID string) (*SalesOrder, error)
	Save(ctx context.Context, order *SalesOrder) error
	Update(ctx context.Context, order *SalesOrder) error
}

// SalesReturnRepository defines persistence operations for sales returns
type SalesReturnRepository interface {
	FindByOrderAndExternalID(ctx context.Context, orderID uuid.UUID, externalID string) (*SalesReturn, error)
	Save(ctx context.Context, ret *SalesReturn) error
}
