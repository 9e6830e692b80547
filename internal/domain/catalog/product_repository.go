package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for products.
// All queries are tenant-scoped.
type ProductRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Product, error)
	FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*Product, error)
	FindByShopifyProductID(ctx context.Context, tenantID uuid.UUID, source string, shopifyProductID int64) ([]Product, error)
	ListExternallyLinked(ctx context.Context, tenantID uuid.UUID, source string) ([]Product, error)
	Save(ctx context.Context, product *Product) error
	Update(ctx context.Context, product *Product) error
}
