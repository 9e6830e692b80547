package integration

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists Integration aggregates. Every query is tenant-scoped
// except FindActiveByShop, which is the webhook routing lookup: at most one
// active integration may exist per (platform, shop domain) across all
// tenants, enforced by a partial unique index.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Integration, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Integration, error)
	FindByShopForTenant(ctx context.Context, tenantID uuid.UUID, platform Platform, shopDomain string) (*Integration, error)
	FindActiveByShop(ctx context.Context, platform Platform, shopDomain string) (*Integration, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID, platform Platform) ([]Integration, error)
	Save(ctx context.Context, i *Integration) error
	Update(ctx context.Context, i *Integration) error
	DeactivateByShop(ctx context.Context, platform Platform, shopDomain string) error
}

// ShippingMethodMappingRepository persists shipping-method mappings
type ShippingMethodMappingRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*ShippingMethodMapping, error)
	FindByExternalMethod(ctx context.Context, tenantID uuid.UUID, externalMethod string) (*ShippingMethodMapping, error)
	ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]ShippingMethodMapping, error)
	Save(ctx context.Context, m *ShippingMethodMapping) error
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error
}
