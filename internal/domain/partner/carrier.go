package partner

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/logida/backend/internal/domain/shared"
)

// Carrier represents a shipping carrier. TrackingURLTemplate is a URL with a
// literal "{tracking}" placeholder substituted with the tracking number when
// a shipment is pushed outward.
type Carrier struct {
	shared.TenantAggregateRoot
	Code               string `gorm:"type:varchar(50);not null;uniqueIndex:idx_carrier_tenant_code,priority:2"`
	Name               string `gorm:"type:varchar(200);not null"`
	TrackingURLTemplate string `gorm:"type:varchar(500)"`
	IsActive           bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Carrier) TableName() string {
	return "carriers"
}

// NewCarrier creates a new carrier
func NewCarrier(tenantID uuid.UUID, code, name, trackingURLTemplate string) (*Carrier, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Carrier code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Carrier name cannot be empty")
	}

	return &Carrier{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Code:                code,
		Name:                name,
		TrackingURLTemplate: trackingURLTemplate,
		IsActive:            true,
	}, nil
}

// TrackingURL expands the tracking URL template for a tracking number.
// Returns an empty string when no template is configured.
func (c *Carrier) TrackingURL(trackingNumber string) string {
	if c.TrackingURLTemplate == "" || trackingNumber == "" {
		return ""
	}
	return strings.ReplaceAll(c.TrackingURLTemplate, "{tracking}", trackingNumber)
}

// CarrierService is a named service level of a carrier (e.g. standard,
// express). Shipping-method mappings resolve to a carrier service.
type CarrierService struct {
	shared.TenantAggregateRoot
	CarrierID uuid.UUID `gorm:"type:uuid;not null;index"`
	Code      string    `gorm:"type:varchar(50);not null"`
	Name      string    `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (CarrierService) TableName() string {
	return "carrier_services"
}

// NewCarrierService creates a new carrier service
func NewCarrierService(tenantID, carrierID uuid.UUID, code, name string) (*CarrierService, error) {
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Carrier service code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Carrier service name cannot be empty")
	}

	return &CarrierService{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CarrierID:           carrierID,
		Code:                code,
		Name:                name,
	}, nil
}

// CarrierRepository defines persistence operations for carriers and their
// services
type CarrierRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Carrier, error)
	FindServiceByIDForTenant(ctx context.Context, tenantID, serviceID uuid.UUID) (*CarrierService, error)
	Save(ctx context.Context, carrier *Carrier) error
	SaveService(ctx context.Context, service *CarrierService) error
}
