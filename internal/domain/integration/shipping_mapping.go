package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/logida/backend/internal/domain/shared"
)

// ShippingMethodMapping translates an external platform's shipping-method
// label to a local carrier service. Used in both directions: inbound orders
// resolve their carrier through it, outbound fulfillments look up tracking
// URL templates through the resolved carrier.
type ShippingMethodMapping struct {
	shared.TenantAggregateRoot
	IntegrationID          uuid.UUID `gorm:"type:uuid;not null;index"`
	ExternalShippingMethod string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_shipping_mapping_tenant_method,priority:2"`
	CarrierID              uuid.UUID `gorm:"type:uuid;not null"`
	CarrierServiceID       uuid.UUID `gorm:"type:uuid;not null"`
}

// TableName returns the table name for GORM
func (ShippingMethodMapping) TableName() string {
	return "shipping_method_mappings"
}

// NewShippingMethodMapping creates a new mapping
func NewShippingMethodMapping(tenantID, integrationID uuid.UUID, externalMethod string, carrierID, carrierServiceID uuid.UUID) (*ShippingMethodMapping, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if externalMethod == "" {
		return nil, shared.NewDomainError("INVALID_SHIPPING_METHOD", "External shipping method cannot be empty")
	}

	return &ShippingMethodMapping{
		TenantAggregateRoot:    shared.NewTenantAggregateRoot(tenantID),
		IntegrationID:          integrationID,
		ExternalShippingMethod: externalMethod,
		CarrierID:              carrierID,
		CarrierServiceID:       carrierServiceID,
	}, nil
}

// UpdateCarrierService repoints the mapping at a different carrier service
func (m *ShippingMethodMapping) UpdateCarrierService(carrierID, carrierServiceID uuid.UUID) {
	m.CarrierID = carrierID
	m.CarrierServiceID = carrierServiceID
	m.UpdatedAt = time.Now()
	m.IncrementVersion()
}
