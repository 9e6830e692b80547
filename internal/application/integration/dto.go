package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/logida/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// InstallRequest starts the OAuth flow for a shop. Bound from the install
// endpoint's query string.
type InstallRequest struct {
	ShopDomain string `form:"shop" json:"shop" binding:"required,shopdomain"`
}

// UpdateTogglesRequest applies partial updates to an integration's feature
// toggles. Absent fields leave the corresponding toggle unchanged.
type UpdateTogglesRequest struct {
	IsActive      *bool `json:"is_active"`
	SyncOrders    *bool `json:"sync_orders"`
	SyncProducts  *bool `json:"sync_products"`
	SyncInventory *bool `json:"sync_inventory"`
	AutoFulfill   *bool `json:"auto_fulfill"`
}

// ShippingMappingRequest maps an external shipping method label to a local
// carrier and optional carrier service
type ShippingMappingRequest struct {
	IntegrationID          uuid.UUID  `json:"integration_id" binding:"required"`
	ExternalShippingMethod string     `json:"external_shipping_method" binding:"required"`
	CarrierID              uuid.UUID  `json:"carrier_id" binding:"required"`
	CarrierServiceID       *uuid.UUID `json:"carrier_service_id"`
}

// PushFulfillmentRequest pushes a shipped order's tracking to the platform
type PushFulfillmentRequest struct {
	OrderID        uuid.UUID `json:"order_id" binding:"required"`
	TrackingNumber string    `json:"tracking_number" binding:"required"`
	NotifyCustomer *bool     `json:"notify_customer"`
}

// PushProductStatusRequest mirrors a local product's status to the platform
type PushProductStatusRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// InstallResponse carries the authorization URL the merchant is redirected to
type InstallResponse struct {
	InstallURL string `json:"install_url"`
}

// IntegrationResponse is the API representation of an integration.
// The access token is deliberately absent.
type IntegrationResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Platform            string     `json:"platform"`
	Name                string     `json:"name"`
	ShopDomain          string     `json:"shop_domain"`
	ShopName            string     `json:"shop_name"`
	ShopEmail           string     `json:"shop_email"`
	PrimaryDomain       string     `json:"primary_domain"`
	IsActive            bool       `json:"is_active"`
	SyncOrders          bool       `json:"sync_orders"`
	SyncProducts        bool       `json:"sync_products"`
	SyncInventory       bool       `json:"sync_inventory"`
	AutoFulfill         bool       `json:"auto_fulfill"`
	LastOrderSyncAt     *time.Time `json:"last_order_sync_at"`
	LastInventorySyncAt *time.Time `json:"last_inventory_sync_at"`
	LastError           string     `json:"last_error,omitempty"`
	LastErrorAt         *time.Time `json:"last_error_at,omitempty"`
	ErrorCount          int        `json:"error_count"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// ToIntegrationResponse converts a domain integration to its API shape
func ToIntegrationResponse(i *integration.Integration) IntegrationResponse {
	return IntegrationResponse{
		ID:                  i.ID,
		Platform:            i.Platform.String(),
		Name:                i.Name,
		ShopDomain:          i.Credentials.ShopDomain,
		ShopName:            i.Credentials.ShopName,
		ShopEmail:           i.Credentials.ShopEmail,
		PrimaryDomain:       i.Credentials.PrimaryDomain,
		IsActive:            i.IsActive,
		SyncOrders:          i.SyncOrders,
		SyncProducts:        i.SyncProducts,
		SyncInventory:       i.SyncInventory,
		AutoFulfill:         i.AutoFulfill,
		LastOrderSyncAt:     i.LastOrderSyncAt,
		LastInventorySyncAt: i.LastInventorySyncAt,
		LastError:           i.LastError,
		LastErrorAt:         i.LastErrorAt,
		ErrorCount:          i.ErrorCount,
		CreatedAt:           i.CreatedAt,
		UpdatedAt:           i.UpdatedAt,
	}
}

// ToIntegrationResponses converts a slice of integrations
func ToIntegrationResponses(list []integration.Integration) []IntegrationResponse {
	out := make([]IntegrationResponse, 0, len(list))
	for idx := range list {
		out = append(out, ToIntegrationResponse(&list[idx]))
	}
	return out
}

// ShippingMappingResponse is the API representation of a shipping mapping
type ShippingMappingResponse struct {
	ID                     uuid.UUID `json:"id"`
	IntegrationID          uuid.UUID `json:"integration_id"`
	ExternalShippingMethod string    `json:"external_shipping_method"`
	CarrierID              uuid.UUID `json:"carrier_id"`
	CarrierServiceID       uuid.UUID `json:"carrier_service_id"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// ToShippingMappingResponse converts a domain mapping to its API shape
func ToShippingMappingResponse(m *integration.ShippingMethodMapping) ShippingMappingResponse {
	return ShippingMappingResponse{
		ID:                     m.ID,
		IntegrationID:          m.IntegrationID,
		ExternalShippingMethod: m.ExternalShippingMethod,
		CarrierID:              m.CarrierID,
		CarrierServiceID:       m.CarrierServiceID,
		CreatedAt:              m.CreatedAt,
		UpdatedAt:              m.UpdatedAt,
	}
}

// ToShippingMappingResponses converts a slice of mappings
func ToShippingMappingResponses(list []integration.ShippingMethodMapping) []ShippingMappingResponse {
	out := make([]ShippingMappingResponse, 0, len(list))
	for idx := range list {
		out = append(out, ToShippingMappingResponse(&list[idx]))
	}
	return out
}

// ProductSyncResult summarizes one product reconciliation run
type ProductSyncResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	Pages   int `json:"pages"`
}

// OrderSyncResult summarizes one order reconciliation run
type OrderSyncResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
	Pages    int `json:"pages"`
}

// InventorySyncResult summarizes one inventory push run
type InventorySyncResult struct {
	Pushed  int `json:"pushed"`
	Skipped int `json:"skipped"`
}

// FulfillmentResult reports the platform fulfillment created or updated for
// an order
type FulfillmentResult struct {
	OrderID              uuid.UUID `json:"order_id"`
	ShopifyFulfillmentID int64     `json:"shopify_fulfillment_id"`
	TrackingNumber       string    `json:"tracking_number"`
	TrackingURL          string    `json:"tracking_url,omitempty"`
	Updated              bool      `json:"updated"`
}
