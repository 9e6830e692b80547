package integration

import (
	"time"

	"github.com/google/uuid"

	"github.com/logida/backend/internal/domain/shared"
)

// Platform identifies the external commerce platform an integration connects to
type Platform string

const (
	// PlatformShopify is the Shopify commerce platform
	PlatformShopify Platform = "shopify"
)

// IsValid returns true if the platform is supported
func (p Platform) IsValid() bool {
	return p == PlatformShopify
}

// String returns the string representation of the platform
func (p Platform) String() string {
	return string(p)
}

// SyncResource identifies a resource type tracked by per-resource sync timestamps
type SyncResource string

const (
	SyncResourceOrders    SyncResource = "orders"
	SyncResourceInventory SyncResource = "inventory"
)

// ShopifyCredentials holds the shop-scoped credentials and display metadata
// obtained during the OAuth flow. The access token is never exposed through
// the HTTP layer; redaction happens in the response DTOs.
type ShopifyCredentials struct {
	ShopDomain    string `gorm:"type:varchar(255);column:shop_domain;index" json:"shop_domain"`
	AccessToken   string `gorm:"type:varchar(255);column:access_token" json:"-"`
	ShopName      string `gorm:"type:varchar(255);column:shop_name" json:"shop_name"`
	ShopEmail     string `gorm:"type:varchar(255);column:shop_email" json:"shop_email"`
	PrimaryDomain string `gorm:"type:varchar(255);column:primary_domain" json:"primary_domain"`
}

// Integration is the tenant-scoped record of a connection to one external
// commerce-platform shop. It is the aggregate root for all sync bookkeeping:
// credentials, feature toggles, last-sync timestamps and error counters.
type Integration struct {
	shared.TenantAggregateRoot
	Platform    Platform           `gorm:"type:varchar(20);not null;index:idx_integration_platform_shop,priority:1"`
	Name        string             `gorm:"type:varchar(200);not null"`
	Credentials ShopifyCredentials `gorm:"embedded"`
	IsActive    bool               `gorm:"not null;default:true"`

	// Feature toggles
	SyncOrders    bool `gorm:"not null;default:true"`
	SyncProducts  bool `gorm:"not null;default:true"`
	SyncInventory bool `gorm:"not null;default:true"`
	AutoFulfill   bool `gorm:"not null;default:true"`

	// Sync bookkeeping
	LastOrderSyncAt     *time.Time
	LastInventorySyncAt *time.Time
	LastError           string `gorm:"type:text"`
	LastErrorAt         *time.Time
	ErrorCount          int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Integration) TableName() string {
	return "integrations"
}

// NewIntegration creates a new active integration with all sync toggles on
func NewIntegration(tenantID uuid.UUID, platform Platform, name string, creds ShopifyCredentials) (*Integration, error) {
	if tenantID == uuid.Nil {
		return nil, ErrInvalidTenantID
	}
	if !platform.IsValid() {
		return nil, ErrInvalidPlatform
	}
	if creds.ShopDomain == "" {
		return nil, ErrInvalidShopDomain
	}
	if creds.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	return &Integration{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Platform:            platform,
		Name:                name,
		Credentials:         creds,
		IsActive:            true,
		SyncOrders:          true,
		SyncProducts:        true,
		SyncInventory:       true,
		AutoFulfill:         true,
	}, nil
}

// Reconnect refreshes the credentials after a repeated OAuth flow, reactivates
// the integration and clears any accumulated error state.
func (i *Integration) Reconnect(creds ShopifyCredentials) error {
	if creds.AccessToken == "" {
		return ErrMissingAccessToken
	}

	i.Credentials = creds
	i.IsActive = true
	i.ClearError()
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Deactivate disables the integration without deleting any synced data.
// Used when the external platform reports app uninstallation or when an
// operator disconnects the shop.
func (i *Integration) Deactivate() {
	i.IsActive = false
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// UpdateToggles applies partial updates to the feature toggles.
// Nil pointers leave the corresponding toggle unchanged.
func (i *Integration) UpdateToggles(isActive, syncOrders, syncProducts, syncInventory, autoFulfill *bool) {
	if isActive != nil {
		i.IsActive = *isActive
	}
	if syncOrders != nil {
		i.SyncOrders = *syncOrders
	}
	if syncProducts != nil {
		i.SyncProducts = *syncProducts
	}
	if syncInventory != nil {
		i.SyncInventory = *syncInventory
	}
	if autoFulfill != nil {
		i.AutoFulfill = *autoFulfill
	}
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// RecordSyncSuccess clears the error state and advances the last-sync
// timestamp for the given resource to now. Advancing to "now" rather than
// the newest record's timestamp tolerates clock skew between systems; the
// resulting overlap on the next run is harmless because creation is
// idempotent.
func (i *Integration) RecordSyncSuccess(resource SyncResource) {
	now := time.Now()
	switch resource {
	case SyncResourceOrders:
		i.LastOrderSyncAt = &now
	case SyncResourceInventory:
		i.LastInventorySyncAt = &now
	}
	i.ClearError()
	i.UpdatedAt = now
	i.IncrementVersion()
}

// RecordSyncFailure records the error message, stamps the failure time and
// increments the consecutive-error counter. The counter is surfaced to
// operators only; the engine does not self-throttle on it.
func (i *Integration) RecordSyncFailure(err error) {
	now := time.Now()
	i.LastError = err.Error()
	i.LastErrorAt = &now
	i.ErrorCount++
	i.UpdatedAt = now
	i.IncrementVersion()
}

// ClearError resets the error bookkeeping after a successful operation
func (i *Integration) ClearError() {
	i.LastError = ""
	i.LastErrorAt = nil
	i.ErrorCount = 0
}

// ShopDomain returns the connected shop's myshopify domain
func (i *Integration) ShopDomain() string {
	return i.Credentials.ShopDomain
}

// AccessToken returns the stored access token
func (i *Integration) AccessToken() string {
	return i.Credentials.AccessToken
}
