package integration

import "errors"

var (
	// Integration record errors
	ErrIntegrationNotFound     = errors.New("integration: integration not found")
	ErrIntegrationInactive     = errors.New("integration: integration is not active")
	ErrIntegrationExists       = errors.New("integration: active integration already exists for shop")
	ErrInvalidTenantID         = errors.New("integration: invalid tenant ID")
	ErrInvalidPlatform         = errors.New("integration: invalid platform")
	ErrInvalidShopDomain       = errors.New("integration: invalid shop domain")
	ErrMissingAccessToken      = errors.New("integration: missing access token")
	ErrSyncDisabled            = errors.New("integration: sync disabled for resource")
	ErrNoFulfillmentLocation   = errors.New("integration: fulfillment location not found on platform")
	ErrNoWarehouseConfigured   = errors.New("integration: no active warehouse configured for tenant")
	ErrOrderNotExternal        = errors.New("integration: order is not externally sourced")
	ErrProductNotExternal      = errors.New("integration: product is not externally sourced")
	ErrNoFulfillmentOrder      = errors.New("integration: no fulfillment order found on platform")

	// OAuth errors
	ErrInvalidCallbackState     = errors.New("integration: invalid oauth state parameter")
	ErrInvalidCallbackSignature = errors.New("integration: invalid callback signature")
	ErrTokenExchangeFailed      = errors.New("integration: access token exchange failed")

	// Shipping mapping errors
	ErrMappingNotFound = errors.New("integration: shipping method mapping not found")
	ErrMappingExists   = errors.New("integration: shipping method mapping already exists")
)
