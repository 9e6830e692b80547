package integration

import (
	"context"
	"time"
)

// FulfillmentRequest describes a fulfillment to create on the platform,
// addressed to one fulfillment order with explicit line quantities.
type FulfillmentRequest struct {
	FulfillmentOrderID int64
	LineItems          []ShopifyFulfillmentOrderLineItem
	Tracking           ShopifyTrackingInfo
	NotifyCustomer     bool
}

// ShopifyGateway is the outbound port to the Shopify Admin REST API.
// Implementations issue shop-scoped, token-authenticated HTTP calls and
// surface non-2xx responses as typed errors. No method retries internally;
// each caller decides whether a failure is fatal to its run or skippable
// per item.
type ShopifyGateway interface {
	// AuthorizeURL builds the OAuth authorization URL for the shop
	AuthorizeURL(shopDomain, state string) string

	// ExchangeAccessToken trades an authorization code for an access token.
	// Performed as a direct POST because no token exists yet.
	ExchangeAccessToken(ctx context.Context, shopDomain, code string) (string, error)

	// GetShop fetches the shop metadata resource
	GetShop(ctx context.Context, shopDomain, accessToken string) (*ShopifyShop, error)

	// CreateWebhook registers a webhook subscription for a topic
	CreateWebhook(ctx context.Context, shopDomain, accessToken, topic, address string) (*ShopifyWebhook, error)

	// ListLocations lists the shop's inventory locations
	ListLocations(ctx context.Context, shopDomain, accessToken string) ([]ShopifyLocation, error)

	// CreateLocation creates a new inventory location
	CreateLocation(ctx context.Context, shopDomain, accessToken string, location ShopifyLocation) (*ShopifyLocation, error)

	// ListProductsPage fetches one page of products. pageInfo is the opaque
	// cursor from the previous page's Link header, empty for the first page.
	// Returns the next cursor, empty when no further pages exist.
	ListProductsPage(ctx context.Context, shopDomain, accessToken, pageInfo string) ([]ShopifyProduct, string, error)

	// ListOrdersPage fetches one page of orders, optionally filtered to
	// those created at or after since. Cursor semantics as ListProductsPage.
	ListOrdersPage(ctx context.Context, shopDomain, accessToken, pageInfo string, since *time.Time) ([]ShopifyOrder, string, error)

	// SetInventoryLevel sets the available quantity of an inventory item
	// at a location
	SetInventoryLevel(ctx context.Context, shopDomain, accessToken string, locationID, inventoryItemID int64, available int) error

	// ListFulfillmentOrders lists the fulfillment orders of a platform order
	ListFulfillmentOrders(ctx context.Context, shopDomain, accessToken string, orderID int64) ([]ShopifyFulfillmentOrder, error)

	// CreateFulfillment creates a fulfillment with tracking information
	CreateFulfillment(ctx context.Context, shopDomain, accessToken string, req FulfillmentRequest) (*ShopifyFulfillment, error)

	// UpdateFulfillmentTracking replaces the tracking info on an existing
	// fulfillment
	UpdateFulfillmentTracking(ctx context.Context, shopDomain, accessToken string, fulfillmentID int64, tracking ShopifyTrackingInfo, notifyCustomer bool) (*ShopifyFulfillment, error)

	// UpdateProductStatus sets a platform product's status (active or draft)
	UpdateProductStatus(ctx context.Context, shopDomain, accessToken string, productID int64, status string) (*ShopifyProduct, error)
}
