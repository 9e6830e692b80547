package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/infrastructure/config"
)

const maxResponseSize = 10 * 1024 * 1024 // 10MB

// APIError is returned for any non-2xx response from the Shopify Admin API.
// It carries the HTTP status and the raw response body so callers can decide
// whether a failure is fatal to the current run or skippable per item.
type APIError struct {
	Status int
	Body   string
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("shopify api error: %d - %s", e.Status, e.Body)
}

// Client is a thin wrapper over the Shopify Admin REST API. It adds the
// shop-scoped base URL, the access-token header and a bounded timeout, and
// surfaces non-2xx responses as *APIError. It performs no retries.
type Client struct {
	cfg        config.ShopifyConfig
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ integration.ShopifyGateway = (*Client)(nil)

// NewClient creates a new Shopify API client. cfg is treated as immutable;
// baseURL is this application's externally reachable URL, used for the OAuth
// redirect URI.
func NewClient(cfg config.ShopifyConfig, baseURL string, logger *zap.Logger) *Client {
	return &Client{
		cfg:     cfg,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger.Named("shopify"),
	}
}

// RedirectURI returns the OAuth callback address registered with the app
func (c *Client) RedirectURI() string {
	return c.baseURL + "/api/v1/channels/shopify/callback"
}

// WebhookAddress returns the base delivery URL for webhook subscriptions.
// Each topic is registered with its own address beneath it.
func (c *Client) WebhookAddress() string {
	return c.baseURL + "/api/v1/channels/shopify/webhooks"
}

// AuthorizeURL builds the OAuth authorization URL for a shop
func (c *Client) AuthorizeURL(shopDomain, state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("scope", strings.Join(c.cfg.Scopes, ","))
	q.Set("redirect_uri", c.RedirectURI())
	q.Set("state", state)
	return fmt.Sprintf("https://%s/admin/oauth/authorize?%s", shopDomain, q.Encode())
}

// ExchangeAccessToken trades an OAuth authorization code for an access token.
// This is a direct POST outside the versioned API because no token exists yet.
func (c *Client) ExchangeAccessToken(ctx context.Context, shopDomain, code string) (string, error) {
	payload := map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"code":          code,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("https://%s/admin/oauth/access_token", shopDomain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return "", err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", &APIError{Status: res.StatusCode, Body: string(data)}
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &token); err != nil {
		return "", err
	}
	if token.AccessToken == "" {
		return "", integration.ErrTokenExchangeFailed
	}

	return token.AccessToken, nil
}

// do issues one authenticated request against the versioned Admin API.
// path is relative to /admin/api/{version}/, e.g. "products.json?limit=250".
// The response headers are returned so callers can read pagination links.
func (c *Client) do(ctx context.Context, shopDomain, accessToken, method, path string, body, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}

	endpoint := fmt.Sprintf("https://%s/admin/api/%s/%s", shopDomain, c.cfg.APIVersion, path)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", accessToken)

	start := time.Now()
	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, err
	}

	c.logger.Debug("admin api call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &APIError{Status: res.StatusCode, Body: string(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return nil, fmt.Errorf("shopify: decode %s response: %w", path, err)
		}
	}

	return res.Header, nil
}

// nextPageInfo extracts the page_info cursor of the rel="next" link from a
// Link response header. Returns an empty string when there is no next page.
func nextPageInfo(header http.Header) string {
	link := header.Get("Link")
	if link == "" {
		return ""
	}

	for _, part := range strings.Split(link, ",") {
		segments := strings.Split(part, ";")
		if len(segments) < 2 {
			continue
		}
		if !strings.Contains(segments[1], `rel="next"`) {
			continue
		}

		raw := strings.Trim(strings.TrimSpace(segments[0]), "<>")
		u, err := url.Parse(raw)
		if err != nil {
			return ""
		}
		return u.Query().Get("page_info")
	}

	return ""
}

// GetShop fetches the shop metadata resource
func (c *Client) GetShop(ctx context.Context, shopDomain, accessToken string) (*integration.ShopifyShop, error) {
	var envelope struct {
		Shop integration.ShopifyShop `json:"shop"`
	}
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodGet, "shop.json", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Shop, nil
}

// CreateWebhook registers a webhook subscription for a topic
func (c *Client) CreateWebhook(ctx context.Context, shopDomain, accessToken, topic, address string) (*integration.ShopifyWebhook, error) {
	payload := map[string]integration.ShopifyWebhook{
		"webhook": {Topic: topic, Address: address, Format: "json"},
	}
	var envelope struct {
		Webhook integration.ShopifyWebhook `json:"webhook"`
	}
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodPost, "webhooks.json", payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Webhook, nil
}

// ListLocations lists the shop's inventory locations
func (c *Client) ListLocations(ctx context.Context, shopDomain, accessToken string) ([]integration.ShopifyLocation, error) {
	var envelope struct {
		Locations []integration.ShopifyLocation `json:"locations"`
	}
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodGet, "locations.json", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Locations, nil
}

// CreateLocation creates a new inventory location
func (c *Client) CreateLocation(ctx context.Context, shopDomain, accessToken string, location integration.ShopifyLocation) (*integration.ShopifyLocation, error) {
	payload := map[string]integration.ShopifyLocation{"location": location}
	var envelope struct {
		Location integration.ShopifyLocation `json:"location"`
	}
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodPost, "locations.json", payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Location, nil
}

// ListProductsPage fetches one page of products. When a page_info cursor is
// present no other filters may be combined with it, per the platform's
// cursor pagination rules.
func (c *Client) ListProductsPage(ctx context.Context, shopDomain, accessToken, pageInfo string) ([]integration.ShopifyProduct, string, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", c.cfg.PageSize))
	if pageInfo != "" {
		q.Set("page_info", pageInfo)
	}

	var envelope struct {
		Products []integration.ShopifyProduct `json:"products"`
	}
	header, err := c.do(ctx, shopDomain, accessToken, http.MethodGet, "products.json?"+q.Encode(), nil, &envelope)
	if err != nil {
		return nil, "", err
	}

	return envelope.Products, nextPageInfo(header), nil
}

// ListOrdersPage fetches one page of orders, optionally filtered to those
// created at or after since. The since filter applies to the first page
// only; cursor pages carry the filter forward server-side.
func (c *Client) ListOrdersPage(ctx context.Context, shopDomain, accessToken, pageInfo string, since *time.Time) ([]integration.ShopifyOrder, string, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", c.cfg.PageSize))
	if pageInfo != "" {
		q.Set("page_info", pageInfo)
	} else {
		q.Set("status", "any")
		if since != nil {
			q.Set("created_at_min", since.UTC().Format(time.RFC3339))
		}
	}

	var envelope struct {
		Orders []integration.ShopifyOrder `json:"orders"`
	}
	header, err := c.do(ctx, shopDomain, accessToken, http.MethodGet, "orders.json?"+q.Encode(), nil, &envelope)
	if err != nil {
		return nil, "", err
	}

	return envelope.Orders, nextPageInfo(header), nil
}

// SetInventoryLevel sets the available quantity of an inventory item at a
// location
func (c *Client) SetInventoryLevel(ctx context.Context, shopDomain, accessToken string, locationID, inventoryItemID int64, available int) error {
	payload := map[string]any{
		"location_id":       locationID,
		"inventory_item_id": inventoryItemID,
		"available":         available,
	}
	_, err := c.do(ctx, shopDomain, accessToken, http.MethodPost, "inventory_levels/set.json", payload, nil)
	return err
}

// ListFulfillmentOrders lists the fulfillment orders of a platform order
func (c *Client) ListFulfillmentOrders(ctx context.Context, shopDomain, accessToken string, orderID int64) ([]integration.ShopifyFulfillmentOrder, error) {
	var envelope struct {
		FulfillmentOrders []integration.ShopifyFulfillmentOrder `json:"fulfillment_orders"`
	}
	path := fmt.Sprintf("orders/%d/fulfillment_orders.json", orderID)
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodGet, path, nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.FulfillmentOrders, nil
}

// CreateFulfillment creates a fulfillment with tracking information
func (c *Client) CreateFulfillment(ctx context.Context, shopDomain, accessToken string, req integration.FulfillmentRequest) (*integration.ShopifyFulfillment, error) {
	lineItems := make([]map[string]any, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		lineItems = append(lineItems, map[string]any{
			"id":       item.ID,
			"quantity": item.FulfillableQuantity,
		})
	}

	payload := map[string]any{
		"fulfillment": map[string]any{
			"line_items_by_fulfillment_order": []map[string]any{
				{
					"fulfillment_order_id":         req.FulfillmentOrderID,
					"fulfillment_order_line_items": lineItems,
				},
			},
			"tracking_info":   req.Tracking,
			"notify_customer": req.NotifyCustomer,
		},
	}

	var envelope struct {
		Fulfillment integration.ShopifyFulfillment `json:"fulfillment"`
	}
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodPost, "fulfillments.json", payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Fulfillment, nil
}

// UpdateFulfillmentTracking replaces the tracking info on an existing
// fulfillment
func (c *Client) UpdateFulfillmentTracking(ctx context.Context, shopDomain, accessToken string, fulfillmentID int64, tracking integration.ShopifyTrackingInfo, notifyCustomer bool) (*integration.ShopifyFulfillment, error) {
	payload := map[string]any{
		"fulfillment": map[string]any{
			"tracking_info":   tracking,
			"notify_customer": notifyCustomer,
		},
	}

	var envelope struct {
		Fulfillment integration.ShopifyFulfillment `json:"fulfillment"`
	}
	path := fmt.Sprintf("fulfillments/%d/update_tracking.json", fulfillmentID)
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodPost, path, payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Fulfillment, nil
}

// UpdateProductStatus sets a platform product's status (active or draft)
func (c *Client) UpdateProductStatus(ctx context.Context, shopDomain, accessToken string, productID int64, status string) (*integration.ShopifyProduct, error) {
	payload := map[string]any{
		"product": map[string]any{
			"id":     productID,
			"status": status,
		},
	}

	var envelope struct {
		Product integration.ShopifyProduct `json:"product"`
	}
	path := fmt.Sprintf("products/%d.json", productID)
	if _, err := c.do(ctx, shopDomain, accessToken, http.MethodPut, path, payload, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Product, nil
}
