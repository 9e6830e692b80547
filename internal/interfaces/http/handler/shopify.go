package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	appintegration "github.com/logida/backend/internal/application/integration"
	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/interfaces/http/dto"
)

// ShopifyHandler exposes the Shopify channel API: OAuth connect flow,
// integration management, shipping mappings and manual sync triggers.
type ShopifyHandler struct {
	BaseHandler
	connect     *appintegration.ConnectService
	sync        *appintegration.SyncService
	frontendURL string
}

// NewShopifyHandler creates a new Shopify channel handler. frontendURL is
// the operator-facing web app the OAuth callback redirects merchants to.
func NewShopifyHandler(
	connect *appintegration.ConnectService,
	sync *appintegration.SyncService,
	frontendURL string,
	logger *zap.Logger,
) *ShopifyHandler {
	return &ShopifyHandler{
		BaseHandler: NewBaseHandler(logger),
		connect:     connect,
		sync:        sync,
		frontendURL: frontendURL,
	}
}

// RegisterRoutes registers the Shopify channel routes
func (h *ShopifyHandler) RegisterRoutes(api *gin.RouterGroup) {
	g := api.Group("/channels/shopify")
	{
		g.GET("/install", h.BeginInstall)
		g.GET("/callback", h.HandleCallback)

		g.GET("/integrations", h.ListIntegrations)
		g.GET("/integrations/:id", h.GetIntegration)
		g.PATCH("/integrations/:id", h.UpdateToggles)
		g.DELETE("/integrations/:id", h.Disconnect)

		g.POST("/integrations/:id/sync/products", h.SyncProducts)
		g.POST("/integrations/:id/sync/orders", h.SyncOrders)
		g.POST("/integrations/:id/sync/inventory", h.SyncInventory)

		g.POST("/fulfillments", h.PushFulfillment)
		g.POST("/product-status", h.PushProductStatus)

		g.GET("/shipping-mappings", h.ListShippingMappings)
		g.POST("/shipping-mappings", h.CreateShippingMapping)
		g.DELETE("/shipping-mappings/:id", h.DeleteShippingMapping)
	}
}

// ---

// BeginInstall starts the OAuth flow and returns the authorization URL
// the merchant must be redirected to.
func (h *ShopifyHandler) BeginInstall(c *gin.Context) {
	var req appintegration.InstallRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	installURL, err := h.connect.BeginInstall(c.Request.Context(), h.getTenantID(c), req.ShopDomain)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, appintegration.InstallResponse{InstallURL: installURL})
}

// HandleCallback completes the OAuth flow. Shopify redirects the merchant
// here; the request carries no bearer token and authenticates via the
// signed query string instead. The merchant lands in a browser, so the
// outcome is reported by redirecting to the integration settings page
// rather than with a JSON body.
func (h *ShopifyHandler) HandleCallback(c *gin.Context) {
	if _, err := h.connect.HandleCallback(c.Request.Context(), c.Request.URL.Query()); err != nil {
		h.logger.Warn("shopify oauth callback failed", zap.Error(err))
		c.Redirect(http.StatusFound, h.frontendURL+"/settings/integrations?error=shopify")
		return
	}

	c.Redirect(http.StatusFound, h.frontendURL+"/settings/integrations?success=shopify")
}

// ListIntegrations lists the tenant's Shopify integrations
func (h *ShopifyHandler) ListIntegrations(c *gin.Context) {
	list, err := h.connect.ListIntegrations(c.Request.Context(), h.getTenantID(c))
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, list)
}

// GetIntegration returns a single integration by ID
func (h *ShopifyHandler) GetIntegration(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	resp, err := h.connect.GetIntegration(c.Request.Context(), h.getTenantID(c), id)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, resp)
}

// UpdateToggles applies partial updates to an integration's sync toggles
func (h *ShopifyHandler) UpdateToggles(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	var req appintegration.UpdateTogglesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.connect.UpdateToggles(c.Request.Context(), h.getTenantID(c), id, req)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, resp)
}

// Disconnect deactivates an integration. The connection record is kept so a
// later reinstall resumes order numbering and sync watermarks.
func (h *ShopifyHandler) Disconnect(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.connect.Disconnect(c.Request.Context(), h.getTenantID(c), id); err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.NoContent(c)
}

// ---

// SyncProducts triggers a product catalog pull from Shopify
func (h *ShopifyHandler) SyncProducts(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.sync.SyncProducts(c.Request.Context(), h.getTenantID(c), id)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, result)
}

// SyncOrders triggers an incremental order pull from Shopify
func (h *ShopifyHandler) SyncOrders(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.sync.SyncOrders(c.Request.Context(), h.getTenantID(c), id)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, result)
}

// SyncInventory pushes available stock levels to Shopify
func (h *ShopifyHandler) SyncInventory(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	result, err := h.sync.SyncInventory(c.Request.Context(), h.getTenantID(c), id)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, result)
}

// PushFulfillment pushes a shipped order's tracking back to Shopify
func (h *ShopifyHandler) PushFulfillment(c *gin.Context) {
	var req appintegration.PushFulfillmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.sync.PushFulfillment(c.Request.Context(), h.getTenantID(c), req)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, result)
}

// PushProductStatus mirrors a local product's status to Shopify
func (h *ShopifyHandler) PushProductStatus(c *gin.Context) {
	var req appintegration.PushProductStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	if err := h.sync.PushProductStatus(c.Request.Context(), h.getTenantID(c), req); err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.NoContent(c)
}

// ---

// ListShippingMappings lists the tenant's shipping method mappings
func (h *ShopifyHandler) ListShippingMappings(c *gin.Context) {
	list, err := h.connect.ListShippingMappings(c.Request.Context(), h.getTenantID(c))
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Success(c, list)
}

// CreateShippingMapping maps an external shipping method label to a carrier
func (h *ShopifyHandler) CreateShippingMapping(c *gin.Context) {
	var req appintegration.ShippingMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	resp, err := h.connect.CreateShippingMapping(c.Request.Context(), h.getTenantID(c), req)
	if err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.Created(c, resp)
}

// DeleteShippingMapping removes a shipping method mapping
func (h *ShopifyHandler) DeleteShippingMapping(c *gin.Context) {
	id, ok := h.bindID(c)
	if !ok {
		return
	}

	if err := h.connect.DeleteShippingMapping(c.Request.Context(), h.getTenantID(c), id); err != nil {
		h.handleIntegrationError(c, err)
		return
	}

	h.NoContent(c)
}

// ---

func (h *ShopifyHandler) bindID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.ValidationError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

// handleIntegrationError maps integration errors to API error codes
func (h *ShopifyHandler) handleIntegrationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, integration.ErrIntegrationNotFound),
		errors.Is(err, integration.ErrMappingNotFound):
		h.ErrorWithCode(c, dto.ErrCodeNotFound, err.Error())
	case errors.Is(err, integration.ErrIntegrationExists),
		errors.Is(err, integration.ErrMappingExists):
		h.ErrorWithCode(c, dto.ErrCodeAlreadyExists, err.Error())
	case errors.Is(err, integration.ErrIntegrationInactive),
		errors.Is(err, integration.ErrOrderNotExternal),
		errors.Is(err, integration.ErrProductNotExternal),
		errors.Is(err, integration.ErrNoFulfillmentOrder),
		errors.Is(err, integration.ErrNoWarehouseConfigured):
		h.ErrorWithCode(c, dto.ErrCodeInvalidState, err.Error())
	case errors.Is(err, integration.ErrSyncDisabled):
		h.ErrorWithCode(c, dto.ErrCodeSyncDisabled, err.Error())
	case errors.Is(err, integration.ErrInvalidShopDomain),
		errors.Is(err, integration.ErrInvalidTenantID),
		errors.Is(err, integration.ErrInvalidCallbackState),
		errors.Is(err, integration.ErrMissingAccessToken):
		h.ErrorWithCode(c, dto.ErrCodeBadRequest, err.Error())
	case errors.Is(err, integration.ErrInvalidCallbackSignature):
		h.ErrorWithCode(c, dto.ErrCodeInvalidSignature, err.Error())
	case errors.Is(err, integration.ErrTokenExchangeFailed),
		errors.Is(err, integration.ErrNoFulfillmentLocation):
		h.ErrorWithCode(c, dto.ErrCodeUpstreamFailed, err.Error())
	default:
		h.HandleError(c, err)
	}
}
