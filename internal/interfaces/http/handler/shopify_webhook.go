package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appintegration "github.com/logida/backend/internal/application/integration"
	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/infrastructure/shopify"
	"github.com/logida/backend/internal/interfaces/http/dto"
)

// Shopify webhook headers
const (
	headerShopifyHmac      = "X-Shopify-Hmac-SHA256"
	headerShopifyTopic     = "X-Shopify-Topic"
	headerShopifyShop      = "X-Shopify-Shop-Domain"
	headerShopifyWebhookID = "X-Shopify-Webhook-Id"
)

// ShopifyWebhookHandler receives webhook deliveries from Shopify. The
// endpoint is unauthenticated at the JWT layer; each delivery is
// authenticated by its HMAC signature over the raw body.
type ShopifyWebhookHandler struct {
	BaseHandler
	webhooks     *appintegration.WebhookService
	clientSecret string
}

// NewShopifyWebhookHandler creates a new webhook handler
func NewShopifyWebhookHandler(
	webhooks *appintegration.WebhookService,
	clientSecret string,
	logger *zap.Logger,
) *ShopifyWebhookHandler {
	return &ShopifyWebhookHandler{
		BaseHandler:  NewBaseHandler(logger),
		webhooks:     webhooks,
		clientSecret: clientSecret,
	}
}

// RegisterRoutes registers one delivery route per subscribed topic,
// matching the per-topic addresses ConnectService registers with Shopify.
// The X-Shopify-Topic header stays authoritative for dispatch.
func (h *ShopifyWebhookHandler) RegisterRoutes(api *gin.RouterGroup) {
	for _, topic := range appintegration.WebhookTopics {
		api.POST("/channels/shopify/webhooks/"+topic, h.Receive)
	}
}

// Receive handles one webhook delivery. Only a signature failure produces a
// non-200: every other outcome is acknowledged, because Shopify redelivers
// non-200 responses and eventually disables the webhook. Processing errors
// are logged and absorbed; the reconciliation sync repairs any missed
// deliveries.
func (h *ShopifyWebhookHandler) Receive(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.BadRequest(c, "unable to read request body")
		return
	}

	if !shopify.VerifyWebhookSignature(body, c.GetHeader(headerShopifyHmac), h.clientSecret) {
		h.ErrorWithCode(c, dto.ErrCodeInvalidSignature, "webhook signature verification failed")
		return
	}

	shopDomain := c.GetHeader(headerShopifyShop)
	topic := c.GetHeader(headerShopifyTopic)
	deliveryID := c.GetHeader(headerShopifyWebhookID)

	err = h.webhooks.HandleDelivery(c.Request.Context(), shopDomain, topic, deliveryID, body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true})
	case errors.Is(err, integration.ErrIntegrationNotFound):
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "no integration for shop"})
	default:
		if h.logger != nil {
			h.logger.Error("webhook processing failed",
				zap.String("shop_domain", shopDomain),
				zap.String("topic", topic),
				zap.String("delivery_id", deliveryID),
				zap.Error(err),
			)
		}
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "processing failed"})
	}
}
