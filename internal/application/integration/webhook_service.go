package integration

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/shared"
)

// WebhookService ingests webhook deliveries. Authentication happens in the
// HTTP layer against the raw body; by the time a payload reaches this
// service it is trusted.
//
// Deliveries are deduplicated two ways: the delivery ID is checked against
// the idempotency store, and every create path holds a unique index in the
// database as the backstop for the race two concurrent deliveries can win.
// The store is marked only after successful processing so that a failed
// delivery stays eligible for the platform's retry.
type WebhookService struct {
	integrations integration.Repository
	importer     *Importer
	idempotency  shared.IdempotencyStore
	dedupTTL     time.Duration
	logger       *zap.Logger
}

// NewWebhookService creates a new WebhookService
func NewWebhookService(
	integrations integration.Repository,
	importer *Importer,
	idempotency shared.IdempotencyStore,
	dedupTTL time.Duration,
	logger *zap.Logger,
) *WebhookService {
	return &WebhookService{
		integrations: integrations,
		importer:     importer,
		idempotency:  idempotency,
		dedupTTL:     dedupTTL,
		logger:       logger,
	}
}

// HandleDelivery routes one authenticated webhook delivery by topic.
// shopDomain identifies the sending shop, deliveryID is the platform's
// unique delivery identifier (may be empty on older payloads).
func (s *WebhookService) HandleDelivery(ctx context.Context, shopDomain, topic, deliveryID string, body []byte) error {
	logger := s.logger.With(
		zap.String("shop_domain", shopDomain),
		zap.String("topic", topic),
		zap.String("delivery_id", deliveryID),
	)

	if deliveryID != "" {
		processed, err := s.idempotency.IsProcessed(ctx, deliveryID)
		if err != nil {
			logger.Warn("idempotency check failed, continuing", zap.Error(err))
		} else if processed {
			logger.Debug("duplicate delivery skipped")
			return nil
		}
	}

	// app/uninstalled is handled before integration resolution: the shop
	// may already be gone and the payload is irrelevant
	if topic == "app/uninstalled" {
		if err := s.integrations.DeactivateByShop(ctx, integration.PlatformShopify, shopDomain); err != nil {
			return err
		}
		s.markProcessed(ctx, deliveryID, logger)
		logger.Info("shop uninstalled, integrations deactivated")
		return nil
	}

	inte, err := s.integrations.FindActiveByShop(ctx, integration.PlatformShopify, shopDomain)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return integration.ErrIntegrationNotFound
		}
		return err
	}

	if err := s.dispatch(ctx, inte, topic, body, logger); err != nil {
		return err
	}

	s.markProcessed(ctx, deliveryID, logger)
	return nil
}

func (s *WebhookService) dispatch(ctx context.Context, inte *integration.Integration, topic string, body []byte, logger *zap.Logger) error {
	switch topic {
	case "orders/create":
		if !inte.SyncOrders {
			return nil
		}
		var order integration.ShopifyOrder
		if err := json.Unmarshal(body, &order); err != nil {
			return err
		}
		created, err := s.importer.importOrder(ctx, inte, order)
		if err != nil {
			return err
		}
		if created {
			logger.Info("order imported", zap.Int64("shopify_order_id", order.ID))
		}
		return nil

	case "orders/updated":
		if !inte.SyncOrders {
			return nil
		}
		var order integration.ShopifyOrder
		if err := json.Unmarshal(body, &order); err != nil {
			return err
		}
		return s.importer.updateOrder(ctx, inte, order)

	case "orders/cancelled":
		if !inte.SyncOrders {
			return nil
		}
		var order integration.ShopifyOrder
		if err := json.Unmarshal(body, &order); err != nil {
			return err
		}
		return s.importer.cancelOrder(ctx, inte, order)

	case "products/create":
		if !inte.SyncProducts {
			return nil
		}
		var product integration.ShopifyProduct
		if err := json.Unmarshal(body, &product); err != nil {
			return err
		}
		created, err := s.importer.createProduct(ctx, inte, product)
		if err != nil {
			return err
		}
		if created > 0 {
			logger.Info("products created", zap.Int64("shopify_product_id", product.ID), zap.Int("count", created))
		}
		return nil

	case "products/update":
		if !inte.SyncProducts {
			return nil
		}
		var product integration.ShopifyProduct
		if err := json.Unmarshal(body, &product); err != nil {
			return err
		}
		_, err := s.importer.refreshProduct(ctx, inte, product)
		return err

	case "products/delete":
		if !inte.SyncProducts {
			return nil
		}
		var payload struct {
			ID int64 `json:"id"`
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			return err
		}
		count, err := s.importer.deactivateProduct(ctx, inte, payload.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			logger.Info("linked products deactivated",
				zap.Int64("shopify_product_id", payload.ID),
				zap.Int("count", count),
			)
		}
		return nil

	case "refunds/create":
		if !inte.SyncOrders {
			return nil
		}
		var refund integration.ShopifyRefund
		if err := json.Unmarshal(body, &refund); err != nil {
			return err
		}
		created, err := s.importer.importRefund(ctx, inte, refund)
		if err != nil {
			return err
		}
		if created {
			logger.Info("refund recorded as return", zap.Int64("refund_id", refund.ID))
		}
		return nil

	default:
		logger.Warn("unhandled webhook topic")
		return nil
	}
}

func (s *WebhookService) markProcessed(ctx context.Context, deliveryID string, logger *zap.Logger) {
	if deliveryID == "" {
		return
	}
	if _, err := s.idempotency.MarkProcessed(ctx, deliveryID, s.dedupTTL); err != nil {
		logger.Warn("failed to mark delivery processed", zap.Error(err))
	}
}
