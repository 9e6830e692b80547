package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/logida/backend/internal/domain/catalog"
	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/inventory"
	"github.com/logida/backend/internal/domain/partner"
	"github.com/logida/backend/internal/domain/shared"
	"github.com/logida/backend/internal/domain/trade"
)

// SyncService is the reconciliation engine: pull-based catch-up syncs for
// orders and products, and push operations for inventory levels,
// fulfillments and product status. Webhooks keep state fresh in real time;
// these runs repair whatever webhooks missed.
type SyncService struct {
	integrations integration.Repository
	products     catalog.ProductRepository
	orders       trade.SalesOrderRepository
	inventory    inventory.Repository
	carriers     partner.CarrierRepository
	importer     *Importer
	gateway      integration.ShopifyGateway
	maxPages     int
	locationName string
	logger       *zap.Logger
}

// NewSyncService creates a new SyncService. maxPages bounds every paginated
// pull as a runaway guard.
func NewSyncService(
	integrations integration.Repository,
	products catalog.ProductRepository,
	orders trade.SalesOrderRepository,
	inventoryRepo inventory.Repository,
	carriers partner.CarrierRepository,
	importer *Importer,
	gateway integration.ShopifyGateway,
	maxPages int,
	locationName string,
	logger *zap.Logger,
) *SyncService {
	return &SyncService{
		integrations: integrations,
		products:     products,
		orders:       orders,
		inventory:    inventoryRepo,
		carriers:     carriers,
		importer:     importer,
		gateway:      gateway,
		maxPages:     maxPages,
		locationName: locationName,
		logger:       logger,
	}
}

// loadActive loads a tenant's integration and checks it is usable
func (s *SyncService) loadActive(ctx context.Context, tenantID, integrationID uuid.UUID) (*integration.Integration, error) {
	inte, err := s.integrations.FindByIDForTenant(ctx, tenantID, integrationID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	if !inte.IsActive {
		return nil, integration.ErrIntegrationInactive
	}
	return inte, nil
}

// recordFailure stamps the error on the integration, best effort
func (s *SyncService) recordFailure(ctx context.Context, inte *integration.Integration, cause error) {
	inte.RecordSyncFailure(cause)
	if err := s.integrations.Update(ctx, inte); err != nil {
		s.logger.Warn("failed to record sync failure", zap.Error(err))
	}
}

// ---------------------------------------------------------------------------
// Pull syncs
// ---------------------------------------------------------------------------

// SyncProducts pulls the shop's full catalog and upserts every variant as a
// local product, following pagination cursors to the end
func (s *SyncService) SyncProducts(ctx context.Context, tenantID, integrationID uuid.UUID) (*ProductSyncResult, error) {
	inte, err := s.loadActive(ctx, tenantID, integrationID)
	if err != nil {
		return nil, err
	}
	if !inte.SyncProducts {
		return nil, integration.ErrSyncDisabled
	}

	result := &ProductSyncResult{}
	cursor := ""
	for page := 0; page < s.maxPages; page++ {
		products, next, err := s.gateway.ListProductsPage(ctx, inte.ShopDomain(), inte.AccessToken(), cursor)
		if err != nil {
			s.recordFailure(ctx, inte, err)
			return nil, err
		}
		result.Pages++

		for _, sp := range products {
			created, updated, err := s.importer.upsertProduct(ctx, inte, sp)
			if err != nil {
				s.logger.Warn("product skipped",
					zap.Int64("shopify_product_id", sp.ID),
					zap.Error(err),
				)
				result.Skipped++
				continue
			}
			result.Created += created
			result.Updated += updated
		}

		if next == "" {
			break
		}
		cursor = next
	}

	inte.ClearError()
	if err := s.integrations.Update(ctx, inte); err != nil {
		return nil, err
	}

	s.logger.Info("product sync completed",
		zap.String("shop_domain", inte.ShopDomain()),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Int("pages", result.Pages),
	)
	return result, nil
}

// SyncOrders pulls orders created since the last successful run and imports
// the ones not yet present. A first run pulls the shop's full history.
func (s *SyncService) SyncOrders(ctx context.Context, tenantID, integrationID uuid.UUID) (*OrderSyncResult, error) {
	inte, err := s.loadActive(ctx, tenantID, integrationID)
	if err != nil {
		return nil, err
	}
	if !inte.SyncOrders {
		return nil, integration.ErrSyncDisabled
	}

	since := inte.LastOrderSyncAt

	result := &OrderSyncResult{}
	cursor := ""
	for page := 0; page < s.maxPages; page++ {
		orders, next, err := s.gateway.ListOrdersPage(ctx, inte.ShopDomain(), inte.AccessToken(), cursor, since)
		if err != nil {
			s.recordFailure(ctx, inte, err)
			return nil, err
		}
		result.Pages++

		for _, so := range orders {
			created, err := s.importer.importOrder(ctx, inte, so)
			if err != nil {
				if errors.Is(err, integration.ErrNoWarehouseConfigured) {
					s.recordFailure(ctx, inte, err)
					return nil, err
				}
				s.logger.Warn("order skipped",
					zap.Int64("shopify_order_id", so.ID),
					zap.Error(err),
				)
				result.Skipped++
				continue
			}
			if created {
				result.Imported++
			} else {
				result.Skipped++
			}
		}

		if next == "" {
			break
		}
		cursor = next
	}

	inte.RecordSyncSuccess(integration.SyncResourceOrders)
	if err := s.integrations.Update(ctx, inte); err != nil {
		return nil, err
	}

	s.logger.Info("order sync completed",
		zap.String("shop_domain", inte.ShopDomain()),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// ---------------------------------------------------------------------------
// Push operations
// ---------------------------------------------------------------------------

// SyncInventory pushes each linked product's available quantity to the
// shop's fulfillment location. Available is on-hand minus reserved, summed
// over available-status records across all warehouses; damaged and
// quarantined stock never reaches the storefront.
func (s *SyncService) SyncInventory(ctx context.Context, tenantID, integrationID uuid.UUID) (*InventorySyncResult, error) {
	inte, err := s.loadActive(ctx, tenantID, integrationID)
	if err != nil {
		return nil, err
	}
	if !inte.SyncInventory {
		return nil, integration.ErrSyncDisabled
	}

	locationID, err := ensureFulfillmentLocation(ctx, s.gateway, inte, s.locationName)
	if err != nil {
		s.recordFailure(ctx, inte, integration.ErrNoFulfillmentLocation)
		return nil, integration.ErrNoFulfillmentLocation
	}

	linked, err := s.products.ListExternallyLinked(ctx, tenantID, inte.Platform.String())
	if err != nil {
		return nil, err
	}

	result := &InventorySyncResult{}
	for idx := range linked {
		product := &linked[idx]
		if product.External.InventoryItemID == 0 {
			result.Skipped++
			continue
		}

		records, err := s.inventory.ListByProductAndStatus(ctx, tenantID, product.ID, inventory.StockStatusAvailable)
		if err != nil {
			return nil, err
		}
		available := inventory.TotalAvailable(records)

		if err := s.gateway.SetInventoryLevel(ctx, inte.ShopDomain(), inte.AccessToken(), locationID, product.External.InventoryItemID, int(available.IntPart())); err != nil {
			s.logger.Warn("inventory push skipped",
				zap.String("sku", product.SKU),
				zap.Error(err),
			)
			result.Skipped++
			continue
		}
		result.Pushed++
	}

	inte.RecordSyncSuccess(integration.SyncResourceInventory)
	if err := s.integrations.Update(ctx, inte); err != nil {
		return nil, err
	}

	s.logger.Info("inventory sync completed",
		zap.String("shop_domain", inte.ShopDomain()),
		zap.Int("pushed", result.Pushed),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// PushFulfillment creates a fulfillment with tracking on the platform for a
// shipped order, or updates the tracking on the fulfillment created earlier
func (s *SyncService) PushFulfillment(ctx context.Context, tenantID uuid.UUID, req PushFulfillmentRequest) (*FulfillmentResult, error) {
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, req.OrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if !order.IsExternallySourced() {
		return nil, integration.ErrOrderNotExternal
	}

	inte, err := s.integrations.FindByShopForTenant(ctx, tenantID, integration.PlatformShopify, order.External.ShopDomain)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	if !inte.IsActive {
		return nil, integration.ErrIntegrationInactive
	}

	tracking := s.trackingInfo(ctx, tenantID, order, req.TrackingNumber)
	notify := true
	if req.NotifyCustomer != nil {
		notify = *req.NotifyCustomer
	}

	// repeated push only updates tracking on the existing fulfillment
	if order.External.ShopifyFulfillmentID != 0 {
		if _, err := s.gateway.UpdateFulfillmentTracking(ctx, inte.ShopDomain(), inte.AccessToken(), order.External.ShopifyFulfillmentID, tracking, notify); err != nil {
			return nil, err
		}
		return &FulfillmentResult{
			OrderID:              order.ID,
			ShopifyFulfillmentID: order.External.ShopifyFulfillmentID,
			TrackingNumber:       tracking.Number,
			TrackingURL:          tracking.URL,
			Updated:              true,
		}, nil
	}

	fulfillmentOrders, err := s.gateway.ListFulfillmentOrders(ctx, inte.ShopDomain(), inte.AccessToken(), order.External.ShopifyOrderID)
	if err != nil {
		return nil, err
	}

	var target *integration.ShopifyFulfillmentOrder
	for idx := range fulfillmentOrders {
		if fulfillmentOrders[idx].Status == "open" || fulfillmentOrders[idx].Status == "in_progress" {
			target = &fulfillmentOrders[idx]
			break
		}
	}
	if target == nil {
		return nil, integration.ErrNoFulfillmentOrder
	}

	fulfillment, err := s.gateway.CreateFulfillment(ctx, inte.ShopDomain(), inte.AccessToken(), integration.FulfillmentRequest{
		FulfillmentOrderID: target.ID,
		LineItems:          target.LineItems,
		Tracking:           tracking,
		NotifyCustomer:     notify,
	})
	if err != nil {
		return nil, err
	}

	order.SetShopifyFulfillmentID(fulfillment.ID)
	if order.Status != trade.OrderStatusShipped {
		if err := order.MarkShipped(); err != nil {
			return nil, err
		}
	}
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("fulfillment pushed",
		zap.String("order_number", order.OrderNumber),
		zap.Int64("shopify_fulfillment_id", fulfillment.ID),
	)
	return &FulfillmentResult{
		OrderID:              order.ID,
		ShopifyFulfillmentID: fulfillment.ID,
		TrackingNumber:       tracking.Number,
		TrackingURL:          tracking.URL,
	}, nil
}

// trackingInfo builds the tracking payload, expanding the carrier's URL
// template when the order has a carrier assigned
func (s *SyncService) trackingInfo(ctx context.Context, tenantID uuid.UUID, order *trade.SalesOrder, trackingNumber string) integration.ShopifyTrackingInfo {
	tracking := integration.ShopifyTrackingInfo{Number: trackingNumber}

	if order.CarrierID == nil {
		return tracking
	}
	carrier, err := s.carriers.FindByIDForTenant(ctx, tenantID, *order.CarrierID)
	if err != nil {
		s.logger.Warn("carrier lookup failed for tracking info", zap.Error(err))
		return tracking
	}

	tracking.Company = carrier.Name
	tracking.URL = carrier.TrackingURL(trackingNumber)
	return tracking
}

// PushProductStatus mirrors a local product's active state to the platform
// product's status
func (s *SyncService) PushProductStatus(ctx context.Context, tenantID uuid.UUID, req PushProductStatusRequest) error {
	product, err := s.products.FindByIDForTenant(ctx, tenantID, req.ProductID)
	if err != nil {
		return err
	}
	if !product.IsExternallyLinked() {
		return integration.ErrProductNotExternal
	}

	inte, err := s.integrations.FindByShopForTenant(ctx, tenantID, integration.PlatformShopify, product.External.ShopDomain)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return integration.ErrIntegrationNotFound
		}
		return err
	}
	if !inte.IsActive {
		return integration.ErrIntegrationInactive
	}

	status := "draft"
	if product.IsActive() {
		status = "active"
	}

	_, err = s.gateway.UpdateProductStatus(ctx, inte.ShopDomain(), inte.AccessToken(), product.External.ShopifyProductID, status)
	return err
}
