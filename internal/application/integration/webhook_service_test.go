package integration

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/logida/backend/internal/domain/catalog"
	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/partner"
	"github.com/logida/backend/internal/domain/shared"
	"github.com/logida/backend/internal/domain/trade"
)

const testDedupTTL = 24 * time.Hour

type webhookMocks struct {
	integrations *MockIntegrationRepository
	idempotency  *MockIdempotencyStore
	importer     *importerMocks
}

func newTestWebhookService() (*WebhookService, *webhookMocks) {
	im, importerMocks := newTestImporter()
	m := &webhookMocks{
		integrations: new(MockIntegrationRepository),
		idempotency:  new(MockIdempotencyStore),
		importer:     importerMocks,
	}
	svc := NewWebhookService(m.integrations, im, m.idempotency, testDedupTTL, zap.NewNop())
	return svc, m
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return body
}

func TestHandleDeliveryIdempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("duplicate delivery is skipped without any processing", func(t *testing.T) {
		svc, m := newTestWebhookService()

		m.idempotency.On("IsProcessed", ctx, "delivery-1").Return(true, nil)

		err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "orders/create", "delivery-1", []byte(`{}`))

		require.NoError(t, err)
		m.integrations.AssertNotCalled(t, "FindActiveByShop", mock.Anything, mock.Anything, mock.Anything)
		m.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure on check does not block processing", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)
		inte.SyncOrders = false

		m.idempotency.On("IsProcessed", ctx, "delivery-2").Return(false, errors.New("redis down"))
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.idempotency.On("MarkProcessed", ctx, "delivery-2", testDedupTTL).Return(true, nil)

		err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "orders/create", "delivery-2", []byte(`{}`))

		require.NoError(t, err)
	})

	t.Run("failed processing leaves the delivery unmarked", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)

		m.idempotency.On("IsProcessed", ctx, "delivery-3").Return(false, nil)
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.importer.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, errors.New("db down"))

		err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "orders/create", "delivery-3", mustJSON(t, testShopifyOrder()))

		require.Error(t, err)
		m.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("empty delivery ID skips the store entirely", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)
		inte.SyncOrders = false

		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)

		err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "orders/create", "", []byte(`{}`))

		require.NoError(t, err)
		m.idempotency.AssertNotCalled(t, "IsProcessed", mock.Anything, mock.Anything)
		m.idempotency.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestHandleDeliveryUninstall(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestWebhookService()

	m.idempotency.On("IsProcessed", ctx, "delivery-9").Return(false, nil)
	m.integrations.On("DeactivateByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(nil)
	m.idempotency.On("MarkProcessed", ctx, "delivery-9", testDedupTTL).Return(true, nil)

	err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "app/uninstalled", "delivery-9", []byte(`{}`))

	require.NoError(t, err)
	// uninstall never resolves the integration, the shop may already be gone
	m.integrations.AssertNotCalled(t, "FindActiveByShop", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleDeliveryUnknownShop(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestWebhookService()

	m.idempotency.On("IsProcessed", ctx, "delivery-4").Return(false, nil)
	m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "ghost.myshopify.com").Return(nil, shared.ErrNotFound)

	err := svc.HandleDelivery(ctx, "ghost.myshopify.com", "orders/create", "delivery-4", []byte(`{}`))

	assert.ErrorIs(t, err, integration.ErrIntegrationNotFound)
}

func TestHandleDeliveryDispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("orders/create imports the order and marks the delivery", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)

		warehouse, err := partner.NewWarehouse(inte.TenantID, "WH-MAIN", "Main Warehouse", 10)
		require.NoError(t, err)

		m.idempotency.On("IsProcessed", ctx, "delivery-5").Return(false, nil)
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.importer.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)
		m.importer.warehouses.On("FindDefaultForTenant", ctx, inte.TenantID).Return(warehouse, nil)
		m.importer.customers.On("FindByEmail", ctx, inte.TenantID, "buyer@example.com").Return(nil, shared.ErrNotFound)
		m.importer.customers.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)
		m.importer.mappings.On("FindByExternalMethod", ctx, inte.TenantID, "Standard Shipping").Return(nil, shared.ErrNotFound)
		m.importer.products.On("FindBySKU", ctx, inte.TenantID, mock.AnythingOfType("string")).Return(nil, shared.ErrNotFound)

		var saved *trade.SalesOrder
		m.importer.orders.On("Save", ctx, mock.AnythingOfType("*trade.SalesOrder")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*trade.SalesOrder)
		}).Return(nil)
		m.idempotency.On("MarkProcessed", ctx, "delivery-5", testDedupTTL).Return(true, nil)

		err = svc.HandleDelivery(ctx, "test-shop.myshopify.com", "orders/create", "delivery-5", mustJSON(t, testShopifyOrder()))

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "SH-1001", saved.OrderNumber)
		m.idempotency.AssertCalled(t, "MarkProcessed", ctx, "delivery-5", testDedupTTL)
	})

	t.Run("order topics are dropped when order sync is off", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)
		inte.SyncOrders = false

		m.idempotency.On("IsProcessed", ctx, "delivery-6").Return(false, nil)
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.idempotency.On("MarkProcessed", ctx, "delivery-6", testDedupTTL).Return(true, nil)

		err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "orders/create", "delivery-6", mustJSON(t, testShopifyOrder()))

		require.NoError(t, err)
		m.importer.orders.AssertNotCalled(t, "FindByExternalOrderID", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("products/create skips variants whose SKU already exists", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)

		existing, err := catalog.NewProduct(inte.TenantID, "WIDGET-1", "Local Name")
		require.NoError(t, err)

		m.idempotency.On("IsProcessed", ctx, "delivery-9").Return(false, nil)
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.importer.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(existing, nil)
		m.idempotency.On("MarkProcessed", ctx, "delivery-9", testDedupTTL).Return(true, nil)

		body := []byte(`{"id":111,"title":"Widget","status":"active","variants":[{"id":1,"sku":"WIDGET-1","price":"19.99"}]}`)
		err = svc.HandleDelivery(ctx, "test-shop.myshopify.com", "products/create", "delivery-9", body)

		require.NoError(t, err)
		assert.Equal(t, "Local Name", existing.Name)
		m.importer.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		m.importer.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("products/update never creates for an unseen SKU", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)

		m.idempotency.On("IsProcessed", ctx, "delivery-10").Return(false, nil)
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.importer.products.On("FindBySKU", ctx, inte.TenantID, "NEW-SKU").Return(nil, shared.ErrNotFound)
		m.idempotency.On("MarkProcessed", ctx, "delivery-10", testDedupTTL).Return(true, nil)

		body := []byte(`{"id":111,"title":"Widget","status":"active","variants":[{"id":1,"sku":"NEW-SKU","price":"19.99"}]}`)
		err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "products/update", "delivery-10", body)

		require.NoError(t, err)
		m.importer.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		m.importer.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("products/delete deactivates linked products", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)

		linked, err := catalog.NewProduct(inte.TenantID, "WIDGET-1", "Widget")
		require.NoError(t, err)

		m.idempotency.On("IsProcessed", ctx, "delivery-7").Return(false, nil)
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.importer.products.On("FindByShopifyProductID", ctx, inte.TenantID, "shopify", int64(111)).
			Return([]catalog.Product{*linked}, nil)

		var updated *catalog.Product
		m.importer.products.On("Update", ctx, mock.AnythingOfType("*catalog.Product")).Run(func(args mock.Arguments) {
			updated = args.Get(1).(*catalog.Product)
		}).Return(nil)
		m.idempotency.On("MarkProcessed", ctx, "delivery-7", testDedupTTL).Return(true, nil)

		err = svc.HandleDelivery(ctx, "test-shop.myshopify.com", "products/delete", "delivery-7", []byte(`{"id":111}`))

		require.NoError(t, err)
		require.NotNil(t, updated)
		assert.False(t, updated.IsActive())
	})

	t.Run("unknown topic is acknowledged", func(t *testing.T) {
		svc, m := newTestWebhookService()
		inte := testIntegration(t)

		m.idempotency.On("IsProcessed", ctx, "delivery-8").Return(false, nil)
		m.integrations.On("FindActiveByShop", ctx, integration.PlatformShopify, "test-shop.myshopify.com").Return(inte, nil)
		m.idempotency.On("MarkProcessed", ctx, "delivery-8", testDedupTTL).Return(true, nil)

		err := svc.HandleDelivery(ctx, "test-shop.myshopify.com", "checkouts/create", "delivery-8", []byte(`{}`))

		require.NoError(t, err)
	})
}
