package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

var errDuplicateKey = errors.New("duplicate key value violates unique constraint")

type importerMocks struct {
	products   *MockProductRepository
	customers  *MockCustomerRepository
	warehouses *MockWarehouseRepository
	orders     *MockSalesOrderRepository
	returns    *MockSalesReturnRepository
	mappings   *MockShippingMappingRepository
}

func newTestImporter() (*Importer, *importerMocks) {
	m := &importerMocks{
		products:   new(MockProductRepository),
		customers:  new(MockCustomerRepository),
		warehouses: new(MockWarehouseRepository),
		orders:     new(MockSalesOrderRepository),
		returns:    new(MockSalesReturnRepository),
		mappings:   new(MockShippingMappingRepository),
	}
	isDuplicate := func(err error) bool { return errors.Is(err, errDuplicateKey) }
	im := NewImporter(m.products, m.customers, m.warehouses, m.orders, m.returns, m.mappings, isDuplicate, zap.NewNop())
	return im, m
}

func testIntegration(t *testing.T) *integration.Integration {
	t.Helper()
	inte, err := integration.NewIntegration(uuid.New(), integration.PlatformShopify, "Test Shop", integration.ShopifyCredentials{
		ShopDomain:  "test-shop.myshopify.com",
		AccessToken: "shpat_test",
	})
	require.NoError(t, err)
	return inte
}

func TestVariantSKU(t *testing.T) {
	t.Run("uses variant SKU when present", func(t *testing.T) {
		assert.Equal(t, "WIDGET-1", variantSKU(integration.ShopifyVariant{ID: 9001, SKU: "WIDGET-1"}))
	})

	t.Run("falls back to deterministic placeholder", func(t *testing.T) {
		assert.Equal(t, "SHOPIFY-9001", variantSKU(integration.ShopifyVariant{ID: 9001}))
	})
}

func TestVariantName(t *testing.T) {
	p := integration.ShopifyProduct{Title: "Widget"}

	assert.Equal(t, "Widget", variantName(p, integration.ShopifyVariant{Title: "Default Title"}))
	assert.Equal(t, "Widget", variantName(p, integration.ShopifyVariant{}))
	assert.Equal(t, "Widget - Blue / L", variantName(p, integration.ShopifyVariant{Title: "Blue / L"}))
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "Great product", stripHTML("<p>Great <b>product</b></p>"))
	assert.Equal(t, "plain", stripHTML("plain"))
	assert.Empty(t, stripHTML("<div></div>"))
}

func TestParseAmount(t *testing.T) {
	assert.True(t, parseAmount("19.99").Equal(decimal.RequireFromString("19.99")))
	assert.True(t, parseAmount("").IsZero())
	assert.True(t, parseAmount("not-a-number").IsZero())
}

func TestOrderPriority(t *testing.T) {
	assert.Equal(t, 10, orderPriority("vip, Priority, wholesale"))
	assert.Equal(t, 10, orderPriority("PRIORITY"))
	assert.Equal(t, 5, orderPriority("vip, wholesale"))
	assert.Equal(t, 5, orderPriority(""))
	// substring is not a match
	assert.Equal(t, 5, orderPriority("high-priority"))
}

func TestUpsertProduct(t *testing.T) {
	ctx := context.Background()

	sp := integration.ShopifyProduct{
		ID:       111,
		Title:    "Widget",
		BodyHTML: "<p>A fine widget</p>",
		Status:   "active",
		Variants: []integration.ShopifyVariant{
			{ID: 1, SKU: "WIDGET-1", Title: "Default Title", Price: "19.99", Grams: 250, InventoryItemID: 501},
			{ID: 2, Title: "Blue / L", Price: "21.99", Grams: 300, InventoryItemID: 502},
		},
	}

	t.Run("creates products for unknown SKUs with placeholder fallback", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(nil, shared.ErrNotFound)
		m.products.On("FindBySKU", ctx, inte.TenantID, "SHOPIFY-2").Return(nil, shared.ErrNotFound)

		var saved []*catalog.Product
		m.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Run(func(args mock.Arguments) {
			saved = append(saved, args.Get(1).(*catalog.Product))
		}).Return(nil)

		created, updated, err := im.upsertProduct(ctx, inte, sp)

		require.NoError(t, err)
		assert.Equal(t, 2, created)
		assert.Equal(t, 0, updated)
		require.Len(t, saved, 2)
		assert.Equal(t, "WIDGET-1", saved[0].SKU)
		assert.Equal(t, "Widget", saved[0].Name)
		assert.Equal(t, "A fine widget", saved[0].Description)
		assert.Equal(t, "SHOPIFY-2", saved[1].SKU)
		assert.Equal(t, "Widget - Blue / L", saved[1].Name)
		assert.Equal(t, int64(502), saved[1].External.InventoryItemID)
		assert.Equal(t, "test-shop.myshopify.com", saved[1].External.ShopDomain)
	})

	t.Run("updates existing products matched by SKU", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		existing, err := catalog.NewProduct(inte.TenantID, "WIDGET-1", "Old Name")
		require.NoError(t, err)

		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(existing, nil)
		m.products.On("FindBySKU", ctx, inte.TenantID, "SHOPIFY-2").Return(nil, shared.ErrNotFound)
		m.products.On("Update", ctx, existing).Return(nil)
		m.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		created, updated, err := im.upsertProduct(ctx, inte, sp)

		require.NoError(t, err)
		assert.Equal(t, 1, created)
		assert.Equal(t, 1, updated)
		assert.Equal(t, "Widget", existing.Name)
		assert.True(t, existing.Price.Equal(decimal.RequireFromString("19.99")))
		assert.Equal(t, int64(111), existing.External.ShopifyProductID)
	})

	t.Run("draft status deactivates the product", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		draft := sp
		draft.Status = "draft"
		draft.Variants = draft.Variants[:1]

		var saved *catalog.Product
		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(nil, shared.ErrNotFound)
		m.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*catalog.Product)
		}).Return(nil)

		_, _, err := im.upsertProduct(ctx, inte, draft)

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.False(t, saved.IsActive())
	})

	t.Run("concurrent duplicate insert counts as update", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		single := sp
		single.Variants = single.Variants[:1]

		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(nil, shared.ErrNotFound)
		m.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(errDuplicateKey)

		created, updated, err := im.upsertProduct(ctx, inte, single)

		require.NoError(t, err)
		assert.Equal(t, 0, created)
		assert.Equal(t, 1, updated)
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()

	sp := integration.ShopifyProduct{
		ID:     111,
		Title:  "Widget",
		Status: "active",
		Variants: []integration.ShopifyVariant{
			{ID: 1, SKU: "WIDGET-1", Title: "Default Title", Price: "19.99", Grams: 250, InventoryItemID: 501},
		},
	}

	t.Run("creates product for unknown SKU", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		var saved *catalog.Product
		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(nil, shared.ErrNotFound)
		m.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*catalog.Product)
		}).Return(nil)

		created, err := im.createProduct(ctx, inte, sp)

		require.NoError(t, err)
		assert.Equal(t, 1, created)
		require.NotNil(t, saved)
		assert.Equal(t, "WIDGET-1", saved.SKU)
		assert.Equal(t, int64(111), saved.External.ShopifyProductID)
	})

	t.Run("existing SKU is left untouched", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		existing, err := catalog.NewProduct(inte.TenantID, "WIDGET-1", "Local Name")
		require.NoError(t, err)
		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(existing, nil)

		created, err := im.createProduct(ctx, inte, sp)

		require.NoError(t, err)
		assert.Equal(t, 0, created)
		assert.Equal(t, "Local Name", existing.Name)
		m.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		m.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("concurrent duplicate insert is absorbed", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(nil, shared.ErrNotFound)
		m.products.On("Save", ctx, mock.AnythingOfType("*catalog.Product")).Return(errDuplicateKey)

		created, err := im.createProduct(ctx, inte, sp)

		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})
}

func TestRefreshProduct(t *testing.T) {
	ctx := context.Background()

	sp := integration.ShopifyProduct{
		ID:     111,
		Title:  "Widget",
		Status: "active",
		Variants: []integration.ShopifyVariant{
			{ID: 1, SKU: "WIDGET-1", Title: "Default Title", Price: "21.50", Grams: 250, InventoryItemID: 501},
		},
	}

	t.Run("updates existing product matched by SKU", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		existing, err := catalog.NewProduct(inte.TenantID, "WIDGET-1", "Old Name")
		require.NoError(t, err)

		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(existing, nil)
		m.products.On("Update", ctx, existing).Return(nil)

		updated, err := im.refreshProduct(ctx, inte, sp)

		require.NoError(t, err)
		assert.Equal(t, 1, updated)
		assert.Equal(t, "Widget", existing.Name)
		assert.True(t, existing.Price.Equal(decimal.RequireFromString("21.50")))
	})

	t.Run("unknown SKU is never created", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		unseen := sp
		unseen.Variants = []integration.ShopifyVariant{{ID: 2, SKU: "NEW-SKU", Price: "9.99"}}
		m.products.On("FindBySKU", ctx, inte.TenantID, "NEW-SKU").Return(nil, shared.ErrNotFound)

		updated, err := im.refreshProduct(ctx, inte, unseen)

		require.NoError(t, err)
		assert.Equal(t, 0, updated)
		m.products.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		m.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestDeactivateProduct(t *testing.T) {
	ctx := context.Background()
	im, m := newTestImporter()
	inte := testIntegration(t)

	active, err := catalog.NewProduct(inte.TenantID, "WIDGET-1", "Widget")
	require.NoError(t, err)
	inactive, err := catalog.NewProduct(inte.TenantID, "WIDGET-2", "Widget 2")
	require.NoError(t, err)
	inactive.Deactivate()

	m.products.On("FindByShopifyProductID", ctx, inte.TenantID, "shopify", int64(111)).
		Return([]catalog.Product{*active, *inactive}, nil)
	m.products.On("Update", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

	count, err := im.deactivateProduct(ctx, inte, 111)

	require.NoError(t, err)
	assert.Equal(t, 1, count)
	m.products.AssertNumberOfCalls(t, "Update", 1)
}

func testShopifyOrder() integration.ShopifyOrder {
	return integration.ShopifyOrder{
		ID:            880001,
		OrderNumber:   1001,
		Email:         "buyer@example.com",
		CreatedAt:     "2024-03-01T12:00:00Z",
		Tags:          "vip, priority",
		Currency:      "CHF",
		SubtotalPrice: "100.00",
		TotalTax:      "7.70",
		TotalPrice:    "117.70",
		TotalShippingPriceSet: &integration.ShopifyMoneySet{
			ShopMoney: integration.ShopifyMoney{Amount: "10.00", CurrencyCode: "CHF"},
		},
		Customer: &integration.ShopifyCustomer{
			ID:        42,
			Email:     "buyer@example.com",
			FirstName: "Anna",
			LastName:  "Keller",
		},
		ShippingAddress: &integration.ShopifyAddress{
			FirstName:   "Anna",
			LastName:    "Keller",
			Address1:    "Bahnhofstrasse 1",
			City:        "Zürich",
			Zip:         "8001",
			CountryCode: "CH",
		},
		ShippingLines: []integration.ShopifyShippingLine{{Title: "Standard Shipping", Price: "10.00"}},
		LineItems: []integration.ShopifyLineItem{
			{ID: 5001, VariantID: 1, SKU: "WIDGET-1", Name: "Widget", Quantity: 2, Price: "40.00"},
			{ID: 5002, VariantID: 2, Name: "Widget - Blue / L", Quantity: 1, Price: "20.00"},
		},
	}
}

func TestImportOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("creates order with external ref, priority and line fallback SKU", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		warehouse, err := partner.NewWarehouse(inte.TenantID, "WH-MAIN", "Main Warehouse", 10)
		require.NoError(t, err)
		product, err := catalog.NewProduct(inte.TenantID, "WIDGET-1", "Widget")
		require.NoError(t, err)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)
		m.warehouses.On("FindDefaultForTenant", ctx, inte.TenantID).Return(warehouse, nil)
		m.customers.On("FindByEmail", ctx, inte.TenantID, "buyer@example.com").Return(nil, shared.ErrNotFound)
		m.customers.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)
		m.mappings.On("FindByExternalMethod", ctx, inte.TenantID, "Standard Shipping").Return(nil, shared.ErrNotFound)
		m.products.On("FindBySKU", ctx, inte.TenantID, "WIDGET-1").Return(product, nil)
		m.products.On("FindBySKU", ctx, inte.TenantID, "SHOPIFY-2").Return(nil, shared.ErrNotFound)

		var saved *trade.SalesOrder
		m.orders.On("Save", ctx, mock.AnythingOfType("*trade.SalesOrder")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*trade.SalesOrder)
		}).Return(nil)

		created, err := im.importOrder(ctx, inte, testShopifyOrder())

		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, saved)
		assert.Equal(t, "SH-1001", saved.OrderNumber)
		assert.Equal(t, 10, saved.Priority)
		assert.Equal(t, "880001", saved.External.ExternalOrderID)
		assert.Equal(t, int64(880001), saved.External.ShopifyOrderID)
		assert.Equal(t, "test-shop.myshopify.com", saved.External.ShopDomain)
		assert.Equal(t, warehouse.ID, saved.WarehouseID)
		assert.Equal(t, "Anna Keller", saved.Shipping.Name)
		assert.True(t, saved.ShippingAmount.Equal(decimal.RequireFromString("10.00")))
		assert.True(t, saved.Total.Equal(decimal.RequireFromString("117.70")))

		require.Len(t, saved.Lines, 2)
		assert.Equal(t, "WIDGET-1", saved.Lines[0].SKU)
		require.NotNil(t, saved.Lines[0].ProductID)
		assert.Equal(t, product.ID, *saved.Lines[0].ProductID)
		assert.Equal(t, "SHOPIFY-2", saved.Lines[1].SKU)
		assert.Nil(t, saved.Lines[1].ProductID)
	})

	t.Run("skips orders already imported", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		existing := &trade.SalesOrder{}
		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(existing, nil)

		created, err := im.importOrder(ctx, inte, testShopifyOrder())

		require.NoError(t, err)
		assert.False(t, created)
		m.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fails without a configured warehouse", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)
		m.warehouses.On("FindDefaultForTenant", ctx, inte.TenantID).Return(nil, shared.ErrNotFound)

		_, err := im.importOrder(ctx, inte, testShopifyOrder())

		assert.ErrorIs(t, err, integration.ErrNoWarehouseConfigured)
	})

	t.Run("losing the insert race is not an error", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		warehouse, err := partner.NewWarehouse(inte.TenantID, "WH-MAIN", "Main Warehouse", 10)
		require.NoError(t, err)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)
		m.warehouses.On("FindDefaultForTenant", ctx, inte.TenantID).Return(warehouse, nil)
		m.customers.On("FindByEmail", ctx, inte.TenantID, "buyer@example.com").Return(nil, shared.ErrNotFound)
		m.customers.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)
		m.mappings.On("FindByExternalMethod", ctx, inte.TenantID, "Standard Shipping").Return(nil, shared.ErrNotFound)
		m.products.On("FindBySKU", ctx, inte.TenantID, mock.AnythingOfType("string")).Return(nil, shared.ErrNotFound)
		m.orders.On("Save", ctx, mock.AnythingOfType("*trade.SalesOrder")).Return(errDuplicateKey)

		created, err := im.importOrder(ctx, inte, testShopifyOrder())

		require.NoError(t, err)
		assert.False(t, created)
	})

	t.Run("mapped shipping method assigns the carrier", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		warehouse, err := partner.NewWarehouse(inte.TenantID, "WH-MAIN", "Main Warehouse", 10)
		require.NoError(t, err)
		mapping, err := integration.NewShippingMethodMapping(inte.TenantID, inte.ID, "Standard Shipping", uuid.New(), uuid.Nil)
		require.NoError(t, err)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)
		m.warehouses.On("FindDefaultForTenant", ctx, inte.TenantID).Return(warehouse, nil)
		m.customers.On("FindByEmail", ctx, inte.TenantID, "buyer@example.com").Return(nil, shared.ErrNotFound)
		m.customers.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(nil)
		m.mappings.On("FindByExternalMethod", ctx, inte.TenantID, "Standard Shipping").Return(mapping, nil)
		m.products.On("FindBySKU", ctx, inte.TenantID, mock.AnythingOfType("string")).Return(nil, shared.ErrNotFound)

		var saved *trade.SalesOrder
		m.orders.On("Save", ctx, mock.AnythingOfType("*trade.SalesOrder")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*trade.SalesOrder)
		}).Return(nil)

		_, err = im.importOrder(ctx, inte, testShopifyOrder())

		require.NoError(t, err)
		require.NotNil(t, saved)
		require.NotNil(t, saved.CarrierID)
		assert.Equal(t, mapping.CarrierID, *saved.CarrierID)
	})
}

func TestUpdateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("applies address and note changes", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		order, err := trade.NewSalesOrder(inte.TenantID, uuid.New(), "SH-1001", parseOrderTime("2024-03-01T12:00:00Z"))
		require.NoError(t, err)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(order, nil)
		m.orders.On("Update", ctx, order).Return(nil)

		err = im.updateOrder(ctx, inte, integration.ShopifyOrder{
			ID:   880001,
			Note: "leave at the door",
			ShippingAddress: &integration.ShopifyAddress{
				FirstName: "Anna",
				LastName:  "Keller",
				Address1:  "Neugasse 5",
				City:      "Zürich",
			},
		})

		require.NoError(t, err)
		assert.Equal(t, "Anna Keller", order.Shipping.Name)
		assert.Equal(t, "Neugasse 5", order.Shipping.Line1)
		assert.Equal(t, "leave at the door", order.CustomerNote)
	})

	t.Run("unknown order is dropped without creating one", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)

		err := im.updateOrder(ctx, inte, integration.ShopifyOrder{ID: 880001})

		require.NoError(t, err)
		m.orders.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		m.warehouses.AssertNotCalled(t, "FindDefaultForTenant", mock.Anything, mock.Anything)
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	newImportedOrder := func(t *testing.T, tenantID uuid.UUID) *trade.SalesOrder {
		t.Helper()
		order, err := trade.NewSalesOrder(tenantID, uuid.New(), "SH-1001", parseOrderTime("2024-03-01T12:00:00Z"))
		require.NoError(t, err)
		return order
	}

	t.Run("cancels pending order with fallback reason", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)
		order := newImportedOrder(t, inte.TenantID)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(order, nil)
		m.orders.On("Update", ctx, order).Return(nil)

		err := im.cancelOrder(ctx, inte, integration.ShopifyOrder{ID: 880001})

		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusCancelled, order.Status)
		assert.Equal(t, "Cancelled in Shopify", order.CancellationReason)
	})

	t.Run("shipped order is left untouched", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)
		order := newImportedOrder(t, inte.TenantID)
		require.NoError(t, order.MarkShipped())

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(order, nil)

		err := im.cancelOrder(ctx, inte, integration.ShopifyOrder{ID: 880001, CancelReason: "customer"})

		require.NoError(t, err)
		assert.Equal(t, trade.OrderStatusShipped, order.Status)
		m.orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("unknown order is ignored", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)

		assert.NoError(t, im.cancelOrder(ctx, inte, integration.ShopifyOrder{ID: 880001}))
	})
}

func TestImportRefund(t *testing.T) {
	ctx := context.Background()

	refund := integration.ShopifyRefund{
		ID:        770001,
		OrderID:   880001,
		CreatedAt: "2024-03-05T09:00:00Z",
		RefundLineItems: []integration.ShopifyRefundLineItem{
			{LineItemID: 5001, Quantity: 1, RestockType: "return"},
			{LineItemID: 9999, Quantity: 1, RestockType: "no_restock"},
		},
	}

	t.Run("records refund as a return with matched and unmatched lines", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		order, err := trade.NewSalesOrder(inte.TenantID, uuid.New(), "SH-1001", parseOrderTime("2024-03-01T12:00:00Z"))
		require.NoError(t, err)
		require.NoError(t, order.AddLine(nil, "WIDGET-1", "Widget", 2, decimal.RequireFromString("40.00"), "5001"))

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(order, nil)
		m.returns.On("FindByOrderAndExternalID", ctx, order.ID, "770001").Return(nil, shared.ErrNotFound)

		var saved *trade.SalesReturn
		m.returns.On("Save", ctx, mock.AnythingOfType("*trade.SalesReturn")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*trade.SalesReturn)
		}).Return(nil)

		created, err := im.importRefund(ctx, inte, refund)

		require.NoError(t, err)
		assert.True(t, created)
		require.NotNil(t, saved)
		assert.Equal(t, "RET-770001", saved.ReturnNumber)
		assert.Equal(t, "Refund from Shopify", saved.Reason)

		require.Len(t, saved.Lines, 2)
		assert.Equal(t, "WIDGET-1", saved.Lines[0].SKU)
		assert.Equal(t, "Customer Return", saved.Lines[0].Reason)
		require.NotNil(t, saved.Lines[0].OrderLineID)
		assert.Equal(t, "UNKNOWN", saved.Lines[1].SKU)
		assert.Equal(t, "Unknown Item", saved.Lines[1].Name)
		assert.Equal(t, "Refund", saved.Lines[1].Reason)
	})

	t.Run("already recorded refund is skipped", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		order, err := trade.NewSalesOrder(inte.TenantID, uuid.New(), "SH-1001", parseOrderTime("2024-03-01T12:00:00Z"))
		require.NoError(t, err)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(order, nil)
		m.returns.On("FindByOrderAndExternalID", ctx, order.ID, "770001").Return(&trade.SalesReturn{}, nil)

		created, err := im.importRefund(ctx, inte, refund)

		require.NoError(t, err)
		assert.False(t, created)
		m.returns.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("refund for unknown order is dropped", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		m.orders.On("FindByExternalOrderID", ctx, inte.TenantID, "shopify", "880001").Return(nil, shared.ErrNotFound)

		created, err := im.importRefund(ctx, inte, refund)

		require.NoError(t, err)
		assert.False(t, created)
	})
}

func TestUpsertCustomer(t *testing.T) {
	ctx := context.Background()

	t.Run("order without email stays anonymous", func(t *testing.T) {
		im, _ := newTestImporter()
		inte := testIntegration(t)

		id, err := im.upsertCustomer(ctx, inte, integration.ShopifyOrder{})

		require.NoError(t, err)
		assert.Equal(t, uuid.Nil, id)
	})

	t.Run("duplicate insert re-reads the winner", func(t *testing.T) {
		im, m := newTestImporter()
		inte := testIntegration(t)

		winner, err := partner.NewCustomer(inte.TenantID, "buyer@example.com", "Anna", "Keller", "")
		require.NoError(t, err)

		m.customers.On("FindByEmail", ctx, inte.TenantID, "buyer@example.com").Return(nil, shared.ErrNotFound).Once()
		m.customers.On("Save", ctx, mock.AnythingOfType("*partner.Customer")).Return(errDuplicateKey)
		m.customers.On("FindByEmail", ctx, inte.TenantID, "buyer@example.com").Return(winner, nil).Once()

		id, err := im.upsertCustomer(ctx, inte, testShopifyOrder())

		require.NoError(t, err)
		assert.Equal(t, winner.ID, id)
	})
}
