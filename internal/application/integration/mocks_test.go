package integration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/logida/backend/internal/domain/catalog"
	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/inventory"
	"github.com/logida/backend/internal/domain/partner"
	"github.com/logida/backend/internal/domain/trade"
)

// MockIntegrationRepository is a mock implementation of integration.Repository
type MockIntegrationRepository struct {
	mock.Mock
}

func (m *MockIntegrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Integration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*integration.Integration, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindByShopForTenant(ctx context.Context, tenantID uuid.UUID, platform integration.Platform, shopDomain string) (*integration.Integration, error) {
	args := m.Called(ctx, tenantID, platform, shopDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) FindActiveByShop(ctx context.Context, platform integration.Platform, shopDomain string) (*integration.Integration, error) {
	args := m.Called(ctx, platform, shopDomain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID, platform integration.Platform) ([]integration.Integration, error) {
	args := m.Called(ctx, tenantID, platform)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Integration), args.Error(1)
}

func (m *MockIntegrationRepository) Save(ctx context.Context, i *integration.Integration) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockIntegrationRepository) Update(ctx context.Context, i *integration.Integration) error {
	args := m.Called(ctx, i)
	return args.Error(0)
}

func (m *MockIntegrationRepository) DeactivateByShop(ctx context.Context, platform integration.Platform, shopDomain string) error {
	args := m.Called(ctx, platform, shopDomain)
	return args.Error(0)
}

// MockShippingMappingRepository is a mock implementation of integration.ShippingMethodMappingRepository
type MockShippingMappingRepository struct {
	mock.Mock
}

func (m *MockShippingMappingRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*integration.ShippingMethodMapping, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShippingMethodMapping), args.Error(1)
}

func (m *MockShippingMappingRepository) FindByExternalMethod(ctx context.Context, tenantID uuid.UUID, externalMethod string) (*integration.ShippingMethodMapping, error) {
	args := m.Called(ctx, tenantID, externalMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShippingMethodMapping), args.Error(1)
}

func (m *MockShippingMappingRepository) ListByTenant(ctx context.Context, tenantID uuid.UUID) ([]integration.ShippingMethodMapping, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ShippingMethodMapping), args.Error(1)
}

func (m *MockShippingMappingRepository) Save(ctx context.Context, mapping *integration.ShippingMethodMapping) error {
	args := m.Called(ctx, mapping)
	return args.Error(0)
}

func (m *MockShippingMappingRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockShopifyGateway is a mock implementation of integration.ShopifyGateway
type MockShopifyGateway struct {
	mock.Mock
}

func (m *MockShopifyGateway) AuthorizeURL(shopDomain, state string) string {
	args := m.Called(shopDomain, state)
	return args.String(0)
}

func (m *MockShopifyGateway) ExchangeAccessToken(ctx context.Context, shopDomain, code string) (string, error) {
	args := m.Called(ctx, shopDomain, code)
	return args.String(0), args.Error(1)
}

func (m *MockShopifyGateway) GetShop(ctx context.Context, shopDomain, accessToken string) (*integration.ShopifyShop, error) {
	args := m.Called(ctx, shopDomain, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopifyShop), args.Error(1)
}

func (m *MockShopifyGateway) CreateWebhook(ctx context.Context, shopDomain, accessToken, topic, address string) (*integration.ShopifyWebhook, error) {
	args := m.Called(ctx, shopDomain, accessToken, topic, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopifyWebhook), args.Error(1)
}

func (m *MockShopifyGateway) ListLocations(ctx context.Context, shopDomain, accessToken string) ([]integration.ShopifyLocation, error) {
	args := m.Called(ctx, shopDomain, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ShopifyLocation), args.Error(1)
}

func (m *MockShopifyGateway) CreateLocation(ctx context.Context, shopDomain, accessToken string, location integration.ShopifyLocation) (*integration.ShopifyLocation, error) {
	args := m.Called(ctx, shopDomain, accessToken, location)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopifyLocation), args.Error(1)
}

func (m *MockShopifyGateway) ListProductsPage(ctx context.Context, shopDomain, accessToken, pageInfo string) ([]integration.ShopifyProduct, string, error) {
	args := m.Called(ctx, shopDomain, accessToken, pageInfo)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]integration.ShopifyProduct), args.String(1), args.Error(2)
}

func (m *MockShopifyGateway) ListOrdersPage(ctx context.Context, shopDomain, accessToken, pageInfo string, since *time.Time) ([]integration.ShopifyOrder, string, error) {
	args := m.Called(ctx, shopDomain, accessToken, pageInfo, since)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]integration.ShopifyOrder), args.String(1), args.Error(2)
}

func (m *MockShopifyGateway) SetInventoryLevel(ctx context.Context, shopDomain, accessToken string, locationID, inventoryItemID int64, available int) error {
	args := m.Called(ctx, shopDomain, accessToken, locationID, inventoryItemID, available)
	return args.Error(0)
}

func (m *MockShopifyGateway) ListFulfillmentOrders(ctx context.Context, shopDomain, accessToken string, orderID int64) ([]integration.ShopifyFulfillmentOrder, error) {
	args := m.Called(ctx, shopDomain, accessToken, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.ShopifyFulfillmentOrder), args.Error(1)
}

func (m *MockShopifyGateway) CreateFulfillment(ctx context.Context, shopDomain, accessToken string, req integration.FulfillmentRequest) (*integration.ShopifyFulfillment, error) {
	args := m.Called(ctx, shopDomain, accessToken, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopifyFulfillment), args.Error(1)
}

func (m *MockShopifyGateway) UpdateFulfillmentTracking(ctx context.Context, shopDomain, accessToken string, fulfillmentID int64, tracking integration.ShopifyTrackingInfo, notifyCustomer bool) (*integration.ShopifyFulfillment, error) {
	args := m.Called(ctx, shopDomain, accessToken, fulfillmentID, tracking, notifyCustomer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopifyFulfillment), args.Error(1)
}

func (m *MockShopifyGateway) UpdateProductStatus(ctx context.Context, shopDomain, accessToken string, productID int64, status string) (*integration.ShopifyProduct, error) {
	args := m.Called(ctx, shopDomain, accessToken, productID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ShopifyProduct), args.Error(1)
}

// MockProductRepository is a mock implementation of catalog.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByShopifyProductID(ctx context.Context, tenantID uuid.UUID, source string, shopifyProductID int64) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, source, shopifyProductID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ListExternallyLinked(ctx context.Context, tenantID uuid.UUID, source string) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

// MockCustomerRepository is a mock implementation of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

// MockWarehouseRepository is a mock implementation of partner.WarehouseRepository
type MockWarehouseRepository struct {
	mock.Mock
}

func (m *MockWarehouseRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Warehouse, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) FindDefaultForTenant(ctx context.Context, tenantID uuid.UUID) (*partner.Warehouse, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Warehouse), args.Error(1)
}

func (m *MockWarehouseRepository) Save(ctx context.Context, warehouse *partner.Warehouse) error {
	args := m.Called(ctx, warehouse)
	return args.Error(0)
}

// MockCarrierRepository is a mock implementation of partner.CarrierRepository
type MockCarrierRepository struct {
	mock.Mock
}

func (m *MockCarrierRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Carrier, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Carrier), args.Error(1)
}

func (m *MockCarrierRepository) FindServiceByIDForTenant(ctx context.Context, tenantID, serviceID uuid.UUID) (*partner.CarrierService, error) {
	args := m.Called(ctx, tenantID, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.CarrierService), args.Error(1)
}

func (m *MockCarrierRepository) Save(ctx context.Context, carrier *partner.Carrier) error {
	args := m.Called(ctx, carrier)
	return args.Error(0)
}

func (m *MockCarrierRepository) SaveService(ctx context.Context, service *partner.CarrierService) error {
	args := m.Called(ctx, service)
	return args.Error(0)
}

// MockSalesOrderRepository is a mock implementation of trade.SalesOrderRepository
type MockSalesOrderRepository struct {
	mock.Mock
}

func (m *MockSalesOrderRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) FindByExternalOrderID(ctx context.Context, tenantID uuid.UUID, source, externalOrderID string) (*trade.SalesOrder, error) {
	args := m.Called(ctx, tenantID, source, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesOrder), args.Error(1)
}

func (m *MockSalesOrderRepository) Save(ctx context.Context, order *trade.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockSalesOrderRepository) Update(ctx context.Context, order *trade.SalesOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

// MockSalesReturnRepository is a mock implementation of trade.SalesReturnRepository
type MockSalesReturnRepository struct {
	mock.Mock
}

func (m *MockSalesReturnRepository) FindByOrderAndExternalID(ctx context.Context, orderID uuid.UUID, externalID string) (*trade.SalesReturn, error) {
	args := m.Called(ctx, orderID, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.SalesReturn), args.Error(1)
}

func (m *MockSalesReturnRepository) Save(ctx context.Context, ret *trade.SalesReturn) error {
	args := m.Called(ctx, ret)
	return args.Error(0)
}

// MockInventoryRepository is a mock implementation of inventory.Repository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) ListByProductAndStatus(ctx context.Context, tenantID, productID uuid.UUID, status inventory.StockStatus) ([]inventory.InventoryRecord, error) {
	args := m.Called(ctx, tenantID, productID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRepository) Update(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, deliveryID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, deliveryID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, deliveryID string) (bool, error) {
	args := m.Called(ctx, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
