package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/logida/backend/internal/domain/shared"
)

// OrderStatus represents the fulfillment state of a sales order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPicking   OrderStatus = "picking"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// IsTerminal returns true for states that must never be reopened.
// Cancellation requests for shipped or delivered orders are ignored.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// ShippingAddress is the delivery address captured on an order
type ShippingAddress struct {
	Name        string `gorm:"type:varchar(200);column:shipping_name"`
	Phone       string `gorm:"type:varchar(50);column:shipping_phone"`
	Line1       string `gorm:"type:varchar(300);column:shipping_address_line1"`
	Line2       string `gorm:"type:varchar(300);column:shipping_address_line2"`
	City        string `gorm:"type:varchar(100);column:shipping_city"`
	PostalCode  string `gorm:"type:varchar(20);column:shipping_postal_code"`
	CountryCode string `gorm:"type:varchar(2);column:shipping_country_code"`
}

// ExternalRef records where an order originated when it was ingested from an
// external commerce platform. ExternalOrderID together with the tenant and
// source forms the idempotency key for ingestion.
type ExternalRef struct {
	ExternalSource       string `gorm:"type:varchar(50);column:external_source;index"`
	ExternalOrderID      string `gorm:"type:varchar(100);column:external_order_id"`
	ShopifyOrderID       int64  `gorm:"column:shopify_order_id"`
	ShopDomain           string `gorm:"type:varchar(255);column:shop_domain"`
	ShopifyFulfillmentID int64  `gorm:"column:shopify_fulfillment_id"`
}

// SalesOrder is the aggregate root for outbound orders
type SalesOrder struct {
	shared.TenantAggregateRoot
	OrderNumber      string      `gorm:"type:varchar(50);not null;uniqueIndex:idx_order_tenant_number,priority:2"`
	WarehouseID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	CustomerID       *uuid.UUID  `gorm:"type:uuid;index"`
	CarrierID        *uuid.UUID  `gorm:"type:uuid"`
	CarrierServiceID *uuid.UUID  `gorm:"type:uuid"`
	Status           OrderStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	Priority         int         `gorm:"not null;default:5"`
	OrderPlacedAt    time.Time   `gorm:"not null"`

	External ExternalRef     `gorm:"embedded"`
	Shipping ShippingAddress `gorm:"embedded"`

	Currency       string          `gorm:"type:varchar(3)"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax            decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	CustomerNote       string `gorm:"type:text"`
	CancellationReason string `gorm:"type:varchar(300)"`
	CancelledAt        *time.Time

	Lines []OrderLine `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (SalesOrder) TableName() string {
	return "sales_orders"
}

// OrderLine is one purchasable line on a sales order. ProductID is nullable:
// externally ingested lines that match no local SKU are still recorded so
// nothing is silently dropped.
type OrderLine struct {
	shared.BaseEntity
	OrderID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID      *uuid.UUID      `gorm:"type:uuid;index"`
	SKU            string          `gorm:"type:varchar(100);not null"`
	Name           string          `gorm:"type:varchar(300);not null"`
	Quantity       int             `gorm:"not null"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ExternalLineID string          `gorm:"type:varchar(100);index"`
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// NewSalesOrder creates a new pending sales order
func NewSalesOrder(tenantID, warehouseID uuid.UUID, orderNumber string, placedAt time.Time) (*SalesOrder, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if warehouseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_WAREHOUSE", "Warehouse is required")
	}

	return &SalesOrder{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderNumber:         orderNumber,
		WarehouseID:         warehouseID,
		Status:              OrderStatusPending,
		Priority:            5,
		OrderPlacedAt:       placedAt,
		Subtotal:            decimal.Zero,
		ShippingAmount:      decimal.Zero,
		Tax:                 decimal.Zero,
		Total:               decimal.Zero,
	}, nil
}

// AddLine appends a line to the order
func (o *SalesOrder) AddLine(productID *uuid.UUID, sku, name string, quantity int, unitPrice decimal.Decimal, externalLineID string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "Line SKU cannot be empty")
	}
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be positive")
	}

	o.Lines = append(o.Lines, OrderLine{
		BaseEntity:     shared.NewBaseEntity(),
		OrderID:        o.ID,
		ProductID:      productID,
		SKU:            sku,
		Name:           name,
		Quantity:       quantity,
		UnitPrice:      unitPrice,
		ExternalLineID: externalLineID,
	})
	o.UpdatedAt = time.Now()

	return nil
}

// SetExternalRef attaches external-platform origin metadata
func (o *SalesOrder) SetExternalRef(ref ExternalRef) {
	o.External = ref
	o.UpdatedAt = time.Now()
}

// SetShopifyFulfillmentID records the platform fulfillment created for this
// order so later tracking updates address it directly
func (o *SalesOrder) SetShopifyFulfillmentID(id int64) {
	o.External.ShopifyFulfillmentID = id
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// SetCustomer assigns the customer
func (o *SalesOrder) SetCustomer(customerID uuid.UUID) {
	o.CustomerID = &customerID
	o.UpdatedAt = time.Now()
}

// SetCarrier assigns the resolved carrier and service
func (o *SalesOrder) SetCarrier(carrierID, carrierServiceID uuid.UUID) {
	o.CarrierID = &carrierID
	o.CarrierServiceID = &carrierServiceID
	o.UpdatedAt = time.Now()
}

// SetAmounts sets the monetary totals
func (o *SalesOrder) SetAmounts(currency string, subtotal, shipping, tax, total decimal.Decimal) {
	o.Currency = currency
	o.Subtotal = subtotal
	o.ShippingAmount = shipping
	o.Tax = tax
	o.Total = total
	o.UpdatedAt = time.Now()
}

// UpdateShippingAddress refreshes the delivery address and note. Status is
// intentionally untouched here so external updates cannot clobber internal
// picking and packing transitions.
func (o *SalesOrder) UpdateShippingAddress(addr ShippingAddress, note string) {
	o.Shipping = addr
	o.CustomerNote = note
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
}

// Cancel transitions the order to cancelled. Orders already shipped,
// delivered or cancelled are left unchanged.
func (o *SalesOrder) Cancel(reason string) error {
	if o.Status.IsTerminal() {
		return shared.ErrInvalidState
	}

	now := time.Now()
	o.Status = OrderStatusCancelled
	o.CancellationReason = reason
	o.CancelledAt = &now
	o.UpdatedAt = now
	o.IncrementVersion()

	return nil
}

// MarkShipped transitions the order to shipped
func (o *SalesOrder) MarkShipped() error {
	if o.Status == OrderStatusCancelled || o.Status == OrderStatusDelivered {
		return shared.ErrInvalidState
	}

	o.Status = OrderStatusShipped
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// MarkDelivered transitions the order to delivered
func (o *SalesOrder) MarkDelivered() error {
	if o.Status != OrderStatusShipped {
		return shared.ErrInvalidState
	}

	o.Status = OrderStatusDelivered
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// IsExternallySourced returns true if the order was ingested from an
// external platform
func (o *SalesOrder) IsExternallySourced() bool {
	return o.External.ExternalSource != ""
}

// FindLineByExternalID returns the line matching an external line-item ID
func (o *SalesOrder) FindLineByExternalID(externalLineID string) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ExternalLineID == externalLineID {
			return &o.Lines[i]
		}
	}
	return nil
}
