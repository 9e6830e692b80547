package trade

import (
	"time"

	"github.com/google/uuid"

	"github.com/logida/backend/internal/domain/shared"
)

// ReturnStatus represents the processing state of a sales return
type ReturnStatus string

const (
	ReturnStatusPending   ReturnStatus = "pending"
	ReturnStatusReceived  ReturnStatus = "received"
	ReturnStatusCompleted ReturnStatus = "completed"
)

// SalesReturn is created from an external refund event. The idempotency key
// is (order, external refund ID): redelivery of the same refund webhook must
// not produce a second return.
type SalesReturn struct {
	shared.TenantAggregateRoot
	OrderID        uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_return_order_external,priority:1"`
	CustomerID     *uuid.UUID   `gorm:"type:uuid"`
	ReturnNumber   string       `gorm:"type:varchar(50);not null"`
	ExternalID     string       `gorm:"type:varchar(100);not null;uniqueIndex:idx_return_order_external,priority:2"`
	ExternalSource string       `gorm:"type:varchar(50)"`
	Status         ReturnStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	ReturnType     string       `gorm:"type:varchar(20);not null;default:'refund'"`
	Reason         string       `gorm:"type:varchar(300)"`
	RequestedAt    time.Time    `gorm:"not null"`

	Lines []ReturnLine `gorm:"foreignKey:ReturnID"`
}

// TableName returns the table name for GORM
func (SalesReturn) TableName() string {
	return "sales_returns"
}

// ReturnLine is one refunded line on a return, matched back to the original
// order line by external line-item ID where possible
type ReturnLine struct {
	shared.BaseEntity
	ReturnID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	OrderLineID *uuid.UUID `gorm:"type:uuid"`
	ProductID   *uuid.UUID `gorm:"type:uuid"`
	SKU         string     `gorm:"type:varchar(100);not null"`
	Name        string     `gorm:"type:varchar(300);not null"`
	Quantity    int        `gorm:"not null"`
	Reason      string     `gorm:"type:varchar(200)"`
}

// TableName returns the table name for GORM
func (ReturnLine) TableName() string {
	return "return_lines"
}

// NewSalesReturn creates a new pending return for an order
func NewSalesReturn(tenantID, orderID uuid.UUID, returnNumber, externalID, externalSource, reason string, requestedAt time.Time) (*SalesReturn, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Return requires an order")
	}
	if returnNumber == "" {
		return nil, shared.NewDomainError("INVALID_RETURN_NUMBER", "Return number cannot be empty")
	}

	return &SalesReturn{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		OrderID:             orderID,
		ReturnNumber:        returnNumber,
		ExternalID:          externalID,
		ExternalSource:      externalSource,
		Status:              ReturnStatusPending,
		ReturnType:          "refund",
		Reason:              reason,
		RequestedAt:         requestedAt,
	}, nil
}

// SetCustomer assigns the customer from the originating order
func (r *SalesReturn) SetCustomer(customerID *uuid.UUID) {
	r.CustomerID = customerID
	r.UpdatedAt = time.Now()
}

// AddLine appends a refunded line
func (r *SalesReturn) AddLine(orderLineID, productID *uuid.UUID, sku, name string, quantity int, reason string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Return line quantity must be positive")
	}

	r.Lines = append(r.Lines, ReturnLine{
		BaseEntity:  shared.NewBaseEntity(),
		ReturnID:    r.ID,
		OrderLineID: orderLineID,
		ProductID:   productID,
		SKU:         sku,
		Name:        name,
		Quantity:    quantity,
		Reason:      reason,
	})
	r.UpdatedAt = time.Now()

	return nil
}
