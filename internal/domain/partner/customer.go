package partner

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/logida/backend/internal/domain/shared"
)

// Customer represents a buyer. Customers are matched by (tenant, email) and
// are created lazily when an external order references an unseen email.
type Customer struct {
	shared.TenantAggregateRoot
	Email          string `gorm:"type:varchar(255);not null;uniqueIndex:idx_customer_tenant_email,priority:2"`
	FirstName      string `gorm:"type:varchar(100)"`
	LastName       string `gorm:"type:varchar(100)"`
	Phone          string `gorm:"type:varchar(50)"`
	ExternalID     string `gorm:"type:varchar(100)"`
	ExternalSource string `gorm:"type:varchar(50)"`
}

// TableName returns the table name for GORM
func (Customer) TableName() string {
	return "customers"
}

// NewCustomer creates a new customer
func NewCustomer(tenantID uuid.UUID, email, firstName, lastName, phone string) (*Customer, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Customer email cannot be empty")
	}
	if !strings.Contains(email, "@") {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Customer email is malformed")
	}

	return &Customer{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Email:               email,
		FirstName:           firstName,
		LastName:            lastName,
		Phone:               phone,
	}, nil
}

// MarkExternal records the external-platform origin of the customer
func (c *Customer) MarkExternal(source, externalID string) {
	c.ExternalSource = source
	c.ExternalID = externalID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// FullName returns the customer's display name
func (c *Customer) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// CustomerRepository defines persistence operations for customers
type CustomerRepository interface {
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Customer, error)
	FindByEmail(ctx context.Context, tenantID uuid.UUID, email string) (*Customer, error)
	Save(ctx context.Context, customer *Customer) error
}
