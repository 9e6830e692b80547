package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/logida/backend/internal/domain/shared"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// ExternalLink records where a product originated when it was synced from an
// external commerce platform. A zero value means the product is local-only.
type ExternalLink struct {
	ExternalSource   string `gorm:"type:varchar(50);column:external_source;index"`
	ExternalID       string `gorm:"type:varchar(100);column:external_id"`
	ShopifyProductID int64  `gorm:"column:shopify_product_id;index"`
	ShopifyVariantID int64  `gorm:"column:shopify_variant_id"`
	InventoryItemID  int64  `gorm:"column:inventory_item_id"`
	ShopDomain       string `gorm:"type:varchar(255);column:shop_domain"`
}

// Product represents a stock-keeping unit in the catalog.
// SKU is unique per tenant and doubles as the matching key for externally
// synced variants; SKUs are stored exactly as received because external
// matching must be byte-exact.
type Product struct {
	shared.TenantAggregateRoot
	SKU         string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_product_tenant_sku,priority:2"`
	Name        string          `gorm:"type:varchar(300);not null"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	WeightGrams int             `gorm:"not null;default:0"`
	Status      ProductStatus   `gorm:"type:varchar(20);not null;default:'active'"`
	External    ExternalLink    `gorm:"embedded"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID uuid.UUID, sku, name string) (*Product, error) {
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SKU:                 sku,
		Name:                name,
		Price:               decimal.Zero,
		Status:              ProductStatusActive,
	}, nil
}

// UpdateDetails updates the product's descriptive fields
func (p *Product) UpdateDetails(name, description string) error {
	if err := validateName(name); err != nil {
		return err
	}

	p.Name = name
	p.Description = description
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetPrice sets the selling price
func (p *Product) SetPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	p.Price = price
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// SetWeight sets the unit weight in grams
func (p *Product) SetWeight(grams int) error {
	if grams < 0 {
		return shared.NewDomainError("INVALID_WEIGHT", "Weight cannot be negative")
	}

	p.WeightGrams = grams
	p.UpdatedAt = time.Now()
	p.IncrementVersion()

	return nil
}

// LinkExternal attaches external-platform origin metadata
func (p *Product) LinkExternal(link ExternalLink) {
	p.External = link
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Activate activates the product
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// Deactivate deactivates the product. Deactivation is the only removal
// path for synced products so that order history keeps valid references.
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.UpdatedAt = time.Now()
	p.IncrementVersion()
}

// SetActive sets the status from a boolean flag
func (p *Product) SetActive(active bool) {
	if active {
		p.Activate()
	} else {
		p.Deactivate()
	}
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// IsExternallyLinked returns true if the product originated from an
// external platform
func (p *Product) IsExternallyLinked() bool {
	return p.External.ExternalSource != ""
}

func validateSKU(sku string) error {
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 100 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 100 characters")
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 300 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 300 characters")
	}
	return nil
}
