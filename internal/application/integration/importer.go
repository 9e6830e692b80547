package integration

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/logida/backend/internal/domain/catalog"
	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/partner"
	"github.com/logida/backend/internal/domain/shared"
	"github.com/logida/backend/internal/domain/trade"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// duplicateChecker reports whether an error is a unique-constraint violation
// from the persistence layer. The importer treats those as concurrent
// duplicate ingestion, not failure.
type duplicateChecker func(error) bool

// Importer translates platform payloads into domain aggregates. It is shared
// by webhook ingestion and reconciliation sync so both paths produce
// identical local state for the same payload.
type Importer struct {
	products    catalog.ProductRepository
	customers   partner.CustomerRepository
	warehouses  partner.WarehouseRepository
	orders      trade.SalesOrderRepository
	returns     trade.SalesReturnRepository
	mappings    integration.ShippingMethodMappingRepository
	isDuplicate duplicateChecker
	logger      *zap.Logger
}

func NewImporter(
	products catalog.ProductRepository,
	customers partner.CustomerRepository,
	warehouses partner.WarehouseRepository,
	orders trade.SalesOrderRepository,
	returns trade.SalesReturnRepository,
	mappings integration.ShippingMethodMappingRepository,
	isDuplicate duplicateChecker,
	logger *zap.Logger,
) *Importer {
	return &Importer{
		products:    products,
		customers:   customers,
		warehouses:  warehouses,
		orders:      orders,
		returns:     returns,
		mappings:    mappings,
		isDuplicate: isDuplicate,
		logger:      logger,
	}
}

// ---------------------------------------------------------------------------
// Payload helpers
// ---------------------------------------------------------------------------

// variantSKU returns the variant's SKU, or a deterministic placeholder when
// the merchant left it blank. The placeholder is stable across runs so
// repeated syncs keep matching the same local product.
func variantSKU(v integration.ShopifyVariant) string {
	if v.SKU != "" {
		return v.SKU
	}
	return fmt.Sprintf("SHOPIFY-%d", v.ID)
}

// variantName combines product and variant titles. Single-variant products
// carry the platform's placeholder title, which is dropped.
func variantName(p integration.ShopifyProduct, v integration.ShopifyVariant) string {
	if v.Title == "" || v.Title == "Default Title" {
		return p.Title
	}
	return p.Title + " - " + v.Title
}

// stripHTML reduces a rich-text description to plain text
func stripHTML(s string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(s, ""))
}

// parseAmount converts a platform decimal string, treating absent or
// malformed values as zero rather than failing the whole payload
func parseAmount(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// orderPriority derives the fulfillment priority from the order's tags
func orderPriority(tags string) int {
	for _, tag := range strings.Split(tags, ",") {
		if strings.EqualFold(strings.TrimSpace(tag), "priority") {
			return 10
		}
	}
	return 5
}

// orderNumber builds the local order number from the platform's sequential
// number
func orderNumber(o integration.ShopifyOrder) string {
	return fmt.Sprintf("SH-%d", o.OrderNumber)
}

func parseOrderTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Now()
}

func shippingAddressFrom(a *integration.ShopifyAddress) trade.ShippingAddress {
	if a == nil {
		return trade.ShippingAddress{}
	}
	return trade.ShippingAddress{
		Name:        strings.TrimSpace(a.FirstName + " " + a.LastName),
		Phone:       a.Phone,
		Line1:       a.Address1,
		Line2:       a.Address2,
		City:        a.City,
		PostalCode:  a.Zip,
		CountryCode: a.CountryCode,
	}
}

// ---------------------------------------------------------------------------
// Products
// ---------------------------------------------------------------------------

// variantLink builds the external linkage stored on a local product
func variantLink(inte *integration.Integration, sp integration.ShopifyProduct, v integration.ShopifyVariant) catalog.ExternalLink {
	return catalog.ExternalLink{
		ExternalSource:   inte.Platform.String(),
		ExternalID:       strconv.FormatInt(v.ID, 10),
		ShopifyProductID: sp.ID,
		ShopifyVariantID: v.ID,
		InventoryItemID:  v.InventoryItemID,
		ShopDomain:       inte.ShopDomain(),
	}
}

// applyVariant writes one variant's fields onto a local product
func applyVariant(product *catalog.Product, inte *integration.Integration, sp integration.ShopifyProduct, v integration.ShopifyVariant) error {
	if err := product.UpdateDetails(variantName(sp, v), stripHTML(sp.BodyHTML)); err != nil {
		return err
	}
	if err := product.SetPrice(parseAmount(v.Price)); err != nil {
		return err
	}
	if err := product.SetWeight(v.Grams); err != nil {
		return err
	}
	product.LinkExternal(variantLink(inte, sp, v))
	product.SetActive(sp.Status == "active")
	return nil
}

// upsertProduct creates or updates one local product per variant, matching
// by SKU. Returns the number of created and updated products. This is the
// reconciliation path; event-driven ingestion uses createProduct and
// refreshProduct instead.
func (im *Importer) upsertProduct(ctx context.Context, inte *integration.Integration, sp integration.ShopifyProduct) (created, updated int, err error) {
	for _, variant := range sp.Variants {
		sku := variantSKU(variant)

		existing, findErr := im.products.FindBySKU(ctx, inte.TenantID, sku)
		switch {
		case findErr == nil:
			if err := applyVariant(existing, inte, sp, variant); err != nil {
				return created, updated, err
			}
			if err := im.products.Update(ctx, existing); err != nil {
				return created, updated, err
			}
			updated++

		case errors.Is(findErr, shared.ErrNotFound):
			product, newErr := catalog.NewProduct(inte.TenantID, sku, variantName(sp, variant))
			if newErr != nil {
				return created, updated, newErr
			}
			if err := applyVariant(product, inte, sp, variant); err != nil {
				return created, updated, err
			}

			if err := im.products.Save(ctx, product); err != nil {
				if im.isDuplicate(err) {
					// concurrent creation of the same SKU, count as update
					updated++
					continue
				}
				return created, updated, err
			}
			created++

		default:
			return created, updated, findErr
		}
	}

	return created, updated, nil
}

// createProduct ingests a products/create event. Variants whose SKU already
// exists for the tenant are skipped untouched; creation never overwrites
// local state.
func (im *Importer) createProduct(ctx context.Context, inte *integration.Integration, sp integration.ShopifyProduct) (int, error) {
	created := 0
	for _, variant := range sp.Variants {
		sku := variantSKU(variant)

		_, findErr := im.products.FindBySKU(ctx, inte.TenantID, sku)
		switch {
		case findErr == nil:
			im.logger.Debug("product create skipped, SKU exists", zap.String("sku", sku))
			continue
		case errors.Is(findErr, shared.ErrNotFound):
		default:
			return created, findErr
		}

		product, err := catalog.NewProduct(inte.TenantID, sku, variantName(sp, variant))
		if err != nil {
			return created, err
		}
		if err := applyVariant(product, inte, sp, variant); err != nil {
			return created, err
		}

		if err := im.products.Save(ctx, product); err != nil {
			if im.isDuplicate(err) {
				continue
			}
			return created, err
		}
		created++
	}
	return created, nil
}

// refreshProduct applies a products/update event to existing local products
// only. Variants with no matching local SKU are skipped; updates never
// create.
func (im *Importer) refreshProduct(ctx context.Context, inte *integration.Integration, sp integration.ShopifyProduct) (int, error) {
	updated := 0
	for _, variant := range sp.Variants {
		sku := variantSKU(variant)

		existing, findErr := im.products.FindBySKU(ctx, inte.TenantID, sku)
		if findErr != nil {
			if errors.Is(findErr, shared.ErrNotFound) {
				im.logger.Debug("product update skipped, no local SKU", zap.String("sku", sku))
				continue
			}
			return updated, findErr
		}

		if err := applyVariant(existing, inte, sp, variant); err != nil {
			return updated, err
		}
		if err := im.products.Update(ctx, existing); err != nil {
			return updated, err
		}
		updated++
	}
	return updated, nil
}

// deactivateProduct marks every local product linked to the platform product
// inactive. Synced data is never deleted on an external delete.
func (im *Importer) deactivateProduct(ctx context.Context, inte *integration.Integration, shopifyProductID int64) (int, error) {
	linked, err := im.products.FindByShopifyProductID(ctx, inte.TenantID, inte.Platform.String(), shopifyProductID)
	if err != nil {
		return 0, err
	}

	count := 0
	for idx := range linked {
		product := &linked[idx]
		if !product.IsActive() {
			continue
		}
		product.Deactivate()
		if err := im.products.Update(ctx, product); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// importOrder ingests one platform order, creating it locally if it does not
// exist. Returns false if the order was already present.
func (im *Importer) importOrder(ctx context.Context, inte *integration.Integration, so integration.ShopifyOrder) (bool, error) {
	externalID := strconv.FormatInt(so.ID, 10)

	_, err := im.orders.FindByExternalOrderID(ctx, inte.TenantID, inte.Platform.String(), externalID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}

	warehouse, err := im.warehouses.FindDefaultForTenant(ctx, inte.TenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return false, integration.ErrNoWarehouseConfigured
		}
		return false, err
	}

	order, err := trade.NewSalesOrder(inte.TenantID, warehouse.ID, orderNumber(so), parseOrderTime(so.CreatedAt))
	if err != nil {
		return false, err
	}

	order.SetExternalRef(trade.ExternalRef{
		ExternalSource:  inte.Platform.String(),
		ExternalOrderID: externalID,
		ShopifyOrderID:  so.ID,
		ShopDomain:      inte.ShopDomain(),
	})
	order.Priority = orderPriority(so.Tags)
	order.UpdateShippingAddress(shippingAddressFrom(so.ShippingAddress), so.Note)

	shippingAmount := decimal.Zero
	if so.TotalShippingPriceSet != nil {
		shippingAmount = parseAmount(so.TotalShippingPriceSet.ShopMoney.Amount)
	}
	order.SetAmounts(so.Currency, parseAmount(so.SubtotalPrice), shippingAmount, parseAmount(so.TotalTax), parseAmount(so.TotalPrice))

	if customerID, err := im.upsertCustomer(ctx, inte, so); err != nil {
		return false, err
	} else if customerID != uuid.Nil {
		order.SetCustomer(customerID)
	}

	im.resolveCarrier(ctx, inte, so, order)

	for _, item := range so.LineItems {
		sku := item.SKU
		if sku == "" {
			sku = fmt.Sprintf("SHOPIFY-%d", item.VariantID)
		}

		var productID *uuid.UUID
		if product, err := im.products.FindBySKU(ctx, inte.TenantID, sku); err == nil {
			productID = &product.ID
		} else if !errors.Is(err, shared.ErrNotFound) {
			return false, err
		}

		name := item.Name
		if name == "" {
			name = item.Title
		}
		if err := order.AddLine(productID, sku, name, item.Quantity, parseAmount(item.Price), strconv.FormatInt(item.ID, 10)); err != nil {
			return false, err
		}
	}

	if err := im.orders.Save(ctx, order); err != nil {
		if im.isDuplicate(err) {
			// a concurrent delivery of the same order won the insert race
			im.logger.Debug("duplicate order insert suppressed",
				zap.String("external_order_id", externalID),
			)
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// updateOrder applies address and note changes from an orders/updated
// payload. Fulfillment state is never driven from the platform. A payload
// for an unknown order is dropped; the create event or the order sync is
// the creation path and may still arrive.
func (im *Importer) updateOrder(ctx context.Context, inte *integration.Integration, so integration.ShopifyOrder) error {
	externalID := strconv.FormatInt(so.ID, 10)

	order, err := im.orders.FindByExternalOrderID(ctx, inte.TenantID, inte.Platform.String(), externalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			im.logger.Info("update for unknown order dropped",
				zap.String("external_order_id", externalID),
			)
			return nil
		}
		return err
	}

	order.UpdateShippingAddress(shippingAddressFrom(so.ShippingAddress), so.Note)
	return im.orders.Update(ctx, order)
}

// cancelOrder cancels the local order unless it has already reached a
// terminal state. A cancellation arriving after shipment is logged and
// dropped; the shipped order stands.
func (im *Importer) cancelOrder(ctx context.Context, inte *integration.Integration, so integration.ShopifyOrder) error {
	externalID := strconv.FormatInt(so.ID, 10)

	order, err := im.orders.FindByExternalOrderID(ctx, inte.TenantID, inte.Platform.String(), externalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	reason := so.CancelReason
	if reason == "" {
		reason = "Cancelled in Shopify"
	}

	if err := order.Cancel(reason); err != nil {
		if errors.Is(err, shared.ErrInvalidState) {
			im.logger.Info("cancellation ignored for order in terminal state",
				zap.String("order_number", order.OrderNumber),
				zap.String("status", string(order.Status)),
			)
			return nil
		}
		return err
	}

	return im.orders.Update(ctx, order)
}

// ---------------------------------------------------------------------------
// Refunds
// ---------------------------------------------------------------------------

// importRefund records a platform refund as a sales return. Returns false if
// the refund was already recorded or references an unknown order.
func (im *Importer) importRefund(ctx context.Context, inte *integration.Integration, refund integration.ShopifyRefund) (bool, error) {
	orderExternalID := strconv.FormatInt(refund.OrderID, 10)

	order, err := im.orders.FindByExternalOrderID(ctx, inte.TenantID, inte.Platform.String(), orderExternalID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			im.logger.Warn("refund for unknown order dropped",
				zap.String("external_order_id", orderExternalID),
				zap.Int64("refund_id", refund.ID),
			)
			return false, nil
		}
		return false, err
	}

	refundExternalID := strconv.FormatInt(refund.ID, 10)
	if _, err := im.returns.FindByOrderAndExternalID(ctx, order.ID, refundExternalID); err == nil {
		return false, nil
	} else if !errors.Is(err, shared.ErrNotFound) {
		return false, err
	}

	reason := refund.Note
	if reason == "" {
		reason = "Refund from Shopify"
	}

	ret, err := trade.NewSalesReturn(inte.TenantID, order.ID, "RET-"+refundExternalID, refundExternalID, inte.Platform.String(), reason, parseOrderTime(refund.CreatedAt))
	if err != nil {
		return false, err
	}
	ret.SetCustomer(order.CustomerID)

	for _, item := range refund.RefundLineItems {
		lineReason := "Refund"
		if item.RestockType == "return" {
			lineReason = "Customer Return"
		}

		if matched := order.FindLineByExternalID(strconv.FormatInt(item.LineItemID, 10)); matched != nil {
			if err := ret.AddLine(&matched.ID, matched.ProductID, matched.SKU, matched.Name, item.Quantity, lineReason); err != nil {
				return false, err
			}
			continue
		}

		// refunded line did not match the order, record it anyway
		sku := "UNKNOWN"
		name := "Unknown Item"
		if item.LineItem != nil {
			if item.LineItem.SKU != "" {
				sku = item.LineItem.SKU
			}
			if item.LineItem.Name != "" {
				name = item.LineItem.Name
			}
		}
		if err := ret.AddLine(nil, nil, sku, name, item.Quantity, lineReason); err != nil {
			return false, err
		}
	}

	if err := im.returns.Save(ctx, ret); err != nil {
		if im.isDuplicate(err) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

// ---------------------------------------------------------------------------
// Customers and carriers
// ---------------------------------------------------------------------------

// upsertCustomer finds or creates the local customer for an order. Orders
// without a usable email stay anonymous.
func (im *Importer) upsertCustomer(ctx context.Context, inte *integration.Integration, so integration.ShopifyOrder) (uuid.UUID, error) {
	email := so.Email
	var first, last, phone string
	var externalID string
	if so.Customer != nil {
		if so.Customer.Email != "" {
			email = so.Customer.Email
		}
		first = so.Customer.FirstName
		last = so.Customer.LastName
		phone = so.Customer.Phone
		externalID = strconv.FormatInt(so.Customer.ID, 10)
	}
	if email == "" {
		return uuid.Nil, nil
	}

	existing, err := im.customers.FindByEmail(ctx, inte.TenantID, email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return uuid.Nil, err
	}

	customer, err := partner.NewCustomer(inte.TenantID, email, first, last, phone)
	if err != nil {
		// malformed email from the platform, import the order anonymously
		im.logger.Warn("skipping customer with invalid email", zap.Error(err))
		return uuid.Nil, nil
	}
	customer.MarkExternal(inte.Platform.String(), externalID)

	if err := im.customers.Save(ctx, customer); err != nil {
		if im.isDuplicate(err) {
			if winner, findErr := im.customers.FindByEmail(ctx, inte.TenantID, email); findErr == nil {
				return winner.ID, nil
			}
		}
		return uuid.Nil, err
	}

	return customer.ID, nil
}

// resolveCarrier assigns the order's carrier from the first shipping line's
// mapped method. An unmapped method leaves the order without a carrier;
// operators assign one manually.
func (im *Importer) resolveCarrier(ctx context.Context, inte *integration.Integration, so integration.ShopifyOrder, order *trade.SalesOrder) {
	if len(so.ShippingLines) == 0 {
		return
	}

	method := so.ShippingLines[0].Title
	mapping, err := im.mappings.FindByExternalMethod(ctx, inte.TenantID, method)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			im.logger.Warn("shipping mapping lookup failed", zap.Error(err))
		}
		return
	}

	order.SetCarrier(mapping.CarrierID, mapping.CarrierServiceID)
}
