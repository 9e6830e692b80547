package integration

// Wire representations of the Shopify Admin REST resources this system
// consumes and produces. Field names follow the platform's JSON exactly;
// monetary amounts arrive as decimal strings and are converted at the
// application boundary.

// ShopifyShop is the shop metadata resource
type ShopifyShop struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Domain string `json:"domain"`
}

// ShopifyProduct is a product with its variants
type ShopifyProduct struct {
	ID       int64            `json:"id"`
	Title    string           `json:"title"`
	BodyHTML string           `json:"body_html"`
	Status   string           `json:"status"`
	Variants []ShopifyVariant `json:"variants"`
}

// ShopifyVariant is a purchasable variation of a product
type ShopifyVariant struct {
	ID              int64  `json:"id"`
	ProductID       int64  `json:"product_id"`
	Title           string `json:"title"`
	SKU             string `json:"sku"`
	Price           string `json:"price"`
	Grams           int    `json:"grams"`
	InventoryItemID int64  `json:"inventory_item_id"`
}

// ShopifyCustomer is the customer section of an order payload
type ShopifyCustomer struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// ShopifyAddress is a shipping or billing address
type ShopifyAddress struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2"`
	City        string `json:"city"`
	Zip         string `json:"zip"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone"`
}

// ShopifyShippingLine is a chosen shipping method on an order
type ShopifyShippingLine struct {
	Title string `json:"title"`
	Price string `json:"price"`
}

// ShopifyLineItem is one purchased line on an order
type ShopifyLineItem struct {
	ID        int64  `json:"id"`
	VariantID int64  `json:"variant_id"`
	ProductID int64  `json:"product_id"`
	Title     string `json:"title"`
	Name      string `json:"name"`
	SKU       string `json:"sku"`
	Quantity  int    `json:"quantity"`
	Price     string `json:"price"`
}

// ShopifyMoneySet carries an amount in shop and presentment currencies
type ShopifyMoneySet struct {
	ShopMoney ShopifyMoney `json:"shop_money"`
}

// ShopifyMoney is a currency-qualified decimal amount
type ShopifyMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// ShopifyOrder is an order as delivered by webhook or listed by the API
type ShopifyOrder struct {
	ID                    int64                 `json:"id"`
	OrderNumber           int64                 `json:"order_number"`
	Name                  string                `json:"name"`
	Email                 string                `json:"email"`
	CreatedAt             string                `json:"created_at"`
	Note                  string                `json:"note"`
	Tags                  string                `json:"tags"`
	CancelReason          string                `json:"cancel_reason"`
	Currency              string                `json:"currency"`
	SubtotalPrice         string                `json:"subtotal_price"`
	TotalTax              string                `json:"total_tax"`
	TotalPrice            string                `json:"total_price"`
	TotalShippingPriceSet *ShopifyMoneySet      `json:"total_shipping_price_set"`
	Customer              *ShopifyCustomer      `json:"customer"`
	ShippingAddress       *ShopifyAddress       `json:"shipping_address"`
	ShippingLines         []ShopifyShippingLine `json:"shipping_lines"`
	LineItems             []ShopifyLineItem     `json:"line_items"`
}

// ShopifyRefundLineItem is one refunded line inside a refund
type ShopifyRefundLineItem struct {
	ID          int64            `json:"id"`
	LineItemID  int64            `json:"line_item_id"`
	Quantity    int              `json:"quantity"`
	RestockType string           `json:"restock_type"`
	LineItem    *ShopifyLineItem `json:"line_item"`
}

// ShopifyRefund is a refund as delivered by the refunds/create webhook
type ShopifyRefund struct {
	ID              int64                   `json:"id"`
	OrderID         int64                   `json:"order_id"`
	Note            string                  `json:"note"`
	CreatedAt       string                  `json:"created_at"`
	RefundLineItems []ShopifyRefundLineItem `json:"refund_line_items"`
}

// ShopifyLocation is an inventory location on the platform
type ShopifyLocation struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Active   bool   `json:"active"`
	Address1 string `json:"address1"`
	City     string `json:"city"`
	Country  string `json:"country"`
}

// ShopifyWebhook is a webhook subscription
type ShopifyWebhook struct {
	ID      int64  `json:"id"`
	Topic   string `json:"topic"`
	Address string `json:"address"`
	Format  string `json:"format"`
}

// ShopifyFulfillmentOrderLineItem is a fulfillable line on a fulfillment order
type ShopifyFulfillmentOrderLineItem struct {
	ID                  int64 `json:"id"`
	FulfillableQuantity int   `json:"fulfillable_quantity"`
}

// ShopifyFulfillmentOrder groups an order's lines by fulfillment responsibility
type ShopifyFulfillmentOrder struct {
	ID        int64                             `json:"id"`
	Status    string                            `json:"status"`
	LineItems []ShopifyFulfillmentOrderLineItem `json:"line_items"`
}

// ShopifyTrackingInfo is the tracking section of a fulfillment payload
type ShopifyTrackingInfo struct {
	Number  string `json:"number"`
	URL     string `json:"url,omitempty"`
	Company string `json:"company,omitempty"`
}

// ShopifyFulfillment is a fulfillment created on the platform
type ShopifyFulfillment struct {
	ID           int64                `json:"id"`
	OrderID      int64                `json:"order_id"`
	Status       string               `json:"status"`
	TrackingInfo *ShopifyTrackingInfo `json:"tracking_info,omitempty"`
}
