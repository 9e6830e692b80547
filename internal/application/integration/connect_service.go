package integration

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/logida/backend/internal/domain/integration"
	"github.com/logida/backend/internal/domain/shared"
	"github.com/logida/backend/internal/infrastructure/shopify"
)

// shopDomainPattern matches a well-formed myshopify.com shop domain
var shopDomainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

// IsValidShopDomain reports whether the given string is a well-formed shop
// domain. Exposed so the HTTP layer can register it as a binding validator.
func IsValidShopDomain(domain string) bool {
	return shopDomainPattern.MatchString(domain)
}

// WebhookTopics are the subscriptions registered for every connected shop.
// The HTTP layer exposes one delivery route per topic under the webhook base
// path.
var WebhookTopics = []string{
	"orders/create",
	"orders/updated",
	"orders/cancelled",
	"products/create",
	"products/update",
	"products/delete",
	"refunds/create",
	"app/uninstalled",
}

// ConnectService manages the lifecycle of shop connections: the OAuth
// install flow, webhook registration, toggles and disconnection, plus the
// shipping-method mappings attached to a connection.
type ConnectService struct {
	integrations   integration.Repository
	mappings       integration.ShippingMethodMappingRepository
	gateway        integration.ShopifyGateway
	clientSecret   string
	webhookAddress string
	locationName   string
	logger         *zap.Logger
}

// NewConnectService creates a new ConnectService. webhookAddress is the
// public webhook base URL; each topic is registered with its own delivery
// address underneath it. locationName is the name of the fulfillment
// location ensured on each shop.
func NewConnectService(
	integrations integration.Repository,
	mappings integration.ShippingMethodMappingRepository,
	gateway integration.ShopifyGateway,
	clientSecret string,
	webhookAddress string,
	locationName string,
	logger *zap.Logger,
) *ConnectService {
	return &ConnectService{
		integrations:   integrations,
		mappings:       mappings,
		gateway:        gateway,
		clientSecret:   clientSecret,
		webhookAddress: webhookAddress,
		locationName:   locationName,
		logger:         logger,
	}
}

// ---------------------------------------------------------------------------
// OAuth flow
// ---------------------------------------------------------------------------

// BeginInstall validates the shop domain and returns the authorization URL
// the merchant must be redirected to. The state parameter carries a random
// nonce and the tenant ID so the callback can be tied back to the tenant.
func (s *ConnectService) BeginInstall(ctx context.Context, tenantID uuid.UUID, shopDomain string) (string, error) {
	if tenantID == uuid.Nil {
		return "", integration.ErrInvalidTenantID
	}

	shopDomain = strings.ToLower(strings.TrimSpace(shopDomain))
	if !IsValidShopDomain(shopDomain) {
		return "", integration.ErrInvalidShopDomain
	}

	nonce := make([]byte, 16)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	state := hex.EncodeToString(nonce) + ":" + tenantID.String()

	return s.gateway.AuthorizeURL(shopDomain, state), nil
}

// parseState extracts the tenant ID from an OAuth state parameter
func parseState(state string) (uuid.UUID, error) {
	parts := strings.SplitN(state, ":", 2)
	if len(parts) != 2 {
		return uuid.Nil, integration.ErrInvalidCallbackState
	}
	tenantID, err := uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, integration.ErrInvalidCallbackState
	}
	return tenantID, nil
}

// HandleCallback completes the OAuth flow: it authenticates the callback,
// exchanges the code for an access token, stores or refreshes the
// integration and provisions webhooks and the fulfillment location.
// Provisioning is best-effort; a connected shop with missing webhooks is
// repaired by reconnecting.
func (s *ConnectService) HandleCallback(ctx context.Context, query url.Values) (*integration.Integration, error) {
	if !shopify.VerifyCallbackSignature(query, s.clientSecret) {
		return nil, integration.ErrInvalidCallbackSignature
	}

	tenantID, err := parseState(query.Get("state"))
	if err != nil {
		return nil, err
	}

	shopDomain := strings.ToLower(query.Get("shop"))
	if !IsValidShopDomain(shopDomain) {
		return nil, integration.ErrInvalidShopDomain
	}

	code := query.Get("code")
	if code == "" {
		return nil, integration.ErrInvalidCallbackState
	}

	accessToken, err := s.gateway.ExchangeAccessToken(ctx, shopDomain, code)
	if err != nil {
		s.logger.Error("access token exchange failed",
			zap.String("shop_domain", shopDomain),
			zap.Error(err),
		)
		return nil, integration.ErrTokenExchangeFailed
	}

	creds := integration.ShopifyCredentials{
		ShopDomain:  shopDomain,
		AccessToken: accessToken,
	}
	name := shopDomain
	if shop, err := s.gateway.GetShop(ctx, shopDomain, accessToken); err == nil {
		creds.ShopName = shop.Name
		creds.ShopEmail = shop.Email
		creds.PrimaryDomain = shop.Domain
		if shop.Name != "" {
			name = shop.Name
		}
	} else {
		s.logger.Warn("could not fetch shop metadata", zap.Error(err))
	}

	inte, err := s.upsertIntegration(ctx, tenantID, name, creds)
	if err != nil {
		return nil, err
	}

	s.provisionShop(ctx, inte)

	return inte, nil
}

// upsertIntegration stores a fresh connection or refreshes an existing one
// for the same shop, so repeated installs never create duplicate rows
func (s *ConnectService) upsertIntegration(ctx context.Context, tenantID uuid.UUID, name string, creds integration.ShopifyCredentials) (*integration.Integration, error) {
	existing, err := s.integrations.FindByShopForTenant(ctx, tenantID, integration.PlatformShopify, creds.ShopDomain)
	switch {
	case err == nil:
		if err := existing.Reconnect(creds); err != nil {
			return nil, err
		}
		existing.Name = name
		if err := s.integrations.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil

	case errors.Is(err, shared.ErrNotFound):
		inte, newErr := integration.NewIntegration(tenantID, integration.PlatformShopify, name, creds)
		if newErr != nil {
			return nil, newErr
		}
		if err := s.integrations.Save(ctx, inte); err != nil {
			return nil, err
		}
		return inte, nil

	default:
		return nil, err
	}
}

// provisionShop registers webhook subscriptions and ensures the fulfillment
// location exists. Failures are logged, not returned: the connection is
// already stored and usable for manual syncs.
func (s *ConnectService) provisionShop(ctx context.Context, inte *integration.Integration) {
	for _, topic := range WebhookTopics {
		if _, err := s.gateway.CreateWebhook(ctx, inte.ShopDomain(), inte.AccessToken(), topic, s.webhookAddress+"/"+topic); err != nil {
			s.logger.Warn("webhook registration failed",
				zap.String("shop_domain", inte.ShopDomain()),
				zap.String("topic", topic),
				zap.Error(err),
			)
		}
	}

	if _, err := ensureFulfillmentLocation(ctx, s.gateway, inte, s.locationName); err != nil {
		s.logger.Warn("fulfillment location provisioning failed",
			zap.String("shop_domain", inte.ShopDomain()),
			zap.Error(err),
		)
	}
}

// ensureFulfillmentLocation finds the named location on the shop, creating
// it when missing, and returns its platform ID
func ensureFulfillmentLocation(ctx context.Context, gateway integration.ShopifyGateway, inte *integration.Integration, locationName string) (int64, error) {
	locations, err := gateway.ListLocations(ctx, inte.ShopDomain(), inte.AccessToken())
	if err != nil {
		return 0, err
	}

	for _, loc := range locations {
		if loc.Name == locationName && loc.Active {
			return loc.ID, nil
		}
	}

	created, err := gateway.CreateLocation(ctx, inte.ShopDomain(), inte.AccessToken(), integration.ShopifyLocation{
		Name:     locationName,
		Address1: "Managed by WMS",
		City:     "Zürich",
		Country:  "CH",
	})
	if err != nil {
		return 0, err
	}

	return created.ID, nil
}

// ---------------------------------------------------------------------------
// Connection management
// ---------------------------------------------------------------------------

// ListIntegrations lists a tenant's shop connections
func (s *ConnectService) ListIntegrations(ctx context.Context, tenantID uuid.UUID) ([]IntegrationResponse, error) {
	list, err := s.integrations.ListByTenant(ctx, tenantID, integration.PlatformShopify)
	if err != nil {
		return nil, err
	}
	return ToIntegrationResponses(list), nil
}

// GetIntegration fetches one of a tenant's connections
func (s *ConnectService) GetIntegration(ctx context.Context, tenantID, id uuid.UUID) (*IntegrationResponse, error) {
	inte, err := s.integrations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}
	resp := ToIntegrationResponse(inte)
	return &resp, nil
}

// UpdateToggles applies partial toggle changes to a connection
func (s *ConnectService) UpdateToggles(ctx context.Context, tenantID, id uuid.UUID, req UpdateTogglesRequest) (*IntegrationResponse, error) {
	inte, err := s.integrations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}

	inte.UpdateToggles(req.IsActive, req.SyncOrders, req.SyncProducts, req.SyncInventory, req.AutoFulfill)
	if err := s.integrations.Update(ctx, inte); err != nil {
		return nil, err
	}

	resp := ToIntegrationResponse(inte)
	return &resp, nil
}

// Disconnect deactivates a connection. Synced orders and products are kept.
func (s *ConnectService) Disconnect(ctx context.Context, tenantID, id uuid.UUID) error {
	inte, err := s.integrations.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return integration.ErrIntegrationNotFound
		}
		return err
	}

	inte.Deactivate()
	return s.integrations.Update(ctx, inte)
}

// ---------------------------------------------------------------------------
// Shipping method mappings
// ---------------------------------------------------------------------------

// CreateShippingMapping maps an external shipping method to a local carrier
func (s *ConnectService) CreateShippingMapping(ctx context.Context, tenantID uuid.UUID, req ShippingMappingRequest) (*ShippingMappingResponse, error) {
	if _, err := s.integrations.FindByIDForTenant(ctx, tenantID, req.IntegrationID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ErrIntegrationNotFound
		}
		return nil, err
	}

	if _, err := s.mappings.FindByExternalMethod(ctx, tenantID, req.ExternalShippingMethod); err == nil {
		return nil, integration.ErrMappingExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	serviceID := uuid.Nil
	if req.CarrierServiceID != nil {
		serviceID = *req.CarrierServiceID
	}

	mapping, err := integration.NewShippingMethodMapping(tenantID, req.IntegrationID, req.ExternalShippingMethod, req.CarrierID, serviceID)
	if err != nil {
		return nil, err
	}

	if err := s.mappings.Save(ctx, mapping); err != nil {
		return nil, err
	}

	resp := ToShippingMappingResponse(mapping)
	return &resp, nil
}

// ListShippingMappings lists a tenant's shipping method mappings
func (s *ConnectService) ListShippingMappings(ctx context.Context, tenantID uuid.UUID) ([]ShippingMappingResponse, error) {
	list, err := s.mappings.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return ToShippingMappingResponses(list), nil
}

// DeleteShippingMapping removes a shipping method mapping
func (s *ConnectService) DeleteShippingMapping(ctx context.Context, tenantID, id uuid.UUID) error {
	if err := s.mappings.DeleteForTenant(ctx, tenantID, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return integration.ErrMappingNotFound
		}
		return err
	}
	return nil
}
