package integration

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCredentials() ShopifyCredentials {
	return ShopifyCredentials{
		ShopDomain:    "demo.myshopify.com",
		AccessToken:   "shpat_test_token",
		ShopName:      "Demo Shop",
		ShopEmail:     "owner@demo.test",
		PrimaryDomain: "demo.example.com",
	}
}

func TestNewIntegration(t *testing.T) {
	t.Run("creates active integration with toggles defaulted on", func(t *testing.T) {
		tenantID := uuid.New()
		i, err := NewIntegration(tenantID, PlatformShopify, "Demo Shop", validCredentials())
		require.NoError(t, err)

		assert.Equal(t, tenantID, i.TenantID)
		assert.Equal(t, PlatformShopify, i.Platform)
		assert.True(t, i.IsActive)
		assert.True(t, i.SyncOrders)
		assert.True(t, i.SyncProducts)
		assert.True(t, i.SyncInventory)
		assert.True(t, i.AutoFulfill)
		assert.Zero(t, i.ErrorCount)
		assert.Empty(t, i.LastError)
	})

	t.Run("rejects nil tenant", func(t *testing.T) {
		_, err := NewIntegration(uuid.Nil, PlatformShopify, "x", validCredentials())
		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})

	t.Run("rejects unknown platform", func(t *testing.T) {
		_, err := NewIntegration(uuid.New(), Platform("ebay"), "x", validCredentials())
		assert.ErrorIs(t, err, ErrInvalidPlatform)
	})

	t.Run("rejects empty shop domain", func(t *testing.T) {
		creds := validCredentials()
		creds.ShopDomain = ""
		_, err := NewIntegration(uuid.New(), PlatformShopify, "x", creds)
		assert.ErrorIs(t, err, ErrInvalidShopDomain)
	})

	t.Run("rejects missing access token", func(t *testing.T) {
		creds := validCredentials()
		creds.AccessToken = ""
		_, err := NewIntegration(uuid.New(), PlatformShopify, "x", creds)
		assert.ErrorIs(t, err, ErrMissingAccessToken)
	})
}

func TestIntegrationReconnect(t *testing.T) {
	i, err := NewIntegration(uuid.New(), PlatformShopify, "Demo Shop", validCredentials())
	require.NoError(t, err)

	i.Deactivate()
	i.RecordSyncFailure(errors.New("boom"))
	require.False(t, i.IsActive)
	require.Equal(t, 1, i.ErrorCount)

	creds := validCredentials()
	creds.AccessToken = "shpat_rotated"
	require.NoError(t, i.Reconnect(creds))

	assert.True(t, i.IsActive)
	assert.Equal(t, "shpat_rotated", i.AccessToken())
	assert.Empty(t, i.LastError)
	assert.Nil(t, i.LastErrorAt)
	assert.Zero(t, i.ErrorCount)
}

func TestIntegrationSyncBookkeeping(t *testing.T) {
	i, err := NewIntegration(uuid.New(), PlatformShopify, "Demo Shop", validCredentials())
	require.NoError(t, err)

	i.RecordSyncFailure(errors.New("shopify api error: 500"))
	i.RecordSyncFailure(errors.New("shopify api error: 500"))
	assert.Equal(t, 2, i.ErrorCount)
	assert.Equal(t, "shopify api error: 500", i.LastError)
	assert.NotNil(t, i.LastErrorAt)
	assert.Nil(t, i.LastOrderSyncAt)

	i.RecordSyncSuccess(SyncResourceOrders)
	assert.NotNil(t, i.LastOrderSyncAt)
	assert.Nil(t, i.LastInventorySyncAt)
	assert.Zero(t, i.ErrorCount)
	assert.Empty(t, i.LastError)
	assert.Nil(t, i.LastErrorAt)

	i.RecordSyncSuccess(SyncResourceInventory)
	assert.NotNil(t, i.LastInventorySyncAt)
}

func TestIntegrationUpdateToggles(t *testing.T) {
	i, err := NewIntegration(uuid.New(), PlatformShopify, "Demo Shop", validCredentials())
	require.NoError(t, err)

	f := false
	i.UpdateToggles(nil, &f, nil, nil, nil)

	assert.True(t, i.IsActive)
	assert.False(t, i.SyncOrders)
	assert.True(t, i.SyncProducts)
	assert.True(t, i.SyncInventory)
	assert.True(t, i.AutoFulfill)
}

func TestNewShippingMethodMapping(t *testing.T) {
	tenantID := uuid.New()
	integrationID := uuid.New()
	carrierID := uuid.New()
	serviceID := uuid.New()

	m, err := NewShippingMethodMapping(tenantID, integrationID, "Express Shipping", carrierID, serviceID)
	require.NoError(t, err)
	assert.Equal(t, "Express Shipping", m.ExternalShippingMethod)
	assert.Equal(t, serviceID, m.CarrierServiceID)

	_, err = NewShippingMethodMapping(uuid.Nil, integrationID, "Express", carrierID, serviceID)
	assert.ErrorIs(t, err, ErrInvalidTenantID)

	_, err = NewShippingMethodMapping(tenantID, integrationID, "", carrierID, serviceID)
	assert.Error(t, err)
}
