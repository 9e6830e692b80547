package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/logida/backend/internal/infrastructure/config"
)

func newTestService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars-ok",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "logida-test",
	})
}

func TestJWTServiceRoundTrip(t *testing.T) {
	service := newTestService()
	tenantID := uuid.New()
	userID := uuid.New()

	token, expiresAt, err := service.GenerateAccessToken(GenerateTokenInput{
		TenantID: tenantID,
		UserID:   userID,
		Username: "ops@acme.com",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, 2*time.Second)

	claims, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, tenantID.String(), claims.TenantID)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "ops@acme.com", claims.Username)
	assert.Equal(t, "logida-test", claims.Issuer)

	parsedTenant, err := claims.GetTenantUUID()
	require.NoError(t, err)
	assert.Equal(t, tenantID, parsedTenant)
}

func TestValidateAccessTokenRejections(t *testing.T) {
	service := newTestService()

	t.Run("garbage token", func(t *testing.T) {
		_, err := service.ValidateAccessToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTService(config.JWTConfig{
			Secret:                "a-completely-different-secret-value!",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "logida-test",
		})
		token, _, err := other.GenerateAccessToken(GenerateTokenInput{
			TenantID: uuid.New(),
			UserID:   uuid.New(),
		})
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired token", func(t *testing.T) {
		shortLived := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-at-least-32-chars-ok",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "logida-test",
		})
		token, _, err := shortLived.GenerateAccessToken(GenerateTokenInput{
			TenantID: uuid.New(),
			UserID:   uuid.New(),
		})
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}
