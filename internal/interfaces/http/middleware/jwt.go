package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/logida/backend/internal/infrastructure/auth"
	"github.com/logida/backend/internal/interfaces/http/dto"
)

// Context keys for authenticated request data
const (
	ContextKeyJWTClaims = "jwt_claims"
	ContextKeyUserID    = "jwt_user_id"
	ContextKeyTenantID  = "jwt_tenant_id"
	ContextKeyUsername  = "jwt_username"
)

// JWTMiddlewareConfig configures the JWT authentication middleware.
type JWTMiddlewareConfig struct {
	JWTService *auth.JWTService
	// SkipPaths are exact request paths that bypass authentication.
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that bypass authentication.
	// Webhook and OAuth callback endpoints authenticate via HMAC
	// signatures instead of bearer tokens.
	SkipPathPrefixes []string
	Logger           *zap.Logger
}

// JWTAuthMiddleware creates a JWT authentication middleware with default config
func JWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return JWTAuthMiddlewareWithConfig(JWTMiddlewareConfig{
		JWTService: jwtService,
	})
}

// JWTAuthMiddlewareWithConfig creates a JWT authentication middleware.
// Validated claims are stored on the gin context for downstream handlers.
func JWTAuthMiddlewareWithConfig(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, dto.ErrCodeUnauthorized, err.Error())
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			code := authErrorCode(err)
			handleAuthError(c, cfg, code, err.Error())
			return
		}

		c.Set(ContextKeyJWTClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyTenantID, claims.TenantID)
		c.Set(ContextKeyUsername, claims.Username)

		c.Next()
	}
}

func extractBearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization header format")
	}
	if parts[1] == "" {
		return "", errors.New("empty bearer token")
	}

	return parts[1], nil
}

func authErrorCode(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired
	case errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrInvalidClaims),
		errors.Is(err, auth.ErrMissingTenantID),
		errors.Is(err, auth.ErrMissingUserID):
		return dto.ErrCodeTokenInvalid
	default:
		return dto.ErrCodeUnauthorized
	}
}

func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, code, message string) {
	if cfg.Logger != nil {
		cfg.Logger.Debug("request authentication failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("code", code),
			zap.String("reason", message),
		)
	}

	requestID := c.GetString(ContextKeyRequestID)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponseWithRequestID(code, message, requestID))
}

// GetJWTClaims retrieves the validated claims from the gin context
func GetJWTClaims(c *gin.Context) (*auth.Claims, bool) {
	value, exists := c.Get(ContextKeyJWTClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.Claims)
	return claims, ok
}

// GetJWTTenantID retrieves the tenant ID from the gin context
func GetJWTTenantID(c *gin.Context) (string, bool) {
	return getContextString(c, ContextKeyTenantID)
}

// GetJWTUserID retrieves the user ID from the gin context
func GetJWTUserID(c *gin.Context) (string, bool) {
	return getContextString(c, ContextKeyUserID)
}

// GetJWTUsername retrieves the username from the gin context
func GetJWTUsername(c *gin.Context) (string, bool) {
	return getContextString(c, ContextKeyUsername)
}

func getContextString(c *gin.Context, key string) (string, bool) {
	value, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}
