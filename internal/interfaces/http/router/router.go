package router

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appintegration "github.com/logida/backend/internal/application/integration"
	"github.com/logida/backend/internal/infrastructure/auth"
	"github.com/logida/backend/internal/infrastructure/config"
	"github.com/logida/backend/internal/infrastructure/logger"
	"github.com/logida/backend/internal/interfaces/http/middleware"
)

// RouteRegistrar registers a handler's routes on the versioned API group
type RouteRegistrar interface {
	RegisterRoutes(api *gin.RouterGroup)
}

var registerValidatorsOnce sync.Once

// RegisterValidators installs custom binding validators. Gin's binding
// validator is process-global, so registration happens once.
func RegisterValidators() {
	registerValidatorsOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("shopdomain", func(fl validator.FieldLevel) bool {
				return appintegration.IsValidShopDomain(fl.Field().String())
			})
		}
	})
}

// Config holds router construction dependencies
type Config struct {
	HTTP       config.HTTPConfig
	JWTService *auth.JWTService
	Logger     *zap.Logger
}

// Router owns the gin engine and the versioned API group
type Router struct {
	engine *gin.Engine
	api    *gin.RouterGroup
}

// New builds the HTTP router with the standard middleware chain. The OAuth
// callback and the webhook receiver skip JWT authentication; both carry
// their own HMAC-based authentication.
func New(cfg Config) *Router {
	RegisterValidators()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		_ = engine.SetTrustedProxies(cfg.HTTP.TrustedProxies)
	}

	engine.Use(
		middleware.RequestID(),
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.Secure(),
		middleware.CORS(cfg.HTTP),
		middleware.MaxBodySize(cfg.HTTP.MaxBodySize),
	)

	api := engine.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService: cfg.JWTService,
		SkipPaths: []string{
			"/api/v1/channels/shopify/callback",
		},
		SkipPathPrefixes: []string{
			"/api/v1/channels/shopify/webhooks",
		},
		Logger: cfg.Logger,
	}))

	return &Router{engine: engine, api: api}
}

// Register wires handlers into the versioned API group
func (r *Router) Register(registrars ...RouteRegistrar) {
	for _, reg := range registrars {
		reg.RegisterRoutes(r.api)
	}
}

// Engine returns the underlying gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
