package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shopsync/backend/internal/infrastructure/auth"
	"github.com/shopsync/backend/internal/infrastructure/logger"
	"github.com/shopsync/backend/internal/interfaces/http/handler"
	"github.com/shopsync/backend/internal/interfaces/http/middleware"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// Dependencies carries everything the router wires into the engine
type Dependencies struct {
	Logger        *zap.Logger
	JWTService    *auth.JWTService
	TenantHandler *handler.TenantHandler
	SyncHandler   *handler.SyncHandler
	Webhooks      *handler.WebhookHandler
	DB            Pinger
}

// Setup registers all routes and middleware on the engine.
//
// Onboarding (POST /api/v1/tenants) and webhook deliveries are the only
// unauthenticated write paths; everything else under /api/v1 requires a
// tenant bearer token.
func Setup(engine *gin.Engine, deps Dependencies) {
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(deps.Logger))
	engine.Use(logger.GinMiddleware(deps.Logger))

	engine.GET("/health", healthHandler(deps.DB))

	engine.POST("/webhooks/shopify", deps.Webhooks.Receive)

	api := engine.Group("/api/v1")
	api.POST("/tenants", deps.TenantHandler.Connect)

	authed := api.Group("")
	authed.Use(middleware.JWTAuthMiddleware(deps.JWTService))
	authed.GET("/tenants/me", deps.TenantHandler.Me)
	authed.POST("/sync", deps.SyncHandler.Trigger)
	authed.GET("/sync/status", deps.SyncHandler.Status)
}

// healthHandler reports process and database health
func healthHandler(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			if err := db.Ping(); err != nil {
				logger.GetGinLogger(c).Warn("Health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":   "unhealthy",
					"time":     time.Now().Format(time.RFC3339),
					"database": "error",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
