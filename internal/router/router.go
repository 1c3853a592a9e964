// Package router wires the HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/imovelhub/unit-sales/internal/config"
	"github.com/imovelhub/unit-sales/internal/handler"
	"github.com/imovelhub/unit-sales/internal/middleware"
	"github.com/imovelhub/unit-sales/internal/model"
)

// Handlers bundles every handler the router registers.
type Handlers struct {
	Auth         *handler.AuthHandler
	Unit         *handler.UnitHandler
	Purchase     *handler.PurchaseHandler
	Contract     *handler.ContractHandler
	Payment      *handler.PaymentHandler
	Visit        *handler.VisitHandler
	Webhook      *handler.WebhookHandler
	Notification *handler.NotificationHandler
	Chat         *handler.ChatHandler
	WS           *handler.WSHandler
}

// Register wires all routes. The Redis client may be nil, in which case
// rate limiting and response caching are disabled.
func Register(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e.GET("/healthz", handler.Health)

	// Unauthenticated: registration, login and the external callbacks. The
	// webhooks carry no credentials, so they run under the rate limiter.
	pub := e.Group("/v1")
	pub.POST("/auth/register", h.Auth.Register, limiter)
	pub.POST("/auth/login", h.Auth.Login, limiter)
	pub.POST("/webhooks/payment", h.Webhook.Payment, limiter)
	pub.POST("/webhooks/signature", h.Webhook.Signature, limiter)

	// Authenticated routes. Any known role may read; role-specific checks
	// (ownership) happen in the services.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(cfg.JWTSecret))
	auth.Use(middleware.RequireRole(model.RoleClient, model.RoleBuilder))

	auth.GET("/me", h.Auth.Me)
	auth.GET("/units/:id", h.Unit.GetUnit, cache)

	auth.POST("/purchases", h.Purchase.Start, middleware.RequireRole(model.RoleClient))
	auth.GET("/my-purchases", h.Purchase.ListMine)
	auth.GET("/purchases/:id", h.Purchase.Detail)
	auth.POST("/purchases/:id/cancel", h.Purchase.Cancel, middleware.RequireRole(model.RoleClient))

	auth.POST("/purchases/:id/contract/client-signature", h.Contract.ClientSignature, middleware.RequireRole(model.RoleClient))
	auth.POST("/purchases/:id/contract/builder-signature", h.Contract.BuilderSignature, middleware.RequireRole(model.RoleBuilder))
	auth.PATCH("/purchases/:id/contract", h.Contract.Update, middleware.RequireRole(model.RoleBuilder))

	auth.GET("/purchases/:id/payments", h.Payment.List)
	auth.POST("/purchases/:id/payments", h.Payment.CreateIntent, middleware.RequireRole(model.RoleClient))

	auth.POST("/visits", h.Visit.Request, middleware.RequireRole(model.RoleClient))
	auth.GET("/my-visits", h.Visit.ListMine)
	auth.PATCH("/visits/:id/status", h.Visit.SetStatus, middleware.RequireRole(model.RoleBuilder))
	auth.POST("/visits/:id/cancel", h.Visit.Cancel, middleware.RequireRole(model.RoleClient))

	auth.GET("/notifications", h.Notification.List)
	auth.POST("/notifications/read-all", h.Notification.ReadAll)

	auth.GET("/chat/conversations", h.Chat.Conversations)
	auth.GET("/chat/with/:userID", h.Chat.History)

	auth.GET("/ws", h.WS.Serve)
}
