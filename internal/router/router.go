// Package router mounts handlers and middleware on the Echo instance.
package router

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/inventory-api/internal/config"
	"github.com/iliyamo/inventory-api/internal/handler"
	"github.com/iliyamo/inventory-api/internal/middleware"
	"github.com/iliyamo/inventory-api/internal/model"
)

// Deps is everything the routes need.
type Deps struct {
	Auth       *handler.AuthHandler
	Audits     *handler.AuditHandler
	Categories *handler.CategoryHandler
	Products   *handler.ProductHandler
	Inventory  *handler.InventoryHandler

	Verifier middleware.AccessVerifier
	Recorder middleware.AuditSubmitter

	Redis     *redis.Client // nil disables rate limiting and caching
	RateLimit config.RateLimitConfig
	Cache     config.CacheConfig
	Log       *slog.Logger
}

// RegisterRoutes registers the unauthenticated operational endpoints.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/health", handler.Health)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}

// RegisterAuth mounts /api/auth. Login and register are rate limited;
// refresh and logout carry their own credential.
func RegisterAuth(e *echo.Echo, d Deps) {
	g := e.Group("/api/auth")
	limit := middleware.NewTokenBucket(d.RateLimit, d.Redis, d.Log)

	g.POST("/login", d.Auth.Login, limit)
	g.POST("/register", d.Auth.Register, limit)
	g.POST("/refresh", d.Auth.Refresh)
	g.POST("/logout", d.Auth.Logout)
}

// RegisterAudits mounts the ADMIN-only audit listings. The cache sits
// behind the guard so a cached page is never served to a caller who
// failed it.
func RegisterAudits(e *echo.Echo, d Deps) {
	g := e.Group("/api/audits",
		middleware.JWTAuth(d.Verifier),
		middleware.RequireRole(model.RoleAdmin),
		middleware.NewRedisCache(d.Cache, d.Redis, d.Log),
	)
	g.GET("", d.Audits.List)
	g.GET("/user/:userId", d.Audits.ByUser)
	g.GET("/resource/:resourceId", d.Audits.ByResource)
}

// RegisterCatalog mounts categories, products, inventory and movements.
// Reads accept USER and ADMIN; every mutation is ADMIN-only and audited.
func RegisterCatalog(e *echo.Echo, d Deps) {
	api := e.Group("/api", middleware.JWTAuth(d.Verifier))
	read := middleware.RequireRole(model.RoleUser, model.RoleAdmin)
	write := middleware.RequireRole(model.RoleAdmin)
	audit := func(action model.Action, kind model.ResourceKind, h middleware.AuditedHandler) echo.HandlerFunc {
		return middleware.Audited(d.Recorder, action, kind, h)
	}

	cat := api.Group("/categories")
	cat.GET("", d.Categories.List, read)
	cat.GET("/:id", d.Categories.Get, read)
	cat.POST("", audit(model.ActionCreate, model.ResourceCategory, d.Categories.Create), write)
	cat.PUT("/:id", audit(model.ActionUpdate, model.ResourceCategory, d.Categories.Update), write)
	cat.DELETE("/:id", audit(model.ActionSoftDelete, model.ResourceCategory, d.Categories.Delete), write)
	cat.PATCH("/:id/restore", audit(model.ActionRestore, model.ResourceCategory, d.Categories.Restore), write)

	prod := api.Group("/products")
	prod.GET("", d.Products.List, read)
	prod.GET("/:id", d.Products.Get, read)
	prod.POST("", audit(model.ActionCreate, model.ResourceProduct, d.Products.Create), write)
	prod.PUT("/:id", audit(model.ActionUpdate, model.ResourceProduct, d.Products.Update), write)
	prod.DELETE("/:id", audit(model.ActionSoftDelete, model.ResourceProduct, d.Products.Delete), write)
	prod.PATCH("/:id/restore", audit(model.ActionRestore, model.ResourceProduct, d.Products.Restore), write)

	inv := api.Group("/inventory")
	inv.POST("/in", audit(model.ActionCreate, model.ResourceInventory, d.Inventory.In), write)
	inv.POST("/out", audit(model.ActionCreate, model.ResourceInventory, d.Inventory.Out), write)
	inv.GET("/stock", d.Inventory.Stock, read)

	mov := api.Group("/movements", read)
	mov.GET("", d.Inventory.Movements)
	mov.GET("/entries", d.Inventory.Entries)
	mov.GET("/exits", d.Inventory.Exits)
	mov.GET("/product/:productId", d.Inventory.ByProduct)
}
