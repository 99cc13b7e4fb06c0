package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/workspace-booking/internal/config"
	"github.com/iliyamo/workspace-booking/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/workspace-booking/internal/middleware" // import middleware for rate limiting and caching
)

// RegisterRoutes registers routes that sit outside the versioned API on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterBookings registers the booking lifecycle endpoints under
// /v1/bookings.  A Redis-backed token bucket limits request rates on
// the whole group and GET responses are cached; when rdb is nil both
// middlewares fall through to the handlers unchanged.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, rdb *redis.Client) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	g.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// Collection endpoints: create a booking, list bookings with
	// optional user_id/workspace_id/from/to filters.
	g.POST("", b.Create)
	g.GET("", b.List)

	// Single-booking endpoints.  PATCH merges partial updates; the
	// confirm and cancel actions are separate POSTs so that their
	// idempotency semantics stay explicit.
	g.GET("/:id", b.Get)
	g.PATCH("/:id", b.Update)
	g.POST("/:id/confirm", b.Confirm)
	g.POST("/:id/cancel", b.Cancel)
	g.DELETE("/:id", b.Delete)
}
