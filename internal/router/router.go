// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/flight-reservation/internal/config"
	"github.com/iliyamo/flight-reservation/internal/handler"
	"github.com/iliyamo/flight-reservation/internal/middleware"
	"github.com/iliyamo/flight-reservation/internal/session"
)

// Register mounts every route of the API on the provided Echo instance.
//
// Layout:
//
//	GET  /healthz                        liveness probe, no middleware
//	POST /v1/auth/register               create an account
//	POST /v1/auth/login                  open a session
//	GET  /v1/flights/:fid                public catalog lookup, cached
//	POST /v1/logout                      drop the session        (auth)
//	GET  /v1/search                      itinerary search        (auth)
//	POST /v1/reservations                book an itinerary       (auth)
//	GET  /v1/reservations                list active bookings    (auth)
//	POST /v1/reservations/:rid/pay       pay a reservation       (auth)
//	DELETE /v1/reservations/:rid         cancel a reservation    (auth)
//
// Every /v1 route shares the Redis token bucket. Only the catalog
// lookup sits behind the response cache: reservation and balance state
// must never be served stale.
func Register(e *echo.Echo, cfg *config.Config, rdb *redis.Client,
	a *handler.AuthHandler, cat *handler.CatalogHandler, b *handler.BookingHandler,
	sessions *session.Registry) {

	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	if rdb != nil {
		v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	}

	v1.POST("/auth/register", a.Register)
	v1.POST("/auth/login", a.Login)

	catalog := v1.Group("/flights")
	if rdb != nil {
		catalog.Use(middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	}
	catalog.GET("/:fid", cat.GetFlight)

	auth := v1.Group("")
	auth.Use(middleware.SessionAuth(cfg.JWTSecret, sessions))
	auth.POST("/logout", a.Logout)
	auth.GET("/search", b.Search)
	auth.POST("/reservations", b.Book)
	auth.GET("/reservations", b.List)
	auth.POST("/reservations/:rid/pay", b.Pay)
	auth.DELETE("/reservations/:rid", b.Cancel)
}
