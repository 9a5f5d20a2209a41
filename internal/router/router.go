// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yasiru/rail-booking/internal/config"
	"github.com/yasiru/rail-booking/internal/handler"
	"github.com/yasiru/rail-booking/internal/middleware"
)

// RegisterRoutes registers the routes that require no authentication.
// The health check is used by load balancers to verify the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints.  When a
// Redis client is available the responses are cached: timetable reads
// dominate traffic and only change on admin edits.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("/v1", middleware.NewRedisCache(cacheCfg, rdb))
	g.GET("/trains", p.ListTrains)
	g.GET("/stations", p.ListStations)
	g.GET("/routes", p.ListRoutes)
	g.GET("/schedules", p.ListSchedules)
	g.GET("/schedules/:id", p.GetSchedule)
}
