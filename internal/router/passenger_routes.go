package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/yasiru/rail-booking/internal/config"
	"github.com/yasiru/rail-booking/internal/handler"
	"github.com/yasiru/rail-booking/internal/middleware"
	"github.com/yasiru/rail-booking/internal/model"
)

// RegisterPassenger registers the booking endpoints under /v1.  All
// routes require a valid JWT; both roles may book.  The rate limiter sits
// in front of the allocator so a hot schedule cannot accumulate an
// unbounded queue of lock waiters.
func RegisterPassenger(e *echo.Echo, h *handler.BookingHandler, jwtSecret string, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RolePassenger, model.RoleAdmin),
		middleware.NewTokenBucket(rlCfg, rdb),
	)
	g.POST("/bookings", h.Create)
	g.GET("/bookings/my", h.ListMine)
	g.GET("/bookings/:id", h.Get)
	g.PUT("/bookings/:id/seats", h.AmendSeats)
	g.DELETE("/bookings/:id", h.Cancel)
	g.POST("/bookings/:id/pay", h.Pay)
}
