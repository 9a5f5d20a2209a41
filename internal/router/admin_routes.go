package router

import (
	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/handler"
	"github.com/yasiru/rail-booking/internal/middleware"
	"github.com/yasiru/rail-booking/internal/model"
)

// RegisterAdmin registers the operator endpoints under /v1/admin.  Every
// route requires a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	g.POST("/trains", h.CreateTrain)
	g.GET("/trains", h.ListTrains)
	g.GET("/trains/:id", h.GetTrain)
	g.PUT("/trains/:id", h.UpdateTrain)
	g.DELETE("/trains/:id", h.DeleteTrain)

	g.POST("/stations", h.CreateStation)
	g.GET("/stations", h.ListStations)
	g.PUT("/stations/:id", h.UpdateStation)
	g.DELETE("/stations/:id", h.DeleteStation)

	g.POST("/routes", h.CreateRoute)
	g.GET("/routes", h.ListRoutes)
	g.PUT("/routes/:id", h.UpdateRoute)
	g.DELETE("/routes/:id", h.DeleteRoute)

	g.POST("/schedules", h.CreateSchedule)
	g.GET("/schedules", h.ListSchedules)
	g.PUT("/schedules/:id", h.UpdateSchedule)
	g.DELETE("/schedules/:id", h.DeleteSchedule)
	g.GET("/schedules/:id/utilization", h.ScheduleUtilization)

	g.GET("/bookings", h.ListBookings)
	g.DELETE("/bookings/:id", h.DeleteBooking)
	g.POST("/bookings/:id/payment/confirm", h.ConfirmPayment)
	g.POST("/bookings/:id/payment/reject", h.RejectPayment)

	g.POST("/users", h.CreateUser)

	g.GET("/dashboard", h.Dashboard)
}
