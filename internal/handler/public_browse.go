package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/repository"
)

// PublicHandler serves the unauthenticated browse endpoints.  These are
// plain catalog reads; the router wraps them in the response cache so
// repeated timetable lookups rarely reach the database.
type PublicHandler struct {
	Trains    *repository.TrainRepo
	Stations  *repository.StationRepo
	Routes    *repository.RouteRepo
	Schedules *repository.ScheduleRepo
}

func NewPublicHandler(t *repository.TrainRepo, st *repository.StationRepo, rt *repository.RouteRepo, sc *repository.ScheduleRepo) *PublicHandler {
	if t == nil || st == nil || rt == nil || sc == nil {
		panic("nil repository passed to NewPublicHandler")
	}
	return &PublicHandler{Trains: t, Stations: st, Routes: rt, Schedules: sc}
}

// ListTrains handles GET /v1/trains.
func (h *PublicHandler) ListTrains(c echo.Context) error {
	items, err := h.Trains.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"trains": items})
}

// ListStations handles GET /v1/stations.
func (h *PublicHandler) ListStations(c echo.Context) error {
	items, err := h.Stations.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"stations": items})
}

// ListRoutes handles GET /v1/routes.
func (h *PublicHandler) ListRoutes(c echo.Context) error {
	items, err := h.Routes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": items})
}

// ListSchedules handles GET /v1/schedules.  It returns every schedule in
// the timetable; there is intentionally no filtering or search here.
func (h *PublicHandler) ListSchedules(c echo.Context) error {
	items, err := h.Schedules.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"schedules": items})
}

// GetSchedule handles GET /v1/schedules/:id.
func (h *PublicHandler) GetSchedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	s, err := h.Schedules.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, s)
}
