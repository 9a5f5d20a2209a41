package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/allocator"
	"github.com/yasiru/rail-booking/internal/config"
	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/repository"
)

// AdminHandler bundles the repositories administrators use to manage
// reference data, inspect bookings and settle payments.  Capacity edits
// land here: changing a train's capacity takes effect for subsequent
// allocations only and never touches existing bookings.
type AdminHandler struct {
	Cfg       config.Config
	Trains    *repository.TrainRepo
	Stations  *repository.StationRepo
	Routes    *repository.RouteRepo
	Schedules *repository.ScheduleRepo
	Bookings  *repository.BookingRepo
	Users     UserStore
	Alloc     *allocator.Allocator
}

func NewAdminHandler(cfg config.Config, t *repository.TrainRepo, st *repository.StationRepo, rt *repository.RouteRepo, sc *repository.ScheduleRepo, b *repository.BookingRepo, u UserStore, a *allocator.Allocator) *AdminHandler {
	if t == nil || st == nil || rt == nil || sc == nil || b == nil || u == nil || a == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Cfg: cfg, Trains: t, Stations: st, Routes: rt, Schedules: sc, Bookings: b, Users: u, Alloc: a}
}

type trainReq struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Capacity uint32 `json:"capacity"`
}

// CreateTrain handles POST /v1/admin/trains.
func (h *AdminHandler) CreateTrain(c echo.Context) error {
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	t := &model.Train{Name: req.Name, Type: strings.TrimSpace(req.Type), Capacity: req.Capacity}
	if err := h.Trains.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTrains handles GET /v1/admin/trains.
func (h *AdminHandler) ListTrains(c echo.Context) error {
	items, err := h.Trains.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"trains": items})
}

// GetTrain handles GET /v1/admin/trains/:id.
func (h *AdminHandler) GetTrain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	t, err := h.Trains.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrTrainNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, t)
}

// UpdateTrain handles PUT /v1/admin/trains/:id.  Shrinking capacity below
// a schedule's current confirmed seats is allowed: existing bookings stay
// confirmed and new reservations on the affected schedules are rejected
// until seats are released.
func (h *AdminHandler) UpdateTrain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	var req trainReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if req.Capacity == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "capacity must be positive"})
	}

	t := &model.Train{ID: id, Name: req.Name, Type: strings.TrimSpace(req.Type), Capacity: req.Capacity}
	if err := h.Trains.Update(c.Request().Context(), t); err != nil {
		if err == repository.ErrTrainNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, t)
}

// DeleteTrain handles DELETE /v1/admin/trains/:id.  A train still
// referenced by schedules cannot be removed.
func (h *AdminHandler) DeleteTrain(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid train id"})
	}
	if err := h.Trains.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrTrainNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "train not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "train has schedules"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
