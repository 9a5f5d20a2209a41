package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/repository"
)

type scheduleReq struct {
	TrainID          uint64    `json:"train_id"`
	DepartureStation string    `json:"departure_station"`
	ArrivalStation   string    `json:"arrival_station"`
	DepartsAt        time.Time `json:"departs_at"`
	ArrivesAt        time.Time `json:"arrives_at"`
	PriceCents       uint32    `json:"price_cents"`
}

func (r scheduleReq) validate() string {
	if r.TrainID == 0 {
		return "train_id is required"
	}
	if strings.TrimSpace(r.DepartureStation) == "" || strings.TrimSpace(r.ArrivalStation) == "" {
		return "departure and arrival stations are required"
	}
	if r.DepartsAt.IsZero() || r.ArrivesAt.IsZero() || !r.ArrivesAt.After(r.DepartsAt) {
		return "arrives_at must be after departs_at"
	}
	if r.PriceCents == 0 {
		return "price_cents must be positive"
	}
	return ""
}

// CreateSchedule handles POST /v1/admin/schedules.
func (h *AdminHandler) CreateSchedule(c echo.Context) error {
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	// The train must exist before a trip can be timetabled on it.
	if _, err := h.Trains.GetByID(c.Request().Context(), req.TrainID); err != nil {
		if err == repository.ErrTrainNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	s := &model.Schedule{
		TrainID:          req.TrainID,
		DepartureStation: strings.TrimSpace(req.DepartureStation),
		ArrivalStation:   strings.TrimSpace(req.ArrivalStation),
		DepartsAt:        req.DepartsAt.UTC(),
		ArrivesAt:        req.ArrivesAt.UTC(),
		PriceCents:       req.PriceCents,
	}
	if err := h.Schedules.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, s)
}

// ListSchedules handles GET /v1/admin/schedules.
func (h *AdminHandler) ListSchedules(c echo.Context) error {
	items, err := h.Schedules.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"schedules": items})
}

// UpdateSchedule handles PUT /v1/admin/schedules/:id.  Repricing affects
// future reservations and amendments only; existing bookings keep the
// total they were priced at.
func (h *AdminHandler) UpdateSchedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if _, err := h.Trains.GetByID(c.Request().Context(), req.TrainID); err != nil {
		if err == repository.ErrTrainNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "train not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}

	s := &model.Schedule{
		ID:               id,
		TrainID:          req.TrainID,
		DepartureStation: strings.TrimSpace(req.DepartureStation),
		ArrivalStation:   strings.TrimSpace(req.ArrivalStation),
		DepartsAt:        req.DepartsAt.UTC(),
		ArrivesAt:        req.ArrivesAt.UTC(),
		PriceCents:       req.PriceCents,
	}
	if err := h.Schedules.Update(c.Request().Context(), s); err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, s)
}

// DeleteSchedule handles DELETE /v1/admin/schedules/:id.  A schedule with
// confirmed bookings cannot be removed.
func (h *AdminHandler) DeleteSchedule(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	if err := h.Schedules.Delete(c.Request().Context(), id); err != nil {
		switch err {
		case repository.ErrScheduleNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		case repository.ErrConflict:
			return c.JSON(http.StatusConflict, echo.Map{"error": "schedule has confirmed bookings"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ScheduleUtilization handles GET /v1/admin/schedules/:id/utilization.
// It reports the capacity, confirmed seat total and remaining headroom of
// a schedule.  After a capacity shrink, utilization can legitimately
// exceed capacity while available reads zero.
func (h *AdminHandler) ScheduleUtilization(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule id"})
	}
	capacity, used, available, err := h.Alloc.Utilization(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrScheduleNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"schedule_id": id,
		"capacity":    capacity,
		"utilization": used,
		"available":   available,
	})
}
