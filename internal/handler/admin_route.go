package handler

import (
	"errors"
	"net/http"

	"github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/repository"
)

type routeReq struct {
	OriginID      uint64 `json:"origin_id"`
	DestinationID uint64 `json:"destination_id"`
	DistanceKM    uint32 `json:"distance_km"`
}

func (r routeReq) validate() string {
	if r.OriginID == 0 || r.DestinationID == 0 {
		return "origin_id and destination_id are required"
	}
	if r.OriginID == r.DestinationID {
		return "origin and destination must differ"
	}
	return ""
}

// isFKViolation reports whether err is a MySQL foreign key failure, which
// on the routes table means a referenced station does not exist.
func isFKViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1452
}

// CreateRoute handles POST /v1/admin/routes.
func (h *AdminHandler) CreateRoute(c echo.Context) error {
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	rt := &model.Route{OriginID: req.OriginID, DestinationID: req.DestinationID, DistanceKM: req.DistanceKM}
	if err := h.Routes.Create(c.Request().Context(), rt); err != nil {
		if isFKViolation(err) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, rt)
}

// ListRoutes handles GET /v1/admin/routes.
func (h *AdminHandler) ListRoutes(c echo.Context) error {
	items, err := h.Routes.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"routes": items})
}

// UpdateRoute handles PUT /v1/admin/routes/:id.
func (h *AdminHandler) UpdateRoute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	var req routeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	rt := &model.Route{ID: id, OriginID: req.OriginID, DestinationID: req.DestinationID, DistanceKM: req.DistanceKM}
	if err := h.Routes.Update(c.Request().Context(), rt); err != nil {
		switch {
		case err == repository.ErrRouteNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		case isFKViolation(err):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "station not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, rt)
}

// DeleteRoute handles DELETE /v1/admin/routes/:id.
func (h *AdminHandler) DeleteRoute(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid route id"})
	}
	if err := h.Routes.Delete(c.Request().Context(), id); err != nil {
		if err == repository.ErrRouteNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "route not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
