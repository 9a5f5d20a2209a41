package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/repository"
)

// ListBookings handles GET /v1/admin/bookings.  An optional ?schedule_id
// query narrows the listing to one schedule.
func (h *AdminHandler) ListBookings(c echo.Context) error {
	ctx := c.Request().Context()

	if raw := c.QueryParam("schedule_id"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || id == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid schedule_id"})
		}
		items, err := h.Bookings.ListBySchedule(ctx, id)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
		}
		return c.JSON(http.StatusOK, echo.Map{"bookings": items})
	}

	items, err := h.Bookings.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// DeleteBooking handles DELETE /v1/admin/bookings/:id, removing a
// canceled booking record entirely.  A confirmed booking must be
// canceled first so its seats are returned through the allocator, never
// by a row disappearing.
func (h *AdminHandler) DeleteBooking(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.Status == model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "cancel the booking before deleting it"})
	}

	if err := h.Bookings.Delete(ctx, id); err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ConfirmPayment handles POST /v1/admin/bookings/:id/payment/confirm.
func (h *AdminHandler) ConfirmPayment(c echo.Context) error {
	return h.settlePayment(c, model.PaymentPaid)
}

// RejectPayment handles POST /v1/admin/bookings/:id/payment/reject.
func (h *AdminHandler) RejectPayment(c echo.Context) error {
	return h.settlePayment(c, model.PaymentRejected)
}

// settlePayment flips a booking's payment flag.  Payment state never
// feeds back into seat accounting: a rejected payment leaves the booking
// confirmed until the passenger or an operator cancels it.
func (h *AdminHandler) settlePayment(c echo.Context, status string) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	ctx := c.Request().Context()

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is canceled"})
	}

	if err := h.Bookings.UpdatePaymentStatus(ctx, id, status); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	b.PaymentStatus = status
	return c.JSON(http.StatusOK, b)
}
