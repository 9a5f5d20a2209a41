package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/yasiru/rail-booking/internal/allocator"
	"github.com/yasiru/rail-booking/internal/model"
	"github.com/yasiru/rail-booking/internal/queue"
	"github.com/yasiru/rail-booking/internal/repository"
	queue_publisher "github.com/yasiru/rail-booking/internal/service"
)

// BookingStore is the slice of booking persistence the passenger
// endpoints need beyond the allocator.  *repository.BookingRepo
// satisfies it.
type BookingStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error)
	UpdatePaymentStatus(ctx context.Context, id uint64, status string) error
}

// EventPublisher emits booking lifecycle events.  The default
// implementation fires them at RabbitMQ without blocking the request.
type EventPublisher interface {
	BookingConfirmed(b *model.Booking)
	BookingCanceled(b *model.Booking)
}

// BookingHandler serves the passenger-facing booking endpoints.  Every
// seat mutation goes through the allocator; the handler's own job is
// request parsing, ownership checks and translating allocator errors to
// HTTP statuses.  Methods assume JWT authentication and role validation
// have already run in middleware.
type BookingHandler struct {
	Alloc    *allocator.Allocator
	Bookings BookingStore
	Events   EventPublisher
}

func NewBookingHandler(a *allocator.Allocator, b BookingStore) *BookingHandler {
	if a == nil || b == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Alloc: a, Bookings: b, Events: queueEvents{}}
}

type createBookingReq struct {
	ScheduleID uint64 `json:"schedule_id"`
	Seats      uint32 `json:"seats"`
}

type amendBookingReq struct {
	Seats uint32 `json:"seats"`
}

// Create handles POST /v1/bookings.  A successful reservation returns the
// CONFIRMED booking; a full schedule returns 409 with the seat count that
// was still available when the request was decided.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	b, err := h.Alloc.Reserve(c.Request().Context(), userID, req.ScheduleID, req.Seats)
	if err != nil {
		return allocationError(c, err)
	}

	h.Events.BookingConfirmed(b)
	return c.JSON(http.StatusCreated, b)
}

// ListMine handles GET /v1/bookings/my.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Bookings.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"bookings": items})
}

// Get handles GET /v1/bookings/:id.  A booking owned by someone else is
// reported as not found so the endpoint does not leak booking ids.
func (h *BookingHandler) Get(c echo.Context) error {
	_, b, errResp := h.ownBooking(c)
	if errResp != nil {
		return errResp
	}
	return c.JSON(http.StatusOK, b)
}

// AmendSeats handles PUT /v1/bookings/:id/seats.  The new seat count
// replaces the old one entirely and the booking is repriced at the
// schedule's current per-seat price.
func (h *BookingHandler) AmendSeats(c echo.Context) error {
	_, b, errResp := h.ownBooking(c)
	if errResp != nil {
		return errResp
	}
	var req amendBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	updated, err := h.Alloc.Amend(c.Request().Context(), b.ID, req.Seats)
	if err != nil {
		return allocationError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Cancel handles DELETE /v1/bookings/:id.  The seats return to the pool
// the moment the call succeeds.  Canceling twice is a no-op, and only
// the call that actually transitioned the booking emits the canceled
// event; a retried DELETE must not produce a duplicate.
func (h *BookingHandler) Cancel(c echo.Context) error {
	_, b, errResp := h.ownBooking(c)
	if errResp != nil {
		return errResp
	}
	wasConfirmed := b.Status == model.BookingConfirmed

	if err := h.Alloc.Release(c.Request().Context(), b.ID); err != nil {
		return allocationError(c, err)
	}

	if wasConfirmed {
		h.Events.BookingCanceled(b)
	}
	return c.NoContent(http.StatusNoContent)
}

// Pay handles POST /v1/bookings/:id/pay.  Payment is a status flag only;
// it never changes seat accounting, and paying a canceled booking is
// rejected.
func (h *BookingHandler) Pay(c echo.Context) error {
	_, b, errResp := h.ownBooking(c)
	if errResp != nil {
		return errResp
	}
	if b.Status != model.BookingConfirmed {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is canceled"})
	}
	if b.PaymentStatus == model.PaymentPaid {
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking already paid"})
	}

	if err := h.Bookings.UpdatePaymentStatus(c.Request().Context(), b.ID, model.PaymentPaid); err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	b.PaymentStatus = model.PaymentPaid
	return c.JSON(http.StatusOK, b)
}

// ownBooking loads the :id booking and verifies the caller owns it.  The
// third return value is the already-written error response, nil on
// success.
func (h *BookingHandler) ownBooking(c echo.Context) (uint64, *model.Booking, error) {
	userID, err := getUserID(c)
	if err != nil {
		return 0, nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return 0, nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return 0, nil, c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return 0, nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if b.UserID != userID {
		// Do not reveal that the booking exists.
		return 0, nil, c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	return userID, b, nil
}

// allocationError maps allocator and repository errors onto the HTTP
// error taxonomy.  Capacity rejections are 409 with the available count;
// sustained lock contention is 503 with a Retry-After hint so clients
// know the request is safe to repeat.
func allocationError(c echo.Context, err error) error {
	var capErr *allocator.CapacityError
	switch {
	case errors.Is(err, allocator.ErrInvalidSeats),
		errors.Is(err, allocator.ErrMissingUser),
		errors.Is(err, allocator.ErrMissingSchedule),
		errors.Is(err, allocator.ErrMissingBooking):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrScheduleNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "schedule not found"})
	case errors.Is(err, repository.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	case errors.As(err, &capErr):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "not enough seats",
			"requested": capErr.Requested,
			"available": capErr.Available,
		})
	case errors.Is(err, allocator.ErrBookingCanceled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "booking is canceled"})
	case errors.Is(err, allocator.ErrScheduleBusy):
		c.Response().Header().Set("Retry-After", "1")
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "schedule busy, retry"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
}

// queueEvents is the production EventPublisher: it fires each event at
// RabbitMQ in a goroutine so the request never waits on the broker.
// Failures are logged inside the publisher and ignored.
type queueEvents struct{}

func (queueEvents) BookingConfirmed(b *model.Booking) {
	ev := queue.BookingConfirmedEvent{
		BookingID:   b.ID,
		UserID:      b.UserID,
		ScheduleID:  b.ScheduleID,
		Seats:       b.Seats,
		TotalCents:  b.TotalCents,
		ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingConfirmed(ctx, ev)
	}()
}

func (queueEvents) BookingCanceled(b *model.Booking) {
	ev := queue.BookingCanceledEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		ScheduleID: b.ScheduleID,
		Seats:      b.Seats,
		CanceledAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = queue_publisher.PublishBookingCanceled(ctx, ev)
	}()
}
