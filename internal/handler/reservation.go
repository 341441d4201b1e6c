package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-engine/internal/middleware"
	"github.com/iliyamo/ticketing-engine/internal/service"
	"github.com/iliyamo/ticketing-engine/internal/store"
)

// ReservationHandler exposes the hold/confirm/release endpoints. The
// holder identity, when a Bearer token was presented, is read from the
// context set by the identity middleware; anonymous requests are served
// with a nil holder.
type ReservationHandler struct {
	Svc     *service.ReservationService
	HoldTTL time.Duration // fixed per deployment
}

// NewReservationHandler constructs the handler. svc must be non-nil; a
// non-positive ttl falls back to the service default.
func NewReservationHandler(svc *service.ReservationService, ttl time.Duration) *ReservationHandler {
	if svc == nil {
		panic("nil service passed to NewReservationHandler")
	}
	if ttl <= 0 {
		ttl = service.DefaultHoldTTL
	}
	return &ReservationHandler{Svc: svc, HoldTTL: ttl}
}

// holdResponse is the body returned by a successful hold.
type holdResponse struct {
	BookingID   uint64    `json:"booking_id"`
	ScreeningID uint64    `json:"screening_id"`
	SeatID      uint64    `json:"seat_id"`
	Status      string    `json:"status"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// confirmResponse is the body returned by a successful confirmation.
type confirmResponse struct {
	BookingID   uint64    `json:"booking_id"`
	Reference   string    `json:"reference"`
	ScreeningID uint64    `json:"screening_id"`
	SeatID      uint64    `json:"seat_id"`
	Status      string    `json:"status"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// Hold handles POST /v1/screenings/:id/seats/:seat_id/hold.
func (h *ReservationHandler) Hold(c echo.Context) error {
	screeningID, seatID, err := reservationParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	hold, err := h.Svc.AcquireHold(c.Request().Context(), screeningID, seatID, middleware.HolderID(c), h.HoldTTL)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusCreated, holdResponse{
		BookingID:   hold.BookingID,
		ScreeningID: hold.ScreeningID,
		SeatID:      hold.SeatID,
		Status:      "HELD",
		ExpiresAt:   hold.ExpiresAt,
	})
}

// Confirm handles POST /v1/screenings/:id/seats/:seat_id/confirm.
func (h *ReservationHandler) Confirm(c echo.Context) error {
	screeningID, seatID, err := reservationParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	conf, err := h.Svc.Confirm(c.Request().Context(), screeningID, seatID, middleware.HolderID(c))
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, confirmResponse{
		BookingID:   conf.BookingID,
		Reference:   conf.Reference,
		ScreeningID: conf.ScreeningID,
		SeatID:      conf.SeatID,
		Status:      "CONFIRMED",
		ConfirmedAt: conf.ConfirmedAt,
	})
}

// Release handles DELETE /v1/screenings/:id/seats/:seat_id/hold. The
// operation is idempotent: releasing a seat with no live hold succeeds.
func (h *ReservationHandler) Release(c echo.Context) error {
	screeningID, seatID, err := reservationParams(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Svc.Release(c.Request().Context(), screeningID, seatID); err != nil {
		return reservationError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// SeatMap handles GET /v1/screenings/:id/seat-map.
func (h *ReservationHandler) SeatMap(c echo.Context) error {
	screeningID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || screeningID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid screening id"})
	}
	sm, err := h.Svc.ResolveHall(c.Request().Context(), screeningID)
	if err != nil {
		return reservationError(c, err)
	}
	return c.JSON(http.StatusOK, sm)
}

func reservationParams(c echo.Context) (screeningID, seatID uint64, err error) {
	screeningID, err = strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || screeningID == 0 {
		return 0, 0, errors.New("invalid screening id")
	}
	seatID, err = strconv.ParseUint(c.Param("seat_id"), 10, 64)
	if err != nil || seatID == 0 {
		return 0, 0, errors.New("invalid seat id")
	}
	return screeningID, seatID, nil
}

// reservationError maps service sentinels onto HTTP statuses. Callers
// hitting 409 on a hold may retry once the conflicting hold expires;
// 409 on an already booked seat is permanent.
func reservationError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrScreeningNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "screening not found"})
	case errors.Is(err, service.ErrSeatNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "seat not found"})
	case errors.Is(err, service.ErrAlreadyBooked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat already booked", "retryable": false})
	case errors.Is(err, service.ErrAlreadyHeld):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat is held by another session", "retryable": true})
	case errors.Is(err, store.ErrContention):
		return c.JSON(http.StatusConflict, echo.Map{"error": "seat is contended, try again", "retryable": true})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
