package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/internal/response"
)

type bookingsService interface {
	List(ctx context.Context) ([]dto.BookingView, error)
	Confirm(ctx context.Context, bookingID string) (dto.BookingView, error)
	Countdown(ctx context.Context, bookingID string) (dto.CountdownResponse, error)
	Cancel(ctx context.Context, bookingID string) (models.BookedSlot, error)
}

type bookingsHandlers struct {
	ResponseHandler response.ResponseHandler
	BookingsSvc     bookingsService
}

func NewBookingsHandlers(deps *Deps) *bookingsHandlers {
	return &bookingsHandlers{
		ResponseHandler: deps.ResponseHandler,
		BookingsSvc:     deps.BookingsSvc,
	}
}

func (h *bookingsHandlers) BookingsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListBookings)
	r.Post("/{bookingId}/confirm", h.ConfirmBooking)
	r.Get("/{bookingId}/countdown", h.GetCountdown)
	r.Delete("/{bookingId}", h.CancelBooking)
	return r
}

func (h *bookingsHandlers) ListBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.BookingsSvc.List(r.Context())
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, bookings)
}

func (h *bookingsHandlers) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.BookingsSvc.Confirm(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, booking)
}

func (h *bookingsHandlers) GetCountdown(w http.ResponseWriter, r *http.Request) {
	resp, err := h.BookingsSvc.Countdown(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *bookingsHandlers) CancelBooking(w http.ResponseWriter, r *http.Request) {
	booking, err := h.BookingsSvc.Cancel(r.Context(), chi.URLParam(r, "bookingId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, booking)
}
