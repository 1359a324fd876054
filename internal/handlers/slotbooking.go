package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/internal/response"
)

type slotBookingService interface {
	Options(ctx context.Context, atmID string) (dto.SlotBookingResponse, error)
	Book(ctx context.Context, req dto.BookSlotRequest) (models.BookedSlot, error)
}

type slotBookingHandlers struct {
	ResponseHandler response.ResponseHandler
	SlotBookingSvc  slotBookingService
}

func NewSlotBookingHandlers(deps *Deps) *slotBookingHandlers {
	return &slotBookingHandlers{
		ResponseHandler: deps.ResponseHandler,
		SlotBookingSvc:  deps.SlotBookingSvc,
	}
}

func (h *slotBookingHandlers) SlotBookingRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.GetOptions)
	r.Post("/", h.BookSlot)
	return r
}

func (h *slotBookingHandlers) GetOptions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.SlotBookingSvc.Options(r.Context(), r.URL.Query().Get("atmId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *slotBookingHandlers) BookSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.BookSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	booking, err := h.SlotBookingSvc.Book(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, booking)
}
