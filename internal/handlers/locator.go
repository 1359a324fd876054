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

type locatorService interface {
	List(ctx context.Context, status string) (dto.LocatorResponse, error)
	AddATM(ctx context.Context, req dto.AddATMRequest) (models.ATM, error)
}

type locatorHandlers struct {
	ResponseHandler response.ResponseHandler
	LocatorSvc      locatorService
}

func NewLocatorHandlers(deps *Deps) *locatorHandlers {
	return &locatorHandlers{
		ResponseHandler: deps.ResponseHandler,
		LocatorSvc:      deps.LocatorSvc,
	}
}

func (h *locatorHandlers) LocatorRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListATMs)
	r.Post("/", h.AddATM)
	return r
}

func (h *locatorHandlers) ListATMs(w http.ResponseWriter, r *http.Request) {
	resp, err := h.LocatorSvc.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}

func (h *locatorHandlers) AddATM(w http.ResponseWriter, r *http.Request) {
	var req dto.AddATMRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	atm, err := h.LocatorSvc.AddATM(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, atm)
}
