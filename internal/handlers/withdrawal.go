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

type withdrawalService interface {
	WorkingATMs(ctx context.Context) []models.ATM
	GenerateQR(ctx context.Context, req dto.QRCodeRequest) (dto.WithdrawalSession, error)
	Verify(ctx context.Context, req dto.VerifyOTPRequest) (dto.WithdrawalSession, error)
	Session(ctx context.Context, sessionID string) (dto.WithdrawalSession, error)
	Reset(ctx context.Context, sessionID string) error
}

type withdrawalHandlers struct {
	ResponseHandler response.ResponseHandler
	WithdrawalSvc   withdrawalService
}

func NewWithdrawalHandlers(deps *Deps) *withdrawalHandlers {
	return &withdrawalHandlers{
		ResponseHandler: deps.ResponseHandler,
		WithdrawalSvc:   deps.WithdrawalSvc,
	}
}

func (h *withdrawalHandlers) WithdrawalRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListATMs)
	r.Post("/qr", h.GenerateQR)
	r.Post("/verify", h.Verify)
	r.Get("/{sessionId}", h.GetSession)
	r.Delete("/{sessionId}", h.ResetSession)
	return r
}

func (h *withdrawalHandlers) ListATMs(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.WithdrawalSvc.WorkingATMs(r.Context()))
}

func (h *withdrawalHandlers) GenerateQR(w http.ResponseWriter, r *http.Request) {
	var req dto.QRCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	session, err := h.WithdrawalSvc.GenerateQR(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusCreated, session)
}

func (h *withdrawalHandlers) Verify(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	session, err := h.WithdrawalSvc.Verify(r.Context(), req)
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, session)
}

func (h *withdrawalHandlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.WithdrawalSvc.Session(r.Context(), chi.URLParam(r, "sessionId"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, session)
}

func (h *withdrawalHandlers) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.WithdrawalSvc.Reset(r.Context(), chi.URLParam(r, "sessionId")); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}
