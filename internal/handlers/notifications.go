package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/response"
)

type notificationsService interface {
	List(ctx context.Context) []string
	Dismiss(ctx context.Context, index int) error
}

type notificationsHandlers struct {
	ResponseHandler  response.ResponseHandler
	NotificationsSvc notificationsService
}

func NewNotificationsHandlers(deps *Deps) *notificationsHandlers {
	return &notificationsHandlers{
		ResponseHandler:  deps.ResponseHandler,
		NotificationsSvc: deps.NotificationsSvc,
	}
}

func (h *notificationsHandlers) NotificationsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListNotifications)
	r.Delete("/{index}", h.DismissNotification)
	return r
}

func (h *notificationsHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.NotificationsSvc.List(r.Context()))
}

func (h *notificationsHandlers) DismissNotification(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, errs.NewValidationError("notification index must be a number"))
		return
	}
	if err := h.NotificationsSvc.Dismiss(r.Context(), index); err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusNoContent, nil)
}
