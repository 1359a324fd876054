package handlers

import (
	"context"
	"net/http"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/response"
)

type homeService interface {
	Summary(ctx context.Context) dto.HomeSummary
}

type homeHandlers struct {
	ResponseHandler response.ResponseHandler
	HomeSvc         homeService
}

func NewHomeHandlers(deps *Deps) *homeHandlers {
	return &homeHandlers{
		ResponseHandler: deps.ResponseHandler,
		HomeSvc:         deps.HomeSvc,
	}
}

func (h *homeHandlers) GetHome(w http.ResponseWriter, r *http.Request) {
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, h.HomeSvc.Summary(r.Context()))
}
