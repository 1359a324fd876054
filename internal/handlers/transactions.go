package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/response"
)

type transactionsService interface {
	List(ctx context.Context, txType string) (dto.TransactionsResponse, error)
}

type transactionsHandlers struct {
	ResponseHandler response.ResponseHandler
	TransactionsSvc transactionsService
}

func NewTransactionsHandlers(deps *Deps) *transactionsHandlers {
	return &transactionsHandlers{
		ResponseHandler: deps.ResponseHandler,
		TransactionsSvc: deps.TransactionsSvc,
	}
}

func (h *transactionsHandlers) TransactionsRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListTransactions)
	return r
}

func (h *transactionsHandlers) ListTransactions(w http.ResponseWriter, r *http.Request) {
	resp, err := h.TransactionsSvc.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.ResponseHandler.HandleError(w, r, err)
		return
	}
	h.ResponseHandler.WriteSuccess(w, r, http.StatusOK, resp)
}
