package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/internal/state"
)

type transactionsState interface {
	User() models.User
}

type transactionsService struct {
	state transactionsState
}

func NewTransactionsService(state transactionsState) *transactionsService {
	return &transactionsService{state: state}
}

// List returns the user's transactions, newest first, optionally narrowed to
// one transaction type.
func (s *transactionsService) List(ctx context.Context, txType string) (dto.TransactionsResponse, error) {
	if txType == "" {
		txType = state.FilterAll
	}
	if txType != state.FilterAll && !models.TransactionType(txType).Valid() {
		return dto.TransactionsResponse{}, errs.NewValidationError("unknown transaction type: " + txType)
	}

	user := s.state.User()
	views := make([]dto.TransactionView, 0, len(user.Transactions))
	for _, tx := range user.Transactions {
		if txType == state.FilterAll || string(tx.Type) == txType {
			views = append(views, transactionView(tx))
		}
	}
	return dto.TransactionsResponse{Filter: txType, Transactions: views}, nil
}

func transactionView(tx models.Transaction) dto.TransactionView {
	return dto.TransactionView{Transaction: tx, DisplayAmount: DisplayAmount(tx)}
}

// DisplayAmount renders the signed amount shown to the user: deposits are
// credits, everything else is a debit.
func DisplayAmount(tx models.Transaction) string {
	sign := "-"
	if tx.Type == models.TxDeposit {
		sign = "+"
	}
	return sign + "$" + decimal.NewFromFloat(tx.Amount).StringFixed(2)
}
