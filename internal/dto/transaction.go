package dto

import "github.com/GregMSThompson/atm-backend/internal/models"

type TransactionView struct {
	models.Transaction
	DisplayAmount string `json:"displayAmount"`
}

type TransactionsResponse struct {
	Filter       string            `json:"filter"`
	Transactions []TransactionView `json:"transactions"`
}
