package dto

import "github.com/GregMSThompson/atm-backend/internal/models"

// ATMDraft is the caller-supplied part of a new ATM.
type ATMDraft struct {
	Name     string
	Location models.Location
	Status   models.ATMStatus
}

// TransactionDraft is the caller-supplied part of a new transaction.
type TransactionDraft struct {
	ATMID  string
	Amount float64
	Type   models.TransactionType
	Method models.TransactionMethod
	Status models.TransactionStatus
}
