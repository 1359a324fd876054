package models

import (
	"time"
)

type TransactionType string

const (
	TxWithdrawal TransactionType = "Withdrawal"
	TxDeposit    TransactionType = "Deposit"
	TxTransfer   TransactionType = "Transfer"
)

type TransactionMethod string

const (
	MethodCard  TransactionMethod = "Card"
	MethodUPI   TransactionMethod = "UPI"
	MethodOther TransactionMethod = "Other"
)

type TransactionStatus string

const (
	TxCompleted TransactionStatus = "Completed"
	TxFailed    TransactionStatus = "Failed"
	TxPending   TransactionStatus = "Pending"
)

// Valid reports whether t is a known transaction type.
func (t TransactionType) Valid() bool {
	switch t {
	case TxWithdrawal, TxDeposit, TxTransfer:
		return true
	}
	return false
}

type Transaction struct {
	ID        string            `firestore:"id" json:"id"`
	UserID    string            `firestore:"userId" json:"userId"`
	ATMID     string            `firestore:"atmId" json:"atmId"`
	Amount    float64           `firestore:"amount" json:"amount"`
	Type      TransactionType   `firestore:"type" json:"type"`
	Method    TransactionMethod `firestore:"method" json:"method"`
	Timestamp time.Time         `firestore:"timestamp" json:"timestamp"`
	Status    TransactionStatus `firestore:"status" json:"status"`
}
