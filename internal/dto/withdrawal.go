package dto

import (
	"time"

	"github.com/GregMSThompson/atm-backend/internal/models"
)

// Wizard steps of a cardless withdrawal.
const (
	StepDetails = 1
	StepVerify  = 2
	StepDone    = 3
)

type QRCodeRequest struct {
	ATMID  string  `json:"atmId" validate:"required"`
	Amount float64 `json:"amount" validate:"gt=0"`
}

type VerifyOTPRequest struct {
	SessionID string `json:"sessionId" validate:"required"`
	OTP       string `json:"otp"`
}

type WithdrawalSession struct {
	ID        string              `json:"sessionId"`
	Step      int                 `json:"step"`
	ATMID     string              `json:"atmId"`
	ATMName   string              `json:"atmName"`
	Amount    float64             `json:"amount"`
	QRCode    string              `json:"qrCode"`
	Verifying bool                `json:"verifying"`
	Error     string              `json:"error,omitempty"`
	Receipt   *models.Transaction `json:"receipt,omitempty"`
	CreatedAt time.Time           `json:"createdAt"`
}
