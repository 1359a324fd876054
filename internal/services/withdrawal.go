package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

const (
	msgInvalidDetails   = "Please select an ATM and enter a valid amount"
	msgMissingOTP       = "Please enter the OTP"
	msgInvalidOTP       = "Invalid OTP. Transaction failed."
	msgVerificationFail = "An error occurred during verification."

	sessionTTL = 30 * time.Minute
)

type withdrawalState interface {
	ATMs() []models.ATM
	ATM(id string) (models.ATM, error)
	GenerateQRCode(atmID string, amount float64) string
	VerifyUPITransaction(ctx context.Context, qrCode, otp string) (bool, error)
	AddTransaction(ctx context.Context, draft dto.TransactionDraft) models.Transaction
}

// withdrawalService drives the three-step cardless withdrawal: pick an ATM
// and amount, verify the OTP, show the receipt.
type withdrawalService struct {
	state    withdrawalState
	clockNow func() time.Time

	mu       sync.Mutex
	sessions map[string]*dto.WithdrawalSession
}

func NewWithdrawalService(state withdrawalState, clockNow func() time.Time) *withdrawalService {
	if clockNow == nil {
		clockNow = time.Now
	}
	return &withdrawalService{
		state:    state,
		clockNow: clockNow,
		sessions: make(map[string]*dto.WithdrawalSession),
	}
}

// WorkingATMs lists the ATMs a withdrawal can be made at.
func (s *withdrawalService) WorkingATMs(ctx context.Context) []models.ATM {
	atms := []models.ATM{}
	for _, atm := range s.state.ATMs() {
		if atm.Status == models.ATMWorking {
			atm.AvailableSlots = nil
			atms = append(atms, atm)
		}
	}
	return atms
}

// GenerateQR starts a session for a withdrawal at a working ATM.
func (s *withdrawalService) GenerateQR(ctx context.Context, req dto.QRCodeRequest) (dto.WithdrawalSession, error) {
	if err := validateRequest(req, msgInvalidDetails); err != nil {
		return dto.WithdrawalSession{}, err
	}
	atm, err := s.state.ATM(req.ATMID)
	if err != nil {
		var nf *errs.NotFoundError
		if errors.As(err, &nf) {
			return dto.WithdrawalSession{}, errs.NewValidationError(msgInvalidDetails,
				errs.FieldError{Field: "atmId", Message: "Unknown ATM", Type: "exists"})
		}
		return dto.WithdrawalSession{}, err
	}
	if atm.Status != models.ATMWorking {
		return dto.WithdrawalSession{}, errs.NewValidationError(msgInvalidDetails,
			errs.FieldError{Field: "atmId", Message: "ATM is " + string(atm.Status), Type: "working"})
	}

	now := s.clockNow()
	session := &dto.WithdrawalSession{
		ID:        uuid.NewString(),
		Step:      dto.StepVerify,
		ATMID:     atm.ID,
		ATMName:   atm.Name,
		Amount:    req.Amount,
		QRCode:    s.state.GenerateQRCode(atm.ID, req.Amount),
		CreatedAt: now,
	}

	s.mu.Lock()
	s.pruneLocked(now)
	s.sessions[session.ID] = session
	out := *session
	s.mu.Unlock()

	logger.FromContext(ctx).Info("withdrawal started", "session_id", session.ID, "atm_id", atm.ID)
	return out, nil
}

// Verify checks the OTP for a session and records the attempt as a UPI
// withdrawal, completed or failed. Only one verification per session may be
// in flight.
func (s *withdrawalService) Verify(ctx context.Context, req dto.VerifyOTPRequest) (dto.WithdrawalSession, error) {
	if err := validateRequest(req, "Invalid verification request"); err != nil {
		return dto.WithdrawalSession{}, err
	}
	if req.OTP == "" {
		return dto.WithdrawalSession{}, errs.NewValidationError(msgMissingOTP,
			errs.FieldError{Field: "otp", Message: "This field is required", Type: "required"})
	}

	s.mu.Lock()
	session, ok := s.sessions[req.SessionID]
	switch {
	case !ok:
		s.mu.Unlock()
		return dto.WithdrawalSession{}, errs.NewNotFoundError("withdrawal session not found: " + req.SessionID)
	case session.Verifying:
		s.mu.Unlock()
		return dto.WithdrawalSession{}, errs.NewAlreadyExistsError("verification already in progress")
	case session.Step == dto.StepDone:
		s.mu.Unlock()
		return dto.WithdrawalSession{}, errs.NewAlreadyExistsError("withdrawal already completed")
	}
	session.Verifying = true
	session.Error = ""
	qrCode, atmID, amount := session.QRCode, session.ATMID, session.Amount
	s.mu.Unlock()

	log, ctx := logger.With(ctx, "session_id", req.SessionID)
	approved, err := s.state.VerifyUPITransaction(ctx, qrCode, req.OTP)

	if err != nil {
		s.mu.Lock()
		session.Verifying = false
		session.Error = msgVerificationFail
		s.mu.Unlock()

		log.Warn("otp verification failed", "error", err)
		var ext *errs.ExternalServiceError
		if errors.As(err, &ext) {
			return dto.WithdrawalSession{}, err
		}
		return dto.WithdrawalSession{}, errs.NewExternalServiceError("upi", true, err)
	}

	status := models.TxFailed
	if approved {
		status = models.TxCompleted
	}
	tx := s.state.AddTransaction(ctx, dto.TransactionDraft{
		ATMID:  atmID,
		Amount: amount,
		Type:   models.TxWithdrawal,
		Method: models.MethodUPI,
		Status: status,
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	session.Verifying = false
	if !approved {
		session.Error = msgInvalidOTP
		log.Info("otp rejected", "tx_id", tx.ID)
		return *session, nil
	}
	session.Step = dto.StepDone
	session.Receipt = &tx
	log.Info("withdrawal completed", "tx_id", tx.ID)
	return *session, nil
}

func (s *withdrawalService) Session(ctx context.Context, sessionID string) (dto.WithdrawalSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return dto.WithdrawalSession{}, errs.NewNotFoundError("withdrawal session not found: " + sessionID)
	}
	return *session, nil
}

// Reset discards a session, returning the wizard to its first step.
func (s *withdrawalService) Reset(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sessionID]; !ok {
		return errs.NewNotFoundError("withdrawal session not found: " + sessionID)
	}
	delete(s.sessions, sessionID)
	return nil
}

func (s *withdrawalService) pruneLocked(now time.Time) {
	for id, session := range s.sessions {
		if !session.Verifying && now.Sub(session.CreatedAt) > sessionTTL {
			delete(s.sessions, id)
		}
	}
}
