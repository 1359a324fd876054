package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/models"
)

type stubResponseHandler struct {
	writeSuccessCalled bool
	writeSuccessStatus int
	writeSuccessData   any

	handleErrorCalled bool
	handleError       error
}

func (s *stubResponseHandler) WriteSuccess(w http.ResponseWriter, _ *http.Request, status int, data any) {
	s.writeSuccessCalled = true
	s.writeSuccessStatus = status
	s.writeSuccessData = data
	w.WriteHeader(status)
}

func (s *stubResponseHandler) WriteError(w http.ResponseWriter, _ *http.Request, status int, _, _ string, _ ...any) {
	w.WriteHeader(status)
}

func (s *stubResponseHandler) HandleError(w http.ResponseWriter, _ *http.Request, err error) {
	s.handleErrorCalled = true
	s.handleError = err
	w.WriteHeader(http.StatusInternalServerError)
}

// withChiParam injects a chi URL parameter into the request context.
func withChiParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// --- Stub services ---

type stubLocatorService struct {
	lastStatus string
	listResp   dto.LocatorResponse
	listErr    error
	lastAdd    dto.AddATMRequest
	addATM     models.ATM
	addErr     error
}

func (s *stubLocatorService) List(_ context.Context, status string) (dto.LocatorResponse, error) {
	s.lastStatus = status
	return s.listResp, s.listErr
}

func (s *stubLocatorService) AddATM(_ context.Context, req dto.AddATMRequest) (models.ATM, error) {
	s.lastAdd = req
	return s.addATM, s.addErr
}

type stubSlotBookingService struct {
	lastATMID string
	lastBook  dto.BookSlotRequest
	booking   models.BookedSlot
	err       error
}

func (s *stubSlotBookingService) Options(_ context.Context, atmID string) (dto.SlotBookingResponse, error) {
	s.lastATMID = atmID
	return dto.SlotBookingResponse{}, s.err
}

func (s *stubSlotBookingService) Book(_ context.Context, req dto.BookSlotRequest) (models.BookedSlot, error) {
	s.lastBook = req
	return s.booking, s.err
}

type stubBookingsService struct {
	lastID string
	err    error
}

func (s *stubBookingsService) List(_ context.Context) ([]dto.BookingView, error) {
	return []dto.BookingView{}, s.err
}

func (s *stubBookingsService) Confirm(_ context.Context, id string) (dto.BookingView, error) {
	s.lastID = id
	return dto.BookingView{Confirmed: true}, s.err
}

func (s *stubBookingsService) Countdown(_ context.Context, id string) (dto.CountdownResponse, error) {
	s.lastID = id
	return dto.CountdownResponse{BookingID: id}, s.err
}

func (s *stubBookingsService) Cancel(_ context.Context, id string) (models.BookedSlot, error) {
	s.lastID = id
	return models.BookedSlot{BookingID: id}, s.err
}

type stubWithdrawalService struct {
	lastQR     dto.QRCodeRequest
	lastVerify dto.VerifyOTPRequest
	lastID     string
	session    dto.WithdrawalSession
	err        error
}

func (s *stubWithdrawalService) WorkingATMs(_ context.Context) []models.ATM {
	return []models.ATM{{ID: "atm1"}}
}

func (s *stubWithdrawalService) GenerateQR(_ context.Context, req dto.QRCodeRequest) (dto.WithdrawalSession, error) {
	s.lastQR = req
	return s.session, s.err
}

func (s *stubWithdrawalService) Verify(_ context.Context, req dto.VerifyOTPRequest) (dto.WithdrawalSession, error) {
	s.lastVerify = req
	return s.session, s.err
}

func (s *stubWithdrawalService) Session(_ context.Context, id string) (dto.WithdrawalSession, error) {
	s.lastID = id
	return s.session, s.err
}

func (s *stubWithdrawalService) Reset(_ context.Context, id string) error {
	s.lastID = id
	return s.err
}

type stubNotificationsService struct {
	dismissed []int
	err       error
}

func (s *stubNotificationsService) List(_ context.Context) []string {
	return []string{"hello"}
}

func (s *stubNotificationsService) Dismiss(_ context.Context, index int) error {
	s.dismissed = append(s.dismissed, index)
	return s.err
}
