// Package state holds the application's in-memory data and every operation
// that mutates it. A single State is created at start-up and shared by the
// services; all methods are safe for concurrent use.
package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/mockdata"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/pkg/helpers"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

// FilterAll selects every ATM regardless of status.
const FilterAll = "All"

// Cancellation reasons passed to recorders.
const (
	ReasonCancelled = "cancelled"
	ReasonExpired   = "expired"
)

// Recorder is notified after each mutation, outside the state lock.
type Recorder interface {
	ATMAdded(ctx context.Context, atm models.ATM)
	SlotBooked(ctx context.Context, booking models.BookedSlot)
	BookingConfirmed(ctx context.Context, booking models.BookedSlot)
	BookingCancelled(ctx context.Context, booking models.BookedSlot, reason string)
	TransactionAdded(ctx context.Context, tx models.Transaction)
}

type slotSource interface {
	FreshSlots(atmID string) []models.TimeSlot
}

type upiVerifier interface {
	Verify(ctx context.Context, qrCode, otp string) (dto.UPIVerification, error)
}

type Options struct {
	Now       func() time.Time
	Slots     slotSource
	Verifier  upiVerifier
	Recorders []Recorder
}

type State struct {
	mu            sync.RWMutex
	user          models.User
	atms          []models.ATM
	filtered      []models.ATM
	filter        string
	notifications []string
	lastID        int64

	now       func() time.Time
	slots     slotSource
	verifier  upiVerifier
	recorders []Recorder
}

func New(ds mockdata.Dataset, opts Options) *State {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &State{
		user:          ds.User.Clone(),
		atms:          cloneATMs(ds.ATMs),
		filter:        FilterAll,
		notifications: append([]string{}, ds.Notifications...),
		now:           now,
		slots:         opts.Slots,
		verifier:      opts.Verifier,
		recorders:     opts.Recorders,
	}
	s.filtered = s.atms
	return s
}

// --- Read accessors ---

func (s *State) User() models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *State) ATMs() []models.ATM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneATMs(s.atms)
}

func (s *State) FilteredATMs() []models.ATM {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneATMs(s.filtered)
}

func (s *State) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

func (s *State) ATM(id string) (models.ATM, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.atmIndex(id)
	if i < 0 {
		return models.ATM{}, errs.NewNotFoundError("atm not found: " + id)
	}
	return s.atms[i].Clone(), nil
}

func (s *State) Booking(bookingID string) (models.BookedSlot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.user.Booking(bookingID)
	if !ok {
		return models.BookedSlot{}, errs.NewNotFoundError("booking not found: " + bookingID)
	}
	return cloneBooking(b), nil
}

func (s *State) Notifications() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.notifications...)
}

// --- Mutations ---

// FilterATMs sets the visible ATM list to those with the given status, or to
// every ATM for an empty status or FilterAll.
func (s *State) FilterATMs(status string) []models.ATM {
	if status == "" {
		status = FilterAll
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = status
	s.filtered = filterByStatus(s.atms, status)
	return cloneATMs(s.filtered)
}

func (s *State) BookSlot(ctx context.Context, atmID, slotID string) (models.BookedSlot, error) {
	s.mu.Lock()
	ai := s.atmIndex(atmID)
	if ai < 0 {
		s.mu.Unlock()
		return models.BookedSlot{}, errs.NewNotFoundError("atm not found: " + atmID)
	}
	atm := s.atms[ai]
	slot, ok := atm.Slot(slotID)
	if !ok {
		s.mu.Unlock()
		return models.BookedSlot{}, errs.NewNotFoundError("slot not found: " + slotID)
	}
	if slot.IsBooked {
		s.mu.Unlock()
		return models.BookedSlot{}, errs.NewAlreadyExistsError("slot already booked: " + slotID)
	}

	slot.IsBooked = true
	booking := models.BookedSlot{
		TimeSlot:  slot,
		UserName:  s.user.Name,
		BookingID: s.nextID("booking"),
	}
	s.setSlotBooked(atmID, slotID, true)

	user := s.user
	user.BookedSlots = append(append([]models.BookedSlot{}, s.user.BookedSlots...), booking)
	s.user = user
	s.pushNotification(fmt.Sprintf("You've booked a slot at %s for %s", atm.Name, slot.Time))
	s.mu.Unlock()

	logger.FromContext(ctx).Info("slot booked", "atm_id", atmID, "slot_id", slotID, "booking_id", booking.BookingID)
	s.record(func(r Recorder) { r.SlotBooked(ctx, booking) })
	return booking, nil
}

func (s *State) CancelBooking(ctx context.Context, bookingID string) (models.BookedSlot, error) {
	return s.releaseBooking(ctx, bookingID, ReasonCancelled)
}

// ExpireBooking releases a booking whose slot time has passed.
func (s *State) ExpireBooking(ctx context.Context, bookingID string) (models.BookedSlot, error) {
	return s.releaseBooking(ctx, bookingID, ReasonExpired)
}

func (s *State) releaseBooking(ctx context.Context, bookingID, reason string) (models.BookedSlot, error) {
	s.mu.Lock()
	booking, ok := s.user.Booking(bookingID)
	if !ok {
		s.mu.Unlock()
		return models.BookedSlot{}, errs.NewNotFoundError("booking not found: " + bookingID)
	}

	s.setSlotBooked(booking.ATMID, booking.ID, false)

	kept := make([]models.BookedSlot, 0, len(s.user.BookedSlots))
	for _, b := range s.user.BookedSlots {
		if b.BookingID != bookingID {
			kept = append(kept, b)
		}
	}
	user := s.user
	user.BookedSlots = kept
	s.user = user
	s.pushNotification("Your booking has been cancelled")
	s.mu.Unlock()

	booking.IsBooked = false
	logger.FromContext(ctx).Info("booking released", "booking_id", bookingID, "reason", reason)
	s.record(func(r Recorder) { r.BookingCancelled(ctx, booking, reason) })
	return booking, nil
}

// ConfirmBooking stamps the booking with its confirmation time. A booking
// that is already confirmed keeps its first confirmation time.
func (s *State) ConfirmBooking(ctx context.Context, bookingID string, at time.Time) (models.BookedSlot, error) {
	s.mu.Lock()
	booking, ok := s.user.Booking(bookingID)
	if !ok {
		s.mu.Unlock()
		return models.BookedSlot{}, errs.NewNotFoundError("booking not found: " + bookingID)
	}
	if booking.Confirmed() {
		s.mu.Unlock()
		return cloneBooking(booking), nil
	}

	booking.ConfirmationTime = helpers.Ptr(at)
	bookings := make([]models.BookedSlot, len(s.user.BookedSlots))
	for i, b := range s.user.BookedSlots {
		if b.BookingID == bookingID {
			b = booking
		}
		bookings[i] = b
	}
	user := s.user
	user.BookedSlots = bookings
	s.user = user
	s.mu.Unlock()

	booking = cloneBooking(booking)
	s.record(func(r Recorder) { r.BookingConfirmed(ctx, booking) })
	return booking, nil
}

func (s *State) AddTransaction(ctx context.Context, draft dto.TransactionDraft) models.Transaction {
	s.mu.Lock()
	tx := models.Transaction{
		ID:        s.nextID("tx"),
		UserID:    s.user.ID,
		ATMID:     draft.ATMID,
		Amount:    draft.Amount,
		Type:      draft.Type,
		Method:    draft.Method,
		Timestamp: s.now().UTC(),
		Status:    draft.Status,
	}
	user := s.user
	user.Transactions = append([]models.Transaction{tx}, s.user.Transactions...)
	s.user = user

	outcome := "failed"
	if tx.Status == models.TxCompleted {
		outcome = "completed"
	}
	s.pushNotification(fmt.Sprintf("%s of $%s %s", tx.Type, FormatAmount(tx.Amount), outcome))
	s.mu.Unlock()

	logger.FromContext(ctx).Info("transaction added", "tx_id", tx.ID, "status", tx.Status)
	s.record(func(r Recorder) { r.TransactionAdded(ctx, tx) })
	return tx
}

func (s *State) AddNewATM(ctx context.Context, draft dto.ATMDraft) models.ATM {
	s.mu.Lock()
	atm := models.ATM{
		ID:       s.nextID("atm"),
		Name:     draft.Name,
		Location: draft.Location,
		Status:   draft.Status,
		Distance: 0,
	}
	if s.slots != nil {
		atm.AvailableSlots = s.slots.FreshSlots(atm.ID)
	}
	atms := append(cloneATMs(s.atms), atm)
	s.atms = atms
	s.filtered = filterByStatus(atms, s.filter)
	s.pushNotification("New ATM added: " + atm.Name)
	s.mu.Unlock()

	atm = atm.Clone()
	logger.FromContext(ctx).Info("atm added", "atm_id", atm.ID, "name", atm.Name)
	s.record(func(r Recorder) { r.ATMAdded(ctx, atm) })
	return atm
}

// DismissNotification removes the notification at index.
func (s *State) DismissNotification(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.notifications) {
		return errs.NewNotFoundError(fmt.Sprintf("notification not found: %d", index))
	}
	kept := make([]string, 0, len(s.notifications)-1)
	kept = append(kept, s.notifications[:index]...)
	s.notifications = append(kept, s.notifications[index+1:]...)
	return nil
}

// --- UPI ---

// GenerateQRCode formats the UPI payment link for a withdrawal.
func (s *State) GenerateQRCode(atmID string, amount float64) string {
	return fmt.Sprintf("UPI://pay?pa=atm@bank&pn=ATM-%s&am=%s&cu=INR&tn=ATM-Withdrawal", atmID, FormatAmount(amount))
}

// VerifyUPITransaction asks the UPI gateway whether otp approves qrCode.
func (s *State) VerifyUPITransaction(ctx context.Context, qrCode, otp string) (bool, error) {
	if s.verifier == nil {
		return false, errs.NewExternalServiceError("upi", false, fmt.Errorf("no verifier configured"))
	}
	res, err := s.verifier.Verify(ctx, qrCode, otp)
	if err != nil {
		return false, err
	}
	return res.Approved, nil
}

// FormatAmount renders an amount without trailing zeros: 500, 12.5.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

// --- Helpers; callers hold s.mu ---

func (s *State) atmIndex(id string) int {
	for i, a := range s.atms {
		if a.ID == id {
			return i
		}
	}
	return -1
}

// setSlotBooked swaps in a new ATM list where one slot has the given flag.
func (s *State) setSlotBooked(atmID, slotID string, booked bool) {
	atms := make([]models.ATM, len(s.atms))
	for i, a := range s.atms {
		if a.ID == atmID {
			a = a.Clone()
			for j := range a.AvailableSlots {
				if a.AvailableSlots[j].ID == slotID {
					a.AvailableSlots[j].IsBooked = booked
				}
			}
		}
		atms[i] = a
	}
	s.atms = atms
	s.filtered = filterByStatus(atms, s.filter)
}

func (s *State) pushNotification(msg string) {
	s.notifications = append([]string{msg}, s.notifications...)
}

// nextID returns prefix-<unix ms>, bumped past the previous id when two
// are minted in the same millisecond.
func (s *State) nextID(prefix string) string {
	ms := s.now().UnixMilli()
	if ms <= s.lastID {
		ms = s.lastID + 1
	}
	s.lastID = ms
	return fmt.Sprintf("%s-%d", prefix, ms)
}

func (s *State) record(fn func(Recorder)) {
	for _, r := range s.recorders {
		fn(r)
	}
}

func filterByStatus(atms []models.ATM, status string) []models.ATM {
	if status == "" || status == FilterAll {
		return atms
	}
	out := make([]models.ATM, 0, len(atms))
	for _, a := range atms {
		if string(a.Status) == status {
			out = append(out, a)
		}
	}
	return out
}

func cloneATMs(atms []models.ATM) []models.ATM {
	out := make([]models.ATM, len(atms))
	for i, a := range atms {
		out[i] = a.Clone()
	}
	return out
}

func cloneBooking(b models.BookedSlot) models.BookedSlot {
	if b.ConfirmationTime != nil {
		b.ConfirmationTime = helpers.Ptr(*b.ConfirmationTime)
	}
	return b
}
