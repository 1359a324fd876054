package services

import (
	"context"
	"sync"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/models"
)

// --- Fakes ---

// fakeState is an in-memory stand-in for the shared application state.
type fakeState struct {
	mu            sync.Mutex
	user          models.User
	atms          []models.ATM
	filter        string
	notifications []string

	verifyResult bool
	verifyErr    error
	verifyCalls  int
	verifyGate   chan struct{}

	expired   []string
	cancelled []string
}

func newFakeState() *fakeState {
	return &fakeState{
		user: models.User{ID: "user1", Name: "Test User"},
		atms: []models.ATM{
			{ID: "atm1", Name: "Main Street ATM", Status: models.ATMWorking, AvailableSlots: []models.TimeSlot{
				{ID: "atm1-2026-03-10-12:00", ATMID: "atm1", Date: "2026-03-10", Time: "12:00"},
				{ID: "atm1-2026-03-10-09:30", ATMID: "atm1", Date: "2026-03-10", Time: "09:30", IsBooked: true},
				{ID: "atm1-2026-03-10-07:30", ATMID: "atm1", Date: "2026-03-10", Time: "07:30"},
				{ID: "atm1-2026-03-10-16:30", ATMID: "atm1", Date: "2026-03-10", Time: "16:30"},
				{ID: "atm1-2026-03-11-09:00", ATMID: "atm1", Date: "2026-03-11", Time: "09:00"},
			}},
			{ID: "atm3", Name: "Downtown ATM", Status: models.ATMNoCash},
			{ID: "atm4", Name: "Riverside ATM", Status: models.ATMOutOfService},
		},
		filter:        "All",
		notifications: []string{"welcome"},
	}
}

func (f *fakeState) User() models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.user.Clone()
}

func (f *fakeState) ATMs() []models.ATM {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.ATM, len(f.atms))
	for i, a := range f.atms {
		out[i] = a.Clone()
	}
	return out
}

func (f *fakeState) ATM(id string) (models.ATM, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.atms {
		if a.ID == id {
			return a.Clone(), nil
		}
	}
	return models.ATM{}, errs.NewNotFoundError("atm not found: " + id)
}

func (f *fakeState) Notifications() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.notifications...)
}

func (f *fakeState) DismissNotification(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if index < 0 || index >= len(f.notifications) {
		return errs.NewNotFoundError("notification not found")
	}
	f.notifications = append(f.notifications[:index:index], f.notifications[index+1:]...)
	return nil
}

func (f *fakeState) FilterATMs(status string) []models.ATM {
	f.mu.Lock()
	f.filter = status
	f.mu.Unlock()
	return f.FilteredATMs()
}

func (f *fakeState) FilteredATMs() []models.ATM {
	var out []models.ATM
	for _, a := range f.ATMs() {
		if f.Filter() == "All" || string(a.Status) == f.Filter() {
			out = append(out, a)
		}
	}
	return out
}

func (f *fakeState) Filter() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filter
}

func (f *fakeState) AddNewATM(_ context.Context, draft dto.ATMDraft) models.ATM {
	f.mu.Lock()
	defer f.mu.Unlock()
	atm := models.ATM{ID: "atm-new", Name: draft.Name, Location: draft.Location, Status: draft.Status}
	f.atms = append(f.atms, atm)
	return atm
}

func (f *fakeState) BookSlot(_ context.Context, atmID, slotID string) (models.BookedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.atms {
		if f.atms[i].ID != atmID {
			continue
		}
		for j := range f.atms[i].AvailableSlots {
			slot := &f.atms[i].AvailableSlots[j]
			if slot.ID != slotID {
				continue
			}
			if slot.IsBooked {
				return models.BookedSlot{}, errs.NewAlreadyExistsError("slot already booked")
			}
			slot.IsBooked = true
			b := models.BookedSlot{TimeSlot: *slot, UserName: f.user.Name, BookingID: "booking-" + slotID}
			f.user.BookedSlots = append(f.user.BookedSlots, b)
			return b, nil
		}
	}
	return models.BookedSlot{}, errs.NewNotFoundError("slot not found")
}

func (f *fakeState) ConfirmBooking(_ context.Context, bookingID string, at time.Time) (models.BookedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, b := range f.user.BookedSlots {
		if b.BookingID == bookingID {
			if b.ConfirmationTime == nil {
				f.user.BookedSlots[i].ConfirmationTime = &at
			}
			return f.user.BookedSlots[i], nil
		}
	}
	return models.BookedSlot{}, errs.NewNotFoundError("booking not found")
}

func (f *fakeState) release(bookingID string) (models.BookedSlot, error) {
	for i, b := range f.user.BookedSlots {
		if b.BookingID == bookingID {
			f.user.BookedSlots = append(f.user.BookedSlots[:i:i], f.user.BookedSlots[i+1:]...)
			return b, nil
		}
	}
	return models.BookedSlot{}, errs.NewNotFoundError("booking not found")
}

func (f *fakeState) CancelBooking(_ context.Context, bookingID string) (models.BookedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, bookingID)
	return f.release(bookingID)
}

func (f *fakeState) ExpireBooking(_ context.Context, bookingID string) (models.BookedSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expired = append(f.expired, bookingID)
	return f.release(bookingID)
}

func (f *fakeState) GenerateQRCode(atmID string, amount float64) string {
	return "UPI://pay?pn=ATM-" + atmID
}

func (f *fakeState) VerifyUPITransaction(ctx context.Context, _, otp string) (bool, error) {
	f.mu.Lock()
	f.verifyCalls++
	gate := f.verifyGate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if f.verifyErr != nil {
		return false, f.verifyErr
	}
	return otp == "123456", nil
}

func (f *fakeState) AddTransaction(_ context.Context, draft dto.TransactionDraft) models.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx := models.Transaction{
		ID:     "tx-" + string(draft.Status),
		UserID: f.user.ID,
		ATMID:  draft.ATMID,
		Amount: draft.Amount,
		Type:   draft.Type,
		Method: draft.Method,
		Status: draft.Status,
	}
	f.user.Transactions = append([]models.Transaction{tx}, f.user.Transactions...)
	return tx
}

type fakeScheduler struct {
	watched   []string
	stopped   []string
	remaining map[string]time.Duration
	watchErr  error
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{remaining: make(map[string]time.Duration)}
}

func (f *fakeScheduler) Watch(_ context.Context, b models.BookedSlot) error {
	if f.watchErr != nil {
		return f.watchErr
	}
	f.watched = append(f.watched, b.BookingID)
	f.remaining[b.BookingID] = time.Hour
	return nil
}

func (f *fakeScheduler) Stop(bookingID string) bool {
	f.stopped = append(f.stopped, bookingID)
	_, ok := f.remaining[bookingID]
	delete(f.remaining, bookingID)
	return ok
}

func (f *fakeScheduler) Remaining(bookingID string) (time.Duration, bool) {
	d, ok := f.remaining[bookingID]
	return d, ok
}

var serviceNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return serviceNow }
