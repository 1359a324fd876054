package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/countdown"
	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

const unknownATM = "Unknown ATM"

type bookingsState interface {
	User() models.User
	ATMs() []models.ATM
	ConfirmBooking(ctx context.Context, bookingID string, at time.Time) (models.BookedSlot, error)
	CancelBooking(ctx context.Context, bookingID string) (models.BookedSlot, error)
	ExpireBooking(ctx context.Context, bookingID string) (models.BookedSlot, error)
}

type bookingsScheduler interface {
	Watch(ctx context.Context, booking models.BookedSlot) error
	Stop(bookingID string) bool
	Remaining(bookingID string) (time.Duration, bool)
}

type bookingsService struct {
	state     bookingsState
	scheduler bookingsScheduler
	loc       *time.Location
	clockNow  func() time.Time
}

func NewBookingsService(state bookingsState, scheduler bookingsScheduler, loc *time.Location, clockNow func() time.Time) *bookingsService {
	if clockNow == nil {
		clockNow = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &bookingsService{state: state, scheduler: scheduler, loc: loc, clockNow: clockNow}
}

// List expires unconfirmed bookings whose slot has passed, then returns the
// remaining bookings with their ATM name and countdown.
func (s *bookingsService) List(ctx context.Context) ([]dto.BookingView, error) {
	log := logger.FromContext(ctx)
	now := s.clockNow()

	for _, b := range s.state.User().BookedSlots {
		if b.Confirmed() {
			continue
		}
		start, err := b.Start(s.loc)
		if err != nil {
			log.Warn("booking has bad start time", "booking_id", b.BookingID, "error", err)
			continue
		}
		if now.After(start) {
			if _, err := s.state.ExpireBooking(ctx, b.BookingID); err != nil {
				log.Warn("failed to expire booking", "booking_id", b.BookingID, "error", err)
			}
		}
	}

	names := s.atmNames()
	bookings := s.state.User().BookedSlots
	views := make([]dto.BookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, s.view(b, names))
	}
	return views, nil
}

// Confirm marks the booking confirmed and starts its countdown.
func (s *bookingsService) Confirm(ctx context.Context, bookingID string) (dto.BookingView, error) {
	booking, err := s.state.ConfirmBooking(ctx, bookingID, s.clockNow())
	if err != nil {
		return dto.BookingView{}, err
	}
	if _, running := s.scheduler.Remaining(bookingID); !running {
		if err := s.scheduler.Watch(ctx, booking); err != nil {
			return dto.BookingView{}, err
		}
	}
	return s.view(booking, s.atmNames()), nil
}

func (s *bookingsService) Countdown(ctx context.Context, bookingID string) (dto.CountdownResponse, error) {
	booking, ok := s.state.User().Booking(bookingID)
	if !ok {
		return dto.CountdownResponse{}, errs.NewNotFoundError("booking not found: " + bookingID)
	}

	remaining, watching := s.scheduler.Remaining(bookingID)
	if !watching {
		start, err := booking.Start(s.loc)
		if err != nil {
			return dto.CountdownResponse{}, errs.NewValidationError("booking has an invalid start time")
		}
		remaining = max(start.Sub(s.clockNow()), 0)
	}

	return dto.CountdownResponse{
		BookingID:        bookingID,
		Watching:         watching,
		Remaining:        countdown.FormatRemaining(remaining),
		RemainingSeconds: int64(remaining / time.Second),
	}, nil
}

// Cancel stops the booking's countdown and releases its slot.
func (s *bookingsService) Cancel(ctx context.Context, bookingID string) (models.BookedSlot, error) {
	s.scheduler.Stop(bookingID)
	return s.state.CancelBooking(ctx, bookingID)
}

func (s *bookingsService) atmNames() map[string]string {
	names := make(map[string]string)
	for _, atm := range s.state.ATMs() {
		names[atm.ID] = atm.Name
	}
	return names
}

func (s *bookingsService) view(b models.BookedSlot, names map[string]string) dto.BookingView {
	name, ok := names[b.ATMID]
	if !ok {
		name = unknownATM
	}
	v := dto.BookingView{BookedSlot: b, ATMName: name, Confirmed: b.Confirmed()}
	if remaining, watching := s.scheduler.Remaining(b.BookingID); watching {
		v.Remaining = countdown.FormatRemaining(remaining)
		v.RemainingSeconds = int64(remaining / time.Second)
	}
	return v
}
