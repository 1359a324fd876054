package services

import (
	"context"
	"sort"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

type slotBookingState interface {
	ATMs() []models.ATM
	ATM(id string) (models.ATM, error)
	BookSlot(ctx context.Context, atmID, slotID string) (models.BookedSlot, error)
}

type slotBookingService struct {
	state    slotBookingState
	window   time.Duration
	loc      *time.Location
	clockNow func() time.Time
}

func NewSlotBookingService(state slotBookingState, window time.Duration, loc *time.Location, clockNow func() time.Time) *slotBookingService {
	if clockNow == nil {
		clockNow = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &slotBookingService{state: state, window: window, loc: loc, clockNow: clockNow}
}

// Options lists the working ATMs and, when atmID names one of them, its slots
// starting within the booking window.
func (s *slotBookingService) Options(ctx context.Context, atmID string) (dto.SlotBookingResponse, error) {
	resp := dto.SlotBookingResponse{ATMs: []models.ATM{}, Slots: []models.TimeSlot{}}
	for _, atm := range s.state.ATMs() {
		if atm.Status == models.ATMWorking {
			atm.AvailableSlots = nil
			resp.ATMs = append(resp.ATMs, atm)
		}
	}
	if atmID == "" {
		return resp, nil
	}

	atm, err := s.workingATM(atmID)
	if err != nil {
		return dto.SlotBookingResponse{}, err
	}

	resp.Slots = s.upcoming(ctx, atm)
	for _, slot := range resp.Slots {
		if slot.IsBooked {
			resp.Booked++
		} else {
			resp.Available++
		}
	}
	atm.AvailableSlots = nil
	resp.SelectedATM = &atm
	return resp, nil
}

func (s *slotBookingService) Book(ctx context.Context, req dto.BookSlotRequest) (models.BookedSlot, error) {
	if err := validateRequest(req, "Please select an ATM and a time slot"); err != nil {
		return models.BookedSlot{}, err
	}

	atm, err := s.workingATM(req.ATMID)
	if err != nil {
		return models.BookedSlot{}, err
	}
	slot, ok := atm.Slot(req.SlotID)
	if !ok {
		return models.BookedSlot{}, errs.NewNotFoundError("slot not found: " + req.SlotID)
	}
	start, err := slot.Start(s.loc)
	if err != nil {
		return models.BookedSlot{}, errs.NewValidationError("slot has an invalid start time")
	}
	if !start.After(s.clockNow()) {
		return models.BookedSlot{}, errs.NewValidationError("slot has already started")
	}

	return s.state.BookSlot(ctx, req.ATMID, req.SlotID)
}

func (s *slotBookingService) workingATM(atmID string) (models.ATM, error) {
	atm, err := s.state.ATM(atmID)
	if err != nil {
		return models.ATM{}, err
	}
	if atm.Status != models.ATMWorking {
		return models.ATM{}, errs.NewValidationError("ATM is not available for booking: " + string(atm.Status))
	}
	return atm, nil
}

// upcoming returns the slots starting strictly between now and now+window,
// ordered by start time.
func (s *slotBookingService) upcoming(ctx context.Context, atm models.ATM) []models.TimeSlot {
	now := s.clockNow()
	until := now.Add(s.window)

	type timed struct {
		slot  models.TimeSlot
		start time.Time
	}
	var hits []timed
	for _, slot := range atm.AvailableSlots {
		start, err := slot.Start(s.loc)
		if err != nil {
			logger.FromContext(ctx).Warn("skipping slot with bad start time", "slot_id", slot.ID, "error", err)
			continue
		}
		if start.After(now) && start.Before(until) {
			hits = append(hits, timed{slot: slot, start: start})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start.Before(hits[j].start) })

	slots := make([]models.TimeSlot, len(hits))
	for i, h := range hits {
		slots[i] = h.slot
	}
	return slots
}
