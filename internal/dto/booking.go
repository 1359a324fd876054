package dto

import "github.com/GregMSThompson/atm-backend/internal/models"

type BookSlotRequest struct {
	ATMID  string `json:"atmId" validate:"required"`
	SlotID string `json:"slotId" validate:"required"`
}

type SlotBookingResponse struct {
	ATMs        []models.ATM      `json:"atms"`
	SelectedATM *models.ATM       `json:"selectedAtm,omitempty"`
	Slots       []models.TimeSlot `json:"slots"`
	Available   int               `json:"available"`
	Booked      int               `json:"booked"`
}

type BookingView struct {
	models.BookedSlot
	ATMName          string `json:"atmName"`
	Confirmed        bool   `json:"confirmed"`
	Remaining        string `json:"remaining,omitempty"`
	RemainingSeconds int64  `json:"remainingSeconds,omitempty"`
}

type CountdownResponse struct {
	BookingID        string `json:"bookingId"`
	Watching         bool   `json:"watching"`
	Remaining        string `json:"remaining"`
	RemainingSeconds int64  `json:"remainingSeconds"`
}
