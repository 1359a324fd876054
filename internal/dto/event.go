package dto

import "time"

// Event types published for each state mutation.
const (
	EventATMAdded         = "atm.added"
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
	EventBookingExpired   = "booking.expired"
	EventTransaction      = "transaction.created"
)

// Event is the envelope written to the event stream.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
