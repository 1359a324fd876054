package models

import (
	"fmt"
	"time"
)

const (
	SlotDateLayout = "2006-01-02"
	SlotTimeLayout = "15:04"
)

type TimeSlot struct {
	ID       string `firestore:"id" json:"id"`
	ATMID    string `firestore:"atmId" json:"atmId"`
	Date     string `firestore:"date" json:"date"` // YYYY-MM-DD
	Time     string `firestore:"time" json:"time"` // HH:MM
	IsBooked bool   `firestore:"isBooked" json:"isBooked"`
}

// SlotID builds the key a slot is addressed by.
func SlotID(atmID, date, clock string) string {
	return fmt.Sprintf("%s-%s-%s", atmID, date, clock)
}

// Start parses the slot's date and time in loc.
func (s TimeSlot) Start(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(SlotDateLayout+" "+SlotTimeLayout, s.Date+" "+s.Time, loc)
}

// BookedSlot is a TimeSlot reserved by the user.
type BookedSlot struct {
	TimeSlot
	UserName         string     `firestore:"userName" json:"userName"`
	BookingID        string     `firestore:"bookingId" json:"bookingId"`
	ConfirmationTime *time.Time `firestore:"confirmationTime,omitempty" json:"confirmationTime,omitempty"`
}

func (b BookedSlot) Confirmed() bool {
	return b.ConfirmationTime != nil
}
