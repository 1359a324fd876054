package models

// ATMStatus is the operational state shown on the locator.
type ATMStatus string

const (
	ATMWorking      ATMStatus = "Working"
	ATMNoCash       ATMStatus = "No Cash"
	ATMOutOfService ATMStatus = "Out of Service"
)

// ATMStatuses lists every status in display order.
var ATMStatuses = []ATMStatus{ATMWorking, ATMNoCash, ATMOutOfService}

// Valid reports whether s is one of the known statuses.
func (s ATMStatus) Valid() bool {
	for _, known := range ATMStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type Location struct {
	Address   string  `firestore:"address" json:"address"`
	Latitude  float64 `firestore:"latitude" json:"latitude"`
	Longitude float64 `firestore:"longitude" json:"longitude"`
}

type ATM struct {
	ID             string     `firestore:"id" json:"id"`
	Name           string     `firestore:"name" json:"name"`
	Location       Location   `firestore:"location" json:"location"`
	Status         ATMStatus  `firestore:"status" json:"status"`
	Distance       float64    `firestore:"distance" json:"distance"` // kilometers
	AvailableSlots []TimeSlot `firestore:"-" json:"availableSlots,omitempty"`
}

// Clone returns a copy that shares no slices with the receiver.
func (a ATM) Clone() ATM {
	if a.AvailableSlots != nil {
		a.AvailableSlots = append([]TimeSlot(nil), a.AvailableSlots...)
	}
	return a
}

// Slot returns the slot with the given id.
func (a ATM) Slot(slotID string) (TimeSlot, bool) {
	for _, s := range a.AvailableSlots {
		if s.ID == slotID {
			return s, true
		}
	}
	return TimeSlot{}, false
}
