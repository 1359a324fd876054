package models

type User struct {
	ID           string        `firestore:"id" json:"id"`
	Name         string        `firestore:"name" json:"name"`
	Email        string        `firestore:"email" json:"email"`
	Phone        string        `firestore:"phone" json:"phone"`
	BookedSlots  []BookedSlot  `firestore:"-" json:"bookedSlots"`
	Transactions []Transaction `firestore:"-" json:"transactions"`
}

// Clone returns a deep copy of the user and its collections.
func (u User) Clone() User {
	u.BookedSlots = append([]BookedSlot{}, u.BookedSlots...)
	for i, b := range u.BookedSlots {
		if b.ConfirmationTime != nil {
			t := *b.ConfirmationTime
			u.BookedSlots[i].ConfirmationTime = &t
		}
	}
	u.Transactions = append([]Transaction{}, u.Transactions...)
	return u
}

// Booking returns the booked slot with the given booking id.
func (u User) Booking(bookingID string) (BookedSlot, bool) {
	for _, b := range u.BookedSlots {
		if b.BookingID == bookingID {
			return b, true
		}
	}
	return BookedSlot{}, false
}
