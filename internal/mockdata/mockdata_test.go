package mockdata

import (
	"testing"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/models"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
}

func TestFreshSlots(t *testing.T) {
	g := New(7, fixedNow, time.UTC)
	slots := g.FreshSlots("atm9")

	if want := HorizonDays * 16; len(slots) != want {
		t.Fatalf("expected %d slots, got %d", want, len(slots))
	}
	first, last := slots[0], slots[len(slots)-1]
	if first.ID != "atm9-2026-03-10-09:00" {
		t.Errorf("first slot id = %q", first.ID)
	}
	if last.Date != "2026-03-12" || last.Time != "16:30" {
		t.Errorf("last slot = %s %s", last.Date, last.Time)
	}
	for _, s := range slots {
		if s.IsBooked {
			t.Fatalf("fresh slot %s is booked", s.ID)
		}
		if s.ATMID != "atm9" {
			t.Fatalf("slot %s has atm id %q", s.ID, s.ATMID)
		}
	}
}

func TestDatasetSeedBookingsMatchSlots(t *testing.T) {
	ds := New(7, fixedNow, time.UTC).Dataset()

	if len(ds.ATMs) != 5 {
		t.Fatalf("expected 5 atms, got %d", len(ds.ATMs))
	}
	if len(ds.User.BookedSlots) != 2 {
		t.Fatalf("expected 2 bookings, got %d", len(ds.User.BookedSlots))
	}

	want := map[string]string{
		"booking1": "atm1-2026-03-11-10:30",
		"booking2": "atm2-2026-03-12-14:00",
	}
	for _, b := range ds.User.BookedSlots {
		if want[b.BookingID] != b.ID {
			t.Errorf("booking %s has slot %s", b.BookingID, b.ID)
		}
		if b.UserName != DemoUserName {
			t.Errorf("booking %s user = %q", b.BookingID, b.UserName)
		}
		var atm models.ATM
		for _, a := range ds.ATMs {
			if a.ID == b.ATMID {
				atm = a
			}
		}
		slot, ok := atm.Slot(b.ID)
		if !ok || !slot.IsBooked {
			t.Errorf("slot %s not marked booked", b.ID)
		}
	}
}

func TestDatasetSameSeedSameSlots(t *testing.T) {
	a := New(42, fixedNow, time.UTC).Dataset()
	b := New(42, fixedNow, time.UTC).Dataset()

	for i := range a.ATMs {
		for j := range a.ATMs[i].AvailableSlots {
			if a.ATMs[i].AvailableSlots[j] != b.ATMs[i].AvailableSlots[j] {
				t.Fatalf("slot %s differs between runs", a.ATMs[i].AvailableSlots[j].ID)
			}
		}
	}
}

func TestDatasetUserAndNotifications(t *testing.T) {
	ds := New(1, fixedNow, time.UTC).Dataset()

	if ds.User.ID != DemoUserID || ds.User.Name != DemoUserName {
		t.Errorf("unexpected user %+v", ds.User)
	}
	if len(ds.User.Transactions) != 5 || ds.User.Transactions[0].ID != "tx1" {
		t.Errorf("unexpected transactions %+v", ds.User.Transactions)
	}
	if len(ds.Notifications) != 2 {
		t.Errorf("expected 2 notifications, got %d", len(ds.Notifications))
	}
}
