// Package mockdata generates the demo dataset the service starts with.
package mockdata

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/models"
)

const (
	HorizonDays  = 3
	FirstHour    = 9
	LastHour     = 17 // exclusive
	SlotInterval = 30 * time.Minute
	bookedRatio  = 0.3
)

const (
	DemoUserID   = "user1"
	DemoUserName = "Surya Devana"
)

// Dataset is everything the application state is seeded with.
type Dataset struct {
	ATMs          []models.ATM `json:"atms"`
	User          models.User  `json:"user"`
	Notifications []string     `json:"notifications"`
}

type Generator struct {
	rng *rand.Rand
	now func() time.Time
	loc *time.Location
}

// New returns a generator. A zero seed derives one from the clock.
func New(seed uint64, now func() time.Time, loc *time.Location) *Generator {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if seed == 0 {
		seed = uint64(now().UnixNano())
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now,
		loc: loc,
	}
}

// FreshSlots returns every slot of the horizon for atmID, none booked.
func (g *Generator) FreshSlots(atmID string) []models.TimeSlot {
	return g.slots(atmID, false)
}

func (g *Generator) slots(atmID string, randomBooked bool) []models.TimeSlot {
	today := g.now().In(g.loc)
	var slots []models.TimeSlot
	for day := 0; day < HorizonDays; day++ {
		date := today.AddDate(0, 0, day).Format(models.SlotDateLayout)
		for hour := FirstHour; hour < LastHour; hour++ {
			for minute := 0; minute < 60; minute += int(SlotInterval / time.Minute) {
				clock := fmt.Sprintf("%02d:%02d", hour, minute)
				slots = append(slots, models.TimeSlot{
					ID:       models.SlotID(atmID, date, clock),
					ATMID:    atmID,
					Date:     date,
					Time:     clock,
					IsBooked: randomBooked && g.rng.Float64() < bookedRatio,
				})
			}
		}
	}
	return slots
}

// Dataset builds the ATMs, the demo user and the seed notifications.
func (g *Generator) Dataset() Dataset {
	atms := make([]models.ATM, 0, len(seedATMs))
	for _, atm := range seedATMs {
		atm.AvailableSlots = g.slots(atm.ID, true)
		atms = append(atms, atm)
	}

	user := models.User{
		ID:           DemoUserID,
		Name:         DemoUserName,
		Email:        "Suryadevana@egmail.com",
		Phone:        "+1234567890",
		BookedSlots:  []models.BookedSlot{},
		Transactions: seedTransactions(),
	}

	today := g.now().In(g.loc)
	for _, sb := range seedBookings {
		date := today.AddDate(0, 0, sb.dayOffset).Format(models.SlotDateLayout)
		slotID := models.SlotID(sb.atmID, date, sb.clock)
		slot, ok := markBooked(atms, sb.atmID, slotID)
		if !ok {
			continue
		}
		user.BookedSlots = append(user.BookedSlots, models.BookedSlot{
			TimeSlot:  slot,
			UserName:  user.Name,
			BookingID: sb.bookingID,
		})
	}

	return Dataset{
		ATMs: atms,
		User: user,
		Notifications: []string{
			"Welcome to ATM Management App!",
			"You have a scheduled ATM visit tomorrow at 10:30 AM.",
		},
	}
}

func markBooked(atms []models.ATM, atmID, slotID string) (models.TimeSlot, bool) {
	for i := range atms {
		if atms[i].ID != atmID {
			continue
		}
		for j := range atms[i].AvailableSlots {
			if atms[i].AvailableSlots[j].ID == slotID {
				atms[i].AvailableSlots[j].IsBooked = true
				return atms[i].AvailableSlots[j], true
			}
		}
	}
	return models.TimeSlot{}, false
}

type seedBooking struct {
	bookingID string
	atmID     string
	dayOffset int
	clock     string
}

var seedBookings = []seedBooking{
	{bookingID: "booking1", atmID: "atm1", dayOffset: 1, clock: "10:30"},
	{bookingID: "booking2", atmID: "atm2", dayOffset: 2, clock: "14:00"},
}

var seedATMs = []models.ATM{
	{
		ID:       "atm1",
		Name:     "Main Street ATM",
		Location: models.Location{Address: "123 Main St, POTHERI", Latitude: 40.7128, Longitude: -74.0060},
		Status:   models.ATMWorking,
		Distance: 0.5,
	},
	{
		ID:       "atm2",
		Name:     "Central Park ATM",
		Location: models.Location{Address: "45 medical block, potheri", Latitude: 40.7828, Longitude: -73.9654},
		Status:   models.ATMWorking,
		Distance: 1.2,
	},
	{
		ID:       "atm3",
		Name:     "Downtown ATM",
		Location: models.Location{Address: "78 Downtown , pillayar", Latitude: 40.7023, Longitude: -74.0128},
		Status:   models.ATMNoCash,
		Distance: 2.3,
	},
	{
		ID:       "atm4",
		Name:     "Riverside ATM",
		Location: models.Location{Address: "92 River Road, potheri", Latitude: 40.7589, Longitude: -73.9851},
		Status:   models.ATMOutOfService,
		Distance: 3.1,
	},
	{
		ID:       "atm5",
		Name:     "Shopping Mall ATM",
		Location: models.Location{Address: "150 Mall Circle, GST ROAD", Latitude: 40.7423, Longitude: -74.0231},
		Status:   models.ATMWorking,
		Distance: 1.8,
	},
}

func seedTransactions() []models.Transaction {
	ts := func(v string) time.Time {
		t, _ := time.Parse(time.RFC3339, v)
		return t
	}
	return []models.Transaction{
		{ID: "tx1", UserID: DemoUserID, ATMID: "atm1", Amount: 200, Type: models.TxWithdrawal, Method: models.MethodCard, Timestamp: ts("2025-05-01T10:30:00Z"), Status: models.TxCompleted},
		{ID: "tx2", UserID: DemoUserID, ATMID: "atm2", Amount: 500, Type: models.TxWithdrawal, Method: models.MethodUPI, Timestamp: ts("2025-05-03T14:15:00Z"), Status: models.TxCompleted},
		{ID: "tx3", UserID: DemoUserID, ATMID: "atm3", Amount: 1000, Type: models.TxDeposit, Method: models.MethodCard, Timestamp: ts("2025-05-05T16:45:00Z"), Status: models.TxCompleted},
		{ID: "tx4", UserID: DemoUserID, ATMID: "atm1", Amount: 300, Type: models.TxWithdrawal, Method: models.MethodUPI, Timestamp: ts("2025-05-07T09:20:00Z"), Status: models.TxFailed},
		{ID: "tx5", UserID: DemoUserID, ATMID: "atm5", Amount: 750, Type: models.TxWithdrawal, Method: models.MethodUPI, Timestamp: ts("2025-05-10T11:05:00Z"), Status: models.TxCompleted},
	}
}
