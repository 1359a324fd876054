package services

import (
	"context"
	"time"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/models"
)

const (
	recentWindow   = 7 * 24 * time.Hour
	recentActivity = 3
)

type homeState interface {
	User() models.User
	ATMs() []models.ATM
	Notifications() []string
}

type homeService struct {
	state    homeState
	clockNow func() time.Time
}

func NewHomeService(state homeState, clockNow func() time.Time) *homeService {
	if clockNow == nil {
		clockNow = time.Now
	}
	return &homeService{state: state, clockNow: clockNow}
}

func (s *homeService) Summary(ctx context.Context) dto.HomeSummary {
	user := s.state.User()
	since := s.clockNow().Add(-recentWindow)

	summary := dto.HomeSummary{
		UserName:         user.Name,
		UpcomingBookings: len(user.BookedSlots),
		Notifications:    len(s.state.Notifications()),
		RecentActivity:   []dto.TransactionView{},
	}

	for _, atm := range s.state.ATMs() {
		if atm.Status == models.ATMWorking {
			summary.WorkingATMs++
		}
	}

	for i, tx := range user.Transactions {
		if tx.Method == models.MethodUPI {
			summary.CardlessWithdrawals++
		}
		if tx.Timestamp.After(since) {
			summary.RecentTransactions++
		}
		if i < recentActivity {
			summary.RecentActivity = append(summary.RecentActivity, transactionView(tx))
		}
	}
	return summary
}
