package handlers

import (
	"log/slog"

	"github.com/GregMSThompson/atm-backend/internal/response"
)

type Deps struct {
	Log              *slog.Logger
	ResponseHandler  response.ResponseHandler
	HomeSvc          homeService
	LocatorSvc       locatorService
	SlotBookingSvc   slotBookingService
	BookingsSvc      bookingsService
	WithdrawalSvc    withdrawalService
	TransactionsSvc  transactionsService
	NotificationsSvc notificationsService
}
