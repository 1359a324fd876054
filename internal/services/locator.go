package services

import (
	"context"

	"github.com/GregMSThompson/atm-backend/internal/dto"
	"github.com/GregMSThompson/atm-backend/internal/errs"
	"github.com/GregMSThompson/atm-backend/internal/models"
	"github.com/GregMSThompson/atm-backend/internal/state"
	"github.com/GregMSThompson/atm-backend/pkg/helpers"
	"github.com/GregMSThompson/atm-backend/pkg/logger"
)

type locatorState interface {
	FilterATMs(status string) []models.ATM
	FilteredATMs() []models.ATM
	Filter() string
	AddNewATM(ctx context.Context, draft dto.ATMDraft) models.ATM
}

type locatorService struct {
	state locatorState
}

func NewLocatorService(state locatorState) *locatorService {
	return &locatorService{state: state}
}

// List applies status as the locator filter. An empty status keeps the
// current filter.
func (s *locatorService) List(ctx context.Context, status string) (dto.LocatorResponse, error) {
	var atms []models.ATM
	switch {
	case status == "":
		atms = s.state.FilteredATMs()
	case status == state.FilterAll || models.ATMStatus(status).Valid():
		atms = s.state.FilterATMs(status)
	default:
		return dto.LocatorResponse{}, errs.NewValidationError("unknown ATM status: " + status)
	}

	return dto.LocatorResponse{
		Filter:   s.state.Filter(),
		Statuses: models.ATMStatuses,
		ATMs:     atms,
	}, nil
}

func (s *locatorService) AddATM(ctx context.Context, req dto.AddATMRequest) (models.ATM, error) {
	if err := validateRequest(req, "Invalid ATM details"); err != nil {
		return models.ATM{}, err
	}

	status := req.Status
	if status == "" {
		status = models.ATMWorking
	}
	atm := s.state.AddNewATM(ctx, dto.ATMDraft{
		Name: req.Name,
		Location: models.Location{
			Address:   req.Address,
			Latitude:  helpers.ValueOr(req.Latitude, 0),
			Longitude: helpers.ValueOr(req.Longitude, 0),
		},
		Status: status,
	})

	logger.FromContext(ctx).Debug("atm registered", "atm_id", atm.ID, "slots", len(atm.AvailableSlots))
	return atm, nil
}
