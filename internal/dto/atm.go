package dto

import "github.com/GregMSThompson/atm-backend/internal/models"

type AddATMRequest struct {
	Name      string           `json:"name" validate:"required,max=100"`
	Address   string           `json:"address" validate:"required,max=200"`
	Latitude  *float64         `json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64         `json:"longitude,omitempty" validate:"omitempty,longitude"`
	Status    models.ATMStatus `json:"status,omitempty" validate:"omitempty,oneof=Working 'No Cash' 'Out of Service'"`
}

type LocatorResponse struct {
	Filter   string             `json:"filter"`
	Statuses []models.ATMStatus `json:"statuses"`
	ATMs     []models.ATM       `json:"atms"`
}
