package vehicles

import (
	"time"

	"github.com/google/uuid"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// VehicleDTO is the vehicle payload returned to clients.
type VehicleDTO struct {
	ID           uuid.UUID         `json:"id"`
	CustomerID   uuid.UUID         `json:"customer_id"`
	LicensePlate string            `json:"license_plate"`
	Type         enums.VehicleType `json:"type"`
	Brand        *string           `json:"brand,omitempty"`
	Model        *string           `json:"model,omitempty"`
	Color        *string           `json:"color,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// FromModel converts a vehicle row into its API payload.
func FromModel(v *models.Vehicle) *VehicleDTO {
	if v == nil {
		return nil
	}
	return &VehicleDTO{
		ID:           v.ID,
		CustomerID:   v.CustomerID,
		LicensePlate: v.LicensePlate,
		Type:         v.Type,
		Brand:        v.Brand,
		Model:        v.Model,
		Color:        v.Color,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

// FromModels converts a vehicle listing.
func FromModels(rows []models.Vehicle) []VehicleDTO {
	out := make([]VehicleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
