package bookings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// BookingDTO is the booking payload returned to clients.
type BookingDTO struct {
	ID            uuid.UUID           `json:"id"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	VehicleID     uuid.UUID           `json:"vehicle_id"`
	SpotID        uuid.UUID           `json:"spot_id"`
	StartTime     time.Time           `json:"start_time"`
	EndTime       time.Time           `json:"end_time"`
	Status        enums.BookingStatus `json:"status"`
	EstimatedCost decimal.Decimal     `json:"estimated_cost"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// FromModel converts a booking row into its API payload.
func FromModel(b *models.Booking) *BookingDTO {
	if b == nil {
		return nil
	}
	return &BookingDTO{
		ID:            b.ID,
		CustomerID:    b.CustomerID,
		VehicleID:     b.VehicleID,
		SpotID:        b.SpotID,
		StartTime:     b.StartTime,
		EndTime:       b.EndTime,
		Status:        b.Status,
		EstimatedCost: b.EstimatedCost,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// FromModels converts a booking listing.
func FromModels(rows []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
