package sessions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// SessionDTO is the parking session payload returned to clients.
type SessionDTO struct {
	ID              uuid.UUID           `json:"id"`
	BookingID       *uuid.UUID          `json:"booking_id,omitempty"`
	VehicleID       uuid.UUID           `json:"vehicle_id"`
	SpotID          uuid.UUID           `json:"spot_id"`
	EntryTime       time.Time           `json:"entry_time"`
	ExitTime        *time.Time          `json:"exit_time,omitempty"`
	DurationMinutes *int                `json:"duration_minutes,omitempty"`
	TotalCost       *decimal.Decimal    `json:"total_cost,omitempty"`
	Status          enums.SessionStatus `json:"status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// CostDTO is the running-cost projection for an active session.
type CostDTO struct {
	SessionID       uuid.UUID       `json:"session_id"`
	DurationMinutes int             `json:"duration_minutes"`
	Cost            decimal.Decimal `json:"cost"`
}

// FromModel converts a session row into its API payload.
func FromModel(s *models.ParkingSession) *SessionDTO {
	if s == nil {
		return nil
	}
	return &SessionDTO{
		ID:              s.ID,
		BookingID:       s.BookingID,
		VehicleID:       s.VehicleID,
		SpotID:          s.SpotID,
		EntryTime:       s.EntryTime,
		ExitTime:        s.ExitTime,
		DurationMinutes: s.DurationMinutes,
		TotalCost:       s.TotalCost,
		Status:          s.Status,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       s.UpdatedAt,
	}
}

// FromModels converts a session listing.
func FromModels(rows []models.ParkingSession) []SessionDTO {
	out := make([]SessionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

// CostFromProjection converts a cost projection.
func CostFromProjection(p *CostProjection) *CostDTO {
	if p == nil {
		return nil
	}
	return &CostDTO{
		SessionID:       p.SessionID,
		DurationMinutes: p.DurationMinutes,
		Cost:            p.Cost,
	}
}
