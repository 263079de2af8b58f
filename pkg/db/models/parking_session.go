package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// ParkingSession records a physical occupancy. Duration and cost are filled
// at settlement; a session stays active until settlement succeeds.
type ParkingSession struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BookingID       *uuid.UUID          `gorm:"column:booking_id;type:uuid"`
	VehicleID       uuid.UUID           `gorm:"column:vehicle_id;type:uuid;not null;index"`
	SpotID          uuid.UUID           `gorm:"column:spot_id;type:uuid;not null"`
	EntryTime       time.Time           `gorm:"column:entry_time;not null"`
	ExitTime        *time.Time          `gorm:"column:exit_time"`
	DurationMinutes *int                `gorm:"column:duration_minutes"`
	TotalCost       *decimal.Decimal    `gorm:"column:total_cost;type:numeric(10,2)"`
	Status          enums.SessionStatus `gorm:"column:status;type:session_status;not null;default:'active';index"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
