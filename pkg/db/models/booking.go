package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Booking reserves a spot for a future window. EstimatedCost is charged
// against the balance at creation and reconciled when the session ends.
type Booking struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	VehicleID     uuid.UUID           `gorm:"column:vehicle_id;type:uuid;not null"`
	SpotID        uuid.UUID           `gorm:"column:spot_id;type:uuid;not null;index"`
	StartTime     time.Time           `gorm:"column:start_time;not null"`
	EndTime       time.Time           `gorm:"column:end_time;not null"`
	Status        enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'pending';index"`
	EstimatedCost decimal.Decimal     `gorm:"column:estimated_cost;type:numeric(10,2);not null"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
