package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Vehicle belongs to exactly one customer; ownership gates every
// booking and session operation.
type Vehicle struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID   uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	LicensePlate string            `gorm:"column:license_plate;not null;uniqueIndex"`
	Type         enums.VehicleType `gorm:"column:type;type:vehicle_type;not null"`
	Brand        *string           `gorm:"column:brand"`
	Model        *string           `gorm:"column:model"`
	Color        *string           `gorm:"column:color"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
