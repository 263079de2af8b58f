package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// ParkingSpot is a single space inside a zone. IsOccupied is the lock that
// guarantees at most one active session per spot.
type ParkingSpot struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ZoneID     uuid.UUID      `gorm:"column:zone_id;type:uuid;not null;index;uniqueIndex:uq_zone_spot,priority:1"`
	SpotNumber string         `gorm:"column:spot_number;not null;uniqueIndex:uq_zone_spot,priority:2"`
	Type       enums.SpotType `gorm:"column:type;type:spot_type;not null;default:'standard'"`
	IsOccupied bool           `gorm:"column:is_occupied;not null;default:false;index"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
