package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ParkingZone groups spots under one tariff. Available spot counts are not
// stored; they are computed live from the spots' occupancy flags.
type ParkingZone struct {
	ID         uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name       string         `gorm:"column:name;not null"`
	Address    string         `gorm:"column:address;not null"`
	TotalSpots int            `gorm:"column:total_spots;not null"`
	TariffID   *uuid.UUID     `gorm:"column:tariff_id;type:uuid"`
	Amenities  pq.StringArray `gorm:"column:amenities;type:text[];default:ARRAY[]::text[]"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
