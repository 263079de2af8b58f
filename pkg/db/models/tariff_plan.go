package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TariffPlan prices a zone. HourlyRate is mandatory; DailyRate, when set,
// caps sub-24h costs and prices multi-day stays.
type TariffPlan struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Description *string          `gorm:"column:description"`
	HourlyRate  decimal.Decimal  `gorm:"column:hourly_rate;type:numeric(10,2);not null"`
	DailyRate   *decimal.Decimal `gorm:"column:daily_rate;type:numeric(10,2)"`
	IsActive    bool             `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
