package tariffs

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
)

// TariffDTO is the tariff plan payload returned to clients.
type TariffDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description *string          `json:"description,omitempty"`
	HourlyRate  decimal.Decimal  `json:"hourly_rate"`
	DailyRate   *decimal.Decimal `json:"daily_rate,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// FromModel converts a tariff plan row into its API payload.
func FromModel(t *models.TariffPlan) *TariffDTO {
	if t == nil {
		return nil
	}
	return &TariffDTO{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		HourlyRate:  t.HourlyRate,
		DailyRate:   t.DailyRate,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// FromModels converts a tariff plan listing.
func FromModels(rows []models.TariffPlan) []TariffDTO {
	out := make([]TariffDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
