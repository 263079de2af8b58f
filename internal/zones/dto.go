package zones

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// ZoneDTO is the zone payload returned to clients. AvailableSpots is
// computed from live occupancy, never stored.
type ZoneDTO struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Address        string     `json:"address"`
	TotalSpots     int        `json:"total_spots"`
	AvailableSpots int64      `json:"available_spots"`
	TariffID       *uuid.UUID `json:"tariff_id,omitempty"`
	Amenities      []string   `json:"amenities"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SpotDTO is the spot payload returned to clients.
type SpotDTO struct {
	ID         uuid.UUID        `json:"id"`
	ZoneID     uuid.UUID        `json:"zone_id"`
	SpotNumber string           `json:"spot_number"`
	Type       enums.SpotType   `json:"type"`
	IsOccupied bool             `json:"is_occupied"`
	IsActive   bool             `json:"is_active"`
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
	DailyRate  *decimal.Decimal `json:"daily_rate,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// ZoneFromDetail converts a zone with its derived availability.
func ZoneFromDetail(d *ZoneDetail) *ZoneDTO {
	if d == nil {
		return nil
	}
	dto := ZoneFromModel(&d.ParkingZone)
	dto.AvailableSpots = d.AvailableSpots
	return dto
}

// ZoneFromModel converts a bare zone row; availability defaults to zero.
func ZoneFromModel(z *models.ParkingZone) *ZoneDTO {
	if z == nil {
		return nil
	}
	return &ZoneDTO{
		ID:         z.ID,
		Name:       z.Name,
		Address:    z.Address,
		TotalSpots: z.TotalSpots,
		TariffID:   z.TariffID,
		Amenities:  append([]string{}, z.Amenities...),
		IsActive:   z.IsActive,
		CreatedAt:  z.CreatedAt,
		UpdatedAt:  z.UpdatedAt,
	}
}

// ZonesFromDetails converts a zone listing.
func ZonesFromDetails(details []ZoneDetail) []ZoneDTO {
	out := make([]ZoneDTO, 0, len(details))
	for i := range details {
		out = append(out, *ZoneFromDetail(&details[i]))
	}
	return out
}

// SpotFromModel converts a bare spot row.
func SpotFromModel(s *models.ParkingSpot) *SpotDTO {
	if s == nil {
		return nil
	}
	return &SpotDTO{
		ID:         s.ID,
		ZoneID:     s.ZoneID,
		SpotNumber: s.SpotNumber,
		Type:       s.Type,
		IsOccupied: s.IsOccupied,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt,
		UpdatedAt:  s.UpdatedAt,
	}
}

// SpotsFromModels converts a spot listing.
func SpotsFromModels(rows []models.ParkingSpot) []SpotDTO {
	out := make([]SpotDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *SpotFromModel(&rows[i]))
	}
	return out
}

// SpotsWithRates converts free-spot results, carrying zone pricing.
func SpotsWithRates(rows []SpotWithRates) []SpotDTO {
	out := make([]SpotDTO, 0, len(rows))
	for i := range rows {
		dto := SpotFromModel(&rows[i].ParkingSpot)
		dto.HourlyRate = rows[i].HourlyRate
		dto.DailyRate = rows[i].DailyRate
		out = append(out, *dto)
	}
	return out
}
