package zones

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/internal/availability"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

// ZoneDetail pairs a zone with its live availability count.
type ZoneDetail struct {
	models.ParkingZone
	AvailableSpots int64 `json:"available_spots"`
}

// SpotWithRates decorates a free spot with the zone's tariff rates. Rates
// are nil when the zone has no tariff assigned yet.
type SpotWithRates struct {
	models.ParkingSpot
	HourlyRate *decimal.Decimal `json:"hourly_rate,omitempty"`
	DailyRate  *decimal.Decimal `json:"daily_rate,omitempty"`
}

// CreateZoneInput carries the fields for a new zone.
type CreateZoneInput struct {
	Name       string
	Address    string
	TotalSpots int
	TariffID   *uuid.UUID
	Amenities  []string
}

// UpdateZoneInput patches a zone; nil means unchanged.
type UpdateZoneInput struct {
	ZoneID     uuid.UUID
	Name       *string
	Address    *string
	TotalSpots *int
	TariffID   *uuid.UUID
	Amenities  *[]string
	IsActive   *bool
}

// CreateSpotInput carries the fields for a new spot inside a zone.
type CreateSpotInput struct {
	ZoneID     uuid.UUID
	SpotNumber string
	Type       enums.SpotType
}

// UpdateSpotInput patches a spot; nil means unchanged.
type UpdateSpotInput struct {
	SpotID   uuid.UUID
	Type     *enums.SpotType
	IsActive *bool
}

// Service owns the zone/spot catalog: public listings with derived
// availability and the admin management operations.
type Service interface {
	ListZones(ctx context.Context, activeOnly bool) ([]ZoneDetail, error)
	GetZone(ctx context.Context, zoneID uuid.UUID) (*ZoneDetail, error)
	ListSpots(ctx context.Context, zoneID uuid.UUID, filter SpotFilter) ([]models.ParkingSpot, error)
	FreeSpotsForWindow(ctx context.Context, zoneID uuid.UUID, window availability.Window) ([]SpotWithRates, error)
	CreateZone(ctx context.Context, input CreateZoneInput) (*models.ParkingZone, error)
	UpdateZone(ctx context.Context, input UpdateZoneInput) (*models.ParkingZone, error)
	CreateSpot(ctx context.Context, input CreateSpotInput) (*models.ParkingSpot, error)
	UpdateSpot(ctx context.Context, input UpdateSpotInput) (*models.ParkingSpot, error)
}

type tariffLoader interface {
	ResolveZone(ctx context.Context, zone *models.ParkingZone) (*models.TariffPlan, error)
}

type spotFinder interface {
	FreeSpots(ctx context.Context, zoneID uuid.UUID, window availability.Window) ([]models.ParkingSpot, error)
}

type service struct {
	repo    Repository
	tariffs tariffLoader
	avail   spotFinder
	logg    *logger.Logger
}

// NewService constructs a zones service with the provided dependencies.
func NewService(repo Repository, tariffSvc tariffs.Service, avail availability.Service, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("zones repository is required")
	}
	if tariffSvc == nil {
		return nil, fmt.Errorf("tariffs service is required")
	}
	if avail == nil {
		return nil, fmt.Errorf("availability service is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, tariffs: tariffSvc, avail: avail, logg: logg}, nil
}

func (s *service) ListZones(ctx context.Context, activeOnly bool) ([]ZoneDetail, error) {
	zones, err := s.repo.ListZones(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list zones")
	}
	counts, err := s.repo.AvailableSpotCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count available spots")
	}

	details := make([]ZoneDetail, 0, len(zones))
	for _, zone := range zones {
		details = append(details, ZoneDetail{
			ParkingZone:    zone,
			AvailableSpots: counts[zone.ID],
		})
	}
	return details, nil
}

func (s *service) GetZone(ctx context.Context, zoneID uuid.UUID) (*ZoneDetail, error) {
	zone, err := s.loadZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}
	counts, err := s.repo.AvailableSpotCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count available spots")
	}
	return &ZoneDetail{ParkingZone: *zone, AvailableSpots: counts[zone.ID]}, nil
}

func (s *service) ListSpots(ctx context.Context, zoneID uuid.UUID, filter SpotFilter) ([]models.ParkingSpot, error) {
	if _, err := s.loadZone(ctx, zoneID); err != nil {
		return nil, err
	}
	spots, err := s.repo.ListSpots(ctx, zoneID, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list spots")
	}
	return spots, nil
}

func (s *service) FreeSpotsForWindow(ctx context.Context, zoneID uuid.UUID, window availability.Window) ([]SpotWithRates, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}
	zone, err := s.loadZone(ctx, zoneID)
	if err != nil {
		return nil, err
	}

	var hourly, daily *decimal.Decimal
	tariff, err := s.tariffs.ResolveZone(ctx, zone)
	switch {
	case err == nil:
		hourly = &tariff.HourlyRate
		daily = tariff.DailyRate
	case pkgerrors.As(err) != nil && pkgerrors.As(err).Code() == pkgerrors.CodeStateConflict:
		// zone has no tariff yet; list spots without rates
		logCtx := s.logg.WithField(ctx, "zone_id", zone.ID.String())
		s.logg.Warn(logCtx, "listing free spots for zone without tariff")
	default:
		return nil, err
	}

	free, err := s.avail.FreeSpots(ctx, zoneID, window)
	if err != nil {
		return nil, err
	}

	out := make([]SpotWithRates, 0, len(free))
	for _, spot := range free {
		out = append(out, SpotWithRates{ParkingSpot: spot, HourlyRate: hourly, DailyRate: daily})
	}
	return out, nil
}

func (s *service) CreateZone(ctx context.Context, input CreateZoneInput) (*models.ParkingZone, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Address) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if input.TotalSpots < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_spots cannot be negative")
	}

	amenities := input.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	zone := &models.ParkingZone{
		Name:       name,
		Address:    strings.TrimSpace(input.Address),
		TotalSpots: input.TotalSpots,
		TariffID:   input.TariffID,
		Amenities:  pq.StringArray(amenities),
		IsActive:   true,
	}
	if err := s.repo.CreateZone(ctx, zone); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create zone")
	}
	return zone, nil
}

func (s *service) UpdateZone(ctx context.Context, input UpdateZoneInput) (*models.ParkingZone, error) {
	updates := map[string]any{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		updates["name"] = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		if strings.TrimSpace(*input.Address) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "address cannot be empty")
		}
		updates["address"] = strings.TrimSpace(*input.Address)
	}
	if input.TotalSpots != nil {
		if *input.TotalSpots < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_spots cannot be negative")
		}
		updates["total_spots"] = *input.TotalSpots
	}
	if input.TariffID != nil {
		updates["tariff_id"] = *input.TariffID
	}
	if input.Amenities != nil {
		updates["amenities"] = pq.StringArray(*input.Amenities)
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	if _, err := s.loadZone(ctx, input.ZoneID); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateZone(ctx, input.ZoneID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update zone")
	}
	return s.loadZone(ctx, input.ZoneID)
}

func (s *service) CreateSpot(ctx context.Context, input CreateSpotInput) (*models.ParkingSpot, error) {
	number := strings.TrimSpace(input.SpotNumber)
	if number == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "spot_number is required")
	}
	spotType := input.Type
	if spotType == "" {
		spotType = enums.SpotTypeStandard
	}
	if !spotType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid spot type")
	}

	if _, err := s.loadZone(ctx, input.ZoneID); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindSpotByNumber(ctx, input.ZoneID, number); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "spot number already exists in this zone")
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check spot number")
	}

	spot := &models.ParkingSpot{
		ZoneID:     input.ZoneID,
		SpotNumber: number,
		Type:       spotType,
		IsActive:   true,
	}
	if err := s.repo.CreateSpot(ctx, spot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create spot")
	}
	return spot, nil
}

func (s *service) UpdateSpot(ctx context.Context, input UpdateSpotInput) (*models.ParkingSpot, error) {
	updates := map[string]any{}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid spot type")
		}
		updates["type"] = *input.Type
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	spot, err := s.repo.FindSpot(ctx, input.SpotID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "spot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup spot")
	}
	if err := s.repo.UpdateSpot(ctx, spot.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update spot")
	}

	updated, err := s.repo.FindSpot(ctx, spot.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload spot")
	}
	return updated, nil
}

func (s *service) loadZone(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error) {
	zone, err := s.repo.FindZone(ctx, zoneID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parking zone not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup zone")
	}
	return zone, nil
}
