package tariffs

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

// Resolution is the pricing context for a spot: the spot itself, its zone,
// and the tariff plan attached to the zone.
type Resolution struct {
	Spot   *models.ParkingSpot
	Zone   *models.ParkingZone
	Tariff *models.TariffPlan
}

// CreateTariffInput carries the fields for a new tariff plan. DailyRate is
// optional; plans without one bill multi-day stays at 24x the hourly rate.
type CreateTariffInput struct {
	Name       string
	HourlyRate decimal.Decimal
	DailyRate  *decimal.Decimal
}

// Service resolves spots to their billing tariff and administers tariff plans.
type Service interface {
	Resolve(ctx context.Context, spotID uuid.UUID) (*Resolution, error)
	ResolveZone(ctx context.Context, zone *models.ParkingZone) (*models.TariffPlan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error)
	CreatePlan(ctx context.Context, input CreateTariffInput) (*models.TariffPlan, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the tariff service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tariffs: repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("tariffs: logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Resolve walks spot → zone → tariff. A zone without a tariff plan is not
// bookable, which surfaces as a state conflict rather than a server fault; a
// dangling tariff reference is a data integrity problem and is reported as
// internal.
func (s *service) Resolve(ctx context.Context, spotID uuid.UUID) (*Resolution, error) {
	spot, err := s.repo.FindSpot(ctx, spotID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parking spot not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load parking spot")
	}

	zone, err := s.repo.FindZone(ctx, spot.ZoneID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "spot references missing zone")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load parking zone")
	}

	tariff, err := s.ResolveZone(ctx, zone)
	if err != nil {
		return nil, err
	}
	return &Resolution{Spot: spot, Zone: zone, Tariff: tariff}, nil
}

func (s *service) ResolveZone(ctx context.Context, zone *models.ParkingZone) (*models.TariffPlan, error) {
	if zone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "zone is required")
	}
	if zone.TariffID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "zone has no tariff plan assigned")
	}

	tariff, err := s.repo.FindTariff(ctx, *zone.TariffID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			logCtx := s.logg.WithFields(ctx, map[string]any{
				"zone_id":   zone.ID.String(),
				"tariff_id": zone.TariffID.String(),
			})
			s.logg.Error(logCtx, "zone references missing tariff plan", err)
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "zone references missing tariff plan")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load tariff plan")
	}
	return tariff, nil
}

func (s *service) ListPlans(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error) {
	plans, err := s.repo.ListTariffs(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list tariff plans")
	}
	return plans, nil
}

func (s *service) CreatePlan(ctx context.Context, input CreateTariffInput) (*models.TariffPlan, error) {
	if input.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tariff name is required")
	}
	if !input.HourlyRate.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "hourly rate must be positive")
	}
	if input.DailyRate != nil && !input.DailyRate.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "daily rate must be positive when provided")
	}

	plan := &models.TariffPlan{
		Name:       input.Name,
		HourlyRate: input.HourlyRate,
		DailyRate:  input.DailyRate,
		IsActive:   true,
	}
	if err := s.repo.CreateTariff(ctx, plan); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create tariff plan")
	}
	return plan, nil
}
