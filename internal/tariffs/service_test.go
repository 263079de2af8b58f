package tariffs

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type stubTariffsRepo struct {
	findSpot     func(ctx context.Context, spotID uuid.UUID) (*models.ParkingSpot, error)
	findZone     func(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error)
	findTariff   func(ctx context.Context, tariffID uuid.UUID) (*models.TariffPlan, error)
	listTariffs  func(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error)
	createTariff func(ctx context.Context, plan *models.TariffPlan) error
}

func (s *stubTariffsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubTariffsRepo) FindSpot(ctx context.Context, spotID uuid.UUID) (*models.ParkingSpot, error) {
	if s.findSpot != nil {
		return s.findSpot(ctx, spotID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTariffsRepo) FindZone(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error) {
	if s.findZone != nil {
		return s.findZone(ctx, zoneID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTariffsRepo) FindTariff(ctx context.Context, tariffID uuid.UUID) (*models.TariffPlan, error) {
	if s.findTariff != nil {
		return s.findTariff(ctx, tariffID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubTariffsRepo) ListTariffs(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error) {
	if s.listTariffs != nil {
		return s.listTariffs(ctx, activeOnly)
	}
	return nil, nil
}

func (s *stubTariffsRepo) CreateTariff(ctx context.Context, plan *models.TariffPlan) error {
	if s.createTariff != nil {
		return s.createTariff(ctx, plan)
	}
	plan.ID = uuid.New()
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestResolve_WalksSpotZoneTariff(t *testing.T) {
	spotID := uuid.New()
	zoneID := uuid.New()
	tariffID := uuid.New()

	repo := &stubTariffsRepo{
		findSpot: func(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error) {
			if id != spotID {
				t.Fatalf("unexpected spot id %s", id)
			}
			return &models.ParkingSpot{ID: spotID, ZoneID: zoneID}, nil
		},
		findZone: func(ctx context.Context, id uuid.UUID) (*models.ParkingZone, error) {
			if id != zoneID {
				t.Fatalf("unexpected zone id %s", id)
			}
			return &models.ParkingZone{ID: zoneID, TariffID: &tariffID}, nil
		},
		findTariff: func(ctx context.Context, id uuid.UUID) (*models.TariffPlan, error) {
			if id != tariffID {
				t.Fatalf("unexpected tariff id %s", id)
			}
			return &models.TariffPlan{ID: tariffID, HourlyRate: decimal.NewFromInt(100)}, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	res, err := svc.Resolve(context.Background(), spotID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if res.Spot.ID != spotID || res.Zone.ID != zoneID || res.Tariff.ID != tariffID {
		t.Fatalf("resolution mismatch: %+v", res)
	}
}

func TestResolve_SpotNotFound(t *testing.T) {
	svc, err := NewService(&stubTariffsRepo{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Resolve(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestResolve_ZoneWithoutTariffIsStateConflict(t *testing.T) {
	spotID := uuid.New()
	zoneID := uuid.New()
	repo := &stubTariffsRepo{
		findSpot: func(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error) {
			return &models.ParkingSpot{ID: spotID, ZoneID: zoneID}, nil
		},
		findZone: func(ctx context.Context, id uuid.UUID) (*models.ParkingZone, error) {
			return &models.ParkingZone{ID: zoneID}, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Resolve(context.Background(), spotID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected STATE_CONFLICT, got %v", err)
	}
}

func TestResolve_DanglingTariffReferenceIsInternal(t *testing.T) {
	spotID := uuid.New()
	zoneID := uuid.New()
	tariffID := uuid.New()
	repo := &stubTariffsRepo{
		findSpot: func(ctx context.Context, id uuid.UUID) (*models.ParkingSpot, error) {
			return &models.ParkingSpot{ID: spotID, ZoneID: zoneID}, nil
		},
		findZone: func(ctx context.Context, id uuid.UUID) (*models.ParkingZone, error) {
			return &models.ParkingZone{ID: zoneID, TariffID: &tariffID}, nil
		},
	}

	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	_, err = svc.Resolve(context.Background(), spotID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInternal {
		t.Fatalf("expected INTERNAL_ERROR, got %v", err)
	}
}

func TestCreatePlan_Validation(t *testing.T) {
	svc, err := NewService(&stubTariffsRepo{}, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	cases := []struct {
		name  string
		input CreateTariffInput
	}{
		{"missing name", CreateTariffInput{HourlyRate: decimal.NewFromInt(100)}},
		{"zero hourly rate", CreateTariffInput{Name: "Standard", HourlyRate: decimal.Zero}},
		{"negative daily rate", CreateTariffInput{
			Name:       "Standard",
			HourlyRate: decimal.NewFromInt(100),
			DailyRate:  decimalPtr(decimal.NewFromInt(-1)),
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePlan(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestCreatePlan_PersistsActivePlan(t *testing.T) {
	var created *models.TariffPlan
	repo := &stubTariffsRepo{
		createTariff: func(ctx context.Context, plan *models.TariffPlan) error {
			plan.ID = uuid.New()
			created = plan
			return nil
		},
	}
	svc, err := NewService(repo, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	daily := decimal.NewFromInt(1600)
	plan, err := svc.CreatePlan(context.Background(), CreateTariffInput{
		Name:       "Downtown",
		HourlyRate: decimal.NewFromInt(200),
		DailyRate:  &daily,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}
	if created == nil || created.ID != plan.ID {
		t.Fatalf("plan not persisted")
	}
	if !plan.IsActive {
		t.Fatalf("expected new plan to be active")
	}
	if !plan.DailyRate.Equal(daily) {
		t.Fatalf("daily rate mismatch: %s", plan.DailyRate)
	}
}

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }
