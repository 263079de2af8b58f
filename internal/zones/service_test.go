package zones

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/internal/availability"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

type stubZonesRepo struct {
	zones  map[uuid.UUID]*models.ParkingZone
	spots  map[uuid.UUID]*models.ParkingSpot
	counts map[uuid.UUID]int64

	zoneUpdates map[string]any
	spotUpdates map[string]any
}

func newStubZonesRepo() *stubZonesRepo {
	return &stubZonesRepo{
		zones:  map[uuid.UUID]*models.ParkingZone{},
		spots:  map[uuid.UUID]*models.ParkingSpot{},
		counts: map[uuid.UUID]int64{},
	}
}

func (s *stubZonesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubZonesRepo) CreateZone(ctx context.Context, zone *models.ParkingZone) error {
	zone.ID = uuid.New()
	s.zones[zone.ID] = zone
	return nil
}

func (s *stubZonesRepo) FindZone(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error) {
	if z, ok := s.zones[zoneID]; ok {
		return z, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubZonesRepo) ListZones(ctx context.Context, activeOnly bool) ([]models.ParkingZone, error) {
	var out []models.ParkingZone
	for _, z := range s.zones {
		if activeOnly && !z.IsActive {
			continue
		}
		out = append(out, *z)
	}
	return out, nil
}

func (s *stubZonesRepo) UpdateZone(ctx context.Context, zoneID uuid.UUID, updates map[string]any) error {
	s.zoneUpdates = updates
	z := s.zones[zoneID]
	if v, ok := updates["name"].(string); ok {
		z.Name = v
	}
	if v, ok := updates["is_active"].(bool); ok {
		z.IsActive = v
	}
	return nil
}

func (s *stubZonesRepo) AvailableSpotCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	return s.counts, nil
}

func (s *stubZonesRepo) ListSpots(ctx context.Context, zoneID uuid.UUID, filter SpotFilter) ([]models.ParkingSpot, error) {
	var out []models.ParkingSpot
	for _, sp := range s.spots {
		if sp.ZoneID != zoneID {
			continue
		}
		if filter.IsOccupied != nil && sp.IsOccupied != *filter.IsOccupied {
			continue
		}
		if filter.Type != nil && sp.Type != *filter.Type {
			continue
		}
		out = append(out, *sp)
	}
	return out, nil
}

func (s *stubZonesRepo) CreateSpot(ctx context.Context, spot *models.ParkingSpot) error {
	spot.ID = uuid.New()
	s.spots[spot.ID] = spot
	return nil
}

func (s *stubZonesRepo) FindSpot(ctx context.Context, spotID uuid.UUID) (*models.ParkingSpot, error) {
	if sp, ok := s.spots[spotID]; ok {
		return sp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubZonesRepo) FindSpotByNumber(ctx context.Context, zoneID uuid.UUID, number string) (*models.ParkingSpot, error) {
	for _, sp := range s.spots {
		if sp.ZoneID == zoneID && sp.SpotNumber == number {
			return sp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubZonesRepo) UpdateSpot(ctx context.Context, spotID uuid.UUID, updates map[string]any) error {
	s.spotUpdates = updates
	sp := s.spots[spotID]
	if v, ok := updates["is_active"].(bool); ok {
		sp.IsActive = v
	}
	if v, ok := updates["type"].(enums.SpotType); ok {
		sp.Type = v
	}
	return nil
}

type stubTariffService struct {
	tariff *models.TariffPlan
	err    error
}

func (s *stubTariffService) Resolve(ctx context.Context, spotID uuid.UUID) (*tariffs.Resolution, error) {
	return nil, s.err
}

func (s *stubTariffService) ResolveZone(ctx context.Context, zone *models.ParkingZone) (*models.TariffPlan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tariff, nil
}

func (s *stubTariffService) ListPlans(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error) {
	return nil, nil
}

func (s *stubTariffService) CreatePlan(ctx context.Context, input tariffs.CreateTariffInput) (*models.TariffPlan, error) {
	return nil, nil
}

type stubAvailability struct {
	free []models.ParkingSpot
}

func (s *stubAvailability) IsSpotFree(ctx context.Context, spotID uuid.UUID, window availability.Window, excludeBookingID *uuid.UUID) (bool, error) {
	return true, nil
}

func (s *stubAvailability) FreeSpots(ctx context.Context, zoneID uuid.UUID, window availability.Window) ([]models.ParkingSpot, error) {
	return s.free, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fixture struct {
	repo    *stubZonesRepo
	tariffs *stubTariffService
	avail   *stubAvailability
	svc     Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo:    newStubZonesRepo(),
		tariffs: &stubTariffService{},
		avail:   &stubAvailability{},
	}
	svc, err := NewService(f.repo, f.tariffs, f.avail, testLogger())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *fixture) seedZone(active bool) *models.ParkingZone {
	zone := &models.ParkingZone{
		ID:       uuid.New(),
		Name:     "Central",
		Address:  "1 Main St",
		IsActive: active,
	}
	f.repo.zones[zone.ID] = zone
	return zone
}

func (f *fixture) seedSpot(zoneID uuid.UUID, number string) *models.ParkingSpot {
	spot := &models.ParkingSpot{
		ID:         uuid.New(),
		ZoneID:     zoneID,
		SpotNumber: number,
		Type:       enums.SpotTypeStandard,
		IsActive:   true,
	}
	f.repo.spots[spot.ID] = spot
	return spot
}

func testWindow() availability.Window {
	start := time.Now().Add(time.Hour).UTC()
	return availability.Window{Start: start, End: start.Add(2 * time.Hour)}
}

func TestListZonesAttachesAvailability(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)
	f.seedZone(false)
	f.repo.counts[zone.ID] = 7

	details, err := f.svc.ListZones(context.Background(), true)
	if err != nil {
		t.Fatalf("list zones: %v", err)
	}
	if len(details) != 1 {
		t.Fatalf("expected only the active zone, got %d", len(details))
	}
	if details[0].AvailableSpots != 7 {
		t.Fatalf("expected 7 available spots, got %d", details[0].AvailableSpots)
	}
}

func TestGetZoneNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetZone(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListSpotsFilters(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)
	f.seedSpot(zone.ID, "A-1")
	electric := f.seedSpot(zone.ID, "A-2")
	electric.Type = enums.SpotTypeElectric

	spotType := enums.SpotTypeElectric
	spots, err := f.svc.ListSpots(context.Background(), zone.ID, SpotFilter{Type: &spotType})
	if err != nil {
		t.Fatalf("list spots: %v", err)
	}
	if len(spots) != 1 || spots[0].SpotNumber != "A-2" {
		t.Fatalf("expected only the electric spot, got %v", spots)
	}
}

func TestFreeSpotsForWindowCarriesRates(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)
	spot := f.seedSpot(zone.ID, "A-1")
	f.avail.free = []models.ParkingSpot{*spot}
	daily := decimal.NewFromInt(1500)
	f.tariffs.tariff = &models.TariffPlan{
		ID:         uuid.New(),
		HourlyRate: decimal.NewFromInt(200),
		DailyRate:  &daily,
	}

	out, err := f.svc.FreeSpotsForWindow(context.Background(), zone.ID, testWindow())
	if err != nil {
		t.Fatalf("free spots: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 free spot, got %d", len(out))
	}
	if out[0].HourlyRate == nil || !out[0].HourlyRate.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected hourly rate 200, got %v", out[0].HourlyRate)
	}
}

func TestFreeSpotsForWindowWithoutTariff(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)
	spot := f.seedSpot(zone.ID, "A-1")
	f.avail.free = []models.ParkingSpot{*spot}
	f.tariffs.err = pkgerrors.New(pkgerrors.CodeStateConflict, "zone has no tariff plan assigned")

	out, err := f.svc.FreeSpotsForWindow(context.Background(), zone.ID, testWindow())
	if err != nil {
		t.Fatalf("free spots: %v", err)
	}
	if out[0].HourlyRate != nil || out[0].DailyRate != nil {
		t.Fatalf("expected nil rates for zone without tariff")
	}
}

func TestFreeSpotsForWindowRejectsBadWindow(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)

	_, err := f.svc.FreeSpotsForWindow(context.Background(), zone.ID, availability.Window{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateZoneDefaults(t *testing.T) {
	f := newFixture(t)

	zone, err := f.svc.CreateZone(context.Background(), CreateZoneInput{
		Name:       "  North Lot ",
		Address:    "5 River Rd",
		TotalSpots: 40,
	})
	if err != nil {
		t.Fatalf("create zone: %v", err)
	}
	if zone.Name != "North Lot" {
		t.Fatalf("expected trimmed name, got %q", zone.Name)
	}
	if !zone.IsActive {
		t.Fatalf("new zones start active")
	}
	if zone.Amenities == nil {
		t.Fatalf("amenities must default to an empty array")
	}
}

func TestUpdateZonePatch(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)

	inactive := false
	updated, err := f.svc.UpdateZone(context.Background(), UpdateZoneInput{
		ZoneID:   zone.ID,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("update zone: %v", err)
	}
	if len(f.repo.zoneUpdates) != 1 {
		t.Fatalf("expected a single column update, got %v", f.repo.zoneUpdates)
	}
	if updated.IsActive {
		t.Fatalf("expected zone to be deactivated")
	}
	if updated.Name != "Central" {
		t.Fatalf("name must be untouched")
	}
}

func TestCreateSpotRejectsDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)
	f.seedSpot(zone.ID, "A-1")

	_, err := f.svc.CreateSpot(context.Background(), CreateSpotInput{
		ZoneID:     zone.ID,
		SpotNumber: "A-1",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateSpotDefaultsToStandard(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)

	spot, err := f.svc.CreateSpot(context.Background(), CreateSpotInput{
		ZoneID:     zone.ID,
		SpotNumber: "B-9",
	})
	if err != nil {
		t.Fatalf("create spot: %v", err)
	}
	if spot.Type != enums.SpotTypeStandard {
		t.Fatalf("expected standard type default, got %s", spot.Type)
	}
	if !spot.IsActive {
		t.Fatalf("new spots start active")
	}
}

func TestUpdateSpotPatch(t *testing.T) {
	f := newFixture(t)
	zone := f.seedZone(true)
	spot := f.seedSpot(zone.ID, "A-1")

	inactive := false
	updated, err := f.svc.UpdateSpot(context.Background(), UpdateSpotInput{
		SpotID:   spot.ID,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("update spot: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("expected spot to be deactivated")
	}
	if updated.Type != enums.SpotTypeStandard {
		t.Fatalf("type must be untouched")
	}
}
