package vehicles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
)

type stubVehiclesRepo struct {
	byID    map[uuid.UUID]*models.Vehicle
	byPlate map[string]*models.Vehicle
	usage   map[uuid.UUID]int64

	deleted *uuid.UUID
	updates map[string]any
}

func newStubVehiclesRepo() *stubVehiclesRepo {
	return &stubVehiclesRepo{
		byID:    map[uuid.UUID]*models.Vehicle{},
		byPlate: map[string]*models.Vehicle{},
		usage:   map[uuid.UUID]int64{},
	}
}

func (s *stubVehiclesRepo) add(v *models.Vehicle) {
	s.byID[v.ID] = v
	s.byPlate[v.LicensePlate] = v
}

func (s *stubVehiclesRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubVehiclesRepo) Create(ctx context.Context, vehicle *models.Vehicle) error {
	vehicle.ID = uuid.New()
	s.add(vehicle)
	return nil
}

func (s *stubVehiclesRepo) FindByID(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	if v, ok := s.byID[vehicleID]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVehiclesRepo) FindByPlate(ctx context.Context, plate string) (*models.Vehicle, error) {
	if v, ok := s.byPlate[plate]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubVehiclesRepo) ListByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Vehicle, error) {
	var out []models.Vehicle
	for _, v := range s.byID {
		if v.CustomerID == customerID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (s *stubVehiclesRepo) Update(ctx context.Context, vehicleID uuid.UUID, updates map[string]any) error {
	s.updates = updates
	v := s.byID[vehicleID]
	if t, ok := updates["type"].(enums.VehicleType); ok {
		v.Type = t
	}
	if b, ok := updates["brand"].(string); ok {
		v.Brand = &b
	}
	if c, ok := updates["color"].(string); ok {
		v.Color = &c
	}
	return nil
}

func (s *stubVehiclesRepo) Delete(ctx context.Context, vehicleID uuid.UUID) error {
	s.deleted = &vehicleID
	delete(s.byID, vehicleID)
	return nil
}

func (s *stubVehiclesRepo) CountUsage(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	return s.usage[vehicleID], nil
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func seedVehicle(repo *stubVehiclesRepo, customerID uuid.UUID, plate string) *models.Vehicle {
	v := &models.Vehicle{
		ID:           uuid.New(),
		CustomerID:   customerID,
		LicensePlate: plate,
		Type:         enums.VehicleTypeSedan,
	}
	repo.add(v)
	return v
}

func TestCreateNormalizesPlate(t *testing.T) {
	repo := newStubVehiclesRepo()
	svc := newTestService(t, repo)

	vehicle, err := svc.Create(context.Background(), CreateInput{
		CustomerID:   uuid.New(),
		LicensePlate: " ab 123 cd ",
		Type:         enums.VehicleTypeSUV,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if vehicle.LicensePlate != "AB123CD" {
		t.Fatalf("expected normalized plate AB123CD, got %q", vehicle.LicensePlate)
	}
}

func TestValidPlateFormat(t *testing.T) {
	cases := []struct {
		plate string
		want  bool
	}{
		{"AB123CD", true},
		{"XY999", true},
		{"A", false},
		{"", false},
		{"AB-123", false},
		{"ABCDEFGHIJK", false},
	}
	for _, tc := range cases {
		if got := ValidPlateFormat(tc.plate); got != tc.want {
			t.Errorf("ValidPlateFormat(%q) = %v, want %v", tc.plate, got, tc.want)
		}
	}
}

func TestCreateRejectsDuplicatePlate(t *testing.T) {
	repo := newStubVehiclesRepo()
	seedVehicle(repo, uuid.New(), "AB123CD")
	svc := newTestService(t, repo)

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID:   uuid.New(),
		LicensePlate: "ab123cd",
		Type:         enums.VehicleTypeSedan,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	repo := newStubVehiclesRepo()
	svc := newTestService(t, repo)

	cases := []struct {
		name  string
		input CreateInput
	}{
		{"empty plate", CreateInput{CustomerID: uuid.New(), Type: enums.VehicleTypeSedan}},
		{"bad type", CreateInput{CustomerID: uuid.New(), LicensePlate: "XY999", Type: enums.VehicleType("hovercraft")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestGetEnforcesOwnership(t *testing.T) {
	repo := newStubVehiclesRepo()
	owner := uuid.New()
	vehicle := seedVehicle(repo, owner, "AB123CD")
	svc := newTestService(t, repo)

	_, err := svc.Get(context.Background(), ActorInput{VehicleID: vehicle.ID, CustomerID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}

	if _, err := svc.Get(context.Background(), ActorInput{VehicleID: vehicle.ID, CustomerID: uuid.New(), IsAdmin: true}); err != nil {
		t.Fatalf("admin read: %v", err)
	}
	if _, err := svc.Get(context.Background(), ActorInput{VehicleID: vehicle.ID, CustomerID: owner}); err != nil {
		t.Fatalf("owner read: %v", err)
	}
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	repo := newStubVehiclesRepo()
	owner := uuid.New()
	vehicle := seedVehicle(repo, owner, "AB123CD")
	svc := newTestService(t, repo)

	color := "red"
	updated, err := svc.Update(context.Background(), UpdateInput{
		VehicleID:  vehicle.ID,
		CustomerID: owner,
		Color:      &color,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(repo.updates) != 1 {
		t.Fatalf("expected a single column update, got %v", repo.updates)
	}
	if updated.Color == nil || *updated.Color != "red" {
		t.Fatalf("expected color red, got %v", updated.Color)
	}
	if updated.LicensePlate != "AB123CD" {
		t.Fatalf("plate must be immutable")
	}
}

func TestUpdateRejectsEmptyPatch(t *testing.T) {
	repo := newStubVehiclesRepo()
	owner := uuid.New()
	vehicle := seedVehicle(repo, owner, "AB123CD")
	svc := newTestService(t, repo)

	_, err := svc.Update(context.Background(), UpdateInput{VehicleID: vehicle.ID, CustomerID: owner})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteRejectsVehicleWithHistory(t *testing.T) {
	repo := newStubVehiclesRepo()
	owner := uuid.New()
	vehicle := seedVehicle(repo, owner, "AB123CD")
	repo.usage[vehicle.ID] = 2
	svc := newTestService(t, repo)

	err := svc.Delete(context.Background(), ActorInput{VehicleID: vehicle.ID, CustomerID: owner})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if repo.deleted != nil {
		t.Fatalf("vehicle must not be deleted")
	}
}

func TestDeleteUnusedVehicle(t *testing.T) {
	repo := newStubVehiclesRepo()
	owner := uuid.New()
	vehicle := seedVehicle(repo, owner, "AB123CD")
	svc := newTestService(t, repo)

	if err := svc.Delete(context.Background(), ActorInput{VehicleID: vehicle.ID, CustomerID: owner}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if repo.deleted == nil || *repo.deleted != vehicle.ID {
		t.Fatalf("expected delete of %s", vehicle.ID)
	}
}
