package vehicles

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
)

// CreateInput carries the fields for registering a vehicle.
type CreateInput struct {
	CustomerID   uuid.UUID
	LicensePlate string
	Type         enums.VehicleType
	Brand        *string
	Model        *string
	Color        *string
}

// UpdateInput patches the mutable vehicle fields; nil means unchanged.
// The license plate is immutable, matching the physical registration.
type UpdateInput struct {
	VehicleID  uuid.UUID
	CustomerID uuid.UUID
	IsAdmin    bool
	Type       *enums.VehicleType
	Brand      *string
	Model      *string
	Color      *string
}

// ActorInput identifies a vehicle and the caller asking about it.
type ActorInput struct {
	VehicleID  uuid.UUID
	CustomerID uuid.UUID
	IsAdmin    bool
}

// Service owns vehicle registration and the ownership checks the rest of
// the system leans on.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Vehicle, error)
	Get(ctx context.Context, input ActorInput) (*models.Vehicle, error)
	List(ctx context.Context, customerID uuid.UUID) ([]models.Vehicle, error)
	Update(ctx context.Context, input UpdateInput) (*models.Vehicle, error)
	Delete(ctx context.Context, input ActorInput) error
}

type service struct {
	repo Repository
}

// NewService constructs a vehicles service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Vehicle, error) {
	plate := NormalizePlate(input.LicensePlate)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "license_plate is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle type")
	}

	if _, err := s.repo.FindByPlate(ctx, plate); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vehicle with this license plate already exists")
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check license plate")
	}

	vehicle := &models.Vehicle{
		CustomerID:   input.CustomerID,
		LicensePlate: plate,
		Type:         input.Type,
		Brand:        input.Brand,
		Model:        input.Model,
		Color:        input.Color,
	}
	if err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create vehicle")
	}
	return vehicle, nil
}

func (s *service) Get(ctx context.Context, input ActorInput) (*models.Vehicle, error) {
	return s.loadOwned(ctx, input)
}

func (s *service) List(ctx context.Context, customerID uuid.UUID) ([]models.Vehicle, error) {
	vehicles, err := s.repo.ListByCustomerID(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vehicles")
	}
	return vehicles, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.Vehicle, error) {
	updates := map[string]any{}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid vehicle type")
		}
		updates["type"] = *input.Type
	}
	if input.Brand != nil {
		updates["brand"] = *input.Brand
	}
	if input.Model != nil {
		updates["model"] = *input.Model
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if len(updates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	vehicle, err := s.loadOwned(ctx, ActorInput{
		VehicleID:  input.VehicleID,
		CustomerID: input.CustomerID,
		IsAdmin:    input.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, vehicle.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update vehicle")
	}

	updated, err := s.repo.FindByID(ctx, vehicle.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload vehicle")
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, input ActorInput) error {
	vehicle, err := s.loadOwned(ctx, input)
	if err != nil {
		return err
	}

	used, err := s.repo.CountUsage(ctx, vehicle.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check vehicle usage")
	}
	if used > 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "vehicle has parking history and cannot be deleted")
	}

	if err := s.repo.Delete(ctx, vehicle.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete vehicle")
	}
	return nil
}

func (s *service) loadOwned(ctx context.Context, input ActorInput) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, input.VehicleID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup vehicle")
	}
	if vehicle.CustomerID != input.CustomerID && !input.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vehicle does not belong to customer")
	}
	return vehicle, nil
}

var plateFormat = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)

// NormalizePlate uppercases a license plate and strips whitespace.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), ""))
}

// ValidPlateFormat reports whether a normalized plate looks like a
// registration: two to ten letters and digits.
func ValidPlateFormat(plate string) bool {
	return plateFormat.MatchString(plate)
}
