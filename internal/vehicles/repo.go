package vehicles

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
)

// Repository manages vehicle persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) error
	FindByID(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)
	FindByPlate(ctx context.Context, licensePlate string) (*models.Vehicle, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicleID uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, vehicleID uuid.UUID) error
	CountUsage(ctx context.Context, vehicleID uuid.UUID) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vehicles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) FindByID(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", vehicleID).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) FindByPlate(ctx context.Context, licensePlate string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("license_plate = ?", licensePlate).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) ListByCustomerID(ctx context.Context, customerID uuid.UUID) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&vehicles).Error
	if err != nil {
		return nil, err
	}
	return vehicles, nil
}

func (r *repository) Update(ctx context.Context, vehicleID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", vehicleID).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, vehicleID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", vehicleID).
		Delete(&models.Vehicle{}).Error
}

// CountUsage reports how many bookings and sessions reference the vehicle.
// A vehicle with history cannot be hard-deleted without orphaning records.
func (r *repository) CountUsage(ctx context.Context, vehicleID uuid.UUID) (int64, error) {
	var bookings int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("vehicle_id = ?", vehicleID).
		Count(&bookings).Error
	if err != nil {
		return 0, err
	}

	var sessions int64
	err = r.db.WithContext(ctx).
		Model(&models.ParkingSession{}).
		Where("vehicle_id = ?", vehicleID).
		Count(&sessions).Error
	if err != nil {
		return 0, err
	}
	return bookings + sessions, nil
}
