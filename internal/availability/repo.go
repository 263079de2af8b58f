package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Repository answers booking-overlap questions against the bookings table.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CountOverlapping(ctx context.Context, spotID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int64, error)
	ListActiveSpots(ctx context.Context, zoneID uuid.UUID) ([]models.ParkingSpot, error)
	ListBookedSpotIDs(ctx context.Context, zoneID uuid.UUID, start, end time.Time) ([]uuid.UUID, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// blockingStatuses are the booking states that hold a spot for their window.
var blockingStatuses = []enums.BookingStatus{
	enums.BookingStatusPending,
	enums.BookingStatusConfirmed,
}

// CountOverlapping counts bookings whose half-open [start_time, end_time)
// window intersects [start, end). Back-to-back bookings where one ends exactly
// when the next starts do not overlap.
func (r *repository) CountOverlapping(ctx context.Context, spotID uuid.UUID, start, end time.Time, excludeBookingID *uuid.UUID) (int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("spot_id = ?", spotID).
		Where("status IN ?", blockingStatuses).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeBookingID != nil {
		query = query.Where("id <> ?", *excludeBookingID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) ListActiveSpots(ctx context.Context, zoneID uuid.UUID) ([]models.ParkingSpot, error) {
	var spots []models.ParkingSpot
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND is_active = ?", zoneID, true).
		Order("spot_number ASC").
		Find(&spots).Error
	if err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *repository) ListBookedSpotIDs(ctx context.Context, zoneID uuid.UUID, start, end time.Time) ([]uuid.UUID, error) {
	var spotIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Distinct("bookings.spot_id").
		Joins("JOIN parking_spots ON parking_spots.id = bookings.spot_id").
		Where("parking_spots.zone_id = ?", zoneID).
		Where("bookings.status IN ?", blockingStatuses).
		Where("bookings.start_time < ? AND bookings.end_time > ?", end, start).
		Pluck("bookings.spot_id", &spotIDs).Error
	if err != nil {
		return nil, err
	}
	return spotIDs, nil
}
