package sessions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Repository manages session persistence and the occupancy flag on spots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, session *models.ParkingSession) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingSession, error)
	FindActiveByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.ParkingSession, error)
	Settle(ctx context.Context, id uuid.UUID, exitTime time.Time, durationMinutes int, totalCost decimal.Decimal) (int64, error)
	ClaimSpot(ctx context.Context, spotID uuid.UUID) (bool, error)
	ReleaseSpot(ctx context.Context, spotID uuid.UUID) error
	FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.ParkingSession, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a sessions repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, session *models.ParkingSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ParkingSession, error) {
	var session models.ParkingSession
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) FindActiveByVehicleID(ctx context.Context, vehicleID uuid.UUID) (*models.ParkingSession, error) {
	var session models.ParkingSession
	err := r.db.WithContext(ctx).
		Where("vehicle_id = ? AND status = ?", vehicleID, enums.SessionStatusActive).
		First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Settle flips an active session to completed in a single guarded UPDATE and
// reports the affected-row count. Zero rows means a rival settlement already
// committed; the caller must treat that as losing the race, not as success.
func (r *repository) Settle(ctx context.Context, id uuid.UUID, exitTime time.Time, durationMinutes int, totalCost decimal.Decimal) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ParkingSession{}).
		Where("id = ? AND status = ?", id, enums.SessionStatusActive).
		Updates(map[string]any{
			"exit_time":        exitTime,
			"duration_minutes": durationMinutes,
			"total_cost":       totalCost,
			"status":           enums.SessionStatusCompleted,
		})
	return result.RowsAffected, result.Error
}

// ClaimSpot flips is_occupied in a single guarded UPDATE. The affected-row
// count decides the race: zero rows means another session holds the spot or
// the spot is inactive.
func (r *repository) ClaimSpot(ctx context.Context, spotID uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("id = ? AND is_occupied = ? AND is_active = ?", spotID, false, true).
		Update("is_occupied", true)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ReleaseSpot(ctx context.Context, spotID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("id = ?", spotID).
		Update("is_occupied", false).Error
}

func (r *repository) FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", vehicleID).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.ParkingSession, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ParkingSession{}).
		Joins("JOIN vehicles ON vehicles.id = parking_sessions.vehicle_id").
		Where("vehicles.customer_id = ?", customerID).
		Order("parking_sessions.created_at DESC, parking_sessions.id DESC").
		Limit(limit)
	if afterCreatedAt != nil && afterID != nil {
		query = query.Where(
			"parking_sessions.created_at < ? OR (parking_sessions.created_at = ? AND parking_sessions.id < ?)",
			*afterCreatedAt, *afterCreatedAt, *afterID)
	}

	var rows []models.ParkingSession
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}
