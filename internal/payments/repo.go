package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Repository manages payment persistence plus the session and vehicle
// lookups the pay-session flow needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error)
	FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Payment, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, status *enums.PaymentStatus) ([]models.Payment, error)
	FindSession(ctx context.Context, sessionID uuid.UUID) (*models.ParkingSession, error)
	FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindByID(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).Where("id = ?", paymentID).First(&payment).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) FindBySessionID(ctx context.Context, sessionID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, status *enums.PaymentStatus) ([]models.Payment, error) {
	query := r.db.WithContext(ctx).Where("customer_id = ?", customerID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) FindSession(ctx context.Context, sessionID uuid.UUID) (*models.ParkingSession, error) {
	var session models.ParkingSession
	if err := r.db.WithContext(ctx).Where("id = ?", sessionID).First(&session).Error; err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *repository) FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", vehicleID).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}
