package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Repository manages booking persistence plus the payment rows bookings own.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []enums.BookingStatus, to enums.BookingStatus) (int64, error)
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Booking, error)
	FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error)
	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status enums.PaymentStatus) error
	UpdatePaymentSettlement(ctx context.Context, paymentID uuid.UUID, sessionID uuid.UUID, amount decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a bookings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateStatusIf flips the status only when the current value is one of
// from, and reports how many rows changed. Zero rows means a rival
// transition already committed.
func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []enums.BookingStatus, to enums.BookingStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

func (r *repository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Booking, error) {
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if afterCreatedAt != nil && afterID != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", *afterCreatedAt, *afterCreatedAt, *afterID)
	}

	var rows []models.Booking
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindVehicle(ctx context.Context, vehicleID uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", vehicleID).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindPaymentByBookingID(ctx context.Context, bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at ASC").
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, paymentID uuid.UUID, status enums.PaymentStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Update("status", status).Error
}

// UpdatePaymentSettlement repoints a booking's payment at the session that
// settled it and records the final actual cost.
func (r *repository) UpdatePaymentSettlement(ctx context.Context, paymentID uuid.UUID, sessionID uuid.UUID, amount decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", paymentID).
		Updates(map[string]any{
			"session_id": sessionID,
			"amount":     amount,
		}).Error
}
