package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
)

// Repository manages persistence for balance transactions and the customer
// balance they mirror.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	FindCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
	UpdateCustomerBalance(ctx context.Context, customerID uuid.UUID, balance decimal.Decimal) error
	Create(ctx context.Context, txn *models.Transaction) error
	ListByCustomerID(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.WithContext(ctx).Where("id = ?", customerID).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindCustomerForUpdate loads the customer row under FOR UPDATE so
// concurrent balance mutations serialize on the row lock.
func (r *repository) FindCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", customerID).
		First(&customer).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *repository) UpdateCustomerBalance(ctx context.Context, customerID uuid.UUID, balance decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Customer{}).
		Where("id = ?", customerID).
		Update("balance", balance).Error
}

func (r *repository) Create(ctx context.Context, txn *models.Transaction) error {
	return r.db.WithContext(ctx).Create(txn).Error
}

func (r *repository) ListByCustomerID(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Transaction, error) {
	query := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at DESC, id DESC").
		Limit(limit)
	if afterCreatedAt != nil && afterID != nil {
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)", *afterCreatedAt, *afterCreatedAt, *afterID)
	}

	var txns []models.Transaction
	if err := query.Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
