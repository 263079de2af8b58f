package tariffs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
)

// Repository manages tariff plan persistence and the spot → zone lookups the
// resolver needs.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindSpot(ctx context.Context, spotID uuid.UUID) (*models.ParkingSpot, error)
	FindZone(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error)
	FindTariff(ctx context.Context, tariffID uuid.UUID) (*models.TariffPlan, error)
	ListTariffs(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error)
	CreateTariff(ctx context.Context, plan *models.TariffPlan) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tariffs repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindSpot(ctx context.Context, spotID uuid.UUID) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	if err := r.db.WithContext(ctx).Where("id = ?", spotID).First(&spot).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) FindZone(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error) {
	var zone models.ParkingZone
	if err := r.db.WithContext(ctx).Where("id = ?", zoneID).First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *repository) FindTariff(ctx context.Context, tariffID uuid.UUID) (*models.TariffPlan, error) {
	var plan models.TariffPlan
	if err := r.db.WithContext(ctx).Where("id = ?", tariffID).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) ListTariffs(ctx context.Context, activeOnly bool) ([]models.TariffPlan, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var plans []models.TariffPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) CreateTariff(ctx context.Context, plan *models.TariffPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}
