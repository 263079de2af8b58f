package zones

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// SpotFilter narrows spot listings; nil fields match everything.
type SpotFilter struct {
	IsOccupied *bool
	Type       *enums.SpotType
}

// Repository manages zone and spot persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateZone(ctx context.Context, zone *models.ParkingZone) error
	FindZone(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error)
	ListZones(ctx context.Context, activeOnly bool) ([]models.ParkingZone, error)
	UpdateZone(ctx context.Context, zoneID uuid.UUID, updates map[string]any) error
	AvailableSpotCounts(ctx context.Context) (map[uuid.UUID]int64, error)
	ListSpots(ctx context.Context, zoneID uuid.UUID, filter SpotFilter) ([]models.ParkingSpot, error)
	CreateSpot(ctx context.Context, spot *models.ParkingSpot) error
	FindSpot(ctx context.Context, spotID uuid.UUID) (*models.ParkingSpot, error)
	FindSpotByNumber(ctx context.Context, zoneID uuid.UUID, spotNumber string) (*models.ParkingSpot, error)
	UpdateSpot(ctx context.Context, spotID uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a zones repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateZone(ctx context.Context, zone *models.ParkingZone) error {
	return r.db.WithContext(ctx).Create(zone).Error
}

func (r *repository) FindZone(ctx context.Context, zoneID uuid.UUID) (*models.ParkingZone, error) {
	var zone models.ParkingZone
	if err := r.db.WithContext(ctx).Where("id = ?", zoneID).First(&zone).Error; err != nil {
		return nil, err
	}
	return &zone, nil
}

func (r *repository) ListZones(ctx context.Context, activeOnly bool) ([]models.ParkingZone, error) {
	query := r.db.WithContext(ctx).Model(&models.ParkingZone{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var zones []models.ParkingZone
	if err := query.Order("name ASC").Find(&zones).Error; err != nil {
		return nil, err
	}
	return zones, nil
}

func (r *repository) UpdateZone(ctx context.Context, zoneID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ParkingZone{}).
		Where("id = ?", zoneID).
		Updates(updates).Error
}

// AvailableSpotCounts returns, per zone, how many spots are active and not
// occupied right now.
func (r *repository) AvailableSpotCounts(ctx context.Context) (map[uuid.UUID]int64, error) {
	var rows []struct {
		ZoneID uuid.UUID
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Select("zone_id, COUNT(*) AS count").
		Where("is_active = ? AND is_occupied = ?", true, false).
		Group("zone_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.ZoneID] = row.Count
	}
	return counts, nil
}

func (r *repository) ListSpots(ctx context.Context, zoneID uuid.UUID, filter SpotFilter) ([]models.ParkingSpot, error) {
	query := r.db.WithContext(ctx).Where("zone_id = ?", zoneID)
	if filter.IsOccupied != nil {
		query = query.Where("is_occupied = ?", *filter.IsOccupied)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}

	var spots []models.ParkingSpot
	if err := query.Order("spot_number ASC").Find(&spots).Error; err != nil {
		return nil, err
	}
	return spots, nil
}

func (r *repository) CreateSpot(ctx context.Context, spot *models.ParkingSpot) error {
	return r.db.WithContext(ctx).Create(spot).Error
}

func (r *repository) FindSpot(ctx context.Context, spotID uuid.UUID) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	if err := r.db.WithContext(ctx).Where("id = ?", spotID).First(&spot).Error; err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) FindSpotByNumber(ctx context.Context, zoneID uuid.UUID, spotNumber string) (*models.ParkingSpot, error) {
	var spot models.ParkingSpot
	err := r.db.WithContext(ctx).
		Where("zone_id = ? AND spot_number = ?", zoneID, spotNumber).
		First(&spot).Error
	if err != nil {
		return nil, err
	}
	return &spot, nil
}

func (r *repository) UpdateSpot(ctx context.Context, spotID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ParkingSpot{}).
		Where("id = ?", spotID).
		Updates(updates).Error
}
