package availability

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

func setupAvailabilityTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	spots := `
CREATE TABLE IF NOT EXISTS parking_spots (
  id TEXT PRIMARY KEY,
  zone_id TEXT NOT NULL,
  spot_number TEXT NOT NULL,
  type TEXT NOT NULL DEFAULT 'standard',
  is_occupied INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	bookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  customer_id TEXT NOT NULL,
  spot_id TEXT NOT NULL,
  vehicle_id TEXT NOT NULL,
  start_time DATETIME NOT NULL,
  end_time DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  estimated_cost NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(spots).Error)
	require.NoError(t, db.Exec(bookings).Error)

	t.Cleanup(func() {
		db.Exec("DELETE FROM bookings")
		db.Exec("DELETE FROM parking_spots")
	})

	return db
}

func seedBooking(t *testing.T, db *gorm.DB, spotID uuid.UUID, status enums.BookingStatus, start, end time.Time) uuid.UUID {
	t.Helper()
	booking := models.Booking{
		ID:         uuid.New(),
		CustomerID: uuid.New(),
		SpotID:     spotID,
		VehicleID:  uuid.New(),
		StartTime:  start,
		EndTime:    end,
		Status:     status,
	}
	require.NoError(t, db.Create(&booking).Error)
	return booking.ID
}

func TestCountOverlapping_HalfOpenWindows(t *testing.T) {
	db := setupAvailabilityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	spotID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedBooking(t, db, spotID, enums.BookingStatusConfirmed, base, base.Add(2*time.Hour))

	cases := []struct {
		name  string
		start time.Time
		end   time.Time
		want  int64
	}{
		{"back-to-back after is free", base.Add(2 * time.Hour), base.Add(3 * time.Hour), 0},
		{"back-to-back before is free", base.Add(-time.Hour), base, 0},
		{"partial overlap conflicts", base.Add(time.Hour), base.Add(3 * time.Hour), 1},
		{"contained window conflicts", base.Add(30 * time.Minute), base.Add(time.Hour), 1},
		{"surrounding window conflicts", base.Add(-time.Hour), base.Add(3 * time.Hour), 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			count, err := repo.CountOverlapping(ctx, spotID, tc.start, tc.end, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, count)
		})
	}
}

func TestCountOverlapping_IgnoresTerminalBookings(t *testing.T) {
	db := setupAvailabilityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	spotID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedBooking(t, db, spotID, enums.BookingStatusCancelled, base, base.Add(2*time.Hour))
	seedBooking(t, db, spotID, enums.BookingStatusCompleted, base, base.Add(2*time.Hour))

	count, err := repo.CountOverlapping(ctx, spotID, base, base.Add(2*time.Hour), nil)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCountOverlapping_ExcludesGivenBooking(t *testing.T) {
	db := setupAvailabilityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	spotID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	bookingID := seedBooking(t, db, spotID, enums.BookingStatusPending, base, base.Add(2*time.Hour))

	count, err := repo.CountOverlapping(ctx, spotID, base, base.Add(2*time.Hour), &bookingID)
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.CountOverlapping(ctx, spotID, base, base.Add(2*time.Hour), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestListBookedSpotIDs_OnlyZoneSpotsInWindow(t *testing.T) {
	db := setupAvailabilityTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	zoneID := uuid.New()
	bookedSpot := models.ParkingSpot{ID: uuid.New(), ZoneID: zoneID, SpotNumber: "A-01", Type: enums.SpotTypeStandard, IsActive: true}
	freeSpot := models.ParkingSpot{ID: uuid.New(), ZoneID: zoneID, SpotNumber: "A-02", Type: enums.SpotTypeStandard, IsActive: true}
	otherZoneSpot := models.ParkingSpot{ID: uuid.New(), ZoneID: uuid.New(), SpotNumber: "B-01", Type: enums.SpotTypeStandard, IsActive: true}
	require.NoError(t, db.Create(&bookedSpot).Error)
	require.NoError(t, db.Create(&freeSpot).Error)
	require.NoError(t, db.Create(&otherZoneSpot).Error)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	seedBooking(t, db, bookedSpot.ID, enums.BookingStatusConfirmed, base, base.Add(2*time.Hour))
	seedBooking(t, db, otherZoneSpot.ID, enums.BookingStatusConfirmed, base, base.Add(2*time.Hour))

	ids, err := repo.ListBookedSpotIDs(ctx, zoneID, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, bookedSpot.ID, ids[0])
}
