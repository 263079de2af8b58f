package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
)

// Window is a half-open booking window [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// Validate rejects empty and inverted windows. Zero-length windows are
// invalid: a booking must cover some time.
func (w Window) Validate() error {
	if w.Start.IsZero() || w.End.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end times are required")
	}
	if !w.Start.Before(w.End) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end time must be after start time")
	}
	return nil
}

// Minutes is the window length in whole minutes, rounded up.
func (w Window) Minutes() int {
	d := w.End.Sub(w.Start)
	mins := int(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}

// Service answers whether a spot is free for a window and lists the free
// spots of a zone.
type Service interface {
	IsSpotFree(ctx context.Context, spotID uuid.UUID, window Window, excludeBookingID *uuid.UUID) (bool, error)
	FreeSpots(ctx context.Context, zoneID uuid.UUID, window Window) ([]models.ParkingSpot, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("availability: repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("availability: logger is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) IsSpotFree(ctx context.Context, spotID uuid.UUID, window Window, excludeBookingID *uuid.UUID) (bool, error) {
	if err := window.Validate(); err != nil {
		return false, err
	}
	count, err := s.repo.CountOverlapping(ctx, spotID, window.Start, window.End, excludeBookingID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count overlapping bookings")
	}
	return count == 0, nil
}

func (s *service) FreeSpots(ctx context.Context, zoneID uuid.UUID, window Window) ([]models.ParkingSpot, error) {
	if err := window.Validate(); err != nil {
		return nil, err
	}

	spots, err := s.repo.ListActiveSpots(ctx, zoneID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list active spots")
	}
	bookedIDs, err := s.repo.ListBookedSpotIDs(ctx, zoneID, window.Start, window.End)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list booked spots")
	}

	booked := make(map[uuid.UUID]struct{}, len(bookedIDs))
	for _, id := range bookedIDs {
		booked[id] = struct{}{}
	}

	free := make([]models.ParkingSpot, 0, len(spots))
	for _, spot := range spots {
		if _, taken := booked[spot.ID]; taken {
			continue
		}
		free = append(free, spot)
	}
	return free, nil
}
