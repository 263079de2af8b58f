package bookings

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/internal/availability"
	"github.com/parklyapp/parkly-backend/internal/ledger"
	"github.com/parklyapp/parkly-backend/internal/notifications"
	"github.com/parklyapp/parkly-backend/internal/pricing"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
	"github.com/parklyapp/parkly-backend/pkg/metrics"
	"github.com/parklyapp/parkly-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
}

// CreateInput carries the fields for a new booking.
type CreateInput struct {
	CustomerID uuid.UUID
	VehicleID  uuid.UUID
	SpotID     uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
}

// ActorInput identifies who is acting on an existing booking.
type ActorInput struct {
	BookingID  uuid.UUID
	CustomerID uuid.UUID
	IsAdmin    bool
}

// ListInput selects a page of a customer's bookings.
type ListInput struct {
	CustomerID uuid.UUID
	Params     pagination.Params
}

// ListPage is one page of bookings, newest first.
type ListPage struct {
	Bookings   []models.Booking
	NextCursor string
}

// Service owns the booking lifecycle: creation with an up-front balance
// charge, confirmation, and cancellation with a full refund.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Booking, error)
	Confirm(ctx context.Context, input ActorInput) (*models.Booking, error)
	Cancel(ctx context.Context, input ActorInput) (*models.Booking, error)
	Get(ctx context.Context, input ActorInput) (*models.Booking, error)
	List(ctx context.Context, input ListInput) (*ListPage, error)
}

type service struct {
	repo      Repository
	avail     availability.Repository
	tariffs   tariffs.Service
	ledger    ledger.Service
	customers customerLoader
	tx        txRunner
	notifier  notifications.Dispatcher
	lifecycle *metrics.LifecycleMetrics
	logg      *logger.Logger
	now       func() time.Time
}

// NewService builds the bookings service with the required dependencies.
func NewService(
	repo Repository,
	avail availability.Repository,
	tariffSvc tariffs.Service,
	ledgerSvc ledger.Service,
	customers customerLoader,
	tx txRunner,
	notifier notifications.Dispatcher,
	lifecycle *metrics.LifecycleMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if avail == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if tariffSvc == nil {
		return nil, fmt.Errorf("tariff service required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification dispatcher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		avail:     avail,
		tariffs:   tariffSvc,
		ledger:    ledgerSvc,
		customers: customers,
		tx:        tx,
		notifier:  notifier,
		lifecycle: lifecycle,
		logg:      logg,
		now:       time.Now,
	}, nil
}

// Create validates the window, checks the spot is free, then atomically
// writes the pending booking, charges the estimated cost to the customer's
// balance, and records the payment. An insufficient balance rolls the whole
// booking back.
func (s *service) Create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	window := availability.Window{Start: input.StartTime, End: input.EndTime}
	if err := window.Validate(); err != nil {
		return nil, err
	}
	if window.Start.Before(s.now().UTC()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "start time must not be in the past")
	}

	vehicle, err := s.repo.FindVehicle(ctx, input.VehicleID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load vehicle")
	}
	if vehicle.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "vehicle belongs to another customer")
	}

	res, err := s.tariffs.Resolve(ctx, input.SpotID)
	if err != nil {
		return nil, err
	}
	if !res.Spot.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "parking spot is not active")
	}

	estimated, err := pricing.Quote(window.Minutes(), res.Tariff)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.FindCustomer(ctx, input.CustomerID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}

	booking := &models.Booking{
		CustomerID:    input.CustomerID,
		VehicleID:     input.VehicleID,
		SpotID:        input.SpotID,
		StartTime:     window.Start.UTC(),
		EndTime:       window.End.UTC(),
		Status:        enums.BookingStatusPending,
		EstimatedCost: estimated,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		overlapping, err := s.avail.WithTx(tx).CountOverlapping(ctx, input.SpotID, booking.StartTime, booking.EndTime, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check spot availability")
		}
		if overlapping > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "spot is already booked for this window")
		}

		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create booking")
		}

		if _, err := s.ledger.Apply(ctx, tx, ledger.ApplyInput{
			CustomerID:  input.CustomerID,
			Type:        enums.TransactionTypeBookingCharge,
			Amount:      estimated,
			BookingID:   &booking.ID,
			Description: fmt.Sprintf("booking charge for spot %s", res.Spot.SpotNumber),
		}); err != nil {
			return err
		}

		payment := &models.Payment{
			BookingID:  &booking.ID,
			CustomerID: input.CustomerID,
			Amount:     estimated,
			Method:     enums.PaymentMethodBalance,
			Status:     enums.PaymentStatusCompleted,
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lifecycle.IncBookingCreated()
	s.notifier.Dispatch(ctx, notifications.Event{
		Type:          enums.NotificationBookingCreated,
		CustomerEmail: customer.Email,
		CustomerName:  customer.FirstName,
		Data: map[string]string{
			"spot_number":    res.Spot.SpotNumber,
			"start_time":     booking.StartTime.Format(time.RFC3339),
			"end_time":       booking.EndTime.Format(time.RFC3339),
			"estimated_cost": estimated.StringFixed(2),
		},
	})
	return booking, nil
}

// Confirm moves a pending booking to confirmed.
func (s *service) Confirm(ctx context.Context, input ActorInput) (*models.Booking, error) {
	booking, err := s.loadOwned(ctx, input)
	if err != nil {
		return nil, err
	}
	if booking.Status != enums.BookingStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot confirm a %s booking", booking.Status))
	}
	if err := s.repo.UpdateStatus(ctx, booking.ID, enums.BookingStatusConfirmed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking status")
	}
	booking.Status = enums.BookingStatusConfirmed
	s.lifecycle.IncBookingConfirmed()
	return booking, nil
}

// Cancel refunds the full estimated cost and releases the window. Only
// pending and confirmed bookings can be cancelled.
func (s *service) Cancel(ctx context.Context, input ActorInput) (*models.Booking, error) {
	booking, err := s.loadOwned(ctx, input)
	if err != nil {
		return nil, err
	}
	if booking.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot cancel a %s booking", booking.Status))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cancelled, err := repo.UpdateStatusIf(ctx, booking.ID,
			[]enums.BookingStatus{enums.BookingStatusPending, enums.BookingStatusConfirmed},
			enums.BookingStatusCancelled)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking status")
		}
		if cancelled == 0 {
			// A rival cancel or settlement reached a terminal state first;
			// failing here keeps the refund from being applied twice.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking is no longer cancellable")
		}

		if _, err := s.ledger.Apply(ctx, tx, ledger.ApplyInput{
			CustomerID:  booking.CustomerID,
			Type:        enums.TransactionTypeRefund,
			Amount:      booking.EstimatedCost,
			BookingID:   &booking.ID,
			Description: "refund for cancelled booking",
		}); err != nil {
			return err
		}

		payment, err := repo.FindPaymentByBookingID(ctx, booking.ID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "booking has no payment")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking payment")
		}
		if err := repo.UpdatePaymentStatus(ctx, payment.ID, enums.PaymentStatusRefunded); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	booking.Status = enums.BookingStatusCancelled
	s.lifecycle.IncBookingCancelled()

	if customer, err := s.customers.FindCustomer(ctx, booking.CustomerID); err == nil {
		s.notifier.Dispatch(ctx, notifications.Event{
			Type:          enums.NotificationBookingCancelled,
			CustomerEmail: customer.Email,
			CustomerName:  customer.FirstName,
			Data: map[string]string{
				"spot_number":   booking.SpotID.String(),
				"refund_amount": booking.EstimatedCost.StringFixed(2),
			},
		})
	} else {
		s.logg.Warn(ctx, "skipping cancellation notice, customer load failed")
	}
	return booking, nil
}

func (s *service) Get(ctx context.Context, input ActorInput) (*models.Booking, error) {
	return s.loadOwned(ctx, input)
}

func (s *service) List(ctx context.Context, input ListInput) (*ListPage, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	cursor, err := pagination.ParseCursor(input.Params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Params.Limit)

	var rows []models.Booking
	if cursor != nil {
		rows, err = s.repo.ListByCustomerID(ctx, input.CustomerID, &cursor.CreatedAt, &cursor.ID, limit+1)
	} else {
		rows, err = s.repo.ListByCustomerID(ctx, input.CustomerID, nil, nil, limit+1)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list bookings")
	}

	page := &ListPage{Bookings: rows}
	if len(rows) > limit {
		page.Bookings = rows[:limit]
		last := page.Bookings[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) loadOwned(ctx context.Context, input ActorInput) (*models.Booking, error) {
	if input.BookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id is required")
	}
	booking, err := s.repo.FindByID(ctx, input.BookingID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
	}
	if !input.IsAdmin && booking.CustomerID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another customer")
	}
	return booking, nil
}
