package sessions

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/internal/bookings"
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

// StartInput opens a session. BookingID is optional: drive-up customers park
// without one. EntryTime defaults to now when nil, for gates that report the
// actual entry after the fact.
type StartInput struct {
	CustomerID uuid.UUID
	VehicleID  uuid.UUID
	SpotID     uuid.UUID
	BookingID  *uuid.UUID
	EntryTime  *time.Time
}

// EndInput closes a session. ExitTime defaults to now when nil.
type EndInput struct {
	SessionID  uuid.UUID
	CustomerID uuid.UUID
	IsAdmin    bool
	ExitTime   *time.Time
}

// ActorInput identifies who is reading a session.
type ActorInput struct {
	SessionID  uuid.UUID
	CustomerID uuid.UUID
	IsAdmin    bool
}

// ListInput selects a page of a customer's session history.
type ListInput struct {
	CustomerID uuid.UUID
	Params     pagination.Params
}

// ListPage is one page of sessions, newest first.
type ListPage struct {
	Sessions   []models.ParkingSession
	NextCursor string
}

// CostProjection is the running cost of an active session at a point in time.
type CostProjection struct {
	SessionID       uuid.UUID
	DurationMinutes int
	Cost            decimal.Decimal
}

// Service owns the session lifecycle: starting with an atomic spot claim and
// ending with the cost settlement against the customer's balance.
type Service interface {
	Start(ctx context.Context, input StartInput) (*models.ParkingSession, error)
	End(ctx context.Context, input EndInput) (*models.ParkingSession, error)
	CalculateCost(ctx context.Context, input ActorInput) (*CostProjection, error)
	Get(ctx context.Context, input ActorInput) (*models.ParkingSession, error)
	List(ctx context.Context, input ListInput) (*ListPage, error)
}

type service struct {
	repo            Repository
	bookings        bookings.Repository
	tariffs         tariffs.Service
	ledger          ledger.Service
	customers       customerLoader
	tx              txRunner
	notifier        notifications.Dispatcher
	lifecycle       *metrics.LifecycleMetrics
	logg            *logger.Logger
	earlyStartGrace time.Duration
	now             func() time.Time
}

// NewService builds the sessions service with the required dependencies.
func NewService(
	repo Repository,
	bookingsRepo bookings.Repository,
	tariffSvc tariffs.Service,
	ledgerSvc ledger.Service,
	customers customerLoader,
	tx txRunner,
	notifier notifications.Dispatcher,
	lifecycle *metrics.LifecycleMetrics,
	logg *logger.Logger,
	earlyStartGrace time.Duration,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sessions repository required")
	}
	if bookingsRepo == nil {
		return nil, fmt.Errorf("bookings repository required")
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
	if earlyStartGrace < 0 {
		return nil, fmt.Errorf("early start grace must not be negative")
	}
	return &service{
		repo:            repo,
		bookings:        bookingsRepo,
		tariffs:         tariffSvc,
		ledger:          ledgerSvc,
		customers:       customers,
		tx:              tx,
		notifier:        notifier,
		lifecycle:       lifecycle,
		logg:            logg,
		earlyStartGrace: earlyStartGrace,
		now:             time.Now,
	}, nil
}

// Start opens a session at entry time. The spot is claimed by flipping
// is_occupied inside the transaction; losing that race is a conflict. A
// booked start also validates the booking window and moves a pending booking
// to confirmed.
func (s *service) Start(ctx context.Context, input StartInput) (*models.ParkingSession, error) {
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

	entryTime := s.now().UTC()
	if input.EntryTime != nil {
		entryTime = input.EntryTime.UTC()
	}
	spotID := input.SpotID

	var booking *models.Booking
	if input.BookingID != nil {
		booking, err = s.bookings.FindByID(ctx, *input.BookingID)
		if err != nil {
			if stderrors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking")
		}
		if booking.CustomerID != input.CustomerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking belongs to another customer")
		}
		if booking.VehicleID != input.VehicleID {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is for a different vehicle")
		}
		if input.SpotID != uuid.Nil && input.SpotID != booking.SpotID {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking is for a different spot")
		}
		if booking.Status.IsTerminal() {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot start a session on a %s booking", booking.Status))
		}
		if entryTime.Before(booking.StartTime.Add(-s.earlyStartGrace)) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("booking starts at %s", booking.StartTime.Format(time.RFC3339)))
		}
		if !entryTime.Before(booking.EndTime) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "booking window has expired")
		}
		spotID = booking.SpotID
	}

	res, err := s.tariffs.Resolve(ctx, spotID)
	if err != nil {
		return nil, err
	}
	if !res.Spot.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "parking spot is not active")
	}

	session := &models.ParkingSession{
		BookingID: input.BookingID,
		VehicleID: input.VehicleID,
		SpotID:    spotID,
		EntryTime: entryTime,
		Status:    enums.SessionStatusActive,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindActiveByVehicleID(ctx, input.VehicleID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "vehicle already has an active session")
		} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check active session")
		}

		claimed, err := repo.ClaimSpot(ctx, spotID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim spot")
		}
		if !claimed {
			return pkgerrors.New(pkgerrors.CodeConflict, "spot is occupied")
		}

		if err := repo.Create(ctx, session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create session")
		}

		if booking != nil && booking.Status == enums.BookingStatusPending {
			if err := s.bookings.WithTx(tx).UpdateStatus(ctx, booking.ID, enums.BookingStatusConfirmed); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm booking")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lifecycle.IncSessionStarted()
	if customer, err := s.customers.FindCustomer(ctx, input.CustomerID); err == nil {
		s.notifier.Dispatch(ctx, notifications.Event{
			Type:          enums.NotificationSessionStarted,
			CustomerEmail: customer.Email,
			CustomerName:  customer.FirstName,
			Data: map[string]string{
				"spot_number": res.Spot.SpotNumber,
				"entry_time":  session.EntryTime.Format(time.RFC3339),
			},
		})
	}
	return session, nil
}

// End settles an active session. With a booking the actual cost reconciles
// against the estimate already charged: a cheaper stay refunds the
// difference, a longer stay charges a penalty for it. Without a booking the
// full cost is charged. Any failed debit aborts the settlement and leaves
// the session active and the spot occupied.
func (s *service) End(ctx context.Context, input EndInput) (*models.ParkingSession, error) {
	session, vehicle, err := s.loadOwned(ctx, ActorInput{
		SessionID:  input.SessionID,
		CustomerID: input.CustomerID,
		IsAdmin:    input.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	if session.Status != enums.SessionStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "session is already completed")
	}

	exitTime := s.now().UTC()
	if input.ExitTime != nil {
		exitTime = input.ExitTime.UTC()
	}
	if !exitTime.After(session.EntryTime) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exit time must be after entry time")
	}

	durationMinutes := ceilMinutes(exitTime.Sub(session.EntryTime))

	res, err := s.tariffs.Resolve(ctx, session.SpotID)
	if err != nil {
		return nil, err
	}
	actual, err := pricing.Quote(durationMinutes, res.Tariff)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if session.BookingID != nil {
			if err := s.settleBooked(ctx, tx, session, vehicle.CustomerID, actual); err != nil {
				return err
			}
		} else {
			if _, err := s.ledger.Apply(ctx, tx, ledger.ApplyInput{
				CustomerID:  vehicle.CustomerID,
				Type:        enums.TransactionTypeParkingCharge,
				Amount:      actual,
				SessionID:   &session.ID,
				Description: fmt.Sprintf("parking charge for spot %s", res.Spot.SpotNumber),
			}); err != nil {
				return err
			}
			payment := &models.Payment{
				SessionID:  &session.ID,
				CustomerID: vehicle.CustomerID,
				Amount:     actual,
				Method:     enums.PaymentMethodBalance,
				Status:     enums.PaymentStatusCompleted,
			}
			if err := repo.CreatePayment(ctx, payment); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
			}
		}

		settled, err := repo.Settle(ctx, session.ID, exitTime, durationMinutes, actual)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "settle session")
		}
		if settled == 0 {
			// A rival End committed between the status read and this update.
			// The rollback discards the debit applied above.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "session is already completed")
		}
		if err := repo.ReleaseSpot(ctx, session.SpotID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "release spot")
		}
		return nil
	})
	if err != nil {
		s.lifecycle.IncSettlementFailure()
		return nil, err
	}

	s.lifecycle.ObserveSessionEnded(exitTime.Sub(session.EntryTime))
	session.ExitTime = &exitTime
	session.DurationMinutes = &durationMinutes
	session.TotalCost = &actual
	session.Status = enums.SessionStatusCompleted

	if customer, err := s.customers.FindCustomer(ctx, vehicle.CustomerID); err == nil {
		s.notifier.Dispatch(ctx, notifications.Event{
			Type:          enums.NotificationSessionEnded,
			CustomerEmail: customer.Email,
			CustomerName:  customer.FirstName,
			Data: map[string]string{
				"spot_number":      res.Spot.SpotNumber,
				"duration_minutes": strconv.Itoa(durationMinutes),
				"total_cost":       actual.StringFixed(2),
			},
		})
	}
	return session, nil
}

// settleBooked reconciles the actual cost against the booking's estimate,
// repoints the booking's payment at the session and the final cost, and
// closes the booking.
func (s *service) settleBooked(ctx context.Context, tx *gorm.DB, session *models.ParkingSession, customerID uuid.UUID, actual decimal.Decimal) error {
	booked := s.bookings.WithTx(tx)
	booking, err := booked.FindByID(ctx, *session.BookingID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking for settlement")
	}

	diff := booking.EstimatedCost.Sub(actual)
	switch {
	case diff.IsPositive():
		if _, err := s.ledger.Apply(ctx, tx, ledger.ApplyInput{
			CustomerID:  customerID,
			Type:        enums.TransactionTypeRefund,
			Amount:      diff,
			BookingID:   &booking.ID,
			SessionID:   &session.ID,
			Description: "refund of unused booking estimate",
		}); err != nil {
			return err
		}
	case diff.IsNegative():
		if _, err := s.ledger.Apply(ctx, tx, ledger.ApplyInput{
			CustomerID:  customerID,
			Type:        enums.TransactionTypePenalty,
			Amount:      diff.Neg(),
			BookingID:   &booking.ID,
			SessionID:   &session.ID,
			Description: "charge for exceeding booking estimate",
		}); err != nil {
			return err
		}
	}

	payment, err := booked.FindPaymentByBookingID(ctx, booking.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load booking payment")
	}
	if err := booked.UpdatePaymentSettlement(ctx, payment.ID, session.ID, actual); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update booking payment")
	}

	if err := booked.UpdateStatus(ctx, booking.ID, enums.BookingStatusCompleted); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "complete booking")
	}
	return nil
}

// CalculateCost projects the cost of an active session as if it ended now.
// For a completed session it returns the figures fixed at settlement.
func (s *service) CalculateCost(ctx context.Context, input ActorInput) (*CostProjection, error) {
	session, _, err := s.loadOwned(ctx, input)
	if err != nil {
		return nil, err
	}
	if session.Status == enums.SessionStatusCompleted {
		if session.DurationMinutes == nil || session.TotalCost == nil {
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "completed session missing settlement figures")
		}
		return &CostProjection{
			SessionID:       session.ID,
			DurationMinutes: *session.DurationMinutes,
			Cost:            *session.TotalCost,
		}, nil
	}

	durationMinutes := ceilMinutes(s.now().UTC().Sub(session.EntryTime))
	if durationMinutes < 0 {
		durationMinutes = 0
	}

	res, err := s.tariffs.Resolve(ctx, session.SpotID)
	if err != nil {
		return nil, err
	}
	cost, err := pricing.Quote(durationMinutes, res.Tariff)
	if err != nil {
		return nil, err
	}
	return &CostProjection{SessionID: session.ID, DurationMinutes: durationMinutes, Cost: cost}, nil
}

func (s *service) Get(ctx context.Context, input ActorInput) (*models.ParkingSession, error) {
	session, _, err := s.loadOwned(ctx, input)
	return session, err
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

	var rows []models.ParkingSession
	if cursor != nil {
		rows, err = s.repo.ListByCustomerID(ctx, input.CustomerID, &cursor.CreatedAt, &cursor.ID, limit+1)
	} else {
		rows, err = s.repo.ListByCustomerID(ctx, input.CustomerID, nil, nil, limit+1)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sessions")
	}

	page := &ListPage{Sessions: rows}
	if len(rows) > limit {
		page.Sessions = rows[:limit]
		last := page.Sessions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) loadOwned(ctx context.Context, input ActorInput) (*models.ParkingSession, *models.Vehicle, error) {
	if input.SessionID == uuid.Nil {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "session id is required")
	}
	session, err := s.repo.FindByID(ctx, input.SessionID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "session not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session")
	}
	vehicle, err := s.repo.FindVehicle(ctx, session.VehicleID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load session vehicle")
	}
	if !input.IsAdmin && vehicle.CustomerID != input.CustomerID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "session belongs to another customer")
	}
	return session, vehicle, nil
}

func ceilMinutes(d time.Duration) int {
	mins := int(d / time.Minute)
	if d%time.Minute != 0 {
		mins++
	}
	return mins
}
