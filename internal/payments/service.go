package payments

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/internal/ledger"
	"github.com/parklyapp/parkly-backend/internal/notifications"
	"github.com/parklyapp/parkly-backend/internal/pricing"
	"github.com/parklyapp/parkly-backend/internal/tariffs"
	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/logger"
	"github.com/parklyapp/parkly-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type customerLoader interface {
	FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error)
}

// TopupInput adds funds to a customer's balance through the gateway.
type TopupInput struct {
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	Method     enums.PaymentMethod
}

// TopupResult pairs the ledger entry with the payment record.
type TopupResult struct {
	Transaction *models.Transaction
	Payment     *models.Payment
}

// PaySessionInput charges a completed session that has no payment yet.
type PaySessionInput struct {
	SessionID  uuid.UUID
	CustomerID uuid.UUID
	IsAdmin    bool
	Method     enums.PaymentMethod
}

// ListInput filters a customer's payment listing.
type ListInput struct {
	CustomerID uuid.UUID
	Status     *enums.PaymentStatus
}

// ActorInput identifies a payment and the caller asking about it.
type ActorInput struct {
	PaymentID  uuid.UUID
	CustomerID uuid.UUID
	IsAdmin    bool
}

// Service owns balance top-ups and the explicit pay-session flow for
// sessions that completed without a settled payment.
type Service interface {
	Topup(ctx context.Context, input TopupInput) (*TopupResult, error)
	PaySession(ctx context.Context, input PaySessionInput) (*models.Payment, error)
	List(ctx context.Context, input ListInput) ([]models.Payment, error)
	Get(ctx context.Context, input ActorInput) (*models.Payment, error)
}

type service struct {
	repo      Repository
	gateway   Gateway
	ledger    ledger.Service
	tariffs   tariffs.Service
	customers customerLoader
	tx        txRunner
	notifier  notifications.Dispatcher
	lifecycle *metrics.LifecycleMetrics
	logg      *logger.Logger
}

// NewService constructs a payments service with the provided dependencies.
func NewService(
	repo Repository,
	gateway Gateway,
	ledgerSvc ledger.Service,
	tariffSvc tariffs.Service,
	customers customerLoader,
	tx txRunner,
	notifier notifications.Dispatcher,
	lifecycle *metrics.LifecycleMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository is required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service is required")
	}
	if tariffSvc == nil {
		return nil, fmt.Errorf("tariffs service is required")
	}
	if customers == nil {
		return nil, fmt.Errorf("customer loader is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notification dispatcher is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:      repo,
		gateway:   gateway,
		ledger:    ledgerSvc,
		tariffs:   tariffSvc,
		customers: customers,
		tx:        tx,
		notifier:  notifier,
		lifecycle: lifecycle,
		logg:      logg,
	}, nil
}

func (s *service) Topup(ctx context.Context, input TopupInput) (*TopupResult, error) {
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "topup amount must be positive")
	}
	method := input.Method
	if method == "" {
		method = enums.PaymentMethodCard
	}
	if !method.IsValid() || method == enums.PaymentMethodBalance {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method for topup")
	}

	customer, err := s.customers.FindCustomer(ctx, input.CustomerID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		Amount:        input.Amount,
		Method:        method,
		CustomerEmail: customer.Email,
		Description:   fmt.Sprintf("balance topup of %s", input.Amount.StringFixed(2)),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway charge")
	}
	if !charge.Approved {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment declined by gateway")
	}

	result := &TopupResult{}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txn, err := s.ledger.Apply(ctx, tx, ledger.ApplyInput{
			CustomerID:  input.CustomerID,
			Type:        enums.TransactionTypeTopup,
			Amount:      input.Amount,
			Description: fmt.Sprintf("balance topup of %s", input.Amount.StringFixed(2)),
		})
		if err != nil {
			return err
		}
		result.Transaction = txn

		payment := &models.Payment{
			CustomerID:       input.CustomerID,
			Amount:           input.Amount,
			Method:           method,
			Status:           enums.PaymentStatusCompleted,
			GatewayReference: &charge.Reference,
		}
		if err := s.repo.WithTx(tx).Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
		}
		result.Payment = payment
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.lifecycle.IncPayment("topup")
	s.notifier.Dispatch(ctx, notifications.Event{
		Type:          enums.NotificationPaymentCompleted,
		CustomerEmail: customer.Email,
		CustomerName:  customer.FirstName,
		Data: map[string]string{
			"amount":    input.Amount.StringFixed(2),
			"method":    string(method),
			"reference": charge.Reference,
		},
	})
	return result, nil
}

func (s *service) PaySession(ctx context.Context, input PaySessionInput) (*models.Payment, error) {
	method := input.Method
	if method == "" {
		method = enums.PaymentMethodCard
	}
	if !method.IsValid() || method == enums.PaymentMethodBalance {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	session, err := s.repo.FindSession(ctx, input.SessionID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "parking session not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup session")
	}

	vehicle, err := s.repo.FindVehicle(ctx, session.VehicleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup vehicle")
	}
	if vehicle.CustomerID != input.CustomerID && !input.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "session does not belong to customer")
	}

	if session.Status != enums.SessionStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "can only pay for completed sessions")
	}

	if _, err := s.repo.FindBySessionID(ctx, session.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already exists for this session")
	} else if !stderrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing payment")
	}

	amount, err := s.sessionCost(ctx, session)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.FindCustomer(ctx, vehicle.CustomerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup customer")
	}

	charge, err := s.gateway.Charge(ctx, ChargeRequest{
		Amount:        amount,
		Method:        method,
		CustomerEmail: customer.Email,
		Description:   fmt.Sprintf("parking session %s", session.ID),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "gateway charge")
	}
	if !charge.Approved {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment declined by gateway")
	}

	payment := &models.Payment{
		SessionID:        &session.ID,
		CustomerID:       vehicle.CustomerID,
		Amount:           amount,
		Method:           method,
		Status:           enums.PaymentStatusCompleted,
		GatewayReference: &charge.Reference,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}

	s.lifecycle.IncPayment("session")
	s.notifier.Dispatch(ctx, notifications.Event{
		Type:          enums.NotificationPaymentCompleted,
		CustomerEmail: customer.Email,
		CustomerName:  customer.FirstName,
		Data: map[string]string{
			"amount":    amount.StringFixed(2),
			"method":    string(method),
			"reference": charge.Reference,
		},
	})
	return payment, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]models.Payment, error) {
	if input.Status != nil && !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment status")
	}
	payments, err := s.repo.ListByCustomerID(ctx, input.CustomerID, input.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	return payments, nil
}

func (s *service) Get(ctx context.Context, input ActorInput) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, input.PaymentID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup payment")
	}
	if payment.CustomerID != input.CustomerID && !input.IsAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "payment does not belong to customer")
	}
	return payment, nil
}

// sessionCost prefers the settled total; legacy rows without one are
// re-quoted from the zone tariff.
func (s *service) sessionCost(ctx context.Context, session *models.ParkingSession) (decimal.Decimal, error) {
	if session.TotalCost != nil {
		return *session.TotalCost, nil
	}
	if session.DurationMinutes == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "session has no duration to price")
	}

	res, err := s.tariffs.Resolve(ctx, session.SpotID)
	if err != nil {
		return decimal.Zero, err
	}
	return pricing.Quote(*session.DurationMinutes, res.Tariff)
}
