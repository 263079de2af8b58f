package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/pagination"
)

type stubLedgerRepo struct {
	customers map[uuid.UUID]*models.Customer
	created   []*models.Transaction
	balances  map[uuid.UUID]decimal.Decimal
	listByID  func(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Transaction, error)
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{
		customers: make(map[uuid.UUID]*models.Customer),
		balances:  make(map[uuid.UUID]decimal.Decimal),
	}
}

func (s *stubLedgerRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubLedgerRepo) FindCustomer(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	if customer, ok := s.customers[customerID]; ok {
		return customer, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubLedgerRepo) FindCustomerForUpdate(ctx context.Context, customerID uuid.UUID) (*models.Customer, error) {
	return s.FindCustomer(ctx, customerID)
}

func (s *stubLedgerRepo) UpdateCustomerBalance(ctx context.Context, customerID uuid.UUID, balance decimal.Decimal) error {
	s.balances[customerID] = balance
	if customer, ok := s.customers[customerID]; ok {
		customer.Balance = balance
	}
	return nil
}

func (s *stubLedgerRepo) Create(ctx context.Context, txn *models.Transaction) error {
	txn.ID = uuid.New()
	s.created = append(s.created, txn)
	return nil
}

func (s *stubLedgerRepo) ListByCustomerID(ctx context.Context, customerID uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Transaction, error) {
	if s.listByID != nil {
		return s.listByID(ctx, customerID, afterCreatedAt, afterID, limit)
	}
	return nil, nil
}

func newLedgerService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestApply_CreditMovesBalanceUpWithSnapshots(t *testing.T) {
	repo := newStubLedgerRepo()
	customerID := uuid.New()
	repo.customers[customerID] = &models.Customer{ID: customerID, Balance: decimal.NewFromInt(100)}
	svc := newLedgerService(t, repo)

	txn, err := svc.Apply(context.Background(), &gorm.DB{}, ApplyInput{
		CustomerID: customerID,
		Type:       enums.TransactionTypeTopup,
		Amount:     decimal.NewFromInt(250),
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !txn.BalanceBefore.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("balance before = %s", txn.BalanceBefore)
	}
	if !txn.BalanceAfter.Equal(decimal.NewFromInt(350)) {
		t.Fatalf("balance after = %s", txn.BalanceAfter)
	}
	if !repo.balances[customerID].Equal(decimal.NewFromInt(350)) {
		t.Fatalf("customer balance not updated: %s", repo.balances[customerID])
	}
}

func TestApply_DebitMovesBalanceDown(t *testing.T) {
	repo := newStubLedgerRepo()
	customerID := uuid.New()
	repo.customers[customerID] = &models.Customer{ID: customerID, Balance: decimal.NewFromInt(500)}
	svc := newLedgerService(t, repo)

	bookingID := uuid.New()
	txn, err := svc.Apply(context.Background(), &gorm.DB{}, ApplyInput{
		CustomerID: customerID,
		Type:       enums.TransactionTypeBookingCharge,
		Amount:     decimal.NewFromInt(200),
		BookingID:  &bookingID,
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !txn.BalanceAfter.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("balance after = %s", txn.BalanceAfter)
	}
	if txn.BookingID == nil || *txn.BookingID != bookingID {
		t.Fatalf("booking id not recorded")
	}
	if !txn.Amount.IsPositive() {
		t.Fatalf("amount must stay positive, got %s", txn.Amount)
	}
}

func TestApply_DebitBelowZeroFailsAndWritesNothing(t *testing.T) {
	repo := newStubLedgerRepo()
	customerID := uuid.New()
	repo.customers[customerID] = &models.Customer{ID: customerID, Balance: decimal.NewFromInt(100)}
	svc := newLedgerService(t, repo)

	_, err := svc.Apply(context.Background(), &gorm.DB{}, ApplyInput{
		CustomerID: customerID,
		Type:       enums.TransactionTypeParkingCharge,
		Amount:     decimal.NewFromInt(150),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientBalance {
		t.Fatalf("expected INSUFFICIENT_BALANCE, got %v", err)
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no transaction rows, got %d", len(repo.created))
	}
	if _, moved := repo.balances[customerID]; moved {
		t.Fatalf("balance must not move on a failed debit")
	}
}

func TestApply_ExactBalanceDebitSucceeds(t *testing.T) {
	repo := newStubLedgerRepo()
	customerID := uuid.New()
	repo.customers[customerID] = &models.Customer{ID: customerID, Balance: decimal.NewFromInt(100)}
	svc := newLedgerService(t, repo)

	txn, err := svc.Apply(context.Background(), &gorm.DB{}, ApplyInput{
		CustomerID: customerID,
		Type:       enums.TransactionTypePenalty,
		Amount:     decimal.NewFromInt(100),
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !txn.BalanceAfter.IsZero() {
		t.Fatalf("expected zero balance, got %s", txn.BalanceAfter)
	}
}

func TestApply_InputValidation(t *testing.T) {
	repo := newStubLedgerRepo()
	customerID := uuid.New()
	repo.customers[customerID] = &models.Customer{ID: customerID, Balance: decimal.NewFromInt(100)}
	svc := newLedgerService(t, repo)

	if _, err := svc.Apply(context.Background(), nil, ApplyInput{
		CustomerID: customerID,
		Type:       enums.TransactionTypeTopup,
		Amount:     decimal.NewFromInt(10),
	}); err == nil {
		t.Fatalf("expected error without a transaction")
	}

	cases := []struct {
		name  string
		input ApplyInput
	}{
		{"missing customer", ApplyInput{Type: enums.TransactionTypeTopup, Amount: decimal.NewFromInt(10)}},
		{"invalid type", ApplyInput{CustomerID: customerID, Type: "tip", Amount: decimal.NewFromInt(10)}},
		{"negative amount", ApplyInput{CustomerID: customerID, Type: enums.TransactionTypeTopup, Amount: decimal.NewFromInt(-10)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Apply(context.Background(), &gorm.DB{}, tc.input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestApply_UnknownCustomer(t *testing.T) {
	svc := newLedgerService(t, newStubLedgerRepo())

	_, err := svc.Apply(context.Background(), &gorm.DB{}, ApplyInput{
		CustomerID: uuid.New(),
		Type:       enums.TransactionTypeTopup,
		Amount:     decimal.NewFromInt(10),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestHistory_PagesWithCursor(t *testing.T) {
	repo := newStubLedgerRepo()
	customerID := uuid.New()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	rows := make([]models.Transaction, 0, pagination.DefaultLimit+1)
	for i := 0; i < pagination.DefaultLimit+1; i++ {
		rows = append(rows, models.Transaction{
			ID:         uuid.New(),
			CustomerID: customerID,
			Type:       enums.TransactionTypeTopup,
			Amount:     decimal.NewFromInt(10),
			CreatedAt:  base.Add(-time.Duration(i) * time.Minute),
		})
	}
	repo.listByID = func(ctx context.Context, id uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Transaction, error) {
		if limit != pagination.DefaultLimit+1 {
			t.Fatalf("expected limit buffer of one, got %d", limit)
		}
		return rows, nil
	}
	svc := newLedgerService(t, repo)

	page, err := svc.History(context.Background(), HistoryInput{CustomerID: customerID})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(page.Transactions) != pagination.DefaultLimit {
		t.Fatalf("expected %d rows, got %d", pagination.DefaultLimit, len(page.Transactions))
	}
	if page.NextCursor == "" {
		t.Fatalf("expected a next cursor")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	last := page.Transactions[len(page.Transactions)-1]
	if cursor.ID != last.ID {
		t.Fatalf("cursor must point at the last returned row")
	}
}

func TestHistory_LastPageHasNoCursor(t *testing.T) {
	repo := newStubLedgerRepo()
	customerID := uuid.New()
	repo.listByID = func(ctx context.Context, id uuid.UUID, afterCreatedAt *time.Time, afterID *uuid.UUID, limit int) ([]models.Transaction, error) {
		return []models.Transaction{{ID: uuid.New(), CustomerID: customerID}}, nil
	}
	svc := newLedgerService(t, repo)

	page, err := svc.History(context.Background(), HistoryInput{CustomerID: customerID})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(page.Transactions) != 1 || page.NextCursor != "" {
		t.Fatalf("expected single row and no cursor, got %d rows cursor=%q", len(page.Transactions), page.NextCursor)
	}
}
