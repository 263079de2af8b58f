package ledger

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
	pkgerrors "github.com/parklyapp/parkly-backend/pkg/errors"
	"github.com/parklyapp/parkly-backend/pkg/pagination"
)

// ApplyInput captures a single balance mutation. Amount is always positive;
// Type decides whether it credits or debits the balance.
type ApplyInput struct {
	CustomerID  uuid.UUID
	Type        enums.TransactionType
	Amount      decimal.Decimal
	BookingID   *uuid.UUID
	SessionID   *uuid.UUID
	Description string
}

// HistoryInput selects a page of a customer's transaction history.
type HistoryInput struct {
	CustomerID uuid.UUID
	Params     pagination.Params
}

// HistoryPage is one page of transactions, newest first.
type HistoryPage struct {
	Transactions []models.Transaction
	NextCursor   string
}

// Service applies balance mutations and reads transaction history. Apply is
// transaction-bound: callers pass the *gorm.DB of the enclosing database
// transaction so the ledger entry, the balance update, and the caller's own
// writes commit or roll back together.
type Service interface {
	Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.Transaction, error)
	History(ctx context.Context, input HistoryInput) (*HistoryPage, error)
	Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

// Apply locks the customer row, snapshots the balance, writes the
// transaction, and moves the cached balance. A debit that would push the
// balance below zero fails with an insufficient-balance error and writes
// nothing.
func (s *service) Apply(ctx context.Context, tx *gorm.DB, input ApplyInput) (*models.Transaction, error) {
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger apply requires a database transaction")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid transaction type %q", input.Type))
	}
	if input.Amount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}

	repo := s.repo.WithTx(tx)

	customer, err := repo.FindCustomerForUpdate(ctx, input.CustomerID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock customer balance")
	}

	before := customer.Balance
	var after decimal.Decimal
	if input.Type.IsCredit() {
		after = before.Add(input.Amount)
	} else {
		after = before.Sub(input.Amount)
		if after.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance,
				fmt.Sprintf("balance %s is below required %s", before.StringFixed(2), input.Amount.StringFixed(2)))
		}
	}

	txn := &models.Transaction{
		CustomerID:    input.CustomerID,
		BookingID:     input.BookingID,
		SessionID:     input.SessionID,
		Amount:        input.Amount,
		Type:          input.Type,
		Description:   input.Description,
		BalanceBefore: before,
		BalanceAfter:  after,
	}
	if err := repo.Create(ctx, txn); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create transaction")
	}
	if err := repo.UpdateCustomerBalance(ctx, input.CustomerID, after); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer balance")
	}
	return txn, nil
}

func (s *service) History(ctx context.Context, input HistoryInput) (*HistoryPage, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	cursor, err := pagination.ParseCursor(input.Params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(input.Params.Limit)

	var txns []models.Transaction
	if cursor != nil {
		txns, err = s.repo.ListByCustomerID(ctx, input.CustomerID, &cursor.CreatedAt, &cursor.ID, limit+1)
	} else {
		txns, err = s.repo.ListByCustomerID(ctx, input.CustomerID, nil, nil, limit+1)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list transactions")
	}

	page := &HistoryPage{Transactions: txns}
	if len(txns) > limit {
		page.Transactions = txns[:limit]
		last := page.Transactions[limit-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

func (s *service) Balance(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	if customerID == uuid.Nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}
	customer, err := s.repo.FindCustomer(ctx, customerID)
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return customer.Balance, nil
}
