package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// TransactionDTO is the ledger entry payload returned to clients.
type TransactionDTO struct {
	ID            uuid.UUID             `json:"id"`
	CustomerID    uuid.UUID             `json:"customer_id"`
	BookingID     *uuid.UUID            `json:"booking_id,omitempty"`
	SessionID     *uuid.UUID            `json:"session_id,omitempty"`
	Amount        decimal.Decimal       `json:"amount"`
	Type          enums.TransactionType `json:"type"`
	Description   string                `json:"description"`
	BalanceBefore decimal.Decimal       `json:"balance_before"`
	BalanceAfter  decimal.Decimal       `json:"balance_after"`
	CreatedAt     time.Time             `json:"created_at"`
}

// FromModel converts a ledger row into its API payload.
func FromModel(t *models.Transaction) *TransactionDTO {
	if t == nil {
		return nil
	}
	return &TransactionDTO{
		ID:            t.ID,
		CustomerID:    t.CustomerID,
		BookingID:     t.BookingID,
		SessionID:     t.SessionID,
		Amount:        t.Amount,
		Type:          t.Type,
		Description:   t.Description,
		BalanceBefore: t.BalanceBefore,
		BalanceAfter:  t.BalanceAfter,
		CreatedAt:     t.CreatedAt,
	}
}

// FromModels converts a transaction listing.
func FromModels(rows []models.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
