package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// Transaction is an immutable balance ledger entry. Amount is always
// positive; Type carries the sign. BalanceBefore/BalanceAfter snapshot the
// customer balance atomically with the mutation and are never rewritten.
type Transaction struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	BookingID     *uuid.UUID            `gorm:"column:booking_id;type:uuid"`
	SessionID     *uuid.UUID            `gorm:"column:session_id;type:uuid"`
	Amount        decimal.Decimal       `gorm:"column:amount;type:numeric(10,2);not null"`
	Type          enums.TransactionType `gorm:"column:type;type:transaction_type;not null;index"`
	Description   string                `gorm:"column:description;type:text"`
	BalanceBefore decimal.Decimal       `gorm:"column:balance_before;type:numeric(10,2);not null"`
	BalanceAfter  decimal.Decimal       `gorm:"column:balance_after;type:numeric(10,2);not null"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime"`
}
