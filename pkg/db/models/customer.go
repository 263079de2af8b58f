package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the authenticated account holding the cash balance.
// Balance is the authoritative cached value; every mutation goes through
// the ledger, which keeps it equal to the latest transaction's balance_after.
type Customer struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string          `gorm:"column:password_hash;not null"`
	FirstName    string          `gorm:"column:first_name;not null"`
	LastName     string          `gorm:"column:last_name;not null"`
	Phone        string          `gorm:"column:phone;not null"`
	Balance      decimal.Decimal `gorm:"column:balance;type:numeric(10,2);not null;default:0"`
	IsAdmin      bool            `gorm:"column:is_admin;not null;default:false"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
