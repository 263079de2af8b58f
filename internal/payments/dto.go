package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/db/models"
	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// PaymentDTO is the payment payload returned to clients.
type PaymentDTO struct {
	ID               uuid.UUID           `json:"id"`
	SessionID        *uuid.UUID          `json:"session_id,omitempty"`
	BookingID        *uuid.UUID          `json:"booking_id,omitempty"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	Amount           decimal.Decimal     `json:"amount"`
	Method           enums.PaymentMethod `json:"method"`
	Status           enums.PaymentStatus `json:"status"`
	GatewayReference *string             `json:"gateway_reference,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// FromModel converts a payment row into its API payload.
func FromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:               p.ID,
		SessionID:        p.SessionID,
		BookingID:        p.BookingID,
		CustomerID:       p.CustomerID,
		Amount:           p.Amount,
		Method:           p.Method,
		Status:           p.Status,
		GatewayReference: p.GatewayReference,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// FromModels converts a payment listing.
func FromModels(rows []models.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
