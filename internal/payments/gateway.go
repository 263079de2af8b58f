package payments

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/parklyapp/parkly-backend/pkg/enums"
)

// ChargeRequest describes a charge sent to the payment gateway.
type ChargeRequest struct {
	Amount        decimal.Decimal
	Method        enums.PaymentMethod
	CustomerEmail string
	Description   string
}

// ChargeResult is the gateway's answer. Reference is the external
// transaction id recorded on the Payment row.
type ChargeResult struct {
	Reference string
	Approved  bool
	Message   string
}

// Gateway processes external (non-balance) payments.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error)
}

const referenceLength = 12

var referenceCharset = []byte("ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// MockGateway approves every well-formed charge. It stands in for a real
// acquirer in dev and test environments.
type MockGateway struct{}

// NewMockGateway builds the simulated gateway.
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (g *MockGateway) Charge(ctx context.Context, req ChargeRequest) (*ChargeResult, error) {
	if !req.Amount.IsPositive() {
		return &ChargeResult{Approved: false, Message: "amount must be positive"}, nil
	}

	ref, err := newReference()
	if err != nil {
		return nil, fmt.Errorf("generate gateway reference: %w", err)
	}
	return &ChargeResult{Reference: ref, Approved: true, Message: "approved"}, nil
}

func newReference() (string, error) {
	buf := make([]byte, referenceLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = referenceCharset[int(b)%len(referenceCharset)]
	}
	return "TXN" + string(buf), nil
}
