package enums

import "fmt"

// TransactionType classifies a balance ledger entry and carries its sign:
// topup and refund credit the balance, the rest debit it.
type TransactionType string

const (
	TransactionTypeTopup         TransactionType = "topup"
	TransactionTypeBookingCharge TransactionType = "booking_charge"
	TransactionTypeRefund        TransactionType = "refund"
	TransactionTypePenalty       TransactionType = "penalty"
	TransactionTypeParkingCharge TransactionType = "parking_charge"
)

var validTransactionTypes = []TransactionType{
	TransactionTypeTopup,
	TransactionTypeBookingCharge,
	TransactionTypeRefund,
	TransactionTypePenalty,
	TransactionTypeParkingCharge,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value is known.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsCredit reports whether the type adds to the balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionTypeTopup || t == TransactionTypeRefund
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
