package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentMethod represents how money was received
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodBank   PaymentMethod = "BANK"
	PaymentMethodMpesa  PaymentMethod = "MPESA"
	PaymentMethodCheque PaymentMethod = "CHEQUE"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodMpesa, PaymentMethodCheque:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// RequiresReference returns true for electronic methods whose external
// reference doubles as the duplicate-detection key
func (m PaymentMethod) RequiresReference() bool {
	return m == PaymentMethodMpesa || m == PaymentMethodBank
}

// Payment is an immutable-intent record of money received against an
// Invoice. It is never edited; corrections are made by deleting it (which
// recomputes the invoice) or by an Adjustment.
type Payment struct {
	ID         uuid.UUID       `json:"id"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     PaymentMethod   `json:"method"`
	Reference  string          `json:"reference,omitempty"`
	ReceivedBy *uuid.UUID      `json:"received_by,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
	Notes      string          `json:"notes,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newPayment(invoiceID uuid.UUID, amount decimal.Decimal, method PaymentMethod, reference string, receivedBy *uuid.UUID, notes string) *Payment {
	now := time.Now()
	return &Payment{
		ID:         uuid.New(),
		InvoiceID:  invoiceID,
		Amount:     amount,
		Method:     method,
		Reference:  reference,
		ReceivedBy: receivedBy,
		ReceivedAt: now,
		Notes:      notes,
		CreatedAt:  now,
	}
}
