package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdjustmentType is the sign of a correction to an invoice's total
type AdjustmentType string

const (
	AdjustmentCredit AdjustmentType = "CREDIT" // Reduces what the student owes
	AdjustmentDebit  AdjustmentType = "DEBIT"  // Increases what the student owes
)

// IsValid checks if the type is a valid AdjustmentType
func (t AdjustmentType) IsValid() bool {
	return t == AdjustmentCredit || t == AdjustmentDebit
}

// String returns the string representation of AdjustmentType
func (t AdjustmentType) String() string {
	return string(t)
}

// Adjustment is a signed correction applied to an Invoice's total_amount.
// System-originated adjustments (library fines) carry an Origin reference
// for idempotent upsert and reversal; manual ones carry the approver.
type Adjustment struct {
	ID         uuid.UUID       `json:"id"`
	InvoiceID  uuid.UUID       `json:"invoice_id"`
	Type       AdjustmentType  `json:"type"`
	Amount     decimal.Decimal `json:"amount"`
	Reason     string          `json:"reason"`
	ApprovedBy *uuid.UUID      `json:"approved_by,omitempty"`
	Origin     *OriginRef      `json:"origin,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

func newAdjustment(invoiceID uuid.UUID, adjType AdjustmentType, amount decimal.Decimal, reason string, approvedBy *uuid.UUID, origin *OriginRef) *Adjustment {
	return &Adjustment{
		ID:         uuid.New(),
		InvoiceID:  invoiceID,
		Type:       adjType,
		Amount:     amount,
		Reason:     reason,
		ApprovedBy: approvedBy,
		Origin:     origin,
		CreatedAt:  time.Now(),
	}
}
