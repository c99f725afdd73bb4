package billing

import (
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid   InvoiceStatus = "UNPAID"   // No money received against a balance
	InvoiceStatusPartial  InvoiceStatus = "PARTIAL"  // Some money received, balance remains
	InvoiceStatusPaid     InvoiceStatus = "PAID"     // Balance cleared exactly
	InvoiceStatusOverpaid InvoiceStatus = "OVERPAID" // More received than owed
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid, InvoiceStatusOverpaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// IsSettled returns true if no balance is outstanding
func (s InvoiceStatus) IsSettled() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusOverpaid
}

// Invoice is the per-student, per-period billing aggregate root. It owns
// Items, Payments and Adjustments; total_amount, paid_amount, balance and
// status are derived from the children and never set directly by callers.
type Invoice struct {
	shared.BaseAggregateRoot
	StudentID      uuid.UUID       `json:"student_id"`
	AcademicYearID uuid.UUID       `json:"academic_year_id"`
	Term           int             `json:"term"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Balance        decimal.Decimal `json:"balance"`
	Status         InvoiceStatus   `json:"status"`
	DateGenerated  time.Time       `json:"date_generated"`
	DueDate        *time.Time      `json:"due_date"`
	IsFinalized    bool            `json:"is_finalized"`

	Items       []InvoiceItem `json:"items"`
	Payments    []Payment     `json:"payments"`
	Adjustments []Adjustment  `json:"adjustments"`
}

// NewInvoice creates an empty invoice for a student and academic period
func NewInvoice(studentID, academicYearID uuid.UUID, term int) (*Invoice, error) {
	if studentID == uuid.Nil {
		return nil, shared.NewValidationError("Student ID cannot be empty")
	}
	if academicYearID == uuid.Nil {
		return nil, shared.NewValidationError("Academic year ID cannot be empty")
	}
	if term < 1 || term > 3 {
		return nil, shared.NewValidationError("Term must be 1, 2 or 3, got %d", term)
	}

	inv := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		AcademicYearID:    academicYearID,
		Term:              term,
		TotalAmount:       decimal.Zero,
		PaidAmount:        decimal.Zero,
		Balance:           decimal.Zero,
		Status:            InvoiceStatusUnpaid,
		DateGenerated:     time.Now(),
	}
	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// RecalculatePricing recomputes total_amount from Items plus DEBIT
// Adjustments minus CREDIT Adjustments, then updates the balance.
func (inv *Invoice) RecalculatePricing() {
	total := decimal.Zero
	for i := range inv.Items {
		total = total.Add(inv.Items[i].Amount)
	}
	for i := range inv.Adjustments {
		switch inv.Adjustments[i].Type {
		case AdjustmentDebit:
			total = total.Add(inv.Adjustments[i].Amount)
		case AdjustmentCredit:
			total = total.Sub(inv.Adjustments[i].Amount)
		}
	}
	inv.TotalAmount = total
	inv.updateBalance()
}

// RecalculateCollections recomputes paid_amount from Payments, then updates
// the balance.
func (inv *Invoice) RecalculateCollections() {
	paid := decimal.Zero
	for i := range inv.Payments {
		paid = paid.Add(inv.Payments[i].Amount)
	}
	inv.PaidAmount = paid
	inv.updateBalance()
}

// Recalculate recomputes everything from the children. Used by the
// reconciliation sweep.
func (inv *Invoice) Recalculate() {
	inv.RecalculateCollections()
	inv.RecalculatePricing()
}

// updateBalance derives balance and status. This is the single writer of
// Status; a zero-amount invoice with no payments stays UNPAID.
func (inv *Invoice) updateBalance() {
	inv.Balance = inv.TotalAmount.Sub(inv.PaidAmount)
	previous := inv.Status

	switch {
	case inv.Balance.IsNegative():
		inv.Status = InvoiceStatusOverpaid
	case inv.Balance.IsZero() && inv.PaidAmount.IsPositive():
		inv.Status = InvoiceStatusPaid
	case inv.PaidAmount.IsPositive():
		inv.Status = InvoiceStatusPartial
	default:
		inv.Status = InvoiceStatusUnpaid
	}

	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()

	if inv.Status.IsSettled() && !previous.IsSettled() {
		inv.AddDomainEvent(NewInvoiceSettledEvent(inv))
	}
}

// AddItem appends a priced line and recomputes pricing
func (inv *Invoice) AddItem(description string, amount valueobject.Money, feeEntryID *uuid.UUID, origin *OriginRef) (*InvoiceItem, error) {
	if description == "" {
		return nil, shared.NewValidationError("Item description cannot be empty")
	}

	item := newInvoiceItem(inv.ID, description, amount.Amount(), feeEntryID, origin)
	inv.Items = append(inv.Items, *item)
	inv.RecalculatePricing()
	return &inv.Items[len(inv.Items)-1], nil
}

// FindItemByOrigin returns the item carrying the given origin reference, or nil
func (inv *Invoice) FindItemByOrigin(origin OriginRef) *InvoiceItem {
	for i := range inv.Items {
		if inv.Items[i].Origin != nil && *inv.Items[i].Origin == origin {
			return &inv.Items[i]
		}
	}
	return nil
}

// HasItemForCatalogEntry reports whether a catalog entry was already applied
func (inv *Invoice) HasItemForCatalogEntry(feeEntryID uuid.UUID) bool {
	for i := range inv.Items {
		if inv.Items[i].FeeCatalogEntryID != nil && *inv.Items[i].FeeCatalogEntryID == feeEntryID {
			return true
		}
	}
	return false
}

// HasItemWithDescription reports whether an item with the exact description
// exists. Legacy guard for catalog-less lines created before origin refs.
func (inv *Invoice) HasItemWithDescription(description string) bool {
	for i := range inv.Items {
		if inv.Items[i].Description == description {
			return true
		}
	}
	return false
}

// UpsertItemByOrigin inserts or updates in place the single item identified
// by the origin reference. Replaying the same event any number of times
// leaves exactly one item with the latest description and amount. Returns
// true if the invoice changed.
func (inv *Invoice) UpsertItemByOrigin(origin OriginRef, description string, amount valueobject.Money, feeEntryID *uuid.UUID) (bool, error) {
	if origin.IsZero() {
		return false, shared.NewValidationError("Origin reference is required for idempotent upsert")
	}
	if description == "" {
		return false, shared.NewValidationError("Item description cannot be empty")
	}

	existing := inv.FindItemByOrigin(origin)
	if existing == nil {
		if _, err := inv.AddItem(description, amount, feeEntryID, &origin); err != nil {
			return false, err
		}
		return true, nil
	}
	if existing.Description == description && existing.Amount.Equal(amount.Amount()) {
		return false, nil
	}
	existing.Description = description
	existing.Amount = amount.Amount()
	existing.FeeCatalogEntryID = feeEntryID
	inv.RecalculatePricing()
	return true, nil
}

// RemoveItem deletes a line by id and recomputes pricing
func (inv *Invoice) RemoveItem(itemID uuid.UUID) error {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			inv.Items = append(inv.Items[:i], inv.Items[i+1:]...)
			inv.RecalculatePricing()
			return nil
		}
	}
	return shared.NewNotFoundError("Item %s not found on invoice %s", itemID, inv.ID)
}

// AddPayment records money received and recomputes collections. Duplicate
// electronic references are rejected at the repository layer where all
// invoices are visible.
func (inv *Invoice) AddPayment(amount valueobject.Money, method PaymentMethod, reference string, receivedBy *uuid.UUID, notes string) (*Payment, error) {
	if !method.IsValid() {
		return nil, shared.NewValidationError("Payment method %q is not valid", method)
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Payment amount must be positive")
	}
	if method.RequiresReference() && reference == "" {
		return nil, shared.NewValidationError("Payment method %s requires a reference number", method)
	}

	p := newPayment(inv.ID, amount.Amount(), method, reference, receivedBy, notes)
	inv.Payments = append(inv.Payments, *p)
	inv.RecalculateCollections()
	inv.AddDomainEvent(NewPaymentRecordedEvent(inv, &inv.Payments[len(inv.Payments)-1]))
	return &inv.Payments[len(inv.Payments)-1], nil
}

// RemovePayment deletes a payment by id and recomputes collections
func (inv *Invoice) RemovePayment(paymentID uuid.UUID) error {
	for i := range inv.Payments {
		if inv.Payments[i].ID == paymentID {
			inv.Payments = append(inv.Payments[:i], inv.Payments[i+1:]...)
			inv.RecalculateCollections()
			return nil
		}
	}
	return shared.NewNotFoundError("Payment %s not found on invoice %s", paymentID, inv.ID)
}

// AddAdjustment records a signed correction and recomputes pricing
func (inv *Invoice) AddAdjustment(adjType AdjustmentType, amount valueobject.Money, reason string, approvedBy *uuid.UUID, origin *OriginRef) (*Adjustment, error) {
	if !adjType.IsValid() {
		return nil, shared.NewValidationError("Adjustment type %q is not valid", adjType)
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Adjustment amount must be positive")
	}
	if reason == "" {
		return nil, shared.NewValidationError("Adjustment reason cannot be empty")
	}

	adj := newAdjustment(inv.ID, adjType, amount.Amount(), reason, approvedBy, origin)
	inv.Adjustments = append(inv.Adjustments, *adj)
	inv.RecalculatePricing()
	return &inv.Adjustments[len(inv.Adjustments)-1], nil
}

// FindAdjustmentByOrigin returns the adjustment carrying the origin
// reference, or nil
func (inv *Invoice) FindAdjustmentByOrigin(origin OriginRef) *Adjustment {
	for i := range inv.Adjustments {
		if inv.Adjustments[i].Origin != nil && *inv.Adjustments[i].Origin == origin {
			return &inv.Adjustments[i]
		}
	}
	return nil
}

// UpsertAdjustmentByOrigin inserts or updates in place the single adjustment
// identified by the origin reference. Returns true if the invoice changed.
func (inv *Invoice) UpsertAdjustmentByOrigin(origin OriginRef, adjType AdjustmentType, amount valueobject.Money, reason string) (bool, error) {
	if origin.IsZero() {
		return false, shared.NewValidationError("Origin reference is required for idempotent upsert")
	}

	existing := inv.FindAdjustmentByOrigin(origin)
	if existing == nil {
		if _, err := inv.AddAdjustment(adjType, amount, reason, nil, &origin); err != nil {
			return false, err
		}
		return true, nil
	}
	if existing.Type == adjType && existing.Amount.Equal(amount.Amount()) && existing.Reason == reason {
		return false, nil
	}
	existing.Type = adjType
	existing.Amount = amount.Amount()
	existing.Reason = reason
	inv.RecalculatePricing()
	return true, nil
}

// RemoveAdjustment deletes an adjustment by id and recomputes pricing
func (inv *Invoice) RemoveAdjustment(adjustmentID uuid.UUID) error {
	for i := range inv.Adjustments {
		if inv.Adjustments[i].ID == adjustmentID {
			inv.Adjustments = append(inv.Adjustments[:i], inv.Adjustments[i+1:]...)
			inv.RecalculatePricing()
			return nil
		}
	}
	return shared.NewNotFoundError("Adjustment %s not found on invoice %s", adjustmentID, inv.ID)
}

// RemoveAdjustmentByOrigin reverses the adjustment synchronized from a
// deleted source record. Missing adjustment is not an error: reversal is
// idempotent.
func (inv *Invoice) RemoveAdjustmentByOrigin(origin OriginRef) bool {
	for i := range inv.Adjustments {
		if inv.Adjustments[i].Origin != nil && *inv.Adjustments[i].Origin == origin {
			inv.Adjustments = append(inv.Adjustments[:i], inv.Adjustments[i+1:]...)
			inv.RecalculatePricing()
			return true
		}
	}
	return false
}

// Finalize locks the invoice against further item generation
func (inv *Invoice) Finalize() {
	inv.IsFinalized = true
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// SetDueDate updates the payment due date
func (inv *Invoice) SetDueDate(dueDate *time.Time) {
	inv.DueDate = dueDate
	inv.UpdatedAt = time.Now()
	inv.IncrementVersion()
}

// GetTotalAmountMoney returns total amount as Money
func (inv *Invoice) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.TotalAmount)
}

// GetPaidAmountMoney returns paid amount as Money
func (inv *Invoice) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.PaidAmount)
}

// GetBalanceMoney returns the balance as Money
func (inv *Invoice) GetBalanceMoney() valueobject.Money {
	return valueobject.NewMoneyKES(inv.Balance)
}

// IsSettled returns true if no balance is outstanding
func (inv *Invoice) IsSettled() bool {
	return inv.Status.IsSettled()
}
