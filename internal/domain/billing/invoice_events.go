package billing

import (
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event type names for the billing aggregate
const (
	EventTypeInvoiceCreated  = "InvoiceCreated"
	EventTypeInvoiceSettled  = "InvoiceSettled"
	EventTypePaymentRecorded = "PaymentRecorded"
)

// InvoiceCreatedEvent is raised when a new invoice is created
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID      uuid.UUID `json:"invoice_id"`
	StudentID      uuid.UUID `json:"student_id"`
	AcademicYearID uuid.UUID `json:"academic_year_id"`
	Term           int       `json:"term"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return EventTypeInvoiceCreated
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceCreated, "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		StudentID:       inv.StudentID,
		AcademicYearID:  inv.AcademicYearID,
		Term:            inv.Term,
	}
}

// InvoiceSettledEvent is raised when an invoice transitions into PAID or
// OVERPAID. Downstream modules (library fines) react to it.
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID   uuid.UUID       `json:"invoice_id"`
	StudentID   uuid.UUID       `json:"student_id"`
	Status      InvoiceStatus   `json:"status"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	PaidAmount  decimal.Decimal `json:"paid_amount"`
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return EventTypeInvoiceSettled
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(inv *Invoice) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceSettled, "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		StudentID:       inv.StudentID,
		Status:          inv.Status,
		TotalAmount:     inv.TotalAmount,
		PaidAmount:      inv.PaidAmount,
	}
}

// PaymentRecordedEvent is raised when money is received against an invoice
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	InvoiceID uuid.UUID       `json:"invoice_id"`
	PaymentID uuid.UUID       `json:"payment_id"`
	StudentID uuid.UUID       `json:"student_id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    PaymentMethod   `json:"method"`
	Reference string          `json:"reference,omitempty"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return EventTypePaymentRecorded
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(inv *Invoice, p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRecorded, "Invoice", inv.ID),
		InvoiceID:       inv.ID,
		PaymentID:       p.ID,
		StudentID:       inv.StudentID,
		Amount:          p.Amount,
		Method:          p.Method,
		Reference:       p.Reference,
	}
}

// AffectedStudent returns the billed student
func (e *InvoiceCreatedEvent) AffectedStudent() uuid.UUID { return e.StudentID }

// AffectedStudent returns the billed student
func (e *InvoiceSettledEvent) AffectedStudent() uuid.UUID { return e.StudentID }

// AffectedStudent returns the paying student
func (e *PaymentRecordedEvent) AffectedStudent() uuid.UUID { return e.StudentID }
