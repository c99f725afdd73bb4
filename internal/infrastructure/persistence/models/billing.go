package models

import (
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// toOriginRef rebuilds an optional billing.OriginRef from its two nullable
// columns. Rows with NULL module or source carry no origin.
func toOriginRef(module *string, sourceID *uuid.UUID) *billing.OriginRef {
	if module == nil || sourceID == nil {
		return nil
	}
	return &billing.OriginRef{
		Module:   billing.OriginModule(*module),
		SourceID: *sourceID,
	}
}

// fromOriginRef flattens an optional billing.OriginRef into two nullable
// column values
func fromOriginRef(ref *billing.OriginRef) (*string, *uuid.UUID) {
	if ref == nil {
		return nil, nil
	}
	module := string(ref.Module)
	sourceID := ref.SourceID
	return &module, &sourceID
}

// InvoiceModel is the persistence model for the Invoice aggregate root
type InvoiceModel struct {
	AggregateModel
	StudentID      uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_student_period,priority:1"`
	AcademicYearID uuid.UUID             `gorm:"type:uuid;not null;uniqueIndex:idx_invoice_student_period,priority:2"`
	Term           int                   `gorm:"not null;uniqueIndex:idx_invoice_student_period,priority:3"`
	TotalAmount    decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	PaidAmount     decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Balance        decimal.Decimal       `gorm:"type:decimal(12,2);not null;index"`
	Status         billing.InvoiceStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	DateGenerated  time.Time             `gorm:"not null"`
	DueDate        *time.Time            `gorm:"index"`
	IsFinalized    bool                  `gorm:"not null;default:false"`

	Items       []InvoiceItemModel `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments    []PaymentModel     `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Adjustments []AdjustmentModel  `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice aggregate
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		AcademicYearID:    m.AcademicYearID,
		Term:              m.Term,
		TotalAmount:       m.TotalAmount,
		PaidAmount:        m.PaidAmount,
		Balance:           m.Balance,
		Status:            m.Status,
		DateGenerated:     m.DateGenerated,
		DueDate:           m.DueDate,
		IsFinalized:       m.IsFinalized,
	}
	inv.Items = make([]billing.InvoiceItem, len(m.Items))
	for i := range m.Items {
		inv.Items[i] = *m.Items[i].ToDomain()
	}
	inv.Payments = make([]billing.Payment, len(m.Payments))
	for i := range m.Payments {
		inv.Payments[i] = *m.Payments[i].ToDomain()
	}
	inv.Adjustments = make([]billing.Adjustment, len(m.Adjustments))
	for i := range m.Adjustments {
		inv.Adjustments[i] = *m.Adjustments[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice aggregate
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.StudentID = inv.StudentID
	m.AcademicYearID = inv.AcademicYearID
	m.Term = inv.Term
	m.TotalAmount = inv.TotalAmount
	m.PaidAmount = inv.PaidAmount
	m.Balance = inv.Balance
	m.Status = inv.Status
	m.DateGenerated = inv.DateGenerated
	m.DueDate = inv.DueDate
	m.IsFinalized = inv.IsFinalized

	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(&inv.Items[i])
	}
	m.Payments = make([]PaymentModel, len(inv.Payments))
	for i := range inv.Payments {
		m.Payments[i].FromDomain(&inv.Payments[i])
	}
	m.Adjustments = make([]AdjustmentModel, len(inv.Adjustments))
	for i := range inv.Adjustments {
		m.Adjustments[i].FromDomain(&inv.Adjustments[i])
	}
}

// InvoiceItemModel is the persistence model for invoice line items
type InvoiceItemModel struct {
	ID                uuid.UUID       `gorm:"type:uuid;primary_key"`
	InvoiceID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_item_origin,priority:1"`
	Description       string          `gorm:"type:varchar(255);not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FeeCatalogEntryID *uuid.UUID      `gorm:"type:uuid;index"`
	OriginModule      *string         `gorm:"type:varchar(30);uniqueIndex:idx_item_origin,priority:2"`
	OriginSourceID    *uuid.UUID      `gorm:"type:uuid;uniqueIndex:idx_item_origin,priority:3"`
	CreatedAt         time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		ID:                m.ID,
		InvoiceID:         m.InvoiceID,
		Description:       m.Description,
		Amount:            m.Amount,
		FeeCatalogEntryID: m.FeeCatalogEntryID,
		Origin:            toOriginRef(m.OriginModule, m.OriginSourceID),
		CreatedAt:         m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain InvoiceItem
func (m *InvoiceItemModel) FromDomain(item *billing.InvoiceItem) {
	m.ID = item.ID
	m.InvoiceID = item.InvoiceID
	m.Description = item.Description
	m.Amount = item.Amount
	m.FeeCatalogEntryID = item.FeeCatalogEntryID
	m.OriginModule, m.OriginSourceID = fromOriginRef(item.Origin)
	m.CreatedAt = item.CreatedAt
}

// PaymentModel is the persistence model for payments
type PaymentModel struct {
	ID         uuid.UUID             `gorm:"type:uuid;primary_key"`
	InvoiceID  uuid.UUID             `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal       `gorm:"type:decimal(12,2);not null"`
	Method     billing.PaymentMethod `gorm:"type:varchar(10);not null;index:idx_payment_method_reference,priority:1"`
	Reference  string                `gorm:"type:varchar(100);index:idx_payment_method_reference,priority:2"`
	ReceivedBy *uuid.UUID            `gorm:"type:uuid"`
	ReceivedAt time.Time             `gorm:"not null"`
	Notes      string                `gorm:"type:text"`
	CreatedAt  time.Time             `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *billing.Payment {
	return &billing.Payment{
		ID:         m.ID,
		InvoiceID:  m.InvoiceID,
		Amount:     m.Amount,
		Method:     m.Method,
		Reference:  m.Reference,
		ReceivedBy: m.ReceivedBy,
		ReceivedAt: m.ReceivedAt,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Payment
func (m *PaymentModel) FromDomain(p *billing.Payment) {
	m.ID = p.ID
	m.InvoiceID = p.InvoiceID
	m.Amount = p.Amount
	m.Method = p.Method
	m.Reference = p.Reference
	m.ReceivedBy = p.ReceivedBy
	m.ReceivedAt = p.ReceivedAt
	m.Notes = p.Notes
	m.CreatedAt = p.CreatedAt
}

// AdjustmentModel is the persistence model for adjustments
type AdjustmentModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	InvoiceID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_adjustment_origin,priority:1"`
	Type           billing.AdjustmentType `gorm:"type:varchar(10);not null"`
	Amount         decimal.Decimal        `gorm:"type:decimal(12,2);not null"`
	Reason         string                 `gorm:"type:varchar(255);not null"`
	ApprovedBy     *uuid.UUID             `gorm:"type:uuid"`
	OriginModule   *string                `gorm:"type:varchar(30);uniqueIndex:idx_adjustment_origin,priority:2"`
	OriginSourceID *uuid.UUID             `gorm:"type:uuid;uniqueIndex:idx_adjustment_origin,priority:3"`
	CreatedAt      time.Time              `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AdjustmentModel) TableName() string {
	return "adjustments"
}

// ToDomain converts the persistence model to a domain Adjustment
func (m *AdjustmentModel) ToDomain() *billing.Adjustment {
	return &billing.Adjustment{
		ID:         m.ID,
		InvoiceID:  m.InvoiceID,
		Type:       m.Type,
		Amount:     m.Amount,
		Reason:     m.Reason,
		ApprovedBy: m.ApprovedBy,
		Origin:     toOriginRef(m.OriginModule, m.OriginSourceID),
		CreatedAt:  m.CreatedAt,
	}
}

// FromDomain populates the persistence model from a domain Adjustment
func (m *AdjustmentModel) FromDomain(a *billing.Adjustment) {
	m.ID = a.ID
	m.InvoiceID = a.InvoiceID
	m.Type = a.Type
	m.Amount = a.Amount
	m.Reason = a.Reason
	m.ApprovedBy = a.ApprovedBy
	m.OriginModule, m.OriginSourceID = fromOriginRef(a.Origin)
	m.CreatedAt = a.CreatedAt
}

// FeeCatalogEntryModel is the persistence model for fee definitions
type FeeCatalogEntryModel struct {
	BaseModel
	Name           string          `gorm:"type:varchar(100);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AcademicYearID uuid.UUID       `gorm:"type:uuid;not null;index:idx_fee_period,priority:1"`
	Term           int             `gorm:"not null;index:idx_fee_period,priority:2"`
	ClassID        *uuid.UUID      `gorm:"type:uuid;index"`
	Kind           billing.FeeKind `gorm:"type:varchar(10);not null;default:'GENERAL';index"`
	Description    string          `gorm:"type:text"`
	IsActive       bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (FeeCatalogEntryModel) TableName() string {
	return "fee_catalog_entries"
}

// ToDomain converts the persistence model to a domain FeeCatalogEntry
func (m *FeeCatalogEntryModel) ToDomain() *billing.FeeCatalogEntry {
	return &billing.FeeCatalogEntry{
		BaseEntity:     m.BaseModel.ToDomain(),
		Name:           m.Name,
		Amount:         m.Amount,
		AcademicYearID: m.AcademicYearID,
		Term:           m.Term,
		ClassID:        m.ClassID,
		Kind:           m.Kind,
		Description:    m.Description,
		IsActive:       m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain FeeCatalogEntry
func (m *FeeCatalogEntryModel) FromDomain(f *billing.FeeCatalogEntry) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.Name = f.Name
	m.Amount = f.Amount
	m.AcademicYearID = f.AcademicYearID
	m.Term = f.Term
	m.ClassID = f.ClassID
	m.Kind = f.Kind
	m.Description = f.Description
	m.IsActive = f.IsActive
}

// ExpenseModel is the persistence model for institutional expenses
type ExpenseModel struct {
	BaseModel
	Category       billing.ExpenseCategory `gorm:"type:varchar(20);not null;index"`
	Status         billing.ExpenseStatus   `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	Amount         decimal.Decimal         `gorm:"type:decimal(12,2);not null"`
	Description    string                  `gorm:"type:varchar(255);not null"`
	PaidTo         string                  `gorm:"type:varchar(100)"`
	DateOccurred   time.Time               `gorm:"not null;index"`
	ApprovedBy     *uuid.UUID              `gorm:"type:uuid"`
	OriginModule   *string                 `gorm:"type:varchar(30);uniqueIndex:idx_expense_origin,priority:1"`
	OriginSourceID *uuid.UUID              `gorm:"type:uuid;uniqueIndex:idx_expense_origin,priority:2"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *billing.Expense {
	return &billing.Expense{
		BaseEntity:   m.BaseModel.ToDomain(),
		Category:     m.Category,
		Status:       m.Status,
		Amount:       m.Amount,
		Description:  m.Description,
		PaidTo:       m.PaidTo,
		DateOccurred: m.DateOccurred,
		ApprovedBy:   m.ApprovedBy,
		Origin:       toOriginRef(m.OriginModule, m.OriginSourceID),
	}
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *billing.Expense) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Category = e.Category
	m.Status = e.Status
	m.Amount = e.Amount
	m.Description = e.Description
	m.PaidTo = e.PaidTo
	m.DateOccurred = e.DateOccurred
	m.ApprovedBy = e.ApprovedBy
	m.OriginModule, m.OriginSourceID = fromOriginRef(e.Origin)
}

// SyncFailureModel is the persistence model for degraded-sync records
type SyncFailureModel struct {
	BaseModel
	Module     string     `gorm:"type:varchar(30);not null;index"`
	SourceID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	StudentID  *uuid.UUID `gorm:"type:uuid;index"`
	EventType  string     `gorm:"type:varchar(60);not null"`
	Reason     string     `gorm:"type:text;not null"`
	ResolvedAt *time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (SyncFailureModel) TableName() string {
	return "sync_failures"
}

// ToDomain converts the persistence model to a domain SyncFailure
func (m *SyncFailureModel) ToDomain() *billing.SyncFailure {
	return &billing.SyncFailure{
		BaseEntity: m.BaseModel.ToDomain(),
		Module:     m.Module,
		SourceID:   m.SourceID,
		StudentID:  m.StudentID,
		EventType:  m.EventType,
		Reason:     m.Reason,
		ResolvedAt: m.ResolvedAt,
	}
}

// FromDomain populates the persistence model from a domain SyncFailure
func (m *SyncFailureModel) FromDomain(f *billing.SyncFailure) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.Module = f.Module
	m.SourceID = f.SourceID
	m.StudentID = f.StudentID
	m.EventType = f.EventType
	m.Reason = f.Reason
	m.ResolvedAt = f.ResolvedAt
}
