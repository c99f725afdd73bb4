package billing

import (
	"context"
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceFilter represents invoice query filter options
type InvoiceFilter struct {
	StudentID      *uuid.UUID
	AcademicYearID *uuid.UUID
	Term           *int
	Status         *InvoiceStatus
	ClassID        *uuid.UUID
	Search         string
	Page           int
	PageSize       int
	OrderBy        string
	OrderDir       string
}

// DashboardStats is the aggregate read model for the finance dashboard
type DashboardStats struct {
	TotalInvoiced    decimal.Decimal `json:"total_invoiced"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	DailyCollection  decimal.Decimal `json:"daily_collection"`
	InvoiceCount     int64           `json:"invoice_count"`
}

// InvoiceRepository persists the Invoice aggregate. Save writes the parent
// and all children in one transaction; loading always hydrates the children
// so derived fields can be recomputed.
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	// FindByIDForUpdate locks the invoice row for the duration of the
	// surrounding transaction. Only meaningful inside InTx.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByStudentAndPeriod(ctx context.Context, studentID, academicYearID uuid.UUID, term int) (*Invoice, error)
	// FindByStudentAndPeriodForUpdate locks the invoice row for the duration
	// of the surrounding transaction. Only meaningful inside InTx.
	FindByStudentAndPeriodForUpdate(ctx context.Context, studentID, academicYearID uuid.UUID, term int) (*Invoice, error)
	// FindMostRecentPrior returns the newest invoice of the student other
	// than excludeID, or ErrNotFound. Used for arrears carry-forward.
	FindMostRecentPrior(ctx context.Context, studentID, excludeID uuid.UUID) (*Invoice, error)
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, int64, error)
	FindIDs(ctx context.Context, filter InvoiceFilter) ([]uuid.UUID, error)
	FindPaymentInvoice(ctx context.Context, paymentID uuid.UUID) (*Invoice, error)
	FindAdjustmentInvoice(ctx context.Context, adjustmentID uuid.UUID) (*Invoice, error)
	ExistsForStudentAndPeriod(ctx context.Context, studentID, academicYearID uuid.UUID, term int) (bool, error)
	// ExistsPaymentReference reports whether any payment with the given
	// electronic (method, reference) pair exists across all invoices.
	ExistsPaymentReference(ctx context.Context, method PaymentMethod, reference string) (bool, error)
	Save(ctx context.Context, invoice *Invoice) error
	Delete(ctx context.Context, id uuid.UUID) error
	DashboardStats(ctx context.Context, academicYearID *uuid.UUID, term *int, day time.Time) (*DashboardStats, error)
	// InTx runs fn with a repository bound to one database transaction
	InTx(ctx context.Context, fn func(repo InvoiceRepository) error) error
}

// FeeCatalogFilter narrows catalog lookups
type FeeCatalogFilter struct {
	AcademicYearID *uuid.UUID
	Term           *int
	ClassID        *uuid.UUID
	Kind           *FeeKind
	ActiveOnly     bool
	Search         string
	Page           int
	PageSize       int
}

// FeeCatalogRepository persists fee definitions
type FeeCatalogRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*FeeCatalogEntry, error)
	// FindApplicable returns active entries for the period whose class scope
	// is nil or matches classID.
	FindApplicable(ctx context.Context, academicYearID uuid.UUID, term int, classID *uuid.UUID) ([]FeeCatalogEntry, error)
	// FindForPeriod returns active entries for the period across all classes
	FindForPeriod(ctx context.Context, academicYearID uuid.UUID, term int) ([]FeeCatalogEntry, error)
	// FindByKind returns the first active entry of the given kind for the
	// period, or ErrNotFound. Resolves the hostel fee structurally.
	FindByKind(ctx context.Context, academicYearID uuid.UUID, term int, kind FeeKind) (*FeeCatalogEntry, error)
	FindAll(ctx context.Context, filter FeeCatalogFilter) ([]FeeCatalogEntry, int64, error)
	Save(ctx context.Context, entry *FeeCatalogEntry) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	Category *ExpenseCategory
	Status   *ExpenseStatus
	Search   string
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}

// ExpenseRepository persists institutional expenses
type ExpenseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)
	FindByOrigin(ctx context.Context, origin OriginRef) (*Expense, error)
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, int64, error)
	Save(ctx context.Context, expense *Expense) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOrigin(ctx context.Context, origin OriginRef) error
}

// SyncFailure records a degraded fee synchronization so the reconciliation
// sweep can find and repair the affected invoice later.
type SyncFailure struct {
	shared.BaseEntity
	Module     string     `json:"module"`
	SourceID   uuid.UUID  `json:"source_id"`
	StudentID  *uuid.UUID `json:"student_id,omitempty"`
	EventType  string     `json:"event_type"`
	Reason     string     `json:"reason"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// NewSyncFailure creates an unresolved sync failure record
func NewSyncFailure(module string, sourceID uuid.UUID, studentID *uuid.UUID, eventType, reason string) *SyncFailure {
	return &SyncFailure{
		BaseEntity: shared.NewBaseEntity(),
		Module:     module,
		SourceID:   sourceID,
		StudentID:  studentID,
		EventType:  eventType,
		Reason:     reason,
	}
}

// Resolve marks the failure repaired
func (f *SyncFailure) Resolve() {
	now := time.Now()
	f.ResolvedAt = &now
	f.Touch()
}

// SyncFailureRepository persists degraded-sync records
type SyncFailureRepository interface {
	Save(ctx context.Context, failure *SyncFailure) error
	FindUnresolved(ctx context.Context) ([]SyncFailure, error)
	CountUnresolved(ctx context.Context) (int64, error)
}
