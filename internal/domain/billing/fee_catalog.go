package billing

import (
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FeeKind classifies a catalog entry so synchronizers can resolve it
// structurally instead of by name matching
type FeeKind string

const (
	FeeKindGeneral   FeeKind = "GENERAL"   // Tuition, lunch, activity fees
	FeeKindBoarding  FeeKind = "BOARDING"  // Hostel fee, only for boarding students
	FeeKindTransport FeeKind = "TRANSPORT" // Route fees priced per allocation
)

// IsValid checks if the kind is a valid FeeKind
func (k FeeKind) IsValid() bool {
	switch k {
	case FeeKindGeneral, FeeKindBoarding, FeeKindTransport:
		return true
	}
	return false
}

// String returns the string representation of FeeKind
func (k FeeKind) String() string {
	return string(k)
}

// FeeCatalogEntry is a priced fee definition for an academic period. A nil
// ClassID means the fee applies to every class. Entries are snapshotted into
// InvoiceItems at generation time; editing an entry never retroactively
// alters existing items.
type FeeCatalogEntry struct {
	shared.BaseEntity
	Name           string          `json:"name"`
	Amount         decimal.Decimal `json:"amount"`
	AcademicYearID uuid.UUID       `json:"academic_year_id"`
	Term           int             `json:"term"`
	ClassID        *uuid.UUID      `json:"class_id,omitempty"`
	Kind           FeeKind         `json:"kind"`
	Description    string          `json:"description,omitempty"`
	IsActive       bool            `json:"is_active"`
}

// NewFeeCatalogEntry creates a fee definition
func NewFeeCatalogEntry(name string, amount valueobject.Money, academicYearID uuid.UUID, term int, classID *uuid.UUID, kind FeeKind) (*FeeCatalogEntry, error) {
	if name == "" {
		return nil, shared.NewValidationError("Fee name cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewValidationError("Fee amount cannot be negative")
	}
	if academicYearID == uuid.Nil {
		return nil, shared.NewValidationError("Academic year ID cannot be empty")
	}
	if term < 1 || term > 3 {
		return nil, shared.NewValidationError("Term must be 1, 2 or 3, got %d", term)
	}
	if !kind.IsValid() {
		return nil, shared.NewValidationError("Fee kind %q is not valid", kind)
	}

	return &FeeCatalogEntry{
		BaseEntity:     shared.NewBaseEntity(),
		Name:           name,
		Amount:         amount.Amount(),
		AcademicYearID: academicYearID,
		Term:           term,
		ClassID:        classID,
		Kind:           kind,
		IsActive:       true,
	}, nil
}

// AppliesToClass reports whether the entry applies to the given class. A nil
// class scope applies universally.
func (f *FeeCatalogEntry) AppliesToClass(classID *uuid.UUID) bool {
	if f.ClassID == nil {
		return true
	}
	return classID != nil && *f.ClassID == *classID
}

// GetAmountMoney returns the fee amount as Money
func (f *FeeCatalogEntry) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(f.Amount)
}

// Deactivate removes the entry from future generation without touching
// items that already snapshot it
func (f *FeeCatalogEntry) Deactivate() {
	f.IsActive = false
	f.UpdatedAt = time.Now()
}
