package academics

import (
	"context"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AcademicYear represents one school year, e.g. "2026"
type AcademicYear struct {
	shared.BaseEntity
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// NewAcademicYear creates an academic year
func NewAcademicYear(name string, isActive bool) (*AcademicYear, error) {
	if name == "" {
		return nil, shared.NewValidationError("academic year name is required")
	}
	return &AcademicYear{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		IsActive:   isActive,
	}, nil
}

// Term is one of the three terms within an academic year
type Term struct {
	shared.BaseEntity
	AcademicYearID uuid.UUID `json:"academic_year_id"`
	Number         int       `json:"number"`
	IsCurrent      bool      `json:"is_current"`
}

// NewTerm creates a term
func NewTerm(academicYearID uuid.UUID, number int, isCurrent bool) (*Term, error) {
	if number < 1 || number > 3 {
		return nil, shared.NewValidationError("term must be between 1 and 3, got %d", number)
	}
	return &Term{
		BaseEntity:     shared.NewBaseEntity(),
		AcademicYearID: academicYearID,
		Number:         number,
		IsCurrent:      isCurrent,
	}, nil
}

// Class is a taught class, e.g. "Form 1 East", within a level
type Class struct {
	shared.BaseEntity
	Name  string `json:"name"`
	Level string `json:"level"`
}

// NewClass creates a class
func NewClass(name, level string) (*Class, error) {
	if name == "" {
		return nil, shared.NewValidationError("class name is required")
	}
	return &Class{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Level:      level,
	}, nil
}

// Period is the resolved billing period: the active academic year plus the
// current term number. Services resolve it once per operation and thread it
// through instead of re-reading ambient state mid-flight.
type Period struct {
	AcademicYearID uuid.UUID
	AcademicYear   string
	Term           int
}

// PeriodResolver resolves the current billing period
type PeriodResolver interface {
	CurrentPeriod(ctx context.Context) (Period, error)
}

// AcademicYearRepository persists academic years
type AcademicYearRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AcademicYear, error)
	FindActive(ctx context.Context) (*AcademicYear, error)
	FindAll(ctx context.Context) ([]AcademicYear, error)
	Save(ctx context.Context, year *AcademicYear) error
}

// TermRepository persists terms
type TermRepository interface {
	FindCurrent(ctx context.Context, academicYearID uuid.UUID) (*Term, error)
	FindByYear(ctx context.Context, academicYearID uuid.UUID) ([]Term, error)
	Save(ctx context.Context, term *Term) error
}

// ClassRepository persists classes
type ClassRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Class, error)
	FindByLevel(ctx context.Context, level string) ([]Class, error)
	FindAll(ctx context.Context) ([]Class, error)
	Save(ctx context.Context, class *Class) error
}
