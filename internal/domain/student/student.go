package student

import (
	"context"
	"fmt"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Category distinguishes day scholars from boarders
type Category string

const (
	CategoryDay      Category = "DAY"
	CategoryBoarding Category = "BOARDING"
)

// IsValid checks category validity
func (c Category) IsValid() bool {
	return c == CategoryDay || c == CategoryBoarding
}

// Status represents student enrollment status
type Status string

const (
	StatusActive      Status = "ACTIVE"
	StatusWithdrawn   Status = "WITHDRAWN"
	StatusAlumni      Status = "ALUMNI"
	StatusSuspended   Status = "SUSPENDED"
	StatusTransferred Status = "TRANSFERRED"
)

// IsValid checks status validity
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusWithdrawn, StatusAlumni, StatusSuspended, StatusTransferred:
		return true
	}
	return false
}

// IsEnrolled reports whether the student still attends the school
func (s Status) IsEnrolled() bool {
	return s == StatusActive || s == StatusSuspended
}

// Student is the student aggregate root
type Student struct {
	shared.BaseAggregateRoot
	AdmissionNumber string     `json:"admission_number"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Gender          string     `json:"gender"`
	Category        Category   `json:"category"`
	Status          Status     `json:"status"`
	ClassID         *uuid.UUID `json:"class_id,omitempty"`
	GuardianName    string     `json:"guardian_name"`
	GuardianPhone   string     `json:"guardian_phone"`
}

// NewStudent creates an active student and records the created event
func NewStudent(admissionNumber, firstName, lastName, gender string, category Category, classID *uuid.UUID) (*Student, error) {
	if admissionNumber == "" {
		return nil, shared.NewValidationError("admission number is required")
	}
	if firstName == "" || lastName == "" {
		return nil, shared.NewValidationError("student name is required")
	}
	if !category.IsValid() {
		return nil, shared.NewValidationError("invalid student category: %s", category)
	}

	s := &Student{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		AdmissionNumber:   admissionNumber,
		FirstName:         firstName,
		LastName:          lastName,
		Gender:            gender,
		Category:          category,
		Status:            StatusActive,
		ClassID:           classID,
	}
	s.AddDomainEvent(NewStudentCreatedEvent(s.GetID(), category))
	return s, nil
}

// FullName returns the display name
func (s *Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// ChangeCategory switches between day and boarding, recording the transition
func (s *Student) ChangeCategory(category Category) error {
	if !category.IsValid() {
		return shared.NewValidationError("invalid student category: %s", category)
	}
	if s.Category == category {
		return nil
	}
	old := s.Category
	s.Category = category
	s.Touch()
	s.AddDomainEvent(NewStudentCategoryChangedEvent(s.GetID(), old, category))
	return nil
}

// ChangeStatus moves the student to a new enrollment status
func (s *Student) ChangeStatus(status Status) error {
	if !status.IsValid() {
		return shared.NewValidationError("invalid student status: %s", status)
	}
	if s.Status == status {
		return nil
	}
	old := s.Status
	s.Status = status
	s.Touch()
	s.AddDomainEvent(NewStudentStatusChangedEvent(s.GetID(), old, status))
	return nil
}

// SetGuardian updates guardian contact details
func (s *Student) SetGuardian(name, phone string) {
	s.GuardianName = name
	s.GuardianPhone = phone
	s.Touch()
}

// StudentFilter narrows student listings
type StudentFilter struct {
	ClassID  *uuid.UUID
	Level    string
	Category *Category
	Status   *Status
	Search   string
	Page     int
	PageSize int
}

// Repository persists students
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Student, error)
	FindByAdmissionNumber(ctx context.Context, admissionNumber string) (*Student, error)
	FindAll(ctx context.Context, filter StudentFilter) ([]Student, int64, error)
	// FindActiveIDs returns ids of enrolled students in scope; nil classID
	// and empty level mean the whole school.
	FindActiveIDs(ctx context.Context, classID *uuid.UUID, level string) ([]uuid.UUID, error)
	Save(ctx context.Context, student *Student) error
}
