package student

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateStudentInput carries the admission details
type CreateStudentInput struct {
	AdmissionNumber string
	FirstName       string
	LastName        string
	Gender          string
	Category        student.Category
	ClassID         *uuid.UUID
	GuardianName    string
	GuardianPhone   string
}

// UpdateStudentInput patches a student; nil fields are left unchanged
type UpdateStudentInput struct {
	FirstName     *string
	LastName      *string
	Category      *student.Category
	Status        *student.Status
	ClassID       *uuid.UUID
	GuardianName  *string
	GuardianPhone *string
}

// StudentService admits and updates students. Category and status changes
// publish events that ripple into billing and hostel allocations.
type StudentService struct {
	students student.Repository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewStudentService creates a new StudentService
func NewStudentService(students student.Repository, eventBus shared.EventPublisher, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{students: students, eventBus: eventBus, logger: logger}
}

func (s *StudentService) publishEvents(ctx context.Context, st *student.Student) {
	events := st.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	st.ClearDomainEvents()
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish student events",
			zap.String("student_id", st.ID.String()),
			zap.Error(err),
		)
	}
}

// Create admits a student
func (s *StudentService) Create(ctx context.Context, input CreateStudentInput) (*student.Student, error) {
	if existing, err := s.students.FindByAdmissionNumber(ctx, input.AdmissionNumber); err == nil {
		return nil, shared.NewConflictError("admission number %s is already taken by %s", input.AdmissionNumber, existing.FullName())
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	st, err := student.NewStudent(input.AdmissionNumber, input.FirstName, input.LastName, input.Gender, input.Category, input.ClassID)
	if err != nil {
		return nil, err
	}
	if input.GuardianName != "" || input.GuardianPhone != "" {
		st.SetGuardian(input.GuardianName, input.GuardianPhone)
	}
	if err := s.students.Save(ctx, st); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, st)
	s.logger.Info("student admitted",
		zap.String("student_id", st.ID.String()),
		zap.String("admission_number", st.AdmissionNumber),
	)
	return st, nil
}

// Update patches a student and publishes any category or status transitions
func (s *StudentService) Update(ctx context.Context, id uuid.UUID, input UpdateStudentInput) (*student.Student, error) {
	st, err := s.students.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if *input.FirstName == "" {
			return nil, shared.NewValidationError("first name cannot be empty")
		}
		st.FirstName = *input.FirstName
	}
	if input.LastName != nil {
		if *input.LastName == "" {
			return nil, shared.NewValidationError("last name cannot be empty")
		}
		st.LastName = *input.LastName
	}
	if input.ClassID != nil {
		st.ClassID = input.ClassID
	}
	if input.GuardianName != nil || input.GuardianPhone != nil {
		name, phone := st.GuardianName, st.GuardianPhone
		if input.GuardianName != nil {
			name = *input.GuardianName
		}
		if input.GuardianPhone != nil {
			phone = *input.GuardianPhone
		}
		st.SetGuardian(name, phone)
	}
	if input.Category != nil {
		if err := st.ChangeCategory(*input.Category); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if err := st.ChangeStatus(*input.Status); err != nil {
			return nil, err
		}
	}

	if err := s.students.Save(ctx, st); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, st)
	return st, nil
}

// Get fetches a student by ID
func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*student.Student, error) {
	return s.students.FindByID(ctx, id)
}

// List returns students matching the filter plus the unpaged total
func (s *StudentService) List(ctx context.Context, filter student.StudentFilter) ([]student.Student, int64, error) {
	return s.students.FindAll(ctx, filter)
}
