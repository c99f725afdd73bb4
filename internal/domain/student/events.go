package student

import (
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypeStudentCreated         = "student.created"
	EventTypeStudentCategoryChanged = "student.category_changed"
	EventTypeStudentStatusChanged   = "student.status_changed"
)

// StudentCreatedEvent is published when a student is admitted
type StudentCreatedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID `json:"student_id"`
	Category  Category  `json:"category"`
}

// NewStudentCreatedEvent creates a student created event
func NewStudentCreatedEvent(studentID uuid.UUID, category Category) *StudentCreatedEvent {
	return &StudentCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentCreated, "Student", studentID),
		StudentID:       studentID,
		Category:        category,
	}
}

// StudentCategoryChangedEvent is published on day/boarding transitions
type StudentCategoryChangedEvent struct {
	shared.BaseDomainEvent
	StudentID   uuid.UUID `json:"student_id"`
	OldCategory Category  `json:"old_category"`
	NewCategory Category  `json:"new_category"`
}

// NewStudentCategoryChangedEvent creates a category changed event
func NewStudentCategoryChangedEvent(studentID uuid.UUID, oldCategory, newCategory Category) *StudentCategoryChangedEvent {
	return &StudentCategoryChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentCategoryChanged, "Student", studentID),
		StudentID:       studentID,
		OldCategory:     oldCategory,
		NewCategory:     newCategory,
	}
}

// StudentStatusChangedEvent is published on enrollment status transitions
type StudentStatusChangedEvent struct {
	shared.BaseDomainEvent
	StudentID uuid.UUID `json:"student_id"`
	OldStatus Status    `json:"old_status"`
	NewStatus Status    `json:"new_status"`
}

// NewStudentStatusChangedEvent creates a status changed event
func NewStudentStatusChangedEvent(studentID uuid.UUID, oldStatus, newStatus Status) *StudentStatusChangedEvent {
	return &StudentStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStudentStatusChanged, "Student", studentID),
		StudentID:       studentID,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// AffectedStudent returns the admitted student
func (e *StudentCreatedEvent) AffectedStudent() uuid.UUID { return e.StudentID }

// AffectedStudent returns the student whose category changed
func (e *StudentCategoryChangedEvent) AffectedStudent() uuid.UUID { return e.StudentID }

// AffectedStudent returns the student whose status changed
func (e *StudentStatusChangedEvent) AffectedStudent() uuid.UUID { return e.StudentID }
