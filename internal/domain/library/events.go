package library

import (
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

const (
	EventTypeFineIssued = "library.fine_issued"
	EventTypeFineWaived = "library.fine_waived"
)

// FineIssuedEvent is published when a fine is charged to a student
type FineIssuedEvent struct {
	shared.BaseDomainEvent
	FineID    uuid.UUID         `json:"fine_id"`
	StudentID uuid.UUID         `json:"student_id"`
	Amount    valueobject.Money `json:"amount"`
}

// NewFineIssuedEvent creates a fine issued event
func NewFineIssuedEvent(fineID, studentID uuid.UUID, amount valueobject.Money) *FineIssuedEvent {
	return &FineIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFineIssued, "LibraryFine", fineID),
		FineID:          fineID,
		StudentID:       studentID,
		Amount:          amount,
	}
}

// FineWaivedEvent is published when a pending fine is cancelled
type FineWaivedEvent struct {
	shared.BaseDomainEvent
	FineID    uuid.UUID `json:"fine_id"`
	StudentID uuid.UUID `json:"student_id"`
}

// NewFineWaivedEvent creates a fine waived event
func NewFineWaivedEvent(fineID, studentID uuid.UUID) *FineWaivedEvent {
	return &FineWaivedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFineWaived, "LibraryFine", fineID),
		FineID:          fineID,
		StudentID:       studentID,
	}
}

// AffectedStudent returns the student the fine is charged to
func (e *FineIssuedEvent) AffectedStudent() uuid.UUID { return e.StudentID }

// AffectedStudent returns the student the fine was charged to
func (e *FineWaivedEvent) AffectedStudent() uuid.UUID { return e.StudentID }
