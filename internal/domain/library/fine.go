package library

import (
	"context"
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// FineStatus is the lifecycle of a library fine
type FineStatus string

const (
	FineStatusPending FineStatus = "PENDING"
	FineStatusPaid    FineStatus = "PAID"
	FineStatusWaived  FineStatus = "WAIVED"
)

// Fine charges a student for a lost or overdue book. Issuing a fine posts a
// matching debit adjustment on the student's invoice; waiving removes it.
type Fine struct {
	shared.BaseAggregateRoot
	StudentID  uuid.UUID         `json:"student_id"`
	BookTitle  string            `json:"book_title"`
	Reason     string            `json:"reason"`
	Amount     valueobject.Money `json:"amount"`
	Status     FineStatus        `json:"status"`
	DateIssued time.Time         `json:"date_issued"`
}

// NewFine issues a pending fine and records the issued event
func NewFine(studentID uuid.UUID, bookTitle, reason string, amount valueobject.Money) (*Fine, error) {
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("fine amount must be positive")
	}
	if reason == "" {
		return nil, shared.NewValidationError("fine reason is required")
	}
	f := &Fine{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		BookTitle:         bookTitle,
		Reason:            reason,
		Amount:            amount,
		Status:            FineStatusPending,
		DateIssued:        time.Now(),
	}
	f.AddDomainEvent(NewFineIssuedEvent(f.GetID(), studentID, amount))
	return f, nil
}

// Waive cancels a pending fine and records the waived event
func (f *Fine) Waive() error {
	if f.Status != FineStatusPending {
		return shared.NewInvalidStateError("only pending fines can be waived")
	}
	f.Status = FineStatusWaived
	f.Touch()
	f.AddDomainEvent(NewFineWaivedEvent(f.GetID(), f.StudentID))
	return nil
}

// MarkPaid settles the fine once the carrying invoice is settled
func (f *Fine) MarkPaid() {
	if f.Status != FineStatusPending {
		return
	}
	f.Status = FineStatusPaid
	f.Touch()
}

// Repository persists library fines
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Fine, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]Fine, error)
	FindPendingByStudent(ctx context.Context, studentID uuid.UUID) ([]Fine, error)
	Save(ctx context.Context, fine *Fine) error
}
