package library

import (
	"context"

	"github.com/shulesync/backend/internal/domain/library"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FineService issues and waives library fines. The events it publishes
// drive the matching invoice adjustments.
type FineService struct {
	fines    library.Repository
	students student.Repository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewFineService creates a new FineService
func NewFineService(
	fines library.Repository,
	students student.Repository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *FineService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FineService{fines: fines, students: students, eventBus: eventBus, logger: logger}
}

func (s *FineService) publishEvents(ctx context.Context, fine *library.Fine) {
	events := fine.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	fine.ClearDomainEvents()
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish fine events",
			zap.String("fine_id", fine.ID.String()),
			zap.Error(err),
		)
	}
}

// Issue charges a student for a lost or overdue book
func (s *FineService) Issue(ctx context.Context, studentID uuid.UUID, bookTitle, reason string, amount valueobject.Money) (*library.Fine, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		return nil, err
	}
	fine, err := library.NewFine(studentID, bookTitle, reason, amount)
	if err != nil {
		return nil, err
	}
	if err := s.fines.Save(ctx, fine); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, fine)
	s.logger.Info("library fine issued",
		zap.String("fine_id", fine.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("amount", fine.Amount.String()),
	)
	return fine, nil
}

// Waive cancels a pending fine; the mirrored invoice adjustment is removed
func (s *FineService) Waive(ctx context.Context, fineID uuid.UUID) (*library.Fine, error) {
	fine, err := s.fines.FindByID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	if err := fine.Waive(); err != nil {
		return nil, err
	}
	if err := s.fines.Save(ctx, fine); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, fine)
	return fine, nil
}

// Get fetches a fine by ID
func (s *FineService) Get(ctx context.Context, id uuid.UUID) (*library.Fine, error) {
	return s.fines.FindByID(ctx, id)
}

// ListByStudent returns a student's fines, most recent first
func (s *FineService) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]library.Fine, error) {
	return s.fines.FindByStudent(ctx, studentID)
}
