package hostel

import (
	"context"
	"fmt"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"go.uber.org/zap"
)

// StudentChangeHandler frees beds when a student stops qualifying for one:
// switching to day scholar or leaving the school completes the active
// allocation. The invoice for the current period is left as billed.
type StudentChangeHandler struct {
	allocations *AllocationService
	logger      *zap.Logger
}

// NewStudentChangeHandler creates a new StudentChangeHandler
func NewStudentChangeHandler(allocations *AllocationService, logger *zap.Logger) *StudentChangeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentChangeHandler{allocations: allocations, logger: logger}
}

// EventTypes returns the subscribed event types
func (h *StudentChangeHandler) EventTypes() []string {
	return []string{
		student.EventTypeStudentCategoryChanged,
		student.EventTypeStudentStatusChanged,
	}
}

// Handle releases the student's bed when the change disqualifies them
func (h *StudentChangeHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *student.StudentCategoryChangedEvent:
		if e.NewCategory == student.CategoryBoarding {
			return nil
		}
		h.logger.Info("releasing bed after category change",
			zap.String("student_id", e.StudentID.String()),
			zap.String("new_category", string(e.NewCategory)),
		)
		return h.allocations.ReleaseForStudent(ctx, e.StudentID)
	case *student.StudentStatusChangedEvent:
		if e.NewStatus.IsEnrolled() {
			return nil
		}
		h.logger.Info("releasing bed after status change",
			zap.String("student_id", e.StudentID.String()),
			zap.String("new_status", string(e.NewStatus)),
		)
		return h.allocations.ReleaseForStudent(ctx, e.StudentID)
	default:
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
}

// Ensure StudentChangeHandler implements EventHandler
var _ shared.EventHandler = (*StudentChangeHandler)(nil)
