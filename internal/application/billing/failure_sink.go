package billing

import (
	"context"
	"strings"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SyncFailureRecorder persists degraded synchronizations reported by the
// event bus so the reconciliation sweep can repair the affected invoices.
// Recording must never fail the triggering write; persistence errors are
// only logged.
type SyncFailureRecorder struct {
	failures billing.SyncFailureRepository
	logger   *zap.Logger
}

// NewSyncFailureRecorder creates a new SyncFailureRecorder
func NewSyncFailureRecorder(failures billing.SyncFailureRepository, logger *zap.Logger) *SyncFailureRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncFailureRecorder{failures: failures, logger: logger}
}

// RecordFailure stores one handler failure keyed by the source event
func (r *SyncFailureRecorder) RecordFailure(ctx context.Context, event shared.DomainEvent, handlerErr error) {
	failure := billing.NewSyncFailure(
		moduleFromEventType(event.EventType()),
		event.AggregateID(),
		studentIDFromEvent(event),
		event.EventType(),
		handlerErr.Error(),
	)
	if err := r.failures.Save(ctx, failure); err != nil {
		r.logger.Error("failed to record sync failure",
			zap.String("event_type", event.EventType()),
			zap.String("aggregate_id", event.AggregateID().String()),
			zap.Error(err),
		)
	}
}

// moduleFromEventType derives the source module from the event type prefix,
// e.g. "hostel.allocation_activated" -> "hostel"
func moduleFromEventType(eventType string) string {
	if i := strings.IndexByte(eventType, '.'); i > 0 {
		return eventType[:i]
	}
	return "billing"
}

// studentEvent is implemented by events that carry the affected student
type studentEvent interface {
	AffectedStudent() uuid.UUID
}

func studentIDFromEvent(event shared.DomainEvent) *uuid.UUID {
	e, ok := event.(studentEvent)
	if !ok {
		return nil
	}
	id := e.AffectedStudent()
	return &id
}
