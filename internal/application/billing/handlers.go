package billing

import (
	"context"
	"fmt"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/library"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/domain/transport"
)

// HostelAllocationHandler posts hostel fees when an allocation activates
type HostelAllocationHandler struct {
	sync *FeeSyncService
}

// NewHostelAllocationHandler creates a new HostelAllocationHandler
func NewHostelAllocationHandler(sync *FeeSyncService) *HostelAllocationHandler {
	return &HostelAllocationHandler{sync: sync}
}

// EventTypes returns the subscribed event types
func (h *HostelAllocationHandler) EventTypes() []string {
	return []string{hostel.EventTypeAllocationActivated}
}

// Handle processes an allocation activated event
func (h *HostelAllocationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*hostel.AllocationActivatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
	return h.sync.SyncHostelAllocation(ctx, e.AllocationID, e.StudentID, e.BedID)
}

// TransportAllocationHandler posts transport fees when a route is assigned
type TransportAllocationHandler struct {
	sync *FeeSyncService
}

// NewTransportAllocationHandler creates a new TransportAllocationHandler
func NewTransportAllocationHandler(sync *FeeSyncService) *TransportAllocationHandler {
	return &TransportAllocationHandler{sync: sync}
}

// EventTypes returns the subscribed event types
func (h *TransportAllocationHandler) EventTypes() []string {
	return []string{transport.EventTypeAllocationAssigned}
}

// Handle processes an allocation assigned event
func (h *TransportAllocationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*transport.AllocationAssignedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
	return h.sync.SyncTransportAllocation(ctx, e.AllocationID, e.StudentID, e.RouteID, e.PickupPointID)
}

// LibraryFineHandler mirrors fines onto invoices as debit adjustments and
// reverses them when a fine is waived
type LibraryFineHandler struct {
	sync *FeeSyncService
}

// NewLibraryFineHandler creates a new LibraryFineHandler
func NewLibraryFineHandler(sync *FeeSyncService) *LibraryFineHandler {
	return &LibraryFineHandler{sync: sync}
}

// EventTypes returns the subscribed event types
func (h *LibraryFineHandler) EventTypes() []string {
	return []string{library.EventTypeFineIssued, library.EventTypeFineWaived}
}

// Handle processes fine issued and waived events
func (h *LibraryFineHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *library.FineIssuedEvent:
		return h.sync.SyncLibraryFine(ctx, e.FineID, e.StudentID)
	case *library.FineWaivedEvent:
		return h.sync.ReverseLibraryFine(ctx, e.FineID, e.StudentID)
	default:
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
}

// StudentCreatedHandler lazily creates the invoice for a newly admitted
// student so billing starts at admission, not at first fee sync
type StudentCreatedHandler struct {
	sync *FeeSyncService
}

// NewStudentCreatedHandler creates a new StudentCreatedHandler
func NewStudentCreatedHandler(sync *FeeSyncService) *StudentCreatedHandler {
	return &StudentCreatedHandler{sync: sync}
}

// EventTypes returns the subscribed event types
func (h *StudentCreatedHandler) EventTypes() []string {
	return []string{student.EventTypeStudentCreated}
}

// Handle processes a student created event
func (h *StudentCreatedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*student.StudentCreatedEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
	return h.sync.SyncNewStudent(ctx, e.StudentID)
}

// InvoicePaidHandler settles the student's pending library fines once the
// carrying invoice is fully paid
type InvoicePaidHandler struct {
	sync *FeeSyncService
}

// NewInvoicePaidHandler creates a new InvoicePaidHandler
func NewInvoicePaidHandler(sync *FeeSyncService) *InvoicePaidHandler {
	return &InvoicePaidHandler{sync: sync}
}

// EventTypes returns the subscribed event types
func (h *InvoicePaidHandler) EventTypes() []string {
	return []string{billing.EventTypeInvoiceSettled}
}

// Handle processes an invoice settled event
func (h *InvoicePaidHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*billing.InvoiceSettledEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
	return h.sync.SettleStudentFines(ctx, e.StudentID)
}

// Ensure handler interface compliance
var (
	_ shared.EventHandler = (*HostelAllocationHandler)(nil)
	_ shared.EventHandler = (*TransportAllocationHandler)(nil)
	_ shared.EventHandler = (*LibraryFineHandler)(nil)
	_ shared.EventHandler = (*StudentCreatedHandler)(nil)
	_ shared.EventHandler = (*InvoicePaidHandler)(nil)
)
