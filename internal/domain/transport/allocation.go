package transport

import (
	"context"
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllocationStatus represents the lifecycle of a transport allocation
type AllocationStatus string

const (
	AllocationStatusActive    AllocationStatus = "ACTIVE"
	AllocationStatusSuspended AllocationStatus = "SUSPENDED"
	AllocationStatusWithdrawn AllocationStatus = "WITHDRAWN"
)

// Allocation assigns a student to a route, optionally at a pickup point.
// A student holds at most one allocation.
type Allocation struct {
	shared.BaseAggregateRoot
	StudentID     uuid.UUID        `json:"student_id"`
	RouteID       uuid.UUID        `json:"route_id"`
	PickupPointID *uuid.UUID       `json:"pickup_point_id,omitempty"`
	Status        AllocationStatus `json:"status"`
	DateAssigned  time.Time        `json:"date_assigned"`
}

// NewAllocation creates an active allocation and records the assignment event
func NewAllocation(studentID, routeID uuid.UUID, pickupPointID *uuid.UUID) *Allocation {
	a := &Allocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		RouteID:           routeID,
		PickupPointID:     pickupPointID,
		Status:            AllocationStatusActive,
		DateAssigned:      time.Now(),
	}
	a.AddDomainEvent(NewAllocationAssignedEvent(a.GetID(), studentID, routeID, pickupPointID))
	return a
}

// IsActive reports whether the allocation incurs transport fees
func (a *Allocation) IsActive() bool {
	return a.Status == AllocationStatusActive
}

// Reassign points the allocation at a different route or pickup point
func (a *Allocation) Reassign(routeID uuid.UUID, pickupPointID *uuid.UUID) {
	a.RouteID = routeID
	a.PickupPointID = pickupPointID
	a.Status = AllocationStatusActive
	a.Touch()
	a.AddDomainEvent(NewAllocationAssignedEvent(a.GetID(), a.StudentID, routeID, pickupPointID))
}

// Suspend pauses the allocation without withdrawing the student
func (a *Allocation) Suspend() {
	if a.Status != AllocationStatusActive {
		return
	}
	a.Status = AllocationStatusSuspended
	a.Touch()
}

// Withdraw ends the allocation and records the withdrawal event
func (a *Allocation) Withdraw() {
	if a.Status == AllocationStatusWithdrawn {
		return
	}
	a.Status = AllocationStatusWithdrawn
	a.Touch()
	a.AddDomainEvent(NewAllocationWithdrawnEvent(a.GetID(), a.StudentID))
}

// AllocationRepository persists transport allocations
type AllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) (*Allocation, error)
	FindActiveByRoute(ctx context.Context, routeID uuid.UUID) ([]Allocation, error)
	FindAllActive(ctx context.Context) ([]Allocation, error)
	Save(ctx context.Context, allocation *Allocation) error
}
