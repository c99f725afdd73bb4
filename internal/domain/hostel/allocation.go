package hostel

import (
	"context"
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AllocationStatus represents the lifecycle of a hostel allocation
type AllocationStatus string

const (
	AllocationStatusActive    AllocationStatus = "ACTIVE"
	AllocationStatusCompleted AllocationStatus = "COMPLETED"
	AllocationStatusCancelled AllocationStatus = "CANCELLED"
)

// Allocation links a student to a bed. The bed pointer is nullable: cleanup
// of zombie links severs the pointer while keeping the allocation history.
type Allocation struct {
	shared.BaseAggregateRoot
	StudentID     uuid.UUID        `json:"student_id"`
	BedID         *uuid.UUID       `json:"bed_id,omitempty"`
	Status        AllocationStatus `json:"status"`
	DateAllocated time.Time        `json:"date_allocated"`
	DateReleased  *time.Time       `json:"date_released,omitempty"`
}

// NewAllocation creates an active allocation and records the activation event
func NewAllocation(studentID, bedID uuid.UUID) *Allocation {
	a := &Allocation{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		StudentID:         studentID,
		BedID:             &bedID,
		Status:            AllocationStatusActive,
		DateAllocated:     time.Now(),
	}
	a.AddDomainEvent(NewAllocationActivatedEvent(a.GetID(), studentID, bedID))
	return a
}

// IsActive reports whether the allocation currently holds a bed claim
func (a *Allocation) IsActive() bool {
	return a.Status == AllocationStatusActive
}

// MoveTo points the allocation at a different bed
func (a *Allocation) MoveTo(bedID uuid.UUID) error {
	if !a.IsActive() {
		return shared.NewInvalidStateError("only active allocations can be transferred")
	}
	a.BedID = &bedID
	a.Touch()
	a.AddDomainEvent(NewAllocationActivatedEvent(a.GetID(), a.StudentID, bedID))
	return nil
}

// Complete ends the allocation normally and records the release event
func (a *Allocation) Complete() {
	if !a.IsActive() {
		return
	}
	a.finish(AllocationStatusCompleted)
}

// Cancel ends the allocation as voided
func (a *Allocation) Cancel() {
	if !a.IsActive() {
		return
	}
	a.finish(AllocationStatusCancelled)
}

func (a *Allocation) finish(status AllocationStatus) {
	releasedBed := a.BedID
	now := time.Now()
	a.Status = status
	a.DateReleased = &now
	a.Touch()
	a.AddDomainEvent(NewAllocationReleasedEvent(a.GetID(), a.StudentID, releasedBed))
}

// SeverBedLink drops the bed pointer without ending the allocation. Used by
// the reconciliation sweep when the referenced bed no longer exists.
func (a *Allocation) SeverBedLink() {
	a.BedID = nil
	a.Touch()
}

// AllocationRepository persists hostel allocations
type AllocationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Allocation, error)
	FindActiveByStudent(ctx context.Context, studentID uuid.UUID) (*Allocation, error)
	FindActiveByBed(ctx context.Context, bedID uuid.UUID) (*Allocation, error)
	FindAllActive(ctx context.Context) ([]Allocation, error)
	// FindReleasedWithBed returns finished allocations still holding a bed
	// link. The reconciliation sweep severs these zombies.
	FindReleasedWithBed(ctx context.Context) ([]Allocation, error)
	FindByStudent(ctx context.Context, studentID uuid.UUID) ([]Allocation, error)
	Save(ctx context.Context, allocation *Allocation) error
}
