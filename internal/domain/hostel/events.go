package hostel

import (
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypeAllocationActivated = "hostel.allocation_activated"
	EventTypeAllocationReleased  = "hostel.allocation_released"
	EventTypeMaintenanceRecorded = "hostel.maintenance_recorded"
	EventTypeAssetRecorded       = "hostel.asset_recorded"
)

// AllocationActivatedEvent is published when a student gains (or changes) a bed
type AllocationActivatedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID `json:"allocation_id"`
	StudentID    uuid.UUID `json:"student_id"`
	BedID        uuid.UUID `json:"bed_id"`
}

// NewAllocationActivatedEvent creates an allocation activated event
func NewAllocationActivatedEvent(allocationID, studentID, bedID uuid.UUID) *AllocationActivatedEvent {
	return &AllocationActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationActivated, "HostelAllocation", allocationID),
		AllocationID:    allocationID,
		StudentID:       studentID,
		BedID:           bedID,
	}
}

// AllocationReleasedEvent is published when an allocation ends
type AllocationReleasedEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID  `json:"allocation_id"`
	StudentID    uuid.UUID  `json:"student_id"`
	BedID        *uuid.UUID `json:"bed_id,omitempty"`
}

// NewAllocationReleasedEvent creates an allocation released event
func NewAllocationReleasedEvent(allocationID, studentID uuid.UUID, bedID *uuid.UUID) *AllocationReleasedEvent {
	return &AllocationReleasedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationReleased, "HostelAllocation", allocationID),
		AllocationID:    allocationID,
		StudentID:       studentID,
		BedID:           bedID,
	}
}

// MaintenanceRecordedEvent is published when hostel upkeep is logged
type MaintenanceRecordedEvent struct {
	shared.BaseDomainEvent
	MaintenanceID uuid.UUID `json:"maintenance_id"`
	HostelID      uuid.UUID `json:"hostel_id"`
}

// NewMaintenanceRecordedEvent creates a maintenance recorded event
func NewMaintenanceRecordedEvent(maintenanceID, hostelID uuid.UUID) *MaintenanceRecordedEvent {
	return &MaintenanceRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaintenanceRecorded, "HostelMaintenance", maintenanceID),
		MaintenanceID:   maintenanceID,
		HostelID:        hostelID,
	}
}

// AssetRecordedEvent is published when a hostel asset is registered
type AssetRecordedEvent struct {
	shared.BaseDomainEvent
	AssetID  uuid.UUID `json:"asset_id"`
	HostelID uuid.UUID `json:"hostel_id"`
}

// NewAssetRecordedEvent creates an asset recorded event
func NewAssetRecordedEvent(assetID, hostelID uuid.UUID) *AssetRecordedEvent {
	return &AssetRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAssetRecorded, "HostelAsset", assetID),
		AssetID:         assetID,
		HostelID:        hostelID,
	}
}

// AffectedStudent returns the student the allocation belongs to
func (e *AllocationActivatedEvent) AffectedStudent() uuid.UUID { return e.StudentID }

// AffectedStudent returns the student the allocation belonged to
func (e *AllocationReleasedEvent) AffectedStudent() uuid.UUID { return e.StudentID }
