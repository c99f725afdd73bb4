package transport

import (
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	EventTypeAllocationAssigned  = "transport.allocation_assigned"
	EventTypeAllocationWithdrawn = "transport.allocation_withdrawn"
	EventTypeFuelRecorded        = "transport.fuel_recorded"
	EventTypeFuelDeleted         = "transport.fuel_deleted"
	EventTypeMaintenanceClosed   = "transport.maintenance_closed"
)

// AllocationAssignedEvent is published when a student gains or changes a route
type AllocationAssignedEvent struct {
	shared.BaseDomainEvent
	AllocationID  uuid.UUID  `json:"allocation_id"`
	StudentID     uuid.UUID  `json:"student_id"`
	RouteID       uuid.UUID  `json:"route_id"`
	PickupPointID *uuid.UUID `json:"pickup_point_id,omitempty"`
}

// NewAllocationAssignedEvent creates an allocation assigned event
func NewAllocationAssignedEvent(allocationID, studentID, routeID uuid.UUID, pickupPointID *uuid.UUID) *AllocationAssignedEvent {
	return &AllocationAssignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationAssigned, "TransportAllocation", allocationID),
		AllocationID:    allocationID,
		StudentID:       studentID,
		RouteID:         routeID,
		PickupPointID:   pickupPointID,
	}
}

// AllocationWithdrawnEvent is published when a student leaves transport
type AllocationWithdrawnEvent struct {
	shared.BaseDomainEvent
	AllocationID uuid.UUID `json:"allocation_id"`
	StudentID    uuid.UUID `json:"student_id"`
}

// NewAllocationWithdrawnEvent creates an allocation withdrawn event
func NewAllocationWithdrawnEvent(allocationID, studentID uuid.UUID) *AllocationWithdrawnEvent {
	return &AllocationWithdrawnEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeAllocationWithdrawn, "TransportAllocation", allocationID),
		AllocationID:    allocationID,
		StudentID:       studentID,
	}
}

// FuelRecordedEvent is published when a fuel record is saved
type FuelRecordedEvent struct {
	shared.BaseDomainEvent
	FuelRecordID uuid.UUID `json:"fuel_record_id"`
	VehicleID    uuid.UUID `json:"vehicle_id"`
}

// NewFuelRecordedEvent creates a fuel recorded event
func NewFuelRecordedEvent(fuelRecordID, vehicleID uuid.UUID) *FuelRecordedEvent {
	return &FuelRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFuelRecorded, "FuelRecord", fuelRecordID),
		FuelRecordID:    fuelRecordID,
		VehicleID:       vehicleID,
	}
}

// FuelDeletedEvent is published when a fuel record is removed
type FuelDeletedEvent struct {
	shared.BaseDomainEvent
	FuelRecordID uuid.UUID `json:"fuel_record_id"`
}

// NewFuelDeletedEvent creates a fuel deleted event
func NewFuelDeletedEvent(fuelRecordID uuid.UUID) *FuelDeletedEvent {
	return &FuelDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFuelDeleted, "FuelRecord", fuelRecordID),
		FuelRecordID:    fuelRecordID,
	}
}

// MaintenanceClosedEvent is published when a service job completes
type MaintenanceClosedEvent struct {
	shared.BaseDomainEvent
	MaintenanceID uuid.UUID `json:"maintenance_id"`
	VehicleID     uuid.UUID `json:"vehicle_id"`
}

// NewMaintenanceClosedEvent creates a maintenance closed event
func NewMaintenanceClosedEvent(maintenanceID, vehicleID uuid.UUID) *MaintenanceClosedEvent {
	return &MaintenanceClosedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeMaintenanceClosed, "VehicleMaintenance", maintenanceID),
		MaintenanceID:   maintenanceID,
		VehicleID:       vehicleID,
	}
}

// AffectedStudent returns the student the allocation belongs to
func (e *AllocationAssignedEvent) AffectedStudent() uuid.UUID { return e.StudentID }

// AffectedStudent returns the student the allocation belonged to
func (e *AllocationWithdrawnEvent) AffectedStudent() uuid.UUID { return e.StudentID }
