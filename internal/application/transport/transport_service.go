package transport

import (
	"context"
	"errors"
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/domain/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TransportService manages the vehicle fleet, routes, pickup points and
// student route assignments. Each student holds at most one allocation;
// assigning again reroutes the existing one.
type TransportService struct {
	transports  transport.Repository
	allocations transport.AllocationRepository
	students    student.Repository
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewTransportService creates a new TransportService
func NewTransportService(
	transports transport.Repository,
	allocations transport.AllocationRepository,
	students student.Repository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *TransportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransportService{
		transports:  transports,
		allocations: allocations,
		students:    students,
		eventBus:    eventBus,
		logger:      logger,
	}
}

func (s *TransportService) publishEvents(ctx context.Context, allocation *transport.Allocation) {
	events := allocation.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	allocation.ClearDomainEvents()
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish transport allocation events",
			zap.String("allocation_id", allocation.ID.String()),
			zap.Error(err),
		)
	}
}

// CreateVehicle registers a vehicle
func (s *TransportService) CreateVehicle(ctx context.Context, registration string, capacity int, driver string) (*transport.Vehicle, error) {
	v, err := transport.NewVehicle(registration, capacity, driver)
	if err != nil {
		return nil, err
	}
	if err := s.transports.SaveVehicle(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListVehicles returns all vehicles
func (s *TransportService) ListVehicles(ctx context.Context) ([]transport.Vehicle, error) {
	return s.transports.FindAllVehicles(ctx)
}

// CreateRoute registers a route with its base termly cost
func (s *TransportService) CreateRoute(ctx context.Context, name string, vehicleID *uuid.UUID, baseCost valueobject.Money) (*transport.Route, error) {
	if vehicleID != nil {
		if _, err := s.transports.FindVehicleByID(ctx, *vehicleID); err != nil {
			return nil, err
		}
	}
	r, err := transport.NewRoute(name, vehicleID, baseCost)
	if err != nil {
		return nil, err
	}
	if err := s.transports.SaveRoute(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRoutes returns all routes
func (s *TransportService) ListRoutes(ctx context.Context) ([]transport.Route, error) {
	return s.transports.FindAllRoutes(ctx)
}

// CreatePickupPoint adds a pickup point, optionally overriding the route cost
func (s *TransportService) CreatePickupPoint(ctx context.Context, routeID uuid.UUID, name string, cost *valueobject.Money) (*transport.PickupPoint, error) {
	if _, err := s.transports.FindRouteByID(ctx, routeID); err != nil {
		return nil, err
	}
	p, err := transport.NewPickupPoint(routeID, name, cost)
	if err != nil {
		return nil, err
	}
	if err := s.transports.SavePickupPoint(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Assign puts a student on a route. An existing allocation is rerouted
// rather than duplicated, so the per-student invariant holds.
func (s *TransportService) Assign(ctx context.Context, studentID, routeID uuid.UUID, pickupPointID *uuid.UUID) (*transport.Allocation, error) {
	st, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !st.Status.IsEnrolled() {
		return nil, shared.NewInvalidStateError("student %s is %s and cannot use transport", st.AdmissionNumber, st.Status)
	}
	if _, err := s.transports.FindRouteByID(ctx, routeID); err != nil {
		return nil, err
	}
	if pickupPointID != nil {
		point, err := s.transports.FindPickupPointByID(ctx, *pickupPointID)
		if err != nil {
			return nil, err
		}
		if point.RouteID != routeID {
			return nil, shared.NewValidationError("pickup point %s does not belong to route %s", point.Name, routeID)
		}
	}

	allocation, err := s.allocations.FindByStudent(ctx, studentID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		allocation = transport.NewAllocation(studentID, routeID, pickupPointID)
	} else {
		allocation.Reassign(routeID, pickupPointID)
	}
	if err := s.allocations.Save(ctx, allocation); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation)
	s.logger.Info("transport assigned",
		zap.String("student_id", studentID.String()),
		zap.String("route_id", routeID.String()),
	)
	return allocation, nil
}

// Withdraw takes a student off transport
func (s *TransportService) Withdraw(ctx context.Context, allocationID uuid.UUID) (*transport.Allocation, error) {
	allocation, err := s.allocations.FindByID(ctx, allocationID)
	if err != nil {
		return nil, err
	}
	if allocation.Status == transport.AllocationStatusWithdrawn {
		return nil, shared.NewInvalidStateError("allocation %s is already withdrawn", allocationID)
	}
	allocation.Withdraw()
	if err := s.allocations.Save(ctx, allocation); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation)
	return allocation, nil
}

// ListActiveAllocations lists all active route assignments
func (s *TransportService) ListActiveAllocations(ctx context.Context) ([]transport.Allocation, error) {
	return s.allocations.FindAllActive(ctx)
}

// RecordFuel logs a fuel purchase and announces it to the expense ledger
func (s *TransportService) RecordFuel(ctx context.Context, vehicleID uuid.UUID, liters float64, cost valueobject.Money, date time.Time) (*transport.FuelRecord, error) {
	if _, err := s.transports.FindVehicleByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}
	record, err := transport.NewFuelRecord(vehicleID, liters, cost, date)
	if err != nil {
		return nil, err
	}
	if err := s.transports.SaveFuelRecord(ctx, record); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, transport.NewFuelRecordedEvent(record.ID, vehicleID)); err != nil {
		s.logger.Error("failed to publish fuel event", zap.String("fuel_record_id", record.ID.String()), zap.Error(err))
	}
	return record, nil
}

// DeleteFuel removes a fuel record; the mirrored expense follows it out
func (s *TransportService) DeleteFuel(ctx context.Context, id uuid.UUID) error {
	if err := s.transports.DeleteFuelRecord(ctx, id); err != nil {
		return err
	}
	if err := s.eventBus.Publish(ctx, transport.NewFuelDeletedEvent(id)); err != nil {
		s.logger.Error("failed to publish fuel deleted event", zap.String("fuel_record_id", id.String()), zap.Error(err))
	}
	return nil
}

// RecordMaintenance opens a vehicle maintenance job
func (s *TransportService) RecordMaintenance(ctx context.Context, vehicleID uuid.UUID, description string, cost valueobject.Money, date time.Time) (*transport.VehicleMaintenance, error) {
	if _, err := s.transports.FindVehicleByID(ctx, vehicleID); err != nil {
		return nil, err
	}
	if date.IsZero() {
		date = time.Now()
	}
	m, err := transport.NewVehicleMaintenance(vehicleID, description, cost, date)
	if err != nil {
		return nil, err
	}
	if err := s.transports.SaveMaintenance(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

// CompleteMaintenance closes the job; only then does it hit the expense ledger
func (s *TransportService) CompleteMaintenance(ctx context.Context, id uuid.UUID) (*transport.VehicleMaintenance, error) {
	m, err := s.transports.FindMaintenanceByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m.Status == transport.MaintenanceStatusCompleted {
		return nil, shared.NewInvalidStateError("maintenance %s is already completed", m.ID)
	}
	m.Complete()
	if err := s.transports.SaveMaintenance(ctx, m); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, transport.NewMaintenanceClosedEvent(m.ID, m.VehicleID)); err != nil {
		s.logger.Error("failed to publish maintenance closed event", zap.String("maintenance_id", m.ID.String()), zap.Error(err))
	}
	return m, nil
}
