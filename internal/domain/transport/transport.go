package transport

import (
	"context"
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Vehicle is a school bus or van
type Vehicle struct {
	shared.BaseEntity
	Registration string `json:"registration"`
	Capacity     int    `json:"capacity"`
	Driver       string `json:"driver"`
	IsActive     bool   `json:"is_active"`
}

// NewVehicle creates an active vehicle
func NewVehicle(registration string, capacity int, driver string) (*Vehicle, error) {
	if registration == "" {
		return nil, shared.NewValidationError("vehicle registration is required")
	}
	if capacity <= 0 {
		return nil, shared.NewValidationError("vehicle capacity must be positive, got %d", capacity)
	}
	return &Vehicle{
		BaseEntity:   shared.NewBaseEntity(),
		Registration: registration,
		Capacity:     capacity,
		Driver:       driver,
		IsActive:     true,
	}, nil
}

// Route is a transport route with a base termly cost
type Route struct {
	shared.BaseEntity
	Name      string            `json:"name"`
	VehicleID *uuid.UUID        `json:"vehicle_id,omitempty"`
	BaseCost  valueobject.Money `json:"base_cost"`
	IsActive  bool              `json:"is_active"`
}

// NewRoute creates an active route
func NewRoute(name string, vehicleID *uuid.UUID, baseCost valueobject.Money) (*Route, error) {
	if name == "" {
		return nil, shared.NewValidationError("route name is required")
	}
	if baseCost.IsNegative() {
		return nil, shared.NewValidationError("route cost cannot be negative")
	}
	return &Route{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		VehicleID:  vehicleID,
		BaseCost:   baseCost,
		IsActive:   true,
	}, nil
}

// PickupPoint is a stop on a route; its cost, when set, overrides the route
// base cost for students boarding there.
type PickupPoint struct {
	shared.BaseEntity
	RouteID uuid.UUID          `json:"route_id"`
	Name    string             `json:"name"`
	Cost    *valueobject.Money `json:"cost,omitempty"`
}

// NewPickupPoint creates a pickup point
func NewPickupPoint(routeID uuid.UUID, name string, cost *valueobject.Money) (*PickupPoint, error) {
	if name == "" {
		return nil, shared.NewValidationError("pickup point name is required")
	}
	if cost != nil && cost.IsNegative() {
		return nil, shared.NewValidationError("pickup point cost cannot be negative")
	}
	return &PickupPoint{
		BaseEntity: shared.NewBaseEntity(),
		RouteID:    routeID,
		Name:       name,
		Cost:       cost,
	}, nil
}

// FuelRecord logs a refuelling of a vehicle
type FuelRecord struct {
	shared.BaseEntity
	VehicleID uuid.UUID         `json:"vehicle_id"`
	Liters    float64           `json:"liters"`
	Cost      valueobject.Money `json:"cost"`
	Date      time.Time         `json:"date"`
}

// NewFuelRecord creates a fuel record
func NewFuelRecord(vehicleID uuid.UUID, liters float64, cost valueobject.Money, date time.Time) (*FuelRecord, error) {
	if liters <= 0 {
		return nil, shared.NewValidationError("fuel liters must be positive")
	}
	if cost.IsNegative() {
		return nil, shared.NewValidationError("fuel cost cannot be negative")
	}
	return &FuelRecord{
		BaseEntity: shared.NewBaseEntity(),
		VehicleID:  vehicleID,
		Liters:     liters,
		Cost:       cost,
		Date:       date,
	}, nil
}

// MaintenanceStatus is the lifecycle of a vehicle service job
type MaintenanceStatus string

const (
	MaintenanceStatusScheduled MaintenanceStatus = "SCHEDULED"
	MaintenanceStatusCompleted MaintenanceStatus = "COMPLETED"
)

// VehicleMaintenance logs a service job on a vehicle
type VehicleMaintenance struct {
	shared.BaseEntity
	VehicleID   uuid.UUID         `json:"vehicle_id"`
	Description string            `json:"description"`
	Cost        valueobject.Money `json:"cost"`
	Status      MaintenanceStatus `json:"status"`
	Date        time.Time         `json:"date"`
}

// NewVehicleMaintenance creates a scheduled maintenance record
func NewVehicleMaintenance(vehicleID uuid.UUID, description string, cost valueobject.Money, date time.Time) (*VehicleMaintenance, error) {
	if description == "" {
		return nil, shared.NewValidationError("maintenance description is required")
	}
	if cost.IsNegative() {
		return nil, shared.NewValidationError("maintenance cost cannot be negative")
	}
	return &VehicleMaintenance{
		BaseEntity:  shared.NewBaseEntity(),
		VehicleID:   vehicleID,
		Description: description,
		Cost:        cost,
		Status:      MaintenanceStatusScheduled,
		Date:        date,
	}, nil
}

// Complete marks the job done
func (m *VehicleMaintenance) Complete() {
	m.Status = MaintenanceStatusCompleted
	m.Touch()
}

// Repository persists vehicles, routes, pickup points and running records
type Repository interface {
	FindVehicleByID(ctx context.Context, id uuid.UUID) (*Vehicle, error)
	FindAllVehicles(ctx context.Context) ([]Vehicle, error)
	SaveVehicle(ctx context.Context, v *Vehicle) error

	FindRouteByID(ctx context.Context, id uuid.UUID) (*Route, error)
	FindAllRoutes(ctx context.Context) ([]Route, error)
	SaveRoute(ctx context.Context, r *Route) error

	FindPickupPointByID(ctx context.Context, id uuid.UUID) (*PickupPoint, error)
	FindPickupPointsByRoute(ctx context.Context, routeID uuid.UUID) ([]PickupPoint, error)
	SavePickupPoint(ctx context.Context, p *PickupPoint) error

	FindFuelRecordByID(ctx context.Context, id uuid.UUID) (*FuelRecord, error)
	SaveFuelRecord(ctx context.Context, f *FuelRecord) error
	DeleteFuelRecord(ctx context.Context, id uuid.UUID) error

	FindMaintenanceByID(ctx context.Context, id uuid.UUID) (*VehicleMaintenance, error)
	SaveMaintenance(ctx context.Context, m *VehicleMaintenance) error
}
