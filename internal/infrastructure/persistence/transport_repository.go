package persistence

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/transport"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTransportRepository implements transport.Repository using GORM
type GormTransportRepository struct {
	db *gorm.DB
}

// NewGormTransportRepository creates a new GormTransportRepository
func NewGormTransportRepository(db *gorm.DB) *GormTransportRepository {
	return &GormTransportRepository{db: db}
}

// FindVehicleByID finds a vehicle by ID
func (r *GormTransportRepository) FindVehicleByID(ctx context.Context, id uuid.UUID) (*transport.Vehicle, error) {
	var model models.VehicleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllVehicles lists all vehicles
func (r *GormTransportRepository) FindAllVehicles(ctx context.Context) ([]transport.Vehicle, error) {
	var vehicleModels []models.VehicleModel
	if err := r.db.WithContext(ctx).Order("registration").Find(&vehicleModels).Error; err != nil {
		return nil, err
	}
	vehicles := make([]transport.Vehicle, len(vehicleModels))
	for i := range vehicleModels {
		vehicles[i] = *vehicleModels[i].ToDomain()
	}
	return vehicles, nil
}

// SaveVehicle persists a vehicle
func (r *GormTransportRepository) SaveVehicle(ctx context.Context, v *transport.Vehicle) error {
	var model models.VehicleModel
	model.FromDomain(v)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindRouteByID finds a route by ID
func (r *GormTransportRepository) FindRouteByID(ctx context.Context, id uuid.UUID) (*transport.Route, error) {
	var model models.RouteModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllRoutes lists all routes
func (r *GormTransportRepository) FindAllRoutes(ctx context.Context) ([]transport.Route, error) {
	var routeModels []models.RouteModel
	if err := r.db.WithContext(ctx).Order("name").Find(&routeModels).Error; err != nil {
		return nil, err
	}
	routes := make([]transport.Route, len(routeModels))
	for i := range routeModels {
		routes[i] = *routeModels[i].ToDomain()
	}
	return routes, nil
}

// SaveRoute persists a route
func (r *GormTransportRepository) SaveRoute(ctx context.Context, route *transport.Route) error {
	var model models.RouteModel
	model.FromDomain(route)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindPickupPointByID finds a pickup point by ID
func (r *GormTransportRepository) FindPickupPointByID(ctx context.Context, id uuid.UUID) (*transport.PickupPoint, error) {
	var model models.PickupPointModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindPickupPointsByRoute lists a route's pickup points
func (r *GormTransportRepository) FindPickupPointsByRoute(ctx context.Context, routeID uuid.UUID) ([]transport.PickupPoint, error) {
	var pointModels []models.PickupPointModel
	if err := r.db.WithContext(ctx).
		Where("route_id = ?", routeID).
		Order("name").
		Find(&pointModels).Error; err != nil {
		return nil, err
	}
	points := make([]transport.PickupPoint, len(pointModels))
	for i := range pointModels {
		points[i] = *pointModels[i].ToDomain()
	}
	return points, nil
}

// SavePickupPoint persists a pickup point
func (r *GormTransportRepository) SavePickupPoint(ctx context.Context, p *transport.PickupPoint) error {
	var model models.PickupPointModel
	model.FromDomain(p)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindFuelRecordByID finds a fuel record by ID
func (r *GormTransportRepository) FindFuelRecordByID(ctx context.Context, id uuid.UUID) (*transport.FuelRecord, error) {
	var model models.FuelRecordModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveFuelRecord persists a fuel record
func (r *GormTransportRepository) SaveFuelRecord(ctx context.Context, f *transport.FuelRecord) error {
	var model models.FuelRecordModel
	model.FromDomain(f)
	return r.db.WithContext(ctx).Save(&model).Error
}

// DeleteFuelRecord removes a fuel record
func (r *GormTransportRepository) DeleteFuelRecord(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FuelRecordModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindMaintenanceByID finds a vehicle maintenance record by ID
func (r *GormTransportRepository) FindMaintenanceByID(ctx context.Context, id uuid.UUID) (*transport.VehicleMaintenance, error) {
	var model models.VehicleMaintenanceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveMaintenance persists a vehicle maintenance record
func (r *GormTransportRepository) SaveMaintenance(ctx context.Context, m *transport.VehicleMaintenance) error {
	var model models.VehicleMaintenanceModel
	model.FromDomain(m)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormTransportAllocationRepository implements transport.AllocationRepository using GORM
type GormTransportAllocationRepository struct {
	db *gorm.DB
}

// NewGormTransportAllocationRepository creates a new GormTransportAllocationRepository
func NewGormTransportAllocationRepository(db *gorm.DB) *GormTransportAllocationRepository {
	return &GormTransportAllocationRepository{db: db}
}

// FindByID finds an allocation by ID
func (r *GormTransportAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*transport.Allocation, error) {
	var model models.TransportAllocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent returns a student's allocation, if any
func (r *GormTransportAllocationRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) (*transport.Allocation, error) {
	var model models.TransportAllocationModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByRoute lists active allocations on a route
func (r *GormTransportAllocationRepository) FindActiveByRoute(ctx context.Context, routeID uuid.UUID) ([]transport.Allocation, error) {
	var allocationModels []models.TransportAllocationModel
	if err := r.db.WithContext(ctx).
		Where("route_id = ? AND status = ?", routeID, transport.AllocationStatusActive).
		Order("date_assigned").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransportAllocations(allocationModels), nil
}

// FindAllActive lists all active allocations
func (r *GormTransportAllocationRepository) FindAllActive(ctx context.Context) ([]transport.Allocation, error) {
	var allocationModels []models.TransportAllocationModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", transport.AllocationStatusActive).
		Order("date_assigned").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return toDomainTransportAllocations(allocationModels), nil
}

// Save persists an allocation
func (r *GormTransportAllocationRepository) Save(ctx context.Context, allocation *transport.Allocation) error {
	var model models.TransportAllocationModel
	model.FromDomain(allocation)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toDomainTransportAllocations(allocationModels []models.TransportAllocationModel) []transport.Allocation {
	allocations := make([]transport.Allocation, len(allocationModels))
	for i := range allocationModels {
		allocations[i] = *allocationModels[i].ToDomain()
	}
	return allocations
}

// Ensure interface compliance
var (
	_ transport.Repository           = (*GormTransportRepository)(nil)
	_ transport.AllocationRepository = (*GormTransportAllocationRepository)(nil)
)
