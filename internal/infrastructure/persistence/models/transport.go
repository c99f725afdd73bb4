package models

import (
	"time"

	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/domain/transport"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VehicleModel is the persistence model for vehicles
type VehicleModel struct {
	BaseModel
	Registration string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Capacity     int    `gorm:"not null"`
	Driver       string `gorm:"type:varchar(120)"`
	IsActive     bool   `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (VehicleModel) TableName() string {
	return "vehicles"
}

// ToDomain converts the persistence model to a domain Vehicle
func (m *VehicleModel) ToDomain() *transport.Vehicle {
	return &transport.Vehicle{
		BaseEntity:   m.BaseModel.ToDomain(),
		Registration: m.Registration,
		Capacity:     m.Capacity,
		Driver:       m.Driver,
		IsActive:     m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Vehicle
func (m *VehicleModel) FromDomain(v *transport.Vehicle) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.Registration = v.Registration
	m.Capacity = v.Capacity
	m.Driver = v.Driver
	m.IsActive = v.IsActive
}

// RouteModel is the persistence model for transport routes
type RouteModel struct {
	BaseModel
	Name      string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	VehicleID *uuid.UUID      `gorm:"type:uuid;index"`
	BaseCost  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	IsActive  bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (RouteModel) TableName() string {
	return "transport_routes"
}

// ToDomain converts the persistence model to a domain Route
func (m *RouteModel) ToDomain() *transport.Route {
	return &transport.Route{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		VehicleID:  m.VehicleID,
		BaseCost:   valueobject.NewMoneyKES(m.BaseCost),
		IsActive:   m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Route
func (m *RouteModel) FromDomain(r *transport.Route) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.Name = r.Name
	m.VehicleID = r.VehicleID
	m.BaseCost = r.BaseCost.Amount()
	m.IsActive = r.IsActive
}

// PickupPointModel is the persistence model for pickup points
type PickupPointModel struct {
	BaseModel
	RouteID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_pickup_route_name,priority:1"`
	Name    string           `gorm:"type:varchar(100);not null;uniqueIndex:idx_pickup_route_name,priority:2"`
	Cost    *decimal.Decimal `gorm:"type:decimal(12,2)"`
}

// TableName returns the table name for GORM
func (PickupPointModel) TableName() string {
	return "transport_pickup_points"
}

// ToDomain converts the persistence model to a domain PickupPoint
func (m *PickupPointModel) ToDomain() *transport.PickupPoint {
	var cost *valueobject.Money
	if m.Cost != nil {
		c := valueobject.NewMoneyKES(*m.Cost)
		cost = &c
	}
	return &transport.PickupPoint{
		BaseEntity: m.BaseModel.ToDomain(),
		RouteID:    m.RouteID,
		Name:       m.Name,
		Cost:       cost,
	}
}

// FromDomain populates the persistence model from a domain PickupPoint
func (m *PickupPointModel) FromDomain(p *transport.PickupPoint) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.RouteID = p.RouteID
	m.Name = p.Name
	if p.Cost != nil {
		amount := p.Cost.Amount()
		m.Cost = &amount
	} else {
		m.Cost = nil
	}
}

// TransportAllocationModel is the persistence model for transport allocations
type TransportAllocationModel struct {
	AggregateModel
	StudentID     uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex"`
	RouteID       uuid.UUID                  `gorm:"type:uuid;not null;index"`
	PickupPointID *uuid.UUID                 `gorm:"type:uuid;index"`
	Status        transport.AllocationStatus `gorm:"type:varchar(15);not null;default:'ACTIVE';index"`
	DateAssigned  time.Time                  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TransportAllocationModel) TableName() string {
	return "transport_allocations"
}

// ToDomain converts the persistence model to a domain Allocation
func (m *TransportAllocationModel) ToDomain() *transport.Allocation {
	return &transport.Allocation{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		RouteID:           m.RouteID,
		PickupPointID:     m.PickupPointID,
		Status:            m.Status,
		DateAssigned:      m.DateAssigned,
	}
}

// FromDomain populates the persistence model from a domain Allocation
func (m *TransportAllocationModel) FromDomain(a *transport.Allocation) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.StudentID = a.StudentID
	m.RouteID = a.RouteID
	m.PickupPointID = a.PickupPointID
	m.Status = a.Status
	m.DateAssigned = a.DateAssigned
}

// FuelRecordModel is the persistence model for fuel records
type FuelRecordModel struct {
	BaseModel
	VehicleID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Liters    float64         `gorm:"not null"`
	Cost      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Date      time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (FuelRecordModel) TableName() string {
	return "fuel_records"
}

// ToDomain converts the persistence model to a domain FuelRecord
func (m *FuelRecordModel) ToDomain() *transport.FuelRecord {
	return &transport.FuelRecord{
		BaseEntity: m.BaseModel.ToDomain(),
		VehicleID:  m.VehicleID,
		Liters:     m.Liters,
		Cost:       valueobject.NewMoneyKES(m.Cost),
		Date:       m.Date,
	}
}

// FromDomain populates the persistence model from a domain FuelRecord
func (m *FuelRecordModel) FromDomain(f *transport.FuelRecord) {
	m.FromDomainBaseEntity(f.BaseEntity)
	m.VehicleID = f.VehicleID
	m.Liters = f.Liters
	m.Cost = f.Cost.Amount()
	m.Date = f.Date
}

// VehicleMaintenanceModel is the persistence model for vehicle maintenance
type VehicleMaintenanceModel struct {
	BaseModel
	VehicleID   uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Description string                      `gorm:"type:varchar(255);not null"`
	Cost        decimal.Decimal             `gorm:"type:decimal(12,2);not null"`
	Status      transport.MaintenanceStatus `gorm:"type:varchar(15);not null;default:'SCHEDULED';index"`
	Date        time.Time                   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VehicleMaintenanceModel) TableName() string {
	return "vehicle_maintenance"
}

// ToDomain converts the persistence model to a domain VehicleMaintenance
func (m *VehicleMaintenanceModel) ToDomain() *transport.VehicleMaintenance {
	return &transport.VehicleMaintenance{
		BaseEntity:  m.BaseModel.ToDomain(),
		VehicleID:   m.VehicleID,
		Description: m.Description,
		Cost:        valueobject.NewMoneyKES(m.Cost),
		Status:      m.Status,
		Date:        m.Date,
	}
}

// FromDomain populates the persistence model from a domain VehicleMaintenance
func (m *VehicleMaintenanceModel) FromDomain(v *transport.VehicleMaintenance) {
	m.FromDomainBaseEntity(v.BaseEntity)
	m.VehicleID = v.VehicleID
	m.Description = v.Description
	m.Cost = v.Cost.Amount()
	m.Status = v.Status
	m.Date = v.Date
}
