package models

import (
	"time"

	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HostelModel is the persistence model for hostels
type HostelModel struct {
	BaseModel
	Name   string `gorm:"type:varchar(60);not null;uniqueIndex"`
	Gender string `gorm:"type:varchar(10)"`
	Warden string `gorm:"type:varchar(120)"`
}

// TableName returns the table name for GORM
func (HostelModel) TableName() string {
	return "hostels"
}

// ToDomain converts the persistence model to a domain Hostel
func (m *HostelModel) ToDomain() *hostel.Hostel {
	return &hostel.Hostel{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
		Gender:     m.Gender,
		Warden:     m.Warden,
	}
}

// FromDomain populates the persistence model from a domain Hostel
func (m *HostelModel) FromDomain(h *hostel.Hostel) {
	m.FromDomainBaseEntity(h.BaseEntity)
	m.Name = h.Name
	m.Gender = h.Gender
	m.Warden = h.Warden
}

// RoomModel is the persistence model for hostel rooms
type RoomModel struct {
	BaseModel
	HostelID         uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_room_hostel_number,priority:1"`
	Number           string            `gorm:"type:varchar(20);not null;uniqueIndex:idx_room_hostel_number,priority:2"`
	Capacity         int               `gorm:"not null"`
	CurrentOccupancy int               `gorm:"not null;default:0"`
	Status           hostel.RoomStatus `gorm:"type:varchar(15);not null;default:'AVAILABLE';index"`
}

// TableName returns the table name for GORM
func (RoomModel) TableName() string {
	return "hostel_rooms"
}

// ToDomain converts the persistence model to a domain Room
func (m *RoomModel) ToDomain() *hostel.Room {
	return &hostel.Room{
		BaseEntity:       m.BaseModel.ToDomain(),
		HostelID:         m.HostelID,
		Number:           m.Number,
		Capacity:         m.Capacity,
		CurrentOccupancy: m.CurrentOccupancy,
		Status:           m.Status,
	}
}

// FromDomain populates the persistence model from a domain Room
func (m *RoomModel) FromDomain(r *hostel.Room) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.HostelID = r.HostelID
	m.Number = r.Number
	m.Capacity = r.Capacity
	m.CurrentOccupancy = r.CurrentOccupancy
	m.Status = r.Status
}

// BedModel is the persistence model for beds
type BedModel struct {
	BaseModel
	RoomID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_bed_room_number,priority:1"`
	Number string           `gorm:"type:varchar(20);not null;uniqueIndex:idx_bed_room_number,priority:2"`
	Status hostel.BedStatus `gorm:"type:varchar(15);not null;default:'AVAILABLE';index"`
}

// TableName returns the table name for GORM
func (BedModel) TableName() string {
	return "hostel_beds"
}

// ToDomain converts the persistence model to a domain Bed
func (m *BedModel) ToDomain() *hostel.Bed {
	return &hostel.Bed{
		BaseEntity: m.BaseModel.ToDomain(),
		RoomID:     m.RoomID,
		Number:     m.Number,
		Status:     m.Status,
	}
}

// FromDomain populates the persistence model from a domain Bed
func (m *BedModel) FromDomain(b *hostel.Bed) {
	m.FromDomainBaseEntity(b.BaseEntity)
	m.RoomID = b.RoomID
	m.Number = b.Number
	m.Status = b.Status
}

// HostelAllocationModel is the persistence model for hostel allocations
type HostelAllocationModel struct {
	AggregateModel
	StudentID     uuid.UUID               `gorm:"type:uuid;not null;index"`
	BedID         *uuid.UUID              `gorm:"type:uuid;index"`
	Status        hostel.AllocationStatus `gorm:"type:varchar(15);not null;default:'ACTIVE';index"`
	DateAllocated time.Time               `gorm:"not null"`
	DateReleased  *time.Time
}

// TableName returns the table name for GORM
func (HostelAllocationModel) TableName() string {
	return "hostel_allocations"
}

// ToDomain converts the persistence model to a domain Allocation
func (m *HostelAllocationModel) ToDomain() *hostel.Allocation {
	return &hostel.Allocation{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		StudentID:         m.StudentID,
		BedID:             m.BedID,
		Status:            m.Status,
		DateAllocated:     m.DateAllocated,
		DateReleased:      m.DateReleased,
	}
}

// FromDomain populates the persistence model from a domain Allocation
func (m *HostelAllocationModel) FromDomain(a *hostel.Allocation) {
	m.FromDomainAggregateRoot(a.BaseAggregateRoot)
	m.StudentID = a.StudentID
	m.BedID = a.BedID
	m.Status = a.Status
	m.DateAllocated = a.DateAllocated
	m.DateReleased = a.DateReleased
}

// HostelMaintenanceModel is the persistence model for hostel maintenance
type HostelMaintenanceModel struct {
	BaseModel
	HostelID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(255);not null"`
	Cost        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReportedBy  string          `gorm:"type:varchar(120)"`
}

// TableName returns the table name for GORM
func (HostelMaintenanceModel) TableName() string {
	return "hostel_maintenance"
}

// ToDomain converts the persistence model to a domain Maintenance
func (m *HostelMaintenanceModel) ToDomain() *hostel.Maintenance {
	return &hostel.Maintenance{
		BaseEntity:  m.BaseModel.ToDomain(),
		HostelID:    m.HostelID,
		Description: m.Description,
		Cost:        valueobject.NewMoneyKES(m.Cost),
		ReportedBy:  m.ReportedBy,
	}
}

// FromDomain populates the persistence model from a domain Maintenance
func (m *HostelMaintenanceModel) FromDomain(r *hostel.Maintenance) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.HostelID = r.HostelID
	m.Description = r.Description
	m.Cost = r.Cost.Amount()
	m.ReportedBy = r.ReportedBy
}

// HostelAssetModel is the persistence model for hostel assets
type HostelAssetModel struct {
	BaseModel
	HostelID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Name     string          `gorm:"type:varchar(100);not null"`
	Value    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity int             `gorm:"not null;default:1"`
}

// TableName returns the table name for GORM
func (HostelAssetModel) TableName() string {
	return "hostel_assets"
}

// ToDomain converts the persistence model to a domain Asset
func (m *HostelAssetModel) ToDomain() *hostel.Asset {
	return &hostel.Asset{
		BaseEntity: m.BaseModel.ToDomain(),
		HostelID:   m.HostelID,
		Name:       m.Name,
		Value:      valueobject.NewMoneyKES(m.Value),
		Quantity:   m.Quantity,
	}
}

// FromDomain populates the persistence model from a domain Asset
func (m *HostelAssetModel) FromDomain(a *hostel.Asset) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.HostelID = a.HostelID
	m.Name = a.Name
	m.Value = a.Value.Amount()
	m.Quantity = a.Quantity
}
