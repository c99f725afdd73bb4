package hostel

import (
	"context"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Hostel is a boarding house
type Hostel struct {
	shared.BaseEntity
	Name   string `json:"name"`
	Gender string `json:"gender"`
	Warden string `json:"warden"`
}

// NewHostel creates a hostel
func NewHostel(name, gender, warden string) (*Hostel, error) {
	if name == "" {
		return nil, shared.NewValidationError("hostel name is required")
	}
	return &Hostel{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Gender:     gender,
		Warden:     warden,
	}, nil
}

// RoomStatus represents room availability
type RoomStatus string

const (
	RoomStatusAvailable RoomStatus = "AVAILABLE"
	RoomStatusFull      RoomStatus = "FULL"
	RoomStatusClosed    RoomStatus = "CLOSED"
)

// Room groups beds inside a hostel and tracks occupancy
type Room struct {
	shared.BaseEntity
	HostelID         uuid.UUID  `json:"hostel_id"`
	Number           string     `json:"number"`
	Capacity         int        `json:"capacity"`
	CurrentOccupancy int        `json:"current_occupancy"`
	Status           RoomStatus `json:"status"`
}

// NewRoom creates an available room
func NewRoom(hostelID uuid.UUID, number string, capacity int) (*Room, error) {
	if number == "" {
		return nil, shared.NewValidationError("room number is required")
	}
	if capacity <= 0 {
		return nil, shared.NewValidationError("room capacity must be positive, got %d", capacity)
	}
	return &Room{
		BaseEntity: shared.NewBaseEntity(),
		HostelID:   hostelID,
		Number:     number,
		Capacity:   capacity,
		Status:     RoomStatusAvailable,
	}, nil
}

// IncrementOccupancy records one more occupant and flips to FULL at capacity
func (r *Room) IncrementOccupancy() error {
	if r.CurrentOccupancy >= r.Capacity {
		return shared.NewConflictError("room %s is already at capacity", r.Number)
	}
	r.CurrentOccupancy++
	if r.CurrentOccupancy >= r.Capacity {
		r.Status = RoomStatusFull
	}
	r.Touch()
	return nil
}

// DecrementOccupancy records one occupant leaving
func (r *Room) DecrementOccupancy() {
	if r.CurrentOccupancy > 0 {
		r.CurrentOccupancy--
	}
	if r.Status == RoomStatusFull && r.CurrentOccupancy < r.Capacity {
		r.Status = RoomStatusAvailable
	}
	r.Touch()
}

// BedStatus represents the lifecycle of a bed
type BedStatus string

const (
	BedStatusAvailable   BedStatus = "AVAILABLE"
	BedStatusOccupied    BedStatus = "OCCUPIED"
	BedStatusReserved    BedStatus = "RESERVED"
	BedStatusMaintenance BedStatus = "MAINTENANCE"
)

// Bed is the unit actually allocated to a student
type Bed struct {
	shared.BaseEntity
	RoomID uuid.UUID `json:"room_id"`
	Number string    `json:"number"`
	Status BedStatus `json:"status"`
}

// NewBed creates an available bed
func NewBed(roomID uuid.UUID, number string) (*Bed, error) {
	if number == "" {
		return nil, shared.NewValidationError("bed number is required")
	}
	return &Bed{
		BaseEntity: shared.NewBaseEntity(),
		RoomID:     roomID,
		Number:     number,
		Status:     BedStatusAvailable,
	}, nil
}

// IsAllocatable reports whether the bed can be handed to a student
func (b *Bed) IsAllocatable() bool {
	return b.Status == BedStatusAvailable || b.Status == BedStatusReserved
}

// Occupy marks the bed taken
func (b *Bed) Occupy() error {
	if !b.IsAllocatable() {
		return shared.NewConflictError("bed %s is %s", b.Number, b.Status)
	}
	b.Status = BedStatusOccupied
	b.Touch()
	return nil
}

// Vacate marks the bed available again
func (b *Bed) Vacate() {
	b.Status = BedStatusAvailable
	b.Touch()
}

// Maintenance records upkeep work on a hostel
type Maintenance struct {
	shared.BaseEntity
	HostelID    uuid.UUID         `json:"hostel_id"`
	Description string            `json:"description"`
	Cost        valueobject.Money `json:"cost"`
	ReportedBy  string            `json:"reported_by"`
}

// NewMaintenance creates a maintenance record
func NewMaintenance(hostelID uuid.UUID, description string, cost valueobject.Money, reportedBy string) (*Maintenance, error) {
	if description == "" {
		return nil, shared.NewValidationError("maintenance description is required")
	}
	if cost.IsNegative() {
		return nil, shared.NewValidationError("maintenance cost cannot be negative")
	}
	return &Maintenance{
		BaseEntity:  shared.NewBaseEntity(),
		HostelID:    hostelID,
		Description: description,
		Cost:        cost,
		ReportedBy:  reportedBy,
	}, nil
}

// Asset is hostel property worth tracking, e.g. mattresses or lockers
type Asset struct {
	shared.BaseEntity
	HostelID uuid.UUID         `json:"hostel_id"`
	Name     string            `json:"name"`
	Value    valueobject.Money `json:"value"`
	Quantity int               `json:"quantity"`
}

// NewAsset creates an asset record
func NewAsset(hostelID uuid.UUID, name string, value valueobject.Money, quantity int) (*Asset, error) {
	if name == "" {
		return nil, shared.NewValidationError("asset name is required")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("asset quantity must be positive, got %d", quantity)
	}
	return &Asset{
		BaseEntity: shared.NewBaseEntity(),
		HostelID:   hostelID,
		Name:       name,
		Value:      value,
		Quantity:   quantity,
	}, nil
}

// TotalValue returns value multiplied by quantity
func (a *Asset) TotalValue() valueobject.Money {
	return a.Value.MultiplyByInt(int64(a.Quantity))
}

// Repository persists hostels, rooms and beds
type Repository interface {
	FindHostelByID(ctx context.Context, id uuid.UUID) (*Hostel, error)
	FindAllHostels(ctx context.Context) ([]Hostel, error)
	SaveHostel(ctx context.Context, hostel *Hostel) error

	FindRoomByID(ctx context.Context, id uuid.UUID) (*Room, error)
	FindRoomsByHostel(ctx context.Context, hostelID uuid.UUID) ([]Room, error)
	SaveRoom(ctx context.Context, room *Room) error

	FindBedByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	// FindBedByIDForUpdate locks the bed row for the surrounding
	// transaction. Only meaningful inside InTx.
	FindBedByIDForUpdate(ctx context.Context, id uuid.UUID) (*Bed, error)
	FindBedsByRoom(ctx context.Context, roomID uuid.UUID) ([]Bed, error)
	SaveBed(ctx context.Context, bed *Bed) error

	SaveMaintenance(ctx context.Context, m *Maintenance) error
	FindMaintenanceByID(ctx context.Context, id uuid.UUID) (*Maintenance, error)
	SaveAsset(ctx context.Context, a *Asset) error
	FindAssetByID(ctx context.Context, id uuid.UUID) (*Asset, error)

	// InTx runs fn with repositories bound to one database transaction so
	// bed state and allocation writes commit or roll back together
	InTx(ctx context.Context, fn func(repo Repository, allocations AllocationRepository) error) error
}
