package persistence

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormHostelRepository implements hostel.Repository using GORM
type GormHostelRepository struct {
	db *gorm.DB
}

// NewGormHostelRepository creates a new GormHostelRepository
func NewGormHostelRepository(db *gorm.DB) *GormHostelRepository {
	return &GormHostelRepository{db: db}
}

// FindHostelByID finds a hostel by ID
func (r *GormHostelRepository) FindHostelByID(ctx context.Context, id uuid.UUID) (*hostel.Hostel, error) {
	var model models.HostelModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllHostels lists all hostels
func (r *GormHostelRepository) FindAllHostels(ctx context.Context) ([]hostel.Hostel, error) {
	var hostelModels []models.HostelModel
	if err := r.db.WithContext(ctx).Order("name").Find(&hostelModels).Error; err != nil {
		return nil, err
	}
	hostels := make([]hostel.Hostel, len(hostelModels))
	for i := range hostelModels {
		hostels[i] = *hostelModels[i].ToDomain()
	}
	return hostels, nil
}

// SaveHostel persists a hostel
func (r *GormHostelRepository) SaveHostel(ctx context.Context, h *hostel.Hostel) error {
	var model models.HostelModel
	model.FromDomain(h)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindRoomByID finds a room by ID
func (r *GormHostelRepository) FindRoomByID(ctx context.Context, id uuid.UUID) (*hostel.Room, error) {
	var model models.RoomModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindRoomsByHostel lists a hostel's rooms
func (r *GormHostelRepository) FindRoomsByHostel(ctx context.Context, hostelID uuid.UUID) ([]hostel.Room, error) {
	var roomModels []models.RoomModel
	if err := r.db.WithContext(ctx).
		Where("hostel_id = ?", hostelID).
		Order("number").
		Find(&roomModels).Error; err != nil {
		return nil, err
	}
	rooms := make([]hostel.Room, len(roomModels))
	for i := range roomModels {
		rooms[i] = *roomModels[i].ToDomain()
	}
	return rooms, nil
}

// SaveRoom persists a room
func (r *GormHostelRepository) SaveRoom(ctx context.Context, room *hostel.Room) error {
	var model models.RoomModel
	model.FromDomain(room)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindBedByID finds a bed by ID
func (r *GormHostelRepository) FindBedByID(ctx context.Context, id uuid.UUID) (*hostel.Bed, error) {
	return r.findBed(ctx, r.db, id)
}

// FindBedByIDForUpdate locks the bed row for the surrounding transaction
func (r *GormHostelRepository) FindBedByIDForUpdate(ctx context.Context, id uuid.UUID) (*hostel.Bed, error) {
	return r.findBed(ctx, rowLock(r.db), id)
}

func (r *GormHostelRepository) findBed(ctx context.Context, db *gorm.DB, id uuid.UUID) (*hostel.Bed, error) {
	var model models.BedModel
	if err := db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindBedsByRoom lists a room's beds
func (r *GormHostelRepository) FindBedsByRoom(ctx context.Context, roomID uuid.UUID) ([]hostel.Bed, error) {
	var bedModels []models.BedModel
	if err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("number").
		Find(&bedModels).Error; err != nil {
		return nil, err
	}
	beds := make([]hostel.Bed, len(bedModels))
	for i := range bedModels {
		beds[i] = *bedModels[i].ToDomain()
	}
	return beds, nil
}

// SaveBed persists a bed
func (r *GormHostelRepository) SaveBed(ctx context.Context, bed *hostel.Bed) error {
	var model models.BedModel
	model.FromDomain(bed)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveMaintenance persists a maintenance record
func (r *GormHostelRepository) SaveMaintenance(ctx context.Context, m *hostel.Maintenance) error {
	var model models.HostelMaintenanceModel
	model.FromDomain(m)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindMaintenanceByID finds a maintenance record by ID
func (r *GormHostelRepository) FindMaintenanceByID(ctx context.Context, id uuid.UUID) (*hostel.Maintenance, error) {
	var model models.HostelMaintenanceModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// SaveAsset persists an asset record
func (r *GormHostelRepository) SaveAsset(ctx context.Context, a *hostel.Asset) error {
	var model models.HostelAssetModel
	model.FromDomain(a)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindAssetByID finds an asset record by ID
func (r *GormHostelRepository) FindAssetByID(ctx context.Context, id uuid.UUID) (*hostel.Asset, error) {
	var model models.HostelAssetModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// InTx runs fn with repositories bound to one database transaction
func (r *GormHostelRepository) InTx(ctx context.Context, fn func(repo hostel.Repository, allocations hostel.AllocationRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormHostelRepository{db: tx}, &GormHostelAllocationRepository{db: tx})
	})
}

// GormHostelAllocationRepository implements hostel.AllocationRepository using GORM
type GormHostelAllocationRepository struct {
	db *gorm.DB
}

// NewGormHostelAllocationRepository creates a new GormHostelAllocationRepository
func NewGormHostelAllocationRepository(db *gorm.DB) *GormHostelAllocationRepository {
	return &GormHostelAllocationRepository{db: db}
}

// FindByID finds an allocation by ID
func (r *GormHostelAllocationRepository) FindByID(ctx context.Context, id uuid.UUID) (*hostel.Allocation, error) {
	var model models.HostelAllocationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByStudent returns a student's active allocation, if any
func (r *GormHostelAllocationRepository) FindActiveByStudent(ctx context.Context, studentID uuid.UUID) (*hostel.Allocation, error) {
	var model models.HostelAllocationModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, hostel.AllocationStatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByBed returns the active allocation holding a bed, if any
func (r *GormHostelAllocationRepository) FindActiveByBed(ctx context.Context, bedID uuid.UUID) (*hostel.Allocation, error) {
	var model models.HostelAllocationModel
	if err := r.db.WithContext(ctx).
		Where("bed_id = ? AND status = ?", bedID, hostel.AllocationStatusActive).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllActive lists all active allocations
func (r *GormHostelAllocationRepository) FindAllActive(ctx context.Context) ([]hostel.Allocation, error) {
	var allocationModels []models.HostelAllocationModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", hostel.AllocationStatusActive).
		Order("date_allocated").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return toDomainHostelAllocations(allocationModels), nil
}

// FindReleasedWithBed lists finished allocations still holding a bed link
func (r *GormHostelAllocationRepository) FindReleasedWithBed(ctx context.Context) ([]hostel.Allocation, error) {
	var allocationModels []models.HostelAllocationModel
	if err := r.db.WithContext(ctx).
		Where("status <> ? AND bed_id IS NOT NULL", hostel.AllocationStatusActive).
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return toDomainHostelAllocations(allocationModels), nil
}

// FindByStudent lists a student's allocations, newest first
func (r *GormHostelAllocationRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]hostel.Allocation, error) {
	var allocationModels []models.HostelAllocationModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date_allocated DESC").
		Find(&allocationModels).Error; err != nil {
		return nil, err
	}
	return toDomainHostelAllocations(allocationModels), nil
}

// Save persists an allocation
func (r *GormHostelAllocationRepository) Save(ctx context.Context, allocation *hostel.Allocation) error {
	var model models.HostelAllocationModel
	model.FromDomain(allocation)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toDomainHostelAllocations(allocationModels []models.HostelAllocationModel) []hostel.Allocation {
	allocations := make([]hostel.Allocation, len(allocationModels))
	for i := range allocationModels {
		allocations[i] = *allocationModels[i].ToDomain()
	}
	return allocations
}

// Ensure interface compliance
var (
	_ hostel.Repository           = (*GormHostelRepository)(nil)
	_ hostel.AllocationRepository = (*GormHostelAllocationRepository)(nil)
)
