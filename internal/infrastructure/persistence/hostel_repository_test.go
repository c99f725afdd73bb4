package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHostelRoomBed(t *testing.T, repo *GormHostelRepository) (*hostel.Hostel, *hostel.Room, *hostel.Bed) {
	t.Helper()
	ctx := context.Background()

	h, err := hostel.NewHostel("Nyati", "MALE", "Mr. Otieno")
	require.NoError(t, err)
	require.NoError(t, repo.SaveHostel(ctx, h))

	room, err := hostel.NewRoom(h.ID, "R4", 2)
	require.NoError(t, err)
	require.NoError(t, repo.SaveRoom(ctx, room))

	bed, err := hostel.NewBed(room.ID, "B1")
	require.NoError(t, err)
	require.NoError(t, repo.SaveBed(ctx, bed))

	return h, room, bed
}

func TestHostelRoomBedRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormHostelRepository(db)
	ctx := context.Background()

	h, room, bed := seedHostelRoomBed(t, repo)

	loadedHostel, err := repo.FindHostelByID(ctx, h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Nyati", loadedHostel.Name)

	rooms, err := repo.FindRoomsByHostel(ctx, h.ID)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, room.ID, rooms[0].ID)

	beds, err := repo.FindBedsByRoom(ctx, room.ID)
	require.NoError(t, err)
	require.Len(t, beds, 1)
	assert.Equal(t, hostel.BedStatusAvailable, beds[0].Status)

	loadedBed, err := repo.FindBedByIDForUpdate(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, bed.ID, loadedBed.ID)

	_, err = repo.FindHostelByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestAllocationQueries(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormHostelRepository(db)
	allocations := NewGormHostelAllocationRepository(db)
	ctx := context.Background()

	_, _, bed := seedHostelRoomBed(t, repo)
	studentID := uuid.New()

	alloc := hostel.NewAllocation(studentID, bed.ID)
	alloc.ClearDomainEvents()
	require.NoError(t, allocations.Save(ctx, alloc))

	byStudent, err := allocations.FindActiveByStudent(ctx, studentID)
	require.NoError(t, err)
	assert.Equal(t, alloc.ID, byStudent.ID)

	byBed, err := allocations.FindActiveByBed(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, alloc.ID, byBed.ID)

	active, err := allocations.FindAllActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = allocations.FindActiveByStudent(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFindReleasedWithBed(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormHostelRepository(db)
	allocations := NewGormHostelAllocationRepository(db)
	ctx := context.Background()

	_, _, bed := seedHostelRoomBed(t, repo)

	// completed but still pointing at a bed: a zombie link
	zombie := hostel.NewAllocation(uuid.New(), bed.ID)
	zombie.Complete()
	zombie.ClearDomainEvents()
	require.NoError(t, allocations.Save(ctx, zombie))

	// completed and severed: clean history
	clean := hostel.NewAllocation(uuid.New(), bed.ID)
	clean.Complete()
	clean.SeverBedLink()
	clean.ClearDomainEvents()
	require.NoError(t, allocations.Save(ctx, clean))

	// still active: not a zombie
	active := hostel.NewAllocation(uuid.New(), bed.ID)
	active.ClearDomainEvents()
	require.NoError(t, allocations.Save(ctx, active))

	zombies, err := allocations.FindReleasedWithBed(ctx)
	require.NoError(t, err)
	require.Len(t, zombies, 1)
	assert.Equal(t, zombie.ID, zombies[0].ID)
}

func TestHostelInTxSharesTransaction(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormHostelRepository(db)
	allocations := NewGormHostelAllocationRepository(db)
	ctx := context.Background()

	_, room, bed := seedHostelRoomBed(t, repo)
	studentID := uuid.New()

	sentinel := errors.New("abort")
	err := repo.InTx(ctx, func(txRepo hostel.Repository, txAllocations hostel.AllocationRepository) error {
		locked, err := txRepo.FindBedByIDForUpdate(ctx, bed.ID)
		if err != nil {
			return err
		}
		if err := locked.Occupy(); err != nil {
			return err
		}
		if err := txRepo.SaveBed(ctx, locked); err != nil {
			return err
		}
		alloc := hostel.NewAllocation(studentID, bed.ID)
		alloc.ClearDomainEvents()
		if err := txAllocations.Save(ctx, alloc); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	// both writes rolled back together
	loadedBed, err := repo.FindBedByID(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, hostel.BedStatusAvailable, loadedBed.Status)
	_, err = allocations.FindActiveByStudent(ctx, studentID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	loadedRoom, err := repo.FindRoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loadedRoom.CurrentOccupancy)
}

func TestMaintenanceAndAssetRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormHostelRepository(db)
	ctx := context.Background()

	h, _, _ := seedHostelRoomBed(t, repo)

	m, err := hostel.NewMaintenance(h.ID, "Broken window", kes(2500), "Warden")
	require.NoError(t, err)
	require.NoError(t, repo.SaveMaintenance(ctx, m))
	loadedM, err := repo.FindMaintenanceByID(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Broken window", loadedM.Description)
	assert.True(t, loadedM.Cost.Equals(kes(2500)))

	a, err := hostel.NewAsset(h.ID, "Mattress", kes(3500), 10)
	require.NoError(t, err)
	require.NoError(t, repo.SaveAsset(ctx, a))
	loadedA, err := repo.FindAssetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, loadedA.Quantity)
}
