package hostel

import (
	"testing"

	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoom(t *testing.T) {
	room, err := NewRoom(uuid.New(), "R12", 4)
	require.NoError(t, err)
	assert.Equal(t, RoomStatusAvailable, room.Status)
	assert.Equal(t, 0, room.CurrentOccupancy)

	_, err = NewRoom(uuid.New(), "", 4)
	assert.Error(t, err)
	_, err = NewRoom(uuid.New(), "R12", 0)
	assert.Error(t, err)
}

func TestRoomOccupancy(t *testing.T) {
	room, err := NewRoom(uuid.New(), "R12", 2)
	require.NoError(t, err)

	require.NoError(t, room.IncrementOccupancy())
	assert.Equal(t, RoomStatusAvailable, room.Status)

	require.NoError(t, room.IncrementOccupancy())
	assert.Equal(t, RoomStatusFull, room.Status)

	// full room rejects a third occupant
	assert.Error(t, room.IncrementOccupancy())
	assert.Equal(t, 2, room.CurrentOccupancy)

	room.DecrementOccupancy()
	assert.Equal(t, RoomStatusAvailable, room.Status)
	assert.Equal(t, 1, room.CurrentOccupancy)

	// never goes negative
	room.DecrementOccupancy()
	room.DecrementOccupancy()
	assert.Equal(t, 0, room.CurrentOccupancy)
}

func TestBedOccupyVacate(t *testing.T) {
	bed, err := NewBed(uuid.New(), "B1")
	require.NoError(t, err)
	assert.True(t, bed.IsAllocatable())

	require.NoError(t, bed.Occupy())
	assert.Equal(t, BedStatusOccupied, bed.Status)
	assert.False(t, bed.IsAllocatable())

	// occupied bed cannot be claimed again
	assert.Error(t, bed.Occupy())

	bed.Vacate()
	assert.Equal(t, BedStatusAvailable, bed.Status)
	require.NoError(t, bed.Occupy())
}

func TestBedReservedIsAllocatable(t *testing.T) {
	bed, err := NewBed(uuid.New(), "B2")
	require.NoError(t, err)
	bed.Status = BedStatusReserved
	assert.True(t, bed.IsAllocatable())

	bed.Status = BedStatusMaintenance
	assert.False(t, bed.IsAllocatable())
	assert.Error(t, bed.Occupy())
}

func TestAllocationLifecycle(t *testing.T) {
	studentID, bedID := uuid.New(), uuid.New()
	alloc := NewAllocation(studentID, bedID)

	assert.True(t, alloc.IsActive())
	require.NotNil(t, alloc.BedID)
	assert.Equal(t, bedID, *alloc.BedID)

	events := alloc.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeAllocationActivated, events[0].EventType())
	alloc.ClearDomainEvents()

	alloc.Complete()
	assert.Equal(t, AllocationStatusCompleted, alloc.Status)
	require.NotNil(t, alloc.DateReleased)
	events = alloc.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeAllocationReleased, events[0].EventType())

	// completing twice does not re-announce
	alloc.ClearDomainEvents()
	alloc.Complete()
	assert.Empty(t, alloc.GetDomainEvents())
}

func TestAllocationTransfer(t *testing.T) {
	alloc := NewAllocation(uuid.New(), uuid.New())
	alloc.ClearDomainEvents()

	newBed := uuid.New()
	require.NoError(t, alloc.MoveTo(newBed))
	assert.Equal(t, newBed, *alloc.BedID)
	require.Len(t, alloc.GetDomainEvents(), 1)

	alloc.Cancel()
	assert.Equal(t, AllocationStatusCancelled, alloc.Status)
	assert.Error(t, alloc.MoveTo(uuid.New()))
}

func TestAllocationSeverBedLink(t *testing.T) {
	alloc := NewAllocation(uuid.New(), uuid.New())
	alloc.Complete()
	require.NotNil(t, alloc.BedID)

	alloc.SeverBedLink()
	assert.Nil(t, alloc.BedID)
	assert.Equal(t, AllocationStatusCompleted, alloc.Status)
}

func TestNewMaintenance(t *testing.T) {
	m, err := NewMaintenance(uuid.New(), "Leaking roof", valueobject.NewMoneyKESFromFloat(12000), "Warden")
	require.NoError(t, err)
	assert.Equal(t, "Leaking roof", m.Description)

	_, err = NewMaintenance(uuid.New(), "", valueobject.ZeroKES(), "")
	assert.Error(t, err)
	_, err = NewMaintenance(uuid.New(), "Paint", valueobject.NewMoneyKESFromFloat(-5), "")
	assert.Error(t, err)
}

func TestAssetTotalValue(t *testing.T) {
	a, err := NewAsset(uuid.New(), "Mattress", valueobject.NewMoneyKESFromFloat(3500), 40)
	require.NoError(t, err)
	assert.True(t, a.TotalValue().Equals(valueobject.NewMoneyKESFromFloat(140000)))

	_, err = NewAsset(uuid.New(), "", valueobject.ZeroKES(), 1)
	assert.Error(t, err)
	_, err = NewAsset(uuid.New(), "Locker", valueobject.ZeroKES(), 0)
	assert.Error(t, err)
}
