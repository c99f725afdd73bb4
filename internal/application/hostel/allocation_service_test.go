package hostel

import (
	"context"
	"testing"

	billingapp "github.com/shulesync/backend/internal/application/billing"
	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/infrastructure/event"
	"github.com/shulesync/backend/internal/infrastructure/persistence"
	"github.com/shulesync/backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type allocationFixture struct {
	db        *gorm.DB
	hostels   hostel.Repository
	hostelAll hostel.AllocationRepository
	students  student.Repository
	bus       *event.InMemoryEventBus
	svc       *AllocationService
}

func newAllocationFixture(t *testing.T) *allocationFixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	f := &allocationFixture{
		db:        db,
		hostels:   persistence.NewGormHostelRepository(db),
		hostelAll: persistence.NewGormHostelAllocationRepository(db),
		students:  persistence.NewGormStudentRepository(db),
		bus:       event.NewInMemoryEventBus(zap.NewNop()),
	}
	f.svc = NewAllocationService(f.hostels, f.students, f.bus, zap.NewNop())
	return f
}

func (f *allocationFixture) addStudent(t *testing.T, admission string, category student.Category) *student.Student {
	t.Helper()
	s, err := student.NewStudent(admission, "Test", "Student", "MALE", category, nil)
	require.NoError(t, err)
	s.ClearDomainEvents()
	require.NoError(t, f.students.Save(context.Background(), s))
	return s
}

// addBeds seeds one room of the given capacity and returns its beds
func (f *allocationFixture) addBeds(t *testing.T, capacity int) []*hostel.Bed {
	t.Helper()
	ctx := context.Background()
	h, err := hostel.NewHostel("Simba", "MALE", "")
	require.NoError(t, err)
	require.NoError(t, f.hostels.SaveHostel(ctx, h))
	room, err := hostel.NewRoom(h.ID, "R1", capacity)
	require.NoError(t, err)
	require.NoError(t, f.hostels.SaveRoom(ctx, room))

	beds := make([]*hostel.Bed, capacity)
	for i := range beds {
		bed, err := hostel.NewBed(room.ID, string(rune('A'+i))+"1")
		require.NoError(t, err)
		require.NoError(t, f.hostels.SaveBed(ctx, bed))
		beds[i] = bed
	}
	return beds
}

func (f *allocationFixture) bedStatus(t *testing.T, bedID uuid.UUID) hostel.BedStatus {
	t.Helper()
	bed, err := f.hostels.FindBedByID(context.Background(), bedID)
	require.NoError(t, err)
	return bed.Status
}

func TestAllocate(t *testing.T) {
	f := newAllocationFixture(t)
	ctx := context.Background()

	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	beds := f.addBeds(t, 2)

	allocation, err := f.svc.Allocate(ctx, boarder.ID, beds[0].ID)
	require.NoError(t, err)
	assert.True(t, allocation.IsActive())
	assert.Equal(t, hostel.BedStatusOccupied, f.bedStatus(t, beds[0].ID))

	room, err := f.hostels.FindRoomByID(ctx, beds[0].RoomID)
	require.NoError(t, err)
	assert.Equal(t, 1, room.CurrentOccupancy)

	t.Run("an occupied bed has exactly one winner", func(t *testing.T) {
		rival := f.addStudent(t, "ADM-002", student.CategoryBoarding)
		_, err := f.svc.Allocate(ctx, rival.ID, beds[0].ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeConflict, de.Code)

		// the losing claim left no trace
		_, err = f.hostelAll.FindActiveByStudent(ctx, rival.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("a student holds at most one bed", func(t *testing.T) {
		_, err := f.svc.Allocate(ctx, boarder.ID, beds[1].ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeConflict, de.Code)
		assert.Equal(t, hostel.BedStatusAvailable, f.bedStatus(t, beds[1].ID))
	})

	t.Run("day scholars are rejected", func(t *testing.T) {
		day := f.addStudent(t, "ADM-003", student.CategoryDay)
		_, err := f.svc.Allocate(ctx, day.ID, beds[1].ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeValidation, de.Code)
	})

	t.Run("non-enrolled students are rejected", func(t *testing.T) {
		alumni := f.addStudent(t, "ADM-004", student.CategoryBoarding)
		require.NoError(t, alumni.ChangeStatus(student.StatusAlumni))
		alumni.ClearDomainEvents()
		require.NoError(t, f.students.Save(ctx, alumni))

		_, err := f.svc.Allocate(ctx, alumni.ID, beds[1].ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeInvalidState, de.Code)
	})
}

func TestTransfer(t *testing.T) {
	f := newAllocationFixture(t)
	ctx := context.Background()

	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	beds := f.addBeds(t, 2)
	allocation, err := f.svc.Allocate(ctx, boarder.ID, beds[0].ID)
	require.NoError(t, err)

	moved, err := f.svc.Transfer(ctx, allocation.ID, beds[1].ID)
	require.NoError(t, err)
	require.NotNil(t, moved.BedID)
	assert.Equal(t, beds[1].ID, *moved.BedID)
	assert.Equal(t, hostel.BedStatusAvailable, f.bedStatus(t, beds[0].ID))
	assert.Equal(t, hostel.BedStatusOccupied, f.bedStatus(t, beds[1].ID))

	t.Run("transfer to the same bed is rejected", func(t *testing.T) {
		_, err := f.svc.Transfer(ctx, allocation.ID, beds[1].ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeValidation, de.Code)
	})

	t.Run("finished allocations cannot be transferred", func(t *testing.T) {
		_, err := f.svc.Release(ctx, allocation.ID, false)
		require.NoError(t, err)
		_, err = f.svc.Transfer(ctx, allocation.ID, beds[0].ID)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeInvalidState, de.Code)
	})
}

func TestRelease(t *testing.T) {
	f := newAllocationFixture(t)
	ctx := context.Background()

	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	beds := f.addBeds(t, 1)
	allocation, err := f.svc.Allocate(ctx, boarder.ID, beds[0].ID)
	require.NoError(t, err)

	released, err := f.svc.Release(ctx, allocation.ID, false)
	require.NoError(t, err)
	assert.Equal(t, hostel.AllocationStatusCompleted, released.Status)
	assert.NotNil(t, released.DateReleased)
	assert.Equal(t, hostel.BedStatusAvailable, f.bedStatus(t, beds[0].ID))

	room, err := f.hostels.FindRoomByID(ctx, beds[0].RoomID)
	require.NoError(t, err)
	assert.Zero(t, room.CurrentOccupancy)

	t.Run("double release is rejected", func(t *testing.T) {
		_, err := f.svc.Release(ctx, allocation.ID, false)
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeInvalidState, de.Code)
	})

	t.Run("cancelled release voids the allocation", func(t *testing.T) {
		again, err := f.svc.Allocate(ctx, boarder.ID, beds[0].ID)
		require.NoError(t, err)
		cancelled, err := f.svc.Release(ctx, again.ID, true)
		require.NoError(t, err)
		assert.Equal(t, hostel.AllocationStatusCancelled, cancelled.Status)
	})
}

func TestReleaseForStudent(t *testing.T) {
	f := newAllocationFixture(t)
	ctx := context.Background()

	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	beds := f.addBeds(t, 1)
	_, err := f.svc.Allocate(ctx, boarder.ID, beds[0].ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.ReleaseForStudent(ctx, boarder.ID))
	assert.Equal(t, hostel.BedStatusAvailable, f.bedStatus(t, beds[0].ID))

	// without an active allocation the call is a no-op
	require.NoError(t, f.svc.ReleaseForStudent(ctx, boarder.ID))
	require.NoError(t, f.svc.ReleaseForStudent(ctx, uuid.New()))
}

// TestCategoryChangeReleasesBed runs the full event chain: allocating a bed
// bills the hostel fee, switching the student to day scholar frees the bed,
// and the already-billed fee stays on the invoice.
func TestCategoryChangeReleasesBed(t *testing.T) {
	f := newAllocationFixture(t)
	ctx := context.Background()

	years := persistence.NewGormAcademicYearRepository(f.db)
	terms := persistence.NewGormTermRepository(f.db)
	year, err := academics.NewAcademicYear("2026", true)
	require.NoError(t, err)
	require.NoError(t, years.Save(ctx, year))
	term, err := academics.NewTerm(year.ID, 1, true)
	require.NoError(t, err)
	require.NoError(t, terms.Save(ctx, term))

	invoices := persistence.NewGormInvoiceRepository(f.db)
	catalog := persistence.NewGormFeeCatalogRepository(f.db)
	transports := persistence.NewGormTransportRepository(f.db)
	fines := persistence.NewGormLibraryFineRepository(f.db)
	periods := persistence.NewRepositoryPeriodResolver(years, terms)

	entry, err := billing.NewFeeCatalogEntry(
		"Boarding Fee", valueobject.NewMoneyKESFromFloat(8000), year.ID, 1, nil, billing.FeeKindBoarding)
	require.NoError(t, err)
	require.NoError(t, catalog.Save(ctx, entry))

	sync := billingapp.NewFeeSyncService(
		invoices, f.students, f.hostels, transports, fines,
		periods, billingapp.NewInvoiceProvisioner(catalog), f.bus, zap.NewNop())
	f.bus.Subscribe(billingapp.NewHostelAllocationHandler(sync))
	f.bus.Subscribe(NewStudentChangeHandler(f.svc, zap.NewNop()))

	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	beds := f.addBeds(t, 1)
	allocation, err := f.svc.Allocate(ctx, boarder.ID, beds[0].ID)
	require.NoError(t, err)

	inv, err := invoices.FindByStudentAndPeriod(ctx, boarder.ID, year.ID, 1)
	require.NoError(t, err)
	origin := billing.NewOriginRef(billing.OriginHostel, allocation.ID)
	require.NotNil(t, inv.FindItemByOrigin(origin))

	require.NoError(t, boarder.ChangeCategory(student.CategoryDay))
	require.NoError(t, f.students.Save(ctx, boarder))
	require.NoError(t, f.bus.Publish(ctx, boarder.GetDomainEvents()...))
	boarder.ClearDomainEvents()

	assert.Equal(t, hostel.BedStatusAvailable, f.bedStatus(t, beds[0].ID))
	_, err = f.hostelAll.FindActiveByStudent(ctx, boarder.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	room, err := f.hostels.FindRoomByID(ctx, beds[0].RoomID)
	require.NoError(t, err)
	assert.Zero(t, room.CurrentOccupancy)

	// the fee billed while boarding stays on the ledger
	inv, err = invoices.FindByStudentAndPeriod(ctx, boarder.ID, year.ID, 1)
	require.NoError(t, err)
	item := inv.FindItemByOrigin(origin)
	require.NotNil(t, item)
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(8000)))

	t.Run("subsequent sweeps leave the ledger alone", func(t *testing.T) {
		sweep := billingapp.NewReconciliationService(
			invoices, f.hostels, f.hostelAll,
			persistence.NewGormTransportAllocationRepository(f.db),
			persistence.NewGormSyncFailureRepository(f.db),
			sync, zap.NewNop())
		// first sweep severs the completed allocation's stale bed pointer,
		// after that the ledger is at rest
		result, err := sweep.SyncAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Repaired)
		assert.Zero(t, result.Failed)

		result, err = sweep.SyncAll(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.Repaired)
		assert.Zero(t, result.Failed)
		inv, err := invoices.FindByStudentAndPeriod(ctx, boarder.ID, year.ID, 1)
		require.NoError(t, err)
		require.NotNil(t, inv.FindItemByOrigin(origin))
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(16000)), "total = %s", inv.TotalAmount)
	})
}
