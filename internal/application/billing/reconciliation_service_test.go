package billing

import (
	"context"
	"testing"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func (f *fixture) reconciler() *ReconciliationService {
	return NewReconciliationService(
		f.invoices, f.hostels, f.hostelAll, f.transAll, f.failures, f.sync, zap.NewNop())
}

// occupiedBed claims the fixture bed for the student the way the allocation
// service does: bed occupied, room occupancy bumped, allocation active.
func (f *fixture) occupiedBed(t *testing.T, studentID uuid.UUID) (*hostel.Bed, *hostel.Allocation) {
	t.Helper()
	ctx := context.Background()
	bed := f.addBed(t)
	require.NoError(t, bed.Occupy())
	require.NoError(t, f.hostels.SaveBed(ctx, bed))
	room, err := f.hostels.FindRoomByID(ctx, bed.RoomID)
	require.NoError(t, err)
	require.NoError(t, room.IncrementOccupancy())
	require.NoError(t, f.hostels.SaveRoom(ctx, room))

	allocation := hostel.NewAllocation(studentID, bed.ID)
	allocation.ClearDomainEvents()
	require.NoError(t, f.hostelAll.Save(ctx, allocation))
	return bed, allocation
}

func TestReconciliationSweepIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sweep := f.reconciler()

	f.addCatalogEntry(t, "Boarding Fee", 8000, billing.FeeKindBoarding)
	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	_, allocation := f.occupiedBed(t, boarder.ID)
	require.NoError(t, f.sync.SyncHostelAllocation(ctx, allocation.ID, boarder.ID, *allocation.BedID))

	result, err := sweep.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Zero(t, result.Repaired, "a consistent ledger needs no repair")
	assert.Zero(t, result.Failed)

	result, err = sweep.SyncAll(ctx)
	require.NoError(t, err)
	assert.Zero(t, result.Repaired)
	assert.Zero(t, result.Failed)
}

func TestReconciliationRepairsDriftedInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sweep := f.reconciler()

	_, inv := f.invoicedStudent(t)

	// corrupt the stored total behind the aggregate's back
	err := f.db.Model(&models.InvoiceModel{}).
		Where("id = ?", inv.ID).
		Update("total_amount", decimal.NewFromInt(99999)).Error
	require.NoError(t, err)

	result, err := sweep.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repaired)

	repaired, err := f.invoices.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.True(t, repaired.TotalAmount.Equal(decimal.NewFromInt(15000)),
		"total = %s", repaired.TotalAmount)
	assert.True(t, repaired.Balance.Equal(decimal.NewFromInt(15000)))
}

func TestReconciliationReplaysMissedAllocationSync(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sweep := f.reconciler()

	f.addCatalogEntry(t, "Boarding Fee", 8000, billing.FeeKindBoarding)
	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	_, allocation := f.occupiedBed(t, boarder.ID)
	// the activation event was never delivered, so no invoice exists yet

	_, err := sweep.SyncAll(ctx)
	require.NoError(t, err)

	inv := f.currentInvoice(t, boarder.ID)
	item := inv.FindItemByOrigin(billing.NewOriginRef(billing.OriginHostel, allocation.ID))
	require.NotNil(t, item)
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(8000)), "amount = %s", item.Amount)
}

func TestReconciliationSeversZombieBedLinks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sweep := f.reconciler()

	s := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	bed, allocation := f.occupiedBed(t, s.ID)

	// the release left the bed pointer and occupancy behind
	allocation.Complete()
	allocation.ClearDomainEvents()
	require.NoError(t, f.hostelAll.Save(ctx, allocation))

	result, err := sweep.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Repaired)

	freed, err := f.hostels.FindBedByID(ctx, bed.ID)
	require.NoError(t, err)
	assert.Equal(t, hostel.BedStatusAvailable, freed.Status)

	room, err := f.hostels.FindRoomByID(ctx, bed.RoomID)
	require.NoError(t, err)
	assert.Zero(t, room.CurrentOccupancy)

	severed, err := f.hostelAll.FindByID(ctx, allocation.ID)
	require.NoError(t, err)
	assert.Nil(t, severed.BedID)

	t.Run("second sweep finds nothing to sever", func(t *testing.T) {
		result, err := sweep.SyncAll(ctx)
		require.NoError(t, err)
		assert.Zero(t, result.Repaired)
	})
}

func TestReconciliationResolvesSyncFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sweep := f.reconciler()

	studentID := uuid.New()
	failure := billing.NewSyncFailure(
		string(billing.OriginHostel), uuid.New(), &studentID,
		hostel.EventTypeAllocationActivated, "invoice repository unavailable")
	require.NoError(t, f.failures.Save(ctx, failure))

	count, err := f.failures.CountUnresolved(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	_, err = sweep.SyncAll(ctx)
	require.NoError(t, err)

	count, err = f.failures.CountUnresolved(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
