package billing

import (
	"context"
	"testing"

	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/library"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/domain/transport"
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

func kes(amount float64) valueobject.Money {
	return valueobject.NewMoneyKESFromFloat(amount)
}

// fixture wires the billing services against a real in-memory database, the
// way main wires them in production.
type fixture struct {
	db         *gorm.DB
	invoices   billing.InvoiceRepository
	catalog    billing.FeeCatalogRepository
	students   student.Repository
	hostels    hostel.Repository
	hostelAll  hostel.AllocationRepository
	transports transport.Repository
	transAll   transport.AllocationRepository
	fines      library.Repository
	failures   billing.SyncFailureRepository
	periods    academics.PeriodResolver
	bus        *event.InMemoryEventBus
	sync       *FeeSyncService
	batch      *BatchInvoiceService
	yearID     uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	years := persistence.NewGormAcademicYearRepository(db)
	terms := persistence.NewGormTermRepository(db)

	year, err := academics.NewAcademicYear("2026", true)
	require.NoError(t, err)
	require.NoError(t, years.Save(ctx, year))
	term, err := academics.NewTerm(year.ID, 1, true)
	require.NoError(t, err)
	require.NoError(t, terms.Save(ctx, term))

	f := &fixture{
		db:         db,
		invoices:   persistence.NewGormInvoiceRepository(db),
		catalog:    persistence.NewGormFeeCatalogRepository(db),
		students:   persistence.NewGormStudentRepository(db),
		hostels:    persistence.NewGormHostelRepository(db),
		hostelAll:  persistence.NewGormHostelAllocationRepository(db),
		transports: persistence.NewGormTransportRepository(db),
		transAll:   persistence.NewGormTransportAllocationRepository(db),
		fines:      persistence.NewGormLibraryFineRepository(db),
		failures:   persistence.NewGormSyncFailureRepository(db),
		periods:    persistence.NewRepositoryPeriodResolver(years, terms),
		bus:        event.NewInMemoryEventBus(zap.NewNop()),
		yearID:     year.ID,
	}
	provisioner := NewInvoiceProvisioner(f.catalog)
	f.sync = NewFeeSyncService(
		f.invoices, f.students, f.hostels, f.transports, f.fines,
		f.periods, provisioner, f.bus, zap.NewNop())
	f.batch = NewBatchInvoiceService(
		f.invoices, f.students, f.periods, provisioner, f.bus, 14, zap.NewNop())
	return f
}

func (f *fixture) addStudent(t *testing.T, admission string, category student.Category) *student.Student {
	t.Helper()
	s, err := student.NewStudent(admission, "Test", "Student", "MALE", category, nil)
	require.NoError(t, err)
	s.ClearDomainEvents()
	require.NoError(t, f.students.Save(context.Background(), s))
	return s
}

func (f *fixture) addCatalogEntry(t *testing.T, name string, amount float64, kind billing.FeeKind) *billing.FeeCatalogEntry {
	t.Helper()
	entry, err := billing.NewFeeCatalogEntry(name, kes(amount), f.yearID, 1, nil, kind)
	require.NoError(t, err)
	require.NoError(t, f.catalog.Save(context.Background(), entry))
	return entry
}

func (f *fixture) addBed(t *testing.T) *hostel.Bed {
	t.Helper()
	ctx := context.Background()
	h, err := hostel.NewHostel("Nyati", "MALE", "")
	require.NoError(t, err)
	require.NoError(t, f.hostels.SaveHostel(ctx, h))
	room, err := hostel.NewRoom(h.ID, "R4", 4)
	require.NoError(t, err)
	require.NoError(t, f.hostels.SaveRoom(ctx, room))
	bed, err := hostel.NewBed(room.ID, "B1")
	require.NoError(t, err)
	require.NoError(t, f.hostels.SaveBed(ctx, bed))
	return bed
}

func (f *fixture) currentInvoice(t *testing.T, studentID uuid.UUID) *billing.Invoice {
	t.Helper()
	inv, err := f.invoices.FindByStudentAndPeriod(context.Background(), studentID, f.yearID, 1)
	require.NoError(t, err)
	return inv
}

func TestSyncHostelAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addCatalogEntry(t, "Boarding Fee", 8000, billing.FeeKindBoarding)
	f.addCatalogEntry(t, "Tuition Fee", 15000, billing.FeeKindGeneral)
	boarder := f.addStudent(t, "ADM-001", student.CategoryBoarding)
	bed := f.addBed(t)
	allocationID := uuid.New()

	require.NoError(t, f.sync.SyncHostelAllocation(ctx, allocationID, boarder.ID, bed.ID))

	inv := f.currentInvoice(t, boarder.ID)
	origin := billing.NewOriginRef(billing.OriginHostel, allocationID)
	item := inv.FindItemByOrigin(origin)
	require.NotNil(t, item)
	assert.Equal(t, "Hostel Fee: Nyati (R4)", item.Description)
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(8000)), "amount = %s", item.Amount)
	// lazily created invoice also carries the catalog fees
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(8000+15000+8000)),
		"total = %s", inv.TotalAmount)

	t.Run("replay is idempotent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, f.sync.SyncHostelAllocation(ctx, allocationID, boarder.ID, bed.ID))
		}
		inv := f.currentInvoice(t, boarder.ID)
		count := 0
		for i := range inv.Items {
			if inv.Items[i].Origin != nil && inv.Items[i].Origin.Module == billing.OriginHostel {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("day student is skipped", func(t *testing.T) {
		day := f.addStudent(t, "ADM-002", student.CategoryDay)
		require.NoError(t, f.sync.SyncHostelAllocation(ctx, uuid.New(), day.ID, bed.ID))
		_, err := f.invoices.FindByStudentAndPeriod(ctx, day.ID, f.yearID, 1)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestSyncTransportAllocation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.addStudent(t, "ADM-001", student.CategoryDay)
	route, err := transport.NewRoute("Town Route", nil, kes(4500))
	require.NoError(t, err)
	require.NoError(t, f.transports.SaveRoute(ctx, route))
	pointCost := kes(5200)
	point, err := transport.NewPickupPoint(route.ID, "Market Stage", &pointCost)
	require.NoError(t, err)
	require.NoError(t, f.transports.SavePickupPoint(ctx, point))

	allocationID := uuid.New()
	require.NoError(t, f.sync.SyncTransportAllocation(ctx, allocationID, s.ID, route.ID, nil))

	inv := f.currentInvoice(t, s.ID)
	origin := billing.NewOriginRef(billing.OriginTransport, allocationID)
	item := inv.FindItemByOrigin(origin)
	require.NotNil(t, item)
	assert.Equal(t, "Transport Fee: Town Route", item.Description)
	assert.True(t, item.Amount.Equal(decimal.NewFromInt(4500)))

	t.Run("pickup point cost overrides route base", func(t *testing.T) {
		require.NoError(t, f.sync.SyncTransportAllocation(ctx, allocationID, s.ID, route.ID, &point.ID))
		inv := f.currentInvoice(t, s.ID)
		item := inv.FindItemByOrigin(origin)
		require.NotNil(t, item)
		assert.True(t, item.Amount.Equal(decimal.NewFromInt(5200)), "amount = %s", item.Amount)
		// the item was updated in place, not duplicated
		assert.Len(t, inv.Items, 1)
	})
}

func TestSyncLibraryFine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.addStudent(t, "ADM-001", student.CategoryDay)
	fine, err := library.NewFine(s.ID, "The River Between", "Lost book", kes(850))
	require.NoError(t, err)
	fine.ClearDomainEvents()
	require.NoError(t, f.fines.Save(ctx, fine))

	require.NoError(t, f.sync.SyncLibraryFine(ctx, fine.ID, s.ID))

	inv := f.currentInvoice(t, s.ID)
	origin := billing.NewOriginRef(billing.OriginLibrary, fine.ID)
	adj := inv.FindAdjustmentByOrigin(origin)
	require.NotNil(t, adj)
	assert.Equal(t, billing.AdjustmentDebit, adj.Type)
	assert.True(t, adj.Amount.Equal(decimal.NewFromInt(850)))
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(850)))

	t.Run("replay is idempotent", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.NoError(t, f.sync.SyncLibraryFine(ctx, fine.ID, s.ID))
		}
		inv := f.currentInvoice(t, s.ID)
		assert.Len(t, inv.Adjustments, 1)
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(850)))
	})

	t.Run("waive reverses the adjustment", func(t *testing.T) {
		require.NoError(t, f.sync.ReverseLibraryFine(ctx, fine.ID, s.ID))
		inv := f.currentInvoice(t, s.ID)
		assert.Empty(t, inv.Adjustments)
		assert.True(t, inv.TotalAmount.IsZero())

		// reversing again is a no-op
		require.NoError(t, f.sync.ReverseLibraryFine(ctx, fine.ID, s.ID))
	})
}

func TestSyncNewStudent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addCatalogEntry(t, "Tuition Fee", 15000, billing.FeeKindGeneral)
	f.addCatalogEntry(t, "Boarding Fee", 8000, billing.FeeKindBoarding)

	day := f.addStudent(t, "ADM-001", student.CategoryDay)
	require.NoError(t, f.sync.SyncNewStudent(ctx, day.ID))

	inv := f.currentInvoice(t, day.ID)
	// boarding-kind fee skipped for a day scholar
	assert.Len(t, inv.Items, 1)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(15000)))
	assert.Equal(t, billing.InvoiceStatusUnpaid, inv.Status)

	boarder := f.addStudent(t, "ADM-002", student.CategoryBoarding)
	require.NoError(t, f.sync.SyncNewStudent(ctx, boarder.ID))
	inv = f.currentInvoice(t, boarder.ID)
	assert.Len(t, inv.Items, 2)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(23000)))

	// re-running for an existing invoice changes nothing
	require.NoError(t, f.sync.SyncNewStudent(ctx, boarder.ID))
	inv = f.currentInvoice(t, boarder.ID)
	assert.Len(t, inv.Items, 2)
}

func TestSettleStudentFines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.addStudent(t, "ADM-001", student.CategoryDay)
	fine, err := library.NewFine(s.ID, "", "Overdue", kes(100))
	require.NoError(t, err)
	fine.ClearDomainEvents()
	require.NoError(t, f.fines.Save(ctx, fine))

	require.NoError(t, f.sync.SettleStudentFines(ctx, s.ID))

	loaded, err := f.fines.FindByID(ctx, fine.ID)
	require.NoError(t, err)
	assert.Equal(t, library.FineStatusPaid, loaded.Status)
}
