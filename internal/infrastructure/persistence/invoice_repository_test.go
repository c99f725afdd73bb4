package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kes(amount float64) valueobject.Money {
	return valueobject.NewMoneyKESFromFloat(amount)
}

func newSavedInvoice(t *testing.T, repo *GormInvoiceRepository, studentID, yearID uuid.UUID, term int) *billing.Invoice {
	t.Helper()
	inv, err := billing.NewInvoice(studentID, yearID, term)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), inv))
	return inv
}

func TestInvoiceSaveAndLoadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	_, err = inv.AddItem("Tuition Fee", kes(12000), nil, nil)
	require.NoError(t, err)
	origin := billing.NewOriginRef(billing.OriginHostel, uuid.New())
	_, err = inv.AddItem("Hostel Fee: Nyati (R4)", kes(8000), nil, &origin)
	require.NoError(t, err)
	_, err = inv.AddPayment(kes(5000), billing.PaymentMethodMpesa, "QX12BC9T7", nil, "")
	require.NoError(t, err)
	_, err = inv.AddAdjustment(billing.AdjustmentCredit, kes(1000), "Bursary", nil, nil)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, inv))

	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, loaded.Items, 2)
	assert.Len(t, loaded.Payments, 1)
	assert.Len(t, loaded.Adjustments, 1)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(19000)), "total = %s", loaded.TotalAmount)
	assert.True(t, loaded.PaidAmount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, loaded.Balance.Equal(decimal.NewFromInt(14000)))
	assert.Equal(t, billing.InvoiceStatusPartial, loaded.Status)

	// origin survives the round trip so replay detection keeps working
	assert.NotNil(t, loaded.FindItemByOrigin(origin))
}

func TestInvoiceSaveDeletesRemovedChildren(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	item, err := inv.AddItem("Tuition Fee", kes(1000), nil, nil)
	require.NoError(t, err)
	_, err = inv.AddItem("Lunch Fee", kes(500), nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, inv))

	require.NoError(t, inv.RemoveItem(item.ID))
	require.NoError(t, repo.Save(ctx, inv))

	loaded, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "Lunch Fee", loaded.Items[0].Description)
	assert.True(t, loaded.TotalAmount.Equal(decimal.NewFromInt(500)))
}

func TestFindByStudentAndPeriod(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	studentID, yearID := uuid.New(), uuid.New()
	inv := newSavedInvoice(t, repo, studentID, yearID, 2)

	loaded, err := repo.FindByStudentAndPeriod(ctx, studentID, yearID, 2)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, loaded.ID)

	_, err = repo.FindByStudentAndPeriod(ctx, studentID, yearID, 3)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	exists, err := repo.ExistsForStudentAndPeriod(ctx, studentID, yearID, 2)
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = repo.ExistsForStudentAndPeriod(ctx, uuid.New(), yearID, 2)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindMostRecentPrior(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	studentID, yearID := uuid.New(), uuid.New()
	older := newSavedInvoice(t, repo, studentID, yearID, 1)
	current := newSavedInvoice(t, repo, studentID, yearID, 2)

	prior, err := repo.FindMostRecentPrior(ctx, studentID, current.ID)
	require.NoError(t, err)
	assert.Equal(t, older.ID, prior.ID)

	_, err = repo.FindMostRecentPrior(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestExistsPaymentReference(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	_, err = inv.AddItem("Tuition Fee", kes(1000), nil, nil)
	require.NoError(t, err)
	_, err = inv.AddPayment(kes(1000), billing.PaymentMethodMpesa, "QX12BC9T7", nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, inv))

	exists, err := repo.ExistsPaymentReference(ctx, billing.PaymentMethodMpesa, "QX12BC9T7")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsPaymentReference(ctx, billing.PaymentMethodBank, "QX12BC9T7")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFindAllFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	yearID := uuid.New()
	studentA, studentB := uuid.New(), uuid.New()
	newSavedInvoice(t, repo, studentA, yearID, 1)
	newSavedInvoice(t, repo, studentA, yearID, 2)
	newSavedInvoice(t, repo, studentB, yearID, 1)

	invoices, total, err := repo.FindAll(ctx, billing.InvoiceFilter{StudentID: &studentA})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, invoices, 2)

	term := 1
	invoices, total, err = repo.FindAll(ctx, billing.InvoiceFilter{Term: &term})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	status := billing.InvoiceStatusUnpaid
	_, total, err = repo.FindAll(ctx, billing.InvoiceFilter{Status: &status})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	invoices, total, err = repo.FindAll(ctx, billing.InvoiceFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, invoices, 2)

	ids, err := repo.FindIDs(ctx, billing.InvoiceFilter{StudentID: &studentB})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestFindPaymentAndAdjustmentInvoice(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	_, err = inv.AddItem("Tuition Fee", kes(1000), nil, nil)
	require.NoError(t, err)
	payment, err := inv.AddPayment(kes(200), billing.PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	adj, err := inv.AddAdjustment(billing.AdjustmentDebit, kes(50), "Lost textbook", nil, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, inv))

	byPayment, err := repo.FindPaymentInvoice(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byPayment.ID)

	byAdjustment, err := repo.FindAdjustmentInvoice(ctx, adj.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, byAdjustment.ID)

	_, err = repo.FindPaymentInvoice(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv, err := billing.NewInvoice(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)

	sentinel := errors.New("abort")
	err = repo.InTx(ctx, func(txRepo billing.InvoiceRepository) error {
		if err := txRepo.Save(ctx, inv); err != nil {
			return err
		}
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)

	_, err = repo.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteInvoice(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	inv := newSavedInvoice(t, repo, uuid.New(), uuid.New(), 1)
	require.NoError(t, repo.Delete(ctx, inv.ID))
	_, err := repo.FindByID(ctx, inv.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}

func TestDashboardStats(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormInvoiceRepository(db)
	ctx := context.Background()

	yearID := uuid.New()

	first, err := billing.NewInvoice(uuid.New(), yearID, 1)
	require.NoError(t, err)
	_, err = first.AddItem("Tuition Fee", kes(10000), nil, nil)
	require.NoError(t, err)
	_, err = first.AddPayment(kes(4000), billing.PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, first))

	second, err := billing.NewInvoice(uuid.New(), yearID, 1)
	require.NoError(t, err)
	_, err = second.AddItem("Tuition Fee", kes(10000), nil, nil)
	require.NoError(t, err)
	_, err = second.AddPayment(kes(12000), billing.PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, second))

	stats, err := repo.DashboardStats(ctx, &yearID, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, stats.TotalInvoiced.Equal(decimal.NewFromInt(20000)), "invoiced = %s", stats.TotalInvoiced)
	assert.True(t, stats.TotalCollected.Equal(decimal.NewFromInt(16000)))
	// overpayment on the second invoice must not offset arrears on the first
	assert.True(t, stats.TotalOutstanding.Equal(decimal.NewFromInt(6000)), "outstanding = %s", stats.TotalOutstanding)
	assert.True(t, stats.DailyCollection.Equal(decimal.NewFromInt(16000)))
	assert.EqualValues(t, 2, stats.InvoiceCount)

	// scoping to a different year leaves everything at zero
	otherYear := uuid.New()
	stats, err = repo.DashboardStats(ctx, &otherYear, nil, time.Now())
	require.NoError(t, err)
	assert.True(t, stats.TotalInvoiced.IsZero())
	assert.EqualValues(t, 0, stats.InvoiceCount)
}
