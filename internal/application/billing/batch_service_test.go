package billing

import (
	"context"
	"testing"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchGenerate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addCatalogEntry(t, "Tuition Fee", 15000, billing.FeeKindGeneral)
	f.addStudent(t, "ADM-001", student.CategoryDay)
	f.addStudent(t, "ADM-002", student.CategoryDay)
	withdrawn := f.addStudent(t, "ADM-003", student.CategoryDay)
	require.NoError(t, withdrawn.ChangeStatus(student.StatusWithdrawn))
	withdrawn.ClearDomainEvents()
	require.NoError(t, f.students.Save(ctx, withdrawn))

	result, err := f.batch.Generate(ctx, BatchGenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Failed)

	// withdrawn students get no invoice
	_, err = f.invoices.FindByStudentAndPeriod(ctx, withdrawn.ID, f.yearID, 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	t.Run("second run skips existing invoices", func(t *testing.T) {
		result, err := f.batch.Generate(ctx, BatchGenerateRequest{})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Created)
		assert.Equal(t, 2, result.Skipped)
		assert.Equal(t, 0, result.Failed)
	})
}

func TestBatchGenerateEmptyCatalog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.addStudent(t, "ADM-001", student.CategoryDay)

	result, err := f.batch.Generate(ctx, BatchGenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 0, result.Failed)

	// no empty invoice was materialized
	_, err = f.invoices.FindByStudentAndPeriod(ctx, s.ID, f.yearID, 1)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestBatchGenerateCarriesArrearsForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addCatalogEntry(t, "Tuition Fee", 15000, billing.FeeKindGeneral)
	s := f.addStudent(t, "ADM-001", student.CategoryBoarding)

	// prior-term invoice left 500 unpaid
	prior, err := billing.NewInvoice(s.ID, f.yearID, 3)
	require.NoError(t, err)
	prior.ClearDomainEvents()
	_, err = prior.AddItem("Tuition Fee", kes(1000), nil, nil)
	require.NoError(t, err)
	_, err = prior.AddPayment(kes(500), billing.PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	require.NoError(t, f.invoices.Save(ctx, prior))

	result, err := f.batch.Generate(ctx, BatchGenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	inv := f.currentInvoice(t, s.ID)
	var arrears *billing.InvoiceItem
	for i := range inv.Items {
		if inv.Items[i].Description == ArrearsItemDescription {
			arrears = &inv.Items[i]
		}
	}
	require.NotNil(t, arrears, "expected a carry-forward item")
	assert.True(t, arrears.Amount.Equal(decimal.NewFromInt(500)), "arrears = %s", arrears.Amount)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(15500)))
	require.NotNil(t, inv.DueDate)
}

func TestBatchGenerateCarriesOverpaymentForward(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.addCatalogEntry(t, "Tuition Fee", 15000, billing.FeeKindGeneral)
	s := f.addStudent(t, "ADM-001", student.CategoryDay)

	// prior invoice overpaid by 2000
	prior, err := billing.NewInvoice(s.ID, f.yearID, 3)
	require.NoError(t, err)
	prior.ClearDomainEvents()
	_, err = prior.AddItem("Tuition Fee", kes(1000), nil, nil)
	require.NoError(t, err)
	_, err = prior.AddPayment(kes(3000), billing.PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	require.NoError(t, f.invoices.Save(ctx, prior))

	result, err := f.batch.Generate(ctx, BatchGenerateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	inv := f.currentInvoice(t, s.ID)
	require.Len(t, inv.Adjustments, 1)
	assert.Equal(t, billing.AdjustmentCredit, inv.Adjustments[0].Type)
	assert.True(t, inv.Adjustments[0].Amount.Equal(decimal.NewFromInt(2000)))
	assert.Equal(t, OverpaymentCreditReason, inv.Adjustments[0].Reason)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(13000)))
}
