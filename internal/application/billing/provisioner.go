package billing

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
)

// InvoiceProvisioner resolves a student's invoice for a period, creating it
// with the applicable catalog fees when it does not exist yet. Every path
// that lazily materializes an invoice (fee sync, batch generation, student
// admission) goes through here so catalog application stays in one place.
type InvoiceProvisioner struct {
	catalog billing.FeeCatalogRepository
}

// NewInvoiceProvisioner creates a new InvoiceProvisioner
func NewInvoiceProvisioner(catalog billing.FeeCatalogRepository) *InvoiceProvisioner {
	return &InvoiceProvisioner{catalog: catalog}
}

// ResolveOrCreate returns the student's invoice for the period, locked for
// the surrounding transaction. When none exists it builds a new one and
// applies every active catalog entry matching the student's class, skipping
// boarding-kind fees for non-boarding students. The caller saves.
func (p *InvoiceProvisioner) ResolveOrCreate(
	ctx context.Context,
	repo billing.InvoiceRepository,
	st *student.Student,
	period academics.Period,
) (inv *billing.Invoice, created bool, err error) {
	inv, err = repo.FindByStudentAndPeriodForUpdate(ctx, st.ID, period.AcademicYearID, period.Term)
	if err == nil {
		return inv, false, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, false, err
	}

	inv, err = billing.NewInvoice(st.ID, period.AcademicYearID, period.Term)
	if err != nil {
		return nil, false, err
	}
	if err := p.ApplyCatalogFees(ctx, inv, st, period); err != nil {
		return nil, false, err
	}
	return inv, true, nil
}

// ApplyCatalogFees adds an item for every applicable catalog entry not yet
// on the invoice. Idempotent: entries already snapshotted are skipped.
func (p *InvoiceProvisioner) ApplyCatalogFees(
	ctx context.Context,
	inv *billing.Invoice,
	st *student.Student,
	period academics.Period,
) error {
	entries, err := p.catalog.FindApplicable(ctx, period.AcademicYearID, period.Term, st.ClassID)
	if err != nil {
		return err
	}
	for i := range entries {
		entry := &entries[i]
		if entry.Kind == billing.FeeKindBoarding && st.Category != student.CategoryBoarding {
			continue
		}
		if inv.HasItemForCatalogEntry(entry.ID) {
			continue
		}
		if _, err := inv.AddItem(entry.Name, entry.GetAmountMoney(), &entry.ID, nil); err != nil {
			return err
		}
	}
	return nil
}
