package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// BillingService handles invoice queries, payments, adjustments and the
// finance dashboard. All ledger mutations go through the Invoice aggregate
// inside one transaction; derived totals are never written directly.
type BillingService struct {
	invoices billing.InvoiceRepository
	periods  academics.PeriodResolver
	eventBus shared.EventPublisher
	stats    cache.StatsCache
	statsTTL time.Duration
	logger   *zap.Logger
}

// NewBillingService creates a new BillingService
func NewBillingService(
	invoices billing.InvoiceRepository,
	periods academics.PeriodResolver,
	eventBus shared.EventPublisher,
	stats cache.StatsCache,
	statsTTL time.Duration,
	logger *zap.Logger,
) *BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BillingService{
		invoices: invoices,
		periods:  periods,
		eventBus: eventBus,
		stats:    stats,
		statsTTL: statsTTL,
		logger:   logger,
	}
}

// publishEvents flushes an aggregate's domain events to the bus. Handler
// failures are absorbed by the bus, so the triggering write stays committed.
func (s *BillingService) publishEvents(ctx context.Context, inv *billing.Invoice) {
	events := inv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	inv.ClearDomainEvents()
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish invoice events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
	}
}

// GetInvoice loads one invoice with all its children
func (s *BillingService) GetInvoice(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	return s.invoices.FindByID(ctx, id)
}

// GetStudentInvoice returns the student's invoice for the given period, or
// for the current period when year and term are not supplied.
func (s *BillingService) GetStudentInvoice(ctx context.Context, studentID uuid.UUID, academicYearID *uuid.UUID, term *int) (*billing.Invoice, error) {
	yearID, termNo, err := s.resolvePeriod(ctx, academicYearID, term)
	if err != nil {
		return nil, err
	}
	return s.invoices.FindByStudentAndPeriod(ctx, studentID, yearID, termNo)
}

func (s *BillingService) resolvePeriod(ctx context.Context, academicYearID *uuid.UUID, term *int) (uuid.UUID, int, error) {
	if academicYearID != nil && term != nil {
		return *academicYearID, *term, nil
	}
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return uuid.Nil, 0, err
	}
	yearID := period.AcademicYearID
	termNo := period.Term
	if academicYearID != nil {
		yearID = *academicYearID
	}
	if term != nil {
		termNo = *term
	}
	return yearID, termNo, nil
}

// ListInvoices lists invoices matching the filter
func (s *BillingService) ListInvoices(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	return s.invoices.FindAll(ctx, filter)
}

// RecordPaymentRequest carries one payment submission
type RecordPaymentRequest struct {
	Amount     decimal.Decimal
	Method     billing.PaymentMethod
	Reference  string
	ReceivedBy *uuid.UUID
	Notes      string
}

// RecordPayment posts a payment against an invoice. The invoice row is
// locked for the duration so concurrent payments serialize; a duplicate
// electronic (method, reference) pair is rejected with CONFLICT.
func (s *BillingService) RecordPayment(ctx context.Context, invoiceID uuid.UUID, req RecordPaymentRequest) (*billing.Invoice, error) {
	var updated *billing.Invoice

	err := s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, err := repo.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}

		if req.Method.RequiresReference() && req.Reference != "" {
			exists, err := repo.ExistsPaymentReference(ctx, req.Method, req.Reference)
			if err != nil {
				return err
			}
			if exists {
				return shared.NewConflictError("A %s payment with reference %q is already recorded", req.Method, req.Reference)
			}
		}

		if _, err := inv.AddPayment(valueobject.NewMoneyKES(req.Amount), req.Method, req.Reference, req.ReceivedBy, req.Notes); err != nil {
			return err
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)
	s.logger.Info("payment recorded",
		zap.String("invoice_id", invoiceID.String()),
		zap.String("amount", req.Amount.String()),
		zap.String("method", string(req.Method)),
	)
	return updated, nil
}

// RemovePayment deletes a payment and recomputes the owning invoice
func (s *BillingService) RemovePayment(ctx context.Context, paymentID uuid.UUID) (*billing.Invoice, error) {
	var updated *billing.Invoice

	err := s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, err := repo.FindPaymentInvoice(ctx, paymentID)
		if err != nil {
			return err
		}
		inv, err = repo.FindByIDForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}
		if err := inv.RemovePayment(paymentID); err != nil {
			return err
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)
	return updated, nil
}

// AddAdjustmentRequest carries one manual adjustment
type AddAdjustmentRequest struct {
	Type       billing.AdjustmentType
	Amount     decimal.Decimal
	Reason     string
	ApprovedBy *uuid.UUID
}

// AddAdjustment posts a manual credit or debit against an invoice
func (s *BillingService) AddAdjustment(ctx context.Context, invoiceID uuid.UUID, req AddAdjustmentRequest) (*billing.Invoice, error) {
	var updated *billing.Invoice

	err := s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, err := repo.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		if _, err := inv.AddAdjustment(req.Type, valueobject.NewMoneyKES(req.Amount), req.Reason, req.ApprovedBy, nil); err != nil {
			return err
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)
	return updated, nil
}

// ListAdjustments returns the adjustments on one invoice
func (s *BillingService) ListAdjustments(ctx context.Context, invoiceID uuid.UUID) ([]billing.Adjustment, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return inv.Adjustments, nil
}

// RemoveAdjustment deletes an adjustment and recomputes the owning invoice
func (s *BillingService) RemoveAdjustment(ctx context.Context, adjustmentID uuid.UUID) (*billing.Invoice, error) {
	var updated *billing.Invoice

	err := s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, err := repo.FindAdjustmentInvoice(ctx, adjustmentID)
		if err != nil {
			return err
		}
		inv, err = repo.FindByIDForUpdate(ctx, inv.ID)
		if err != nil {
			return err
		}
		if err := inv.RemoveAdjustment(adjustmentID); err != nil {
			return err
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, updated)
	return updated, nil
}

// Dashboard returns finance aggregates for the current period, or across
// all periods when allTime is set. Results are cached for a short TTL.
func (s *BillingService) Dashboard(ctx context.Context, allTime bool) (*billing.DashboardStats, error) {
	var yearID *uuid.UUID
	var term *int
	key := "all_time"

	if !allTime {
		period, err := s.periods.CurrentPeriod(ctx)
		if err != nil {
			return nil, err
		}
		yearID = &period.AcademicYearID
		term = &period.Term
		key = fmt.Sprintf("%s:%d", period.AcademicYearID, period.Term)
	}

	if s.stats != nil {
		if cached, found := s.stats.Get(ctx, key); found {
			return &cached, nil
		}
	}

	stats, err := s.invoices.DashboardStats(ctx, yearID, term, time.Now())
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		s.stats.Set(ctx, key, *stats, s.statsTTL)
	}
	return stats, nil
}
