package billing

import (
	"context"
	"errors"
	"time"

	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Names of the catalog-less carry-forward lines added by batch generation
const (
	ArrearsItemDescription  = "Balance Brought Forward (Arrears)"
	OverpaymentCreditReason = "Overpayment Credit"
)

// BatchGenerateRequest scopes one batch generation run. A nil ClassID and
// empty Level mean the whole school; Year and Term default to the current
// period.
type BatchGenerateRequest struct {
	ClassID        *uuid.UUID
	Level          string
	AcademicYearID *uuid.UUID
	Term           *int
	DueDate        *time.Time
}

// BatchGenerateResult summarizes one run. Failures are counted, never
// aborting the batch.
type BatchGenerateResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// BatchInvoiceService generates term invoices for a scope of students, one
// transaction per student, carrying prior balances forward.
type BatchInvoiceService struct {
	invoices    billing.InvoiceRepository
	students    student.Repository
	periods     academics.PeriodResolver
	provisioner *InvoiceProvisioner
	eventBus    shared.EventPublisher
	dueDays     int
	logger      *zap.Logger
}

// NewBatchInvoiceService creates a new BatchInvoiceService
func NewBatchInvoiceService(
	invoices billing.InvoiceRepository,
	students student.Repository,
	periods academics.PeriodResolver,
	provisioner *InvoiceProvisioner,
	eventBus shared.EventPublisher,
	dueDays int,
	logger *zap.Logger,
) *BatchInvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchInvoiceService{
		invoices:    invoices,
		students:    students,
		periods:     periods,
		provisioner: provisioner,
		eventBus:    eventBus,
		dueDays:     dueDays,
		logger:      logger,
	}
}

// Generate creates one invoice per enrolled student in scope. Students who
// already hold an invoice for the period, or whose matched catalog is empty,
// are skipped; per-student failures are counted and logged without stopping
// the run.
func (s *BatchInvoiceService) Generate(ctx context.Context, req BatchGenerateRequest) (*BatchGenerateResult, error) {
	period, err := s.resolvePeriod(ctx, req)
	if err != nil {
		return nil, err
	}

	studentIDs, err := s.students.FindActiveIDs(ctx, req.ClassID, req.Level)
	if err != nil {
		return nil, err
	}

	result := &BatchGenerateResult{}
	for _, studentID := range studentIDs {
		created, err := s.generateForStudent(ctx, studentID, period, req.DueDate)
		switch {
		case err != nil:
			result.Failed++
			s.logger.Error("batch invoice generation failed for student",
				zap.String("student_id", studentID.String()),
				zap.String("academic_year", period.AcademicYear),
				zap.Int("term", period.Term),
				zap.Error(err),
			)
		case created:
			result.Created++
		default:
			result.Skipped++
		}
	}

	s.logger.Info("batch invoice generation finished",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *BatchInvoiceService) resolvePeriod(ctx context.Context, req BatchGenerateRequest) (academics.Period, error) {
	if req.AcademicYearID != nil && req.Term != nil {
		return academics.Period{AcademicYearID: *req.AcademicYearID, Term: *req.Term}, nil
	}
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return academics.Period{}, err
	}
	if req.AcademicYearID != nil {
		period.AcademicYearID = *req.AcademicYearID
	}
	if req.Term != nil {
		period.Term = *req.Term
	}
	return period, nil
}

// generateForStudent runs one student's generation in its own transaction
func (s *BatchInvoiceService) generateForStudent(ctx context.Context, studentID uuid.UUID, period academics.Period, dueDate *time.Time) (bool, error) {
	st, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return false, err
	}
	if !st.Status.IsEnrolled() {
		return false, nil
	}

	var generated *billing.Invoice
	err = s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, created, err := s.provisioner.ResolveOrCreate(ctx, repo, st, period)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		// no applicable catalog entries: do not materialize an empty invoice
		if len(inv.Items) == 0 {
			return nil
		}

		if err := s.carryForward(ctx, repo, inv); err != nil {
			return err
		}

		due := dueDate
		if due == nil && s.dueDays > 0 {
			d := time.Now().AddDate(0, 0, s.dueDays)
			due = &d
		}
		inv.SetDueDate(due)

		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		generated = inv
		return nil
	})
	if err != nil {
		return false, err
	}
	if generated == nil {
		return false, nil
	}

	events := generated.GetDomainEvents()
	generated.ClearDomainEvents()
	if len(events) > 0 {
		if err := s.eventBus.Publish(ctx, events...); err != nil {
			s.logger.Error("failed to publish batch invoice events",
				zap.String("invoice_id", generated.ID.String()),
				zap.Error(err),
			)
		}
	}
	return true, nil
}

// carryForward brings the student's most recent prior balance onto the new
// invoice: an arrears item when money was owed, a credit adjustment when
// the prior invoice was overpaid.
func (s *BatchInvoiceService) carryForward(ctx context.Context, repo billing.InvoiceRepository, inv *billing.Invoice) error {
	prior, err := repo.FindMostRecentPrior(ctx, inv.StudentID, inv.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}

	balance := prior.GetBalanceMoney()
	switch {
	case balance.IsPositive():
		_, err = inv.AddItem(ArrearsItemDescription, balance, nil, nil)
	case balance.IsNegative():
		_, err = inv.AddAdjustment(billing.AdjustmentCredit, balance.Abs(), OverpaymentCreditReason, nil, nil)
	}
	return err
}
