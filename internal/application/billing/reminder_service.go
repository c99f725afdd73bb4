package billing

import (
	"context"
	"strings"
	"sync"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/infrastructure/notify"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultReminderTemplate is used when the caller supplies none
const DefaultReminderTemplate = "Dear parent of {student_name}, a fee balance of KES {balance} is outstanding. Kindly clear it at your earliest convenience."

// ReminderResult summarizes one reminder batch
type ReminderResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// ReminderService fans payment reminders out over a bounded worker pool.
// Each job loads its own invoice and student, renders the template and
// calls the notifier; failures are counted, never aborting the batch.
type ReminderService struct {
	invoices billing.InvoiceRepository
	students student.Repository
	notifier notify.Notifier
	workers  int
	logger   *zap.Logger
}

// NewReminderService creates a new ReminderService
func NewReminderService(
	invoices billing.InvoiceRepository,
	students student.Repository,
	notifier notify.Notifier,
	workers int,
	logger *zap.Logger,
) *ReminderService {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{
		invoices: invoices,
		students: students,
		notifier: notifier,
		workers:  workers,
		logger:   logger,
	}
}

// SendReminders dispatches one reminder per invoice id. Invoices with no
// outstanding balance are skipped. The context only guards pool shutdown;
// jobs already started run to completion.
func (s *ReminderService) SendReminders(ctx context.Context, invoiceIDs []uuid.UUID, template string) (*ReminderResult, error) {
	if template == "" {
		template = DefaultReminderTemplate
	}

	jobs := make(chan uuid.UUID)
	var mu sync.Mutex
	result := &ReminderResult{}

	var wg sync.WaitGroup
	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range jobs {
				outcome := s.remind(ctx, id, template)
				mu.Lock()
				switch outcome {
				case reminderSent:
					result.Sent++
				case reminderSkipped:
					result.Skipped++
				default:
					result.Failed++
				}
				mu.Unlock()
			}
		}()
	}

feed:
	for _, id := range invoiceIDs {
		select {
		case jobs <- id:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	s.logger.Info("reminder batch finished",
		zap.Int("sent", result.Sent),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

type reminderOutcome int

const (
	reminderSent reminderOutcome = iota
	reminderSkipped
	reminderFailed
)

// remind loads one invoice, renders the template and notifies. No database
// connection is held across the notify call.
func (s *ReminderService) remind(ctx context.Context, invoiceID uuid.UUID, template string) reminderOutcome {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		s.logger.Error("reminder could not load invoice",
			zap.String("invoice_id", invoiceID.String()),
			zap.Error(err),
		)
		return reminderFailed
	}
	if !inv.Balance.IsPositive() {
		return reminderSkipped
	}

	st, err := s.students.FindByID(ctx, inv.StudentID)
	if err != nil {
		s.logger.Error("reminder could not load student",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("student_id", inv.StudentID.String()),
			zap.Error(err),
		)
		return reminderFailed
	}

	body := RenderReminder(template, st.FullName(), inv.Balance.StringFixed(2))
	msg := notify.Message{
		StudentID:   st.ID,
		StudentName: st.FullName(),
		Phone:       st.GuardianPhone,
		Body:        body,
	}
	if err := s.notifier.Send(ctx, msg); err != nil {
		s.logger.Error("reminder delivery failed",
			zap.String("invoice_id", invoiceID.String()),
			zap.String("student_id", st.ID.String()),
			zap.Error(err),
		)
		return reminderFailed
	}
	return reminderSent
}

// RenderReminder substitutes the {student_name} and {balance} placeholders
func RenderReminder(template, studentName, balance string) string {
	r := strings.NewReplacer(
		"{student_name}", studentName,
		"{balance}", balance,
	)
	return r.Replace(template)
}
