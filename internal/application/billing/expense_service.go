package billing

import (
	"context"
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ExpenseService handles manually entered institutional expenses. Mirrored
// expenses come in through the ExpenseMirror instead and carry an origin.
type ExpenseService struct {
	expenses billing.ExpenseRepository
	logger   *zap.Logger
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenses billing.ExpenseRepository, logger *zap.Logger) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{expenses: expenses, logger: logger}
}

// CreateExpenseRequest carries one manual expense entry
type CreateExpenseRequest struct {
	Category     billing.ExpenseCategory
	Amount       decimal.Decimal
	Description  string
	PaidTo       string
	DateOccurred time.Time
}

// Create records a manual expense
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*billing.Expense, error) {
	occurred := req.DateOccurred
	if occurred.IsZero() {
		occurred = time.Now()
	}
	expense, err := billing.NewExpense(req.Category, valueobject.NewMoneyKES(req.Amount), req.Description, req.PaidTo, occurred, nil)
	if err != nil {
		return nil, err
	}
	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}
	s.logger.Info("expense recorded",
		zap.String("expense_id", expense.ID.String()),
		zap.String("category", string(expense.Category)),
		zap.String("amount", req.Amount.String()),
	)
	return expense, nil
}

// Get loads one expense
func (s *ExpenseService) Get(ctx context.Context, id uuid.UUID) (*billing.Expense, error) {
	return s.expenses.FindByID(ctx, id)
}

// List lists expenses matching the filter
func (s *ExpenseService) List(ctx context.Context, filter billing.ExpenseFilter) ([]billing.Expense, int64, error) {
	return s.expenses.FindAll(ctx, filter)
}

// Approve marks an expense approved
func (s *ExpenseService) Approve(ctx context.Context, id, approver uuid.UUID) (*billing.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Approve(approver)
	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// Decline marks an expense declined
func (s *ExpenseService) Decline(ctx context.Context, id, approver uuid.UUID) (*billing.Expense, error) {
	expense, err := s.expenses.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expense.Decline(approver)
	if err := s.expenses.Save(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// Delete removes an expense
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.expenses.Delete(ctx, id)
}
