package billing

import (
	"time"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseCategory classifies institutional spend
type ExpenseCategory string

const (
	ExpenseCategorySalary      ExpenseCategory = "SALARY"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategorySupplies    ExpenseCategory = "SUPPLIES"
	ExpenseCategoryFood        ExpenseCategory = "FOOD"
	ExpenseCategoryTransport   ExpenseCategory = "TRANSPORT"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategorySalary, ExpenseCategoryUtilities, ExpenseCategoryMaintenance,
		ExpenseCategorySupplies, ExpenseCategoryFood, ExpenseCategoryTransport, ExpenseCategoryOther:
		return true
	}
	return false
}

// ExpenseStatus is the approval state of an expense
type ExpenseStatus string

const (
	ExpenseStatusPending  ExpenseStatus = "PENDING"
	ExpenseStatusApproved ExpenseStatus = "APPROVED"
	ExpenseStatusDeclined ExpenseStatus = "DECLINED"
)

// Expense is institution-level spend, independent of students. Mirrored
// expenses (maintenance, fuel, asset purchases) carry an Origin reference
// so replayed source events upsert instead of duplicating.
type Expense struct {
	shared.BaseEntity
	Category     ExpenseCategory `json:"category"`
	Status       ExpenseStatus   `json:"status"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description"`
	PaidTo       string          `json:"paid_to"`
	DateOccurred time.Time       `json:"date_occurred"`
	ApprovedBy   *uuid.UUID      `json:"approved_by,omitempty"`
	Origin       *OriginRef      `json:"origin,omitempty"`
}

// NewExpense creates an expense record
func NewExpense(category ExpenseCategory, amount valueobject.Money, description, paidTo string, dateOccurred time.Time, origin *OriginRef) (*Expense, error) {
	if !category.IsValid() {
		return nil, shared.NewValidationError("Expense category %q is not valid", category)
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("Expense amount must be positive")
	}
	if description == "" {
		return nil, shared.NewValidationError("Expense description cannot be empty")
	}
	if paidTo == "" {
		paidTo = "Unknown"
	}

	return &Expense{
		BaseEntity:   shared.NewBaseEntity(),
		Category:     category,
		Status:       ExpenseStatusPending,
		Amount:       amount.Amount(),
		Description:  description,
		PaidTo:       paidTo,
		DateOccurred: dateOccurred,
		Origin:       origin,
	}, nil
}

// Update refreshes amount, description and occurrence date in place. Used by
// the expense mirror when a source record is re-saved.
func (e *Expense) Update(amount valueobject.Money, description string, dateOccurred time.Time) error {
	if !amount.IsPositive() {
		return shared.NewValidationError("Expense amount must be positive")
	}
	e.Amount = amount.Amount()
	e.Description = description
	e.DateOccurred = dateOccurred
	e.Touch()
	return nil
}

// Approve marks the expense approved
func (e *Expense) Approve(approver uuid.UUID) {
	e.Status = ExpenseStatusApproved
	e.ApprovedBy = &approver
	e.Touch()
}

// Decline marks the expense declined
func (e *Expense) Decline(approver uuid.UUID) {
	e.Status = ExpenseStatusDeclined
	e.ApprovedBy = &approver
	e.Touch()
}

// GetAmountMoney returns the amount as Money
func (e *Expense) GetAmountMoney() valueobject.Money {
	return valueobject.NewMoneyKES(e.Amount)
}
