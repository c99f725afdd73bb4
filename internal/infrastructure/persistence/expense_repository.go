package persistence

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormExpenseRepository implements billing.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrigin finds the expense mirrored from the given source record
func (r *GormExpenseRepository) FindByOrigin(ctx context.Context, origin billing.OriginRef) (*billing.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).
		Where("origin_module = ? AND origin_source_id = ?", string(origin.Module), origin.SourceID).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists expenses matching the filter with pagination
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter billing.ExpenseFilter) ([]billing.Expense, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ExpenseModel{})
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("description LIKE ? OR paid_to LIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}
	if filter.From != nil {
		query = query.Where("date_occurred >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("date_occurred <= ?", *filter.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var expenseModels []models.ExpenseModel
	if err := query.Order("date_occurred DESC").Find(&expenseModels).Error; err != nil {
		return nil, 0, err
	}

	expenses := make([]billing.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = *expenseModels[i].ToDomain()
	}
	return expenses, total, nil
}

// Save persists an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *billing.Expense) error {
	var model models.ExpenseModel
	model.FromDomain(expense)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteByOrigin removes the expense mirrored from a deleted source record.
// Missing rows are not an error: reversal is idempotent.
func (r *GormExpenseRepository) DeleteByOrigin(ctx context.Context, origin billing.OriginRef) error {
	return r.db.WithContext(ctx).
		Where("origin_module = ? AND origin_source_id = ?", string(origin.Module), origin.SourceID).
		Delete(&models.ExpenseModel{}).Error
}

// Ensure interface compliance
var _ billing.ExpenseRepository = (*GormExpenseRepository)(nil)
