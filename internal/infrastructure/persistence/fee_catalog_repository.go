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

// GormFeeCatalogRepository implements billing.FeeCatalogRepository using GORM
type GormFeeCatalogRepository struct {
	db *gorm.DB
}

// NewGormFeeCatalogRepository creates a new GormFeeCatalogRepository
func NewGormFeeCatalogRepository(db *gorm.DB) *GormFeeCatalogRepository {
	return &GormFeeCatalogRepository{db: db}
}

// FindByID finds a fee catalog entry by its ID
func (r *GormFeeCatalogRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.FeeCatalogEntry, error) {
	var model models.FeeCatalogEntryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindApplicable returns active entries for the period whose class scope is
// NULL or matches classID
func (r *GormFeeCatalogRepository) FindApplicable(ctx context.Context, academicYearID uuid.UUID, term int, classID *uuid.UUID) ([]billing.FeeCatalogEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.FeeCatalogEntryModel{}).
		Where("academic_year_id = ? AND term = ? AND is_active = ?", academicYearID, term, true)
	if classID != nil {
		query = query.Where("class_id IS NULL OR class_id = ?", *classID)
	} else {
		query = query.Where("class_id IS NULL")
	}

	var entryModels []models.FeeCatalogEntryModel
	if err := query.Order("name").Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindForPeriod returns active entries for the period across all classes
func (r *GormFeeCatalogRepository) FindForPeriod(ctx context.Context, academicYearID uuid.UUID, term int) ([]billing.FeeCatalogEntry, error) {
	var entryModels []models.FeeCatalogEntryModel
	if err := r.db.WithContext(ctx).
		Where("academic_year_id = ? AND term = ? AND is_active = ?", academicYearID, term, true).
		Order("name").
		Find(&entryModels).Error; err != nil {
		return nil, err
	}
	return toDomainEntries(entryModels), nil
}

// FindByKind returns the first active entry of the given kind for the period
func (r *GormFeeCatalogRepository) FindByKind(ctx context.Context, academicYearID uuid.UUID, term int, kind billing.FeeKind) (*billing.FeeCatalogEntry, error) {
	var model models.FeeCatalogEntryModel
	if err := r.db.WithContext(ctx).
		Where("academic_year_id = ? AND term = ? AND kind = ? AND is_active = ?", academicYearID, term, kind, true).
		Order("created_at").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists fee catalog entries matching the filter with pagination
func (r *GormFeeCatalogRepository) FindAll(ctx context.Context, filter billing.FeeCatalogFilter) ([]billing.FeeCatalogEntry, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.FeeCatalogEntryModel{})
	if filter.AcademicYearID != nil {
		query = query.Where("academic_year_id = ?", *filter.AcademicYearID)
	}
	if filter.Term != nil {
		query = query.Where("term = ?", *filter.Term)
	}
	if filter.ClassID != nil {
		query = query.Where("class_id IS NULL OR class_id = ?", *filter.ClassID)
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
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

	var entryModels []models.FeeCatalogEntryModel
	if err := query.Order("name").Find(&entryModels).Error; err != nil {
		return nil, 0, err
	}
	return toDomainEntries(entryModels), total, nil
}

// Save persists a fee catalog entry
func (r *GormFeeCatalogRepository) Save(ctx context.Context, entry *billing.FeeCatalogEntry) error {
	var model models.FeeCatalogEntryModel
	model.FromDomain(entry)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a fee catalog entry
func (r *GormFeeCatalogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.FeeCatalogEntryModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func toDomainEntries(entryModels []models.FeeCatalogEntryModel) []billing.FeeCatalogEntry {
	entries := make([]billing.FeeCatalogEntry, len(entryModels))
	for i := range entryModels {
		entries[i] = *entryModels[i].ToDomain()
	}
	return entries
}

// Ensure interface compliance
var _ billing.FeeCatalogRepository = (*GormFeeCatalogRepository)(nil)
