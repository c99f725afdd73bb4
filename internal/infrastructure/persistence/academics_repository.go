package persistence

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAcademicYearRepository implements academics.AcademicYearRepository using GORM
type GormAcademicYearRepository struct {
	db *gorm.DB
}

// NewGormAcademicYearRepository creates a new GormAcademicYearRepository
func NewGormAcademicYearRepository(db *gorm.DB) *GormAcademicYearRepository {
	return &GormAcademicYearRepository{db: db}
}

// FindByID finds an academic year by ID
func (r *GormAcademicYearRepository) FindByID(ctx context.Context, id uuid.UUID) (*academics.AcademicYear, error) {
	var model models.AcademicYearModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActive returns the active academic year
func (r *GormAcademicYearRepository) FindActive(ctx context.Context) (*academics.AcademicYear, error) {
	var model models.AcademicYearModel
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists all academic years, newest first
func (r *GormAcademicYearRepository) FindAll(ctx context.Context) ([]academics.AcademicYear, error) {
	var yearModels []models.AcademicYearModel
	if err := r.db.WithContext(ctx).Order("name DESC").Find(&yearModels).Error; err != nil {
		return nil, err
	}
	years := make([]academics.AcademicYear, len(yearModels))
	for i := range yearModels {
		years[i] = *yearModels[i].ToDomain()
	}
	return years, nil
}

// Save persists an academic year
func (r *GormAcademicYearRepository) Save(ctx context.Context, year *academics.AcademicYear) error {
	var model models.AcademicYearModel
	model.FromDomain(year)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormTermRepository implements academics.TermRepository using GORM
type GormTermRepository struct {
	db *gorm.DB
}

// NewGormTermRepository creates a new GormTermRepository
func NewGormTermRepository(db *gorm.DB) *GormTermRepository {
	return &GormTermRepository{db: db}
}

// FindCurrent returns the current term within an academic year
func (r *GormTermRepository) FindCurrent(ctx context.Context, academicYearID uuid.UUID) (*academics.Term, error) {
	var model models.TermModel
	if err := r.db.WithContext(ctx).
		Where("academic_year_id = ? AND is_current = ?", academicYearID, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByYear lists the terms of an academic year in order
func (r *GormTermRepository) FindByYear(ctx context.Context, academicYearID uuid.UUID) ([]academics.Term, error) {
	var termModels []models.TermModel
	if err := r.db.WithContext(ctx).
		Where("academic_year_id = ?", academicYearID).
		Order("number").
		Find(&termModels).Error; err != nil {
		return nil, err
	}
	terms := make([]academics.Term, len(termModels))
	for i := range termModels {
		terms[i] = *termModels[i].ToDomain()
	}
	return terms, nil
}

// Save persists a term
func (r *GormTermRepository) Save(ctx context.Context, term *academics.Term) error {
	var model models.TermModel
	model.FromDomain(term)
	return r.db.WithContext(ctx).Save(&model).Error
}

// GormClassRepository implements academics.ClassRepository using GORM
type GormClassRepository struct {
	db *gorm.DB
}

// NewGormClassRepository creates a new GormClassRepository
func NewGormClassRepository(db *gorm.DB) *GormClassRepository {
	return &GormClassRepository{db: db}
}

// FindByID finds a class by ID
func (r *GormClassRepository) FindByID(ctx context.Context, id uuid.UUID) (*academics.Class, error) {
	var model models.ClassModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByLevel lists classes at a level
func (r *GormClassRepository) FindByLevel(ctx context.Context, level string) ([]academics.Class, error) {
	var classModels []models.ClassModel
	if err := r.db.WithContext(ctx).
		Where("level = ?", level).
		Order("name").
		Find(&classModels).Error; err != nil {
		return nil, err
	}
	return toDomainClasses(classModels), nil
}

// FindAll lists all classes
func (r *GormClassRepository) FindAll(ctx context.Context) ([]academics.Class, error) {
	var classModels []models.ClassModel
	if err := r.db.WithContext(ctx).Order("name").Find(&classModels).Error; err != nil {
		return nil, err
	}
	return toDomainClasses(classModels), nil
}

// Save persists a class
func (r *GormClassRepository) Save(ctx context.Context, class *academics.Class) error {
	var model models.ClassModel
	model.FromDomain(class)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toDomainClasses(classModels []models.ClassModel) []academics.Class {
	classes := make([]academics.Class, len(classModels))
	for i := range classModels {
		classes[i] = *classModels[i].ToDomain()
	}
	return classes
}

// RepositoryPeriodResolver resolves the current billing period from the
// active academic year and its current term.
type RepositoryPeriodResolver struct {
	years academics.AcademicYearRepository
	terms academics.TermRepository
}

// NewRepositoryPeriodResolver creates a new RepositoryPeriodResolver
func NewRepositoryPeriodResolver(years academics.AcademicYearRepository, terms academics.TermRepository) *RepositoryPeriodResolver {
	return &RepositoryPeriodResolver{years: years, terms: terms}
}

// CurrentPeriod resolves the active year and current term. It fails when
// either is missing so callers never bill against a half-configured period.
func (r *RepositoryPeriodResolver) CurrentPeriod(ctx context.Context) (academics.Period, error) {
	year, err := r.years.FindActive(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return academics.Period{}, shared.NewInvalidStateError("no active academic year is configured")
		}
		return academics.Period{}, err
	}
	term, err := r.terms.FindCurrent(ctx, year.ID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return academics.Period{}, shared.NewInvalidStateError("academic year %s has no current term", year.Name)
		}
		return academics.Period{}, err
	}
	return academics.Period{
		AcademicYearID: year.ID,
		AcademicYear:   year.Name,
		Term:           term.Number,
	}, nil
}

// Ensure interface compliance
var (
	_ academics.AcademicYearRepository = (*GormAcademicYearRepository)(nil)
	_ academics.TermRepository         = (*GormTermRepository)(nil)
	_ academics.ClassRepository        = (*GormClassRepository)(nil)
	_ academics.PeriodResolver         = (*RepositoryPeriodResolver)(nil)
)
