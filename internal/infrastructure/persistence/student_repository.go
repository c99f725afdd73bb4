package persistence

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStudentRepository implements student.Repository using GORM
type GormStudentRepository struct {
	db *gorm.DB
}

// NewGormStudentRepository creates a new GormStudentRepository
func NewGormStudentRepository(db *gorm.DB) *GormStudentRepository {
	return &GormStudentRepository{db: db}
}

// FindByID finds a student by their ID
func (r *GormStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*student.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByAdmissionNumber finds a student by admission number
func (r *GormStudentRepository) FindByAdmissionNumber(ctx context.Context, admissionNumber string) (*student.Student, error) {
	var model models.StudentModel
	if err := r.db.WithContext(ctx).
		Where("admission_number = ?", admissionNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists students matching the filter with pagination
func (r *GormStudentRepository) FindAll(ctx context.Context, filter student.StudentFilter) ([]student.Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StudentModel{})
	if filter.ClassID != nil {
		query = query.Where("class_id = ?", *filter.ClassID)
	}
	if filter.Level != "" {
		query = query.Where("class_id IN (?)",
			r.db.Model(&models.ClassModel{}).Select("id").Where("level = ?", filter.Level))
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("first_name LIKE ? OR last_name LIKE ? OR admission_number LIKE ?", pattern, pattern, pattern)
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

	var studentModels []models.StudentModel
	if err := query.Order("admission_number").Find(&studentModels).Error; err != nil {
		return nil, 0, err
	}

	students := make([]student.Student, len(studentModels))
	for i := range studentModels {
		students[i] = *studentModels[i].ToDomain()
	}
	return students, total, nil
}

// FindActiveIDs returns ids of enrolled students in scope
func (r *GormStudentRepository) FindActiveIDs(ctx context.Context, classID *uuid.UUID, level string) ([]uuid.UUID, error) {
	query := r.db.WithContext(ctx).Model(&models.StudentModel{}).
		Where("status IN ?", []student.Status{student.StatusActive, student.StatusSuspended})
	if classID != nil {
		query = query.Where("class_id = ?", *classID)
	}
	if level != "" {
		query = query.Where("class_id IN (?)",
			r.db.Model(&models.ClassModel{}).Select("id").Where("level = ?", level))
	}

	var ids []uuid.UUID
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Save persists a student
func (r *GormStudentRepository) Save(ctx context.Context, s *student.Student) error {
	var model models.StudentModel
	model.FromDomain(s)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Ensure interface compliance
var _ student.Repository = (*GormStudentRepository)(nil)
