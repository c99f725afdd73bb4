package persistence

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/library"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLibraryFineRepository implements library.Repository using GORM
type GormLibraryFineRepository struct {
	db *gorm.DB
}

// NewGormLibraryFineRepository creates a new GormLibraryFineRepository
func NewGormLibraryFineRepository(db *gorm.DB) *GormLibraryFineRepository {
	return &GormLibraryFineRepository{db: db}
}

// FindByID finds a fine by ID
func (r *GormLibraryFineRepository) FindByID(ctx context.Context, id uuid.UUID) (*library.Fine, error) {
	var model models.LibraryFineModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudent lists a student's fines, newest first
func (r *GormLibraryFineRepository) FindByStudent(ctx context.Context, studentID uuid.UUID) ([]library.Fine, error) {
	var fineModels []models.LibraryFineModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("date_issued DESC").
		Find(&fineModels).Error; err != nil {
		return nil, err
	}
	return toDomainFines(fineModels), nil
}

// FindPendingByStudent lists a student's pending fines
func (r *GormLibraryFineRepository) FindPendingByStudent(ctx context.Context, studentID uuid.UUID) ([]library.Fine, error) {
	var fineModels []models.LibraryFineModel
	if err := r.db.WithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, library.FineStatusPending).
		Order("date_issued").
		Find(&fineModels).Error; err != nil {
		return nil, err
	}
	return toDomainFines(fineModels), nil
}

// Save persists a fine
func (r *GormLibraryFineRepository) Save(ctx context.Context, fine *library.Fine) error {
	var model models.LibraryFineModel
	model.FromDomain(fine)
	return r.db.WithContext(ctx).Save(&model).Error
}

func toDomainFines(fineModels []models.LibraryFineModel) []library.Fine {
	fines := make([]library.Fine, len(fineModels))
	for i := range fineModels {
		fines[i] = *fineModels[i].ToDomain()
	}
	return fines
}

// Ensure interface compliance
var _ library.Repository = (*GormLibraryFineRepository)(nil)
