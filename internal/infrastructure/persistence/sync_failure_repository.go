package persistence

import (
	"context"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSyncFailureRepository implements billing.SyncFailureRepository using GORM
type GormSyncFailureRepository struct {
	db *gorm.DB
}

// NewGormSyncFailureRepository creates a new GormSyncFailureRepository
func NewGormSyncFailureRepository(db *gorm.DB) *GormSyncFailureRepository {
	return &GormSyncFailureRepository{db: db}
}

// Save persists a sync failure record
func (r *GormSyncFailureRepository) Save(ctx context.Context, failure *billing.SyncFailure) error {
	var model models.SyncFailureModel
	model.FromDomain(failure)
	return r.db.WithContext(ctx).Save(&model).Error
}

// FindUnresolved returns all failures the reconciliation sweep still has to
// repair
func (r *GormSyncFailureRepository) FindUnresolved(ctx context.Context) ([]billing.SyncFailure, error) {
	var failureModels []models.SyncFailureModel
	if err := r.db.WithContext(ctx).
		Where("resolved_at IS NULL").
		Order("created_at").
		Find(&failureModels).Error; err != nil {
		return nil, err
	}

	failures := make([]billing.SyncFailure, len(failureModels))
	for i := range failureModels {
		failures[i] = *failureModels[i].ToDomain()
	}
	return failures, nil
}

// CountUnresolved counts open failures
func (r *GormSyncFailureRepository) CountUnresolved(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.SyncFailureModel{}).
		Where("resolved_at IS NULL").
		Count(&count).Error
	return count, err
}

// Ensure interface compliance
var _ billing.SyncFailureRepository = (*GormSyncFailureRepository)(nil)
