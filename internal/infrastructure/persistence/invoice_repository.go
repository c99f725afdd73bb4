package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormInvoiceRepository implements billing.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

func (r *GormInvoiceRepository) withChildren(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Items").
		Preload("Payments").
		Preload("Adjustments")
}

// FindByID finds an invoice with all its children
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withChildren(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate locks the invoice row for the surrounding transaction
// before loading the children
func (r *GormInvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := rowLock(r.db.WithContext(ctx)).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudentAndPeriod finds the student's invoice for one academic period
func (r *GormInvoiceRepository) FindByStudentAndPeriod(ctx context.Context, studentID, academicYearID uuid.UUID, term int) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withChildren(ctx).
		Where("student_id = ? AND academic_year_id = ? AND term = ?", studentID, academicYearID, term).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByStudentAndPeriodForUpdate locks the invoice row for the surrounding
// transaction before loading the children
func (r *GormInvoiceRepository) FindByStudentAndPeriodForUpdate(ctx context.Context, studentID, academicYearID uuid.UUID, term int) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := rowLock(r.db.WithContext(ctx)).
		Where("student_id = ? AND academic_year_id = ? AND term = ?", studentID, academicYearID, term).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := r.loadChildren(ctx, &model); err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *GormInvoiceRepository) loadChildren(ctx context.Context, model *models.InvoiceModel) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("invoice_id = ?", model.ID).Order("created_at").Find(&model.Items).Error; err != nil {
		return err
	}
	if err := db.Where("invoice_id = ?", model.ID).Order("created_at").Find(&model.Payments).Error; err != nil {
		return err
	}
	return db.Where("invoice_id = ?", model.ID).Order("created_at").Find(&model.Adjustments).Error
}

// FindMostRecentPrior returns the newest invoice of the student other than
// excludeID
func (r *GormInvoiceRepository) FindMostRecentPrior(ctx context.Context, studentID, excludeID uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.withChildren(ctx).
		Where("student_id = ? AND id <> ?", studentID, excludeID).
		Order("date_generated DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists invoices matching the filter with pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter billing.InvoiceFilter) ([]billing.Invoice, int64, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

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

	orderBy := "date_generated"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	dir := "DESC"
	if filter.OrderDir == "asc" {
		dir = "ASC"
	}

	var invoiceModels []models.InvoiceModel
	if err := query.
		Preload("Items").
		Preload("Payments").
		Preload("Adjustments").
		Order(orderBy + " " + dir).
		Find(&invoiceModels).Error; err != nil {
		return nil, 0, err
	}

	invoices := make([]billing.Invoice, len(invoiceModels))
	for i := range invoiceModels {
		invoices[i] = *invoiceModels[i].ToDomain()
	}
	return invoices, total, nil
}

// FindIDs returns only the ids of invoices matching the filter
func (r *GormInvoiceRepository) FindIDs(ctx context.Context, filter billing.InvoiceFilter) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	if err := query.Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter billing.InvoiceFilter) *gorm.DB {
	if filter.StudentID != nil {
		query = query.Where("student_id = ?", *filter.StudentID)
	}
	if filter.AcademicYearID != nil {
		query = query.Where("academic_year_id = ?", *filter.AcademicYearID)
	}
	if filter.Term != nil {
		query = query.Where("term = ?", *filter.Term)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.ClassID != nil {
		query = query.Where("student_id IN (?)",
			r.db.Model(&models.StudentModel{}).Select("id").Where("class_id = ?", *filter.ClassID))
	}
	return query
}

// FindPaymentInvoice loads the invoice that owns the given payment
func (r *GormInvoiceRepository) FindPaymentInvoice(ctx context.Context, paymentID uuid.UUID) (*billing.Invoice, error) {
	var payment models.PaymentModel
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", paymentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, payment.InvoiceID)
}

// FindAdjustmentInvoice loads the invoice that owns the given adjustment
func (r *GormInvoiceRepository) FindAdjustmentInvoice(ctx context.Context, adjustmentID uuid.UUID) (*billing.Invoice, error) {
	var adjustment models.AdjustmentModel
	if err := r.db.WithContext(ctx).First(&adjustment, "id = ?", adjustmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, adjustment.InvoiceID)
}

// ExistsForStudentAndPeriod reports whether the student already has an
// invoice for the period
func (r *GormInvoiceRepository) ExistsForStudentAndPeriod(ctx context.Context, studentID, academicYearID uuid.UUID, term int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("student_id = ? AND academic_year_id = ? AND term = ?", studentID, academicYearID, term).
		Count(&count).Error
	return count > 0, err
}

// ExistsPaymentReference reports whether any payment with the given
// (method, reference) pair exists across all invoices
func (r *GormInvoiceRepository) ExistsPaymentReference(ctx context.Context, method billing.PaymentMethod, reference string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("method = ? AND reference = ?", method, reference).
		Count(&count).Error
	return count > 0, err
}

// Save persists the invoice and all its children in one transaction.
// Children removed from the aggregate are deleted; the rest are upserted.
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *billing.Invoice) error {
	var model models.InvoiceModel
	model.FromDomain(invoice)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		parent := model
		parent.Items = nil
		parent.Payments = nil
		parent.Adjustments = nil
		if err := tx.Omit(clause.Associations).Save(&parent).Error; err != nil {
			return err
		}

		if err := syncChildren(tx, model.ID, model.Items, &models.InvoiceItemModel{}); err != nil {
			return err
		}
		if err := syncChildren(tx, model.ID, model.Payments, &models.PaymentModel{}); err != nil {
			return err
		}
		return syncChildren(tx, model.ID, model.Adjustments, &models.AdjustmentModel{})
	})
}

// syncChildren deletes rows the aggregate no longer holds, then upserts the
// rest keyed on the primary key.
func syncChildren[T any](tx *gorm.DB, invoiceID uuid.UUID, children []T, table any) error {
	ids := make([]uuid.UUID, 0, len(children))
	for i := range children {
		switch c := any(&children[i]).(type) {
		case *models.InvoiceItemModel:
			ids = append(ids, c.ID)
		case *models.PaymentModel:
			ids = append(ids, c.ID)
		case *models.AdjustmentModel:
			ids = append(ids, c.ID)
		}
	}

	del := tx.Where("invoice_id = ?", invoiceID)
	if len(ids) > 0 {
		del = del.Where("id NOT IN ?", ids)
	}
	if err := del.Delete(table).Error; err != nil {
		return err
	}

	if len(children) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&children).Error
}

// Delete removes an invoice and, via cascade, its children
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DashboardStats aggregates invoice totals and the day's collections
func (r *GormInvoiceRepository) DashboardStats(ctx context.Context, academicYearID *uuid.UUID, term *int, day time.Time) (*billing.DashboardStats, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{})
	if academicYearID != nil {
		query = query.Where("academic_year_id = ?", *academicYearID)
	}
	if term != nil {
		query = query.Where("term = ?", *term)
	}

	var row struct {
		TotalInvoiced    decimal.Decimal
		TotalCollected   decimal.Decimal
		TotalOutstanding decimal.Decimal
		InvoiceCount     int64
	}
	if err := query.Select(
		"COALESCE(SUM(total_amount), 0) AS total_invoiced, " +
			"COALESCE(SUM(paid_amount), 0) AS total_collected, " +
			"COALESCE(SUM(CASE WHEN balance > 0 THEN balance ELSE 0 END), 0) AS total_outstanding, " +
			"COUNT(*) AS invoice_count").
		Scan(&row).Error; err != nil {
		return nil, err
	}

	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	var daily decimal.Decimal
	dailyQuery := r.db.WithContext(ctx).Model(&models.PaymentModel{}).
		Where("received_at >= ? AND received_at < ?", dayStart, dayEnd)
	if academicYearID != nil || term != nil {
		sub := r.db.Model(&models.InvoiceModel{}).Select("id")
		if academicYearID != nil {
			sub = sub.Where("academic_year_id = ?", *academicYearID)
		}
		if term != nil {
			sub = sub.Where("term = ?", *term)
		}
		dailyQuery = dailyQuery.Where("invoice_id IN (?)", sub)
	}
	if err := dailyQuery.Select("COALESCE(SUM(amount), 0)").Scan(&daily).Error; err != nil {
		return nil, err
	}

	return &billing.DashboardStats{
		TotalInvoiced:    row.TotalInvoiced,
		TotalCollected:   row.TotalCollected,
		TotalOutstanding: row.TotalOutstanding,
		DailyCollection:  daily,
		InvoiceCount:     row.InvoiceCount,
	}, nil
}

// InTx runs fn with a repository bound to one database transaction
func (r *GormInvoiceRepository) InTx(ctx context.Context, fn func(repo billing.InvoiceRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormInvoiceRepository{db: tx})
	})
}

// Ensure interface compliance
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
