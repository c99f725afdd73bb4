package persistence

import "github.com/shulesync/backend/internal/infrastructure/persistence/models"

// AllModels returns every persistence model in migration order. Parents come
// before children so foreign key constraints resolve.
func AllModels() []any {
	return []any{
		&models.AcademicYearModel{},
		&models.TermModel{},
		&models.ClassModel{},
		&models.StudentModel{},
		&models.FeeCatalogEntryModel{},
		&models.InvoiceModel{},
		&models.InvoiceItemModel{},
		&models.PaymentModel{},
		&models.AdjustmentModel{},
		&models.ExpenseModel{},
		&models.SyncFailureModel{},
		&models.HostelModel{},
		&models.RoomModel{},
		&models.BedModel{},
		&models.HostelAllocationModel{},
		&models.HostelMaintenanceModel{},
		&models.HostelAssetModel{},
		&models.VehicleModel{},
		&models.RouteModel{},
		&models.PickupPointModel{},
		&models.TransportAllocationModel{},
		&models.FuelRecordModel{},
		&models.VehicleMaintenanceModel{},
		&models.LibraryFineModel{},
	}
}
