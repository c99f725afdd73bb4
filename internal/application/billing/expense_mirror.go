package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/domain/transport"
	"go.uber.org/zap"
)

// ExpenseMirror reflects operational spend (hostel upkeep, vehicle service,
// fuel, asset purchases) into the expense ledger. Each mirrored expense
// carries an origin reference so replayed events upsert instead of
// duplicating, and deletions reverse cleanly.
type ExpenseMirror struct {
	expenses   billing.ExpenseRepository
	hostels    hostel.Repository
	transports transport.Repository
	logger     *zap.Logger
}

// NewExpenseMirror creates a new ExpenseMirror
func NewExpenseMirror(
	expenses billing.ExpenseRepository,
	hostels hostel.Repository,
	transports transport.Repository,
	logger *zap.Logger,
) *ExpenseMirror {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseMirror{
		expenses:   expenses,
		hostels:    hostels,
		transports: transports,
		logger:     logger,
	}
}

// EventTypes returns the subscribed event types
func (m *ExpenseMirror) EventTypes() []string {
	return []string{
		hostel.EventTypeMaintenanceRecorded,
		hostel.EventTypeAssetRecorded,
		transport.EventTypeMaintenanceClosed,
		transport.EventTypeFuelRecorded,
		transport.EventTypeFuelDeleted,
	}
}

// Handle routes source events to the matching mirror operation
func (m *ExpenseMirror) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *hostel.MaintenanceRecordedEvent:
		return m.mirrorHostelMaintenance(ctx, e)
	case *hostel.AssetRecordedEvent:
		return m.mirrorHostelAsset(ctx, e)
	case *transport.MaintenanceClosedEvent:
		return m.mirrorVehicleMaintenance(ctx, e)
	case *transport.FuelRecordedEvent:
		return m.mirrorFuel(ctx, e)
	case *transport.FuelDeletedEvent:
		return m.expenses.DeleteByOrigin(ctx, billing.NewOriginRef(billing.OriginFuel, e.FuelRecordID))
	default:
		return fmt.Errorf("unexpected event %T for type %s", event, event.EventType())
	}
}

func (m *ExpenseMirror) mirrorHostelMaintenance(ctx context.Context, e *hostel.MaintenanceRecordedEvent) error {
	record, err := m.hostels.FindMaintenanceByID(ctx, e.MaintenanceID)
	if err != nil {
		return fmt.Errorf("load hostel maintenance %s: %w", e.MaintenanceID, err)
	}
	if !record.Cost.IsPositive() {
		return nil
	}
	origin := billing.NewOriginRef(billing.OriginHostelMaintenance, record.ID)
	description := fmt.Sprintf("Hostel Maintenance: %s", record.Description)
	return m.upsert(ctx, origin, billing.ExpenseCategoryMaintenance, record.Cost, description, record.ReportedBy, record.CreatedAt)
}

func (m *ExpenseMirror) mirrorHostelAsset(ctx context.Context, e *hostel.AssetRecordedEvent) error {
	asset, err := m.hostels.FindAssetByID(ctx, e.AssetID)
	if err != nil {
		return fmt.Errorf("load hostel asset %s: %w", e.AssetID, err)
	}
	total := asset.TotalValue()
	if !total.IsPositive() {
		return nil
	}
	origin := billing.NewOriginRef(billing.OriginHostelAsset, asset.ID)
	description := fmt.Sprintf("Hostel Asset Purchase: %s x%d", asset.Name, asset.Quantity)
	return m.upsert(ctx, origin, billing.ExpenseCategorySupplies, total, description, "", asset.CreatedAt)
}

func (m *ExpenseMirror) mirrorVehicleMaintenance(ctx context.Context, e *transport.MaintenanceClosedEvent) error {
	record, err := m.transports.FindMaintenanceByID(ctx, e.MaintenanceID)
	if err != nil {
		return fmt.Errorf("load vehicle maintenance %s: %w", e.MaintenanceID, err)
	}
	if record.Status != transport.MaintenanceStatusCompleted || !record.Cost.IsPositive() {
		return nil
	}
	origin := billing.NewOriginRef(billing.OriginVehicleMaintenance, record.ID)
	description := fmt.Sprintf("Vehicle Maintenance: %s", record.Description)
	return m.upsert(ctx, origin, billing.ExpenseCategoryMaintenance, record.Cost, description, "", record.Date)
}

func (m *ExpenseMirror) mirrorFuel(ctx context.Context, e *transport.FuelRecordedEvent) error {
	record, err := m.transports.FindFuelRecordByID(ctx, e.FuelRecordID)
	if err != nil {
		return fmt.Errorf("load fuel record %s: %w", e.FuelRecordID, err)
	}
	if !record.Cost.IsPositive() {
		return nil
	}
	vehicle, err := m.transports.FindVehicleByID(ctx, record.VehicleID)
	if err != nil {
		return fmt.Errorf("load vehicle %s: %w", record.VehicleID, err)
	}
	origin := billing.NewOriginRef(billing.OriginFuel, record.ID)
	description := fmt.Sprintf("Fuel: %s (%.1f L)", vehicle.Registration, record.Liters)
	return m.upsert(ctx, origin, billing.ExpenseCategoryTransport, record.Cost, description, "", record.Date)
}

// upsert creates or refreshes the mirrored expense identified by origin
func (m *ExpenseMirror) upsert(ctx context.Context, origin billing.OriginRef, category billing.ExpenseCategory, amount valueobject.Money, description, paidTo string, occurred time.Time) error {
	existing, err := m.expenses.FindByOrigin(ctx, origin)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		expense, err := billing.NewExpense(category, amount, description, paidTo, occurred, &origin)
		if err != nil {
			return err
		}
		return m.expenses.Save(ctx, expense)
	}

	if err := existing.Update(amount, description, occurred); err != nil {
		return err
	}
	return m.expenses.Save(ctx, existing)
}

// Ensure ExpenseMirror implements EventHandler
var _ shared.EventHandler = (*ExpenseMirror)(nil)
