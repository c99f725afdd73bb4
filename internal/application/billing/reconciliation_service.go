package billing

import (
	"context"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/transport"
	"go.uber.org/zap"
)

// ReconcileResult summarizes one sweep
type ReconcileResult struct {
	Processed int `json:"processed"`
	Repaired  int `json:"repaired"`
	Failed    int `json:"failed"`
}

// ReconciliationService is the self-healing sweep: it recomputes every
// invoice's derived fields from its children, re-runs fee sync for active
// allocations, severs zombie bed links and resolves recorded sync failures.
// Each invoice is handled in its own transaction so one failure never
// poisons the sweep.
type ReconciliationService struct {
	invoices             billing.InvoiceRepository
	hostels              hostel.Repository
	hostelAllocations    hostel.AllocationRepository
	transportAllocations transport.AllocationRepository
	failures             billing.SyncFailureRepository
	sync                 *FeeSyncService
	logger               *zap.Logger
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(
	invoices billing.InvoiceRepository,
	hostels hostel.Repository,
	hostelAllocations hostel.AllocationRepository,
	transportAllocations transport.AllocationRepository,
	failures billing.SyncFailureRepository,
	sync *FeeSyncService,
	logger *zap.Logger,
) *ReconciliationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReconciliationService{
		invoices:             invoices,
		hostels:              hostels,
		hostelAllocations:    hostelAllocations,
		transportAllocations: transportAllocations,
		failures:             failures,
		sync:                 sync,
		logger:               logger,
	}
}

// SyncAll runs the full sweep. Idempotent: a second run over a consistent
// ledger repairs nothing.
func (s *ReconciliationService) SyncAll(ctx context.Context) (*ReconcileResult, error) {
	result := &ReconcileResult{}

	s.recomputeInvoices(ctx, result)
	s.resyncActiveAllocations(ctx, result)
	s.severZombieBedLinks(ctx, result)
	s.resolveFailures(ctx, result)

	s.logger.Info("reconciliation sweep finished",
		zap.Int("processed", result.Processed),
		zap.Int("repaired", result.Repaired),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// recomputeInvoices re-derives totals, balance and status from the children
// of every invoice, one transaction per invoice
func (s *ReconciliationService) recomputeInvoices(ctx context.Context, result *ReconcileResult) {
	ids, err := s.invoices.FindIDs(ctx, billing.InvoiceFilter{})
	if err != nil {
		s.logger.Error("reconciliation could not list invoices", zap.Error(err))
		result.Failed++
		return
	}

	for _, id := range ids {
		repaired := false
		err := s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
			inv, err := repo.FindByIDForUpdate(ctx, id)
			if err != nil {
				return err
			}
			total, paid, status := inv.TotalAmount, inv.PaidAmount, inv.Status
			inv.Recalculate()
			if inv.TotalAmount.Equal(total) && inv.PaidAmount.Equal(paid) && inv.Status == status {
				return nil
			}
			repaired = true
			return repo.Save(ctx, inv)
		})
		result.Processed++
		if err != nil {
			result.Failed++
			s.logger.Error("invoice recompute failed",
				zap.String("invoice_id", id.String()),
				zap.Error(err),
			)
			continue
		}
		if repaired {
			result.Repaired++
			s.logger.Warn("invoice derived fields drifted, repaired",
				zap.String("invoice_id", id.String()),
			)
		}
	}
}

// resyncActiveAllocations replays fee sync for every active hostel and
// transport allocation. Upserts by origin make the replay a no-op when the
// ledger already agrees.
func (s *ReconciliationService) resyncActiveAllocations(ctx context.Context, result *ReconcileResult) {
	hostelAllocations, err := s.hostelAllocations.FindAllActive(ctx)
	if err != nil {
		s.logger.Error("reconciliation could not list hostel allocations", zap.Error(err))
		result.Failed++
	} else {
		for i := range hostelAllocations {
			a := &hostelAllocations[i]
			if a.BedID == nil {
				continue
			}
			if err := s.sync.SyncHostelAllocation(ctx, a.ID, a.StudentID, *a.BedID); err != nil {
				result.Failed++
				s.logger.Error("hostel fee resync failed",
					zap.String("allocation_id", a.ID.String()),
					zap.Error(err),
				)
			}
		}
	}

	transportAllocations, err := s.transportAllocations.FindAllActive(ctx)
	if err != nil {
		s.logger.Error("reconciliation could not list transport allocations", zap.Error(err))
		result.Failed++
		return
	}
	for i := range transportAllocations {
		a := &transportAllocations[i]
		if err := s.sync.SyncTransportAllocation(ctx, a.ID, a.StudentID, a.RouteID, a.PickupPointID); err != nil {
			result.Failed++
			s.logger.Error("transport fee resync failed",
				zap.String("allocation_id", a.ID.String()),
				zap.Error(err),
			)
		}
	}
}

// severZombieBedLinks releases beds still held by finished allocations
func (s *ReconciliationService) severZombieBedLinks(ctx context.Context, result *ReconcileResult) {
	zombies, err := s.hostelAllocations.FindReleasedWithBed(ctx)
	if err != nil {
		s.logger.Error("reconciliation could not list zombie allocations", zap.Error(err))
		result.Failed++
		return
	}

	for i := range zombies {
		allocation := &zombies[i]
		bedID := *allocation.BedID

		err := s.hostels.InTx(ctx, func(repo hostel.Repository, _ hostel.AllocationRepository) error {
			bed, err := repo.FindBedByIDForUpdate(ctx, bedID)
			if err != nil {
				return err
			}
			if bed.Status != hostel.BedStatusOccupied {
				return nil
			}
			bed.Vacate()
			if err := repo.SaveBed(ctx, bed); err != nil {
				return err
			}
			room, err := repo.FindRoomByID(ctx, bed.RoomID)
			if err != nil {
				return err
			}
			room.DecrementOccupancy()
			return repo.SaveRoom(ctx, room)
		})
		if err != nil {
			result.Failed++
			s.logger.Error("zombie bed release failed",
				zap.String("allocation_id", allocation.ID.String()),
				zap.String("bed_id", bedID.String()),
				zap.Error(err),
			)
			continue
		}

		allocation.SeverBedLink()
		if err := s.hostelAllocations.Save(ctx, allocation); err != nil {
			result.Failed++
			s.logger.Error("zombie allocation update failed",
				zap.String("allocation_id", allocation.ID.String()),
				zap.Error(err),
			)
			continue
		}
		result.Repaired++
	}
}

// resolveFailures marks recorded sync failures resolved: the sweep above
// has just replayed every active allocation's sync
func (s *ReconciliationService) resolveFailures(ctx context.Context, result *ReconcileResult) {
	failures, err := s.failures.FindUnresolved(ctx)
	if err != nil {
		s.logger.Error("reconciliation could not list sync failures", zap.Error(err))
		result.Failed++
		return
	}
	for i := range failures {
		failure := &failures[i]
		failure.Resolve()
		if err := s.failures.Save(ctx, failure); err != nil {
			result.Failed++
			s.logger.Error("sync failure resolution failed",
				zap.String("failure_id", failure.ID.String()),
				zap.Error(err),
			)
		}
	}
}
