package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/shulesync/backend/internal/domain/academics"
	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/library"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/shulesync/backend/internal/domain/transport"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// FeeSyncService reflects hostel, transport and library activity onto
// student invoices. Each sync is idempotent: replaying the same source
// event leaves exactly one ledger entry keyed by its origin reference.
type FeeSyncService struct {
	invoices    billing.InvoiceRepository
	students    student.Repository
	hostels     hostel.Repository
	transports  transport.Repository
	fines       library.Repository
	periods     academics.PeriodResolver
	provisioner *InvoiceProvisioner
	eventBus    shared.EventPublisher
	logger      *zap.Logger
}

// NewFeeSyncService creates a new FeeSyncService
func NewFeeSyncService(
	invoices billing.InvoiceRepository,
	students student.Repository,
	hostels hostel.Repository,
	transports transport.Repository,
	fines library.Repository,
	periods academics.PeriodResolver,
	provisioner *InvoiceProvisioner,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *FeeSyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeSyncService{
		invoices:    invoices,
		students:    students,
		hostels:     hostels,
		transports:  transports,
		fines:       fines,
		periods:     periods,
		provisioner: provisioner,
		eventBus:    eventBus,
		logger:      logger,
	}
}

func (s *FeeSyncService) publishEvents(ctx context.Context, inv *billing.Invoice) {
	events := inv.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	inv.ClearDomainEvents()
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish invoice events",
			zap.String("invoice_id", inv.ID.String()),
			zap.Error(err),
		)
	}
}

// SyncHostelAllocation posts or refreshes the hostel fee item produced by
// one allocation. Non-boarding or non-enrolled students are skipped.
func (s *FeeSyncService) SyncHostelAllocation(ctx context.Context, allocationID, studentID, bedID uuid.UUID) error {
	st, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load student %s: %w", studentID, err)
	}
	if !st.Status.IsEnrolled() || st.Category != student.CategoryBoarding {
		return nil
	}

	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return err
	}

	description, err := s.hostelFeeDescription(ctx, bedID)
	if err != nil {
		return err
	}

	amount := valueobject.ZeroKES()
	var feeEntryID *uuid.UUID
	entry, err := s.provisioner.catalog.FindByKind(ctx, period.AcademicYearID, period.Term, billing.FeeKindBoarding)
	if err == nil {
		amount = entry.GetAmountMoney()
		feeEntryID = &entry.ID
	} else if !errors.Is(err, shared.ErrNotFound) {
		return err
	}

	origin := billing.NewOriginRef(billing.OriginHostel, allocationID)
	var updated *billing.Invoice
	err = s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, created, err := s.provisioner.ResolveOrCreate(ctx, repo, st, period)
		if err != nil {
			return err
		}
		changed, err := inv.UpsertItemByOrigin(origin, description, amount, feeEntryID)
		if err != nil {
			return err
		}
		if !created && !changed {
			return nil
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return err
	}
	if updated != nil {
		s.publishEvents(ctx, updated)
	}
	return nil
}

func (s *FeeSyncService) hostelFeeDescription(ctx context.Context, bedID uuid.UUID) (string, error) {
	bed, err := s.hostels.FindBedByID(ctx, bedID)
	if err != nil {
		return "", fmt.Errorf("load bed %s: %w", bedID, err)
	}
	room, err := s.hostels.FindRoomByID(ctx, bed.RoomID)
	if err != nil {
		return "", fmt.Errorf("load room %s: %w", bed.RoomID, err)
	}
	h, err := s.hostels.FindHostelByID(ctx, room.HostelID)
	if err != nil {
		return "", fmt.Errorf("load hostel %s: %w", room.HostelID, err)
	}
	return fmt.Sprintf("Hostel Fee: %s (%s)", h.Name, room.Number), nil
}

// SyncTransportAllocation posts or refreshes the transport fee item produced
// by one allocation. The pickup point price overrides the route base cost.
func (s *FeeSyncService) SyncTransportAllocation(ctx context.Context, allocationID, studentID, routeID uuid.UUID, pickupPointID *uuid.UUID) error {
	st, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load student %s: %w", studentID, err)
	}
	if !st.Status.IsEnrolled() {
		return nil
	}

	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return err
	}

	route, err := s.transports.FindRouteByID(ctx, routeID)
	if err != nil {
		return fmt.Errorf("load route %s: %w", routeID, err)
	}
	amount := route.BaseCost
	if pickupPointID != nil {
		point, err := s.transports.FindPickupPointByID(ctx, *pickupPointID)
		if err != nil {
			return fmt.Errorf("load pickup point %s: %w", *pickupPointID, err)
		}
		if point.Cost != nil {
			amount = *point.Cost
		}
	}
	description := fmt.Sprintf("Transport Fee: %s", route.Name)

	origin := billing.NewOriginRef(billing.OriginTransport, allocationID)
	var updated *billing.Invoice
	err = s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, created, err := s.provisioner.ResolveOrCreate(ctx, repo, st, period)
		if err != nil {
			return err
		}
		changed, err := inv.UpsertItemByOrigin(origin, description, amount, nil)
		if err != nil {
			return err
		}
		if !created && !changed {
			return nil
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return err
	}
	if updated != nil {
		s.publishEvents(ctx, updated)
	}
	return nil
}

// SyncLibraryFine posts or refreshes the debit adjustment mirroring a fine
func (s *FeeSyncService) SyncLibraryFine(ctx context.Context, fineID, studentID uuid.UUID) error {
	st, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load student %s: %w", studentID, err)
	}

	fine, err := s.fines.FindByID(ctx, fineID)
	if err != nil {
		return fmt.Errorf("load fine %s: %w", fineID, err)
	}
	if fine.Status != library.FineStatusPending {
		return nil
	}

	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return err
	}

	reason := fmt.Sprintf("Library Fine: %s", fine.Reason)
	if fine.BookTitle != "" {
		reason = fmt.Sprintf("Library Fine: %s (%s)", fine.Reason, fine.BookTitle)
	}

	origin := billing.NewOriginRef(billing.OriginLibrary, fineID)
	var updated *billing.Invoice
	err = s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, created, err := s.provisioner.ResolveOrCreate(ctx, repo, st, period)
		if err != nil {
			return err
		}
		changed, err := inv.UpsertAdjustmentByOrigin(origin, billing.AdjustmentDebit, fine.Amount, reason)
		if err != nil {
			return err
		}
		if !created && !changed {
			return nil
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return err
	}
	if updated != nil {
		s.publishEvents(ctx, updated)
	}
	return nil
}

// ReverseLibraryFine removes the adjustment mirroring a waived fine.
// Missing adjustment is not an error: reversal is idempotent.
func (s *FeeSyncService) ReverseLibraryFine(ctx context.Context, fineID, studentID uuid.UUID) error {
	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return err
	}

	origin := billing.NewOriginRef(billing.OriginLibrary, fineID)
	var updated *billing.Invoice
	err = s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, err := repo.FindByStudentAndPeriodForUpdate(ctx, studentID, period.AcademicYearID, period.Term)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		if !inv.RemoveAdjustmentByOrigin(origin) {
			return nil
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return err
	}
	if updated != nil {
		s.publishEvents(ctx, updated)
	}
	return nil
}

// SyncNewStudent lazily creates the invoice with catalog fees when a
// student is admitted
func (s *FeeSyncService) SyncNewStudent(ctx context.Context, studentID uuid.UUID) error {
	st, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return fmt.Errorf("load student %s: %w", studentID, err)
	}
	if !st.Status.IsEnrolled() {
		return nil
	}

	period, err := s.periods.CurrentPeriod(ctx)
	if err != nil {
		return err
	}

	var updated *billing.Invoice
	err = s.invoices.InTx(ctx, func(repo billing.InvoiceRepository) error {
		inv, created, err := s.provisioner.ResolveOrCreate(ctx, repo, st, period)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		if err := repo.Save(ctx, inv); err != nil {
			return err
		}
		updated = inv
		return nil
	})
	if err != nil {
		return err
	}
	if updated != nil {
		s.publishEvents(ctx, updated)
	}
	return nil
}

// SettleStudentFines marks the student's pending library fines PAID once
// the carrying invoice is settled
func (s *FeeSyncService) SettleStudentFines(ctx context.Context, studentID uuid.UUID) error {
	fines, err := s.fines.FindPendingByStudent(ctx, studentID)
	if err != nil {
		return err
	}
	for i := range fines {
		fine := &fines[i]
		fine.MarkPaid()
		if err := s.fines.Save(ctx, fine); err != nil {
			return fmt.Errorf("settle fine %s: %w", fine.ID, err)
		}
	}
	return nil
}
