package hostel

import (
	"context"
	"errors"

	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AllocationService is the resource guard for beds: every claim or release
// runs inside one transaction with the bed row locked, so two concurrent
// allocations of the same bed serialize and exactly one wins.
type AllocationService struct {
	hostels  hostel.Repository
	students student.Repository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewAllocationService creates a new AllocationService
func NewAllocationService(
	hostels hostel.Repository,
	students student.Repository,
	eventBus shared.EventPublisher,
	logger *zap.Logger,
) *AllocationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AllocationService{
		hostels:  hostels,
		students: students,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *AllocationService) publishEvents(ctx context.Context, allocation *hostel.Allocation) {
	events := allocation.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	allocation.ClearDomainEvents()
	if err := s.eventBus.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish allocation events",
			zap.String("allocation_id", allocation.ID.String()),
			zap.Error(err),
		)
	}
}

// Allocate claims a bed for a boarding student. The bed row is locked for
// the duration; an occupied bed is rejected with a conflict naming it.
func (s *AllocationService) Allocate(ctx context.Context, studentID, bedID uuid.UUID) (*hostel.Allocation, error) {
	st, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if !st.Status.IsEnrolled() {
		return nil, shared.NewInvalidStateError("student %s is %s and cannot be allocated a bed", st.AdmissionNumber, st.Status)
	}
	if st.Category != student.CategoryBoarding {
		return nil, shared.NewValidationError("student %s is a day scholar; only boarding students get beds", st.AdmissionNumber)
	}

	var allocation *hostel.Allocation
	err = s.hostels.InTx(ctx, func(repo hostel.Repository, allocations hostel.AllocationRepository) error {
		if existing, err := allocations.FindActiveByStudent(ctx, studentID); err == nil {
			return shared.NewConflictError("student %s already holds an active allocation %s", st.AdmissionNumber, existing.ID)
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		if err := s.claimBed(ctx, repo, bedID); err != nil {
			return err
		}

		allocation = hostel.NewAllocation(studentID, bedID)
		return allocations.Save(ctx, allocation)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation)
	s.logger.Info("bed allocated",
		zap.String("allocation_id", allocation.ID.String()),
		zap.String("student_id", studentID.String()),
		zap.String("bed_id", bedID.String()),
	)
	return allocation, nil
}

// Transfer moves an active allocation to a different bed, releasing the old
// one in the same transaction
func (s *AllocationService) Transfer(ctx context.Context, allocationID, newBedID uuid.UUID) (*hostel.Allocation, error) {
	var allocation *hostel.Allocation
	err := s.hostels.InTx(ctx, func(repo hostel.Repository, allocations hostel.AllocationRepository) error {
		var err error
		allocation, err = allocations.FindByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if !allocation.IsActive() {
			return shared.NewInvalidStateError("allocation %s is %s and cannot be transferred", allocation.ID, allocation.Status)
		}
		if allocation.BedID != nil && *allocation.BedID == newBedID {
			return shared.NewValidationError("allocation %s already occupies bed %s", allocation.ID, newBedID)
		}

		if err := s.claimBed(ctx, repo, newBedID); err != nil {
			return err
		}
		if allocation.BedID != nil {
			if err := s.releaseBed(ctx, repo, *allocation.BedID); err != nil {
				return err
			}
		}

		if err := allocation.MoveTo(newBedID); err != nil {
			return err
		}
		return allocations.Save(ctx, allocation)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation)
	return allocation, nil
}

// Release ends an allocation and frees its bed. Cancelled marks the
// allocation voided instead of completed.
func (s *AllocationService) Release(ctx context.Context, allocationID uuid.UUID, cancelled bool) (*hostel.Allocation, error) {
	var allocation *hostel.Allocation
	err := s.hostels.InTx(ctx, func(repo hostel.Repository, allocations hostel.AllocationRepository) error {
		var err error
		allocation, err = allocations.FindByID(ctx, allocationID)
		if err != nil {
			return err
		}
		if !allocation.IsActive() {
			return shared.NewInvalidStateError("allocation %s is already %s", allocation.ID, allocation.Status)
		}

		if allocation.BedID != nil {
			if err := s.releaseBed(ctx, repo, *allocation.BedID); err != nil {
				return err
			}
		}

		if cancelled {
			allocation.Cancel()
		} else {
			allocation.Complete()
		}
		return allocations.Save(ctx, allocation)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, allocation)
	s.logger.Info("bed released",
		zap.String("allocation_id", allocation.ID.String()),
		zap.String("student_id", allocation.StudentID.String()),
	)
	return allocation, nil
}

// ReleaseForStudent ends the student's active allocation, if any. Used by
// the category and status change handlers; no active allocation is a no-op.
func (s *AllocationService) ReleaseForStudent(ctx context.Context, studentID uuid.UUID) error {
	existing, err := s.hostelAllocationForStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	_, err = s.Release(ctx, existing.ID, false)
	return err
}

func (s *AllocationService) hostelAllocationForStudent(ctx context.Context, studentID uuid.UUID) (*hostel.Allocation, error) {
	var found *hostel.Allocation
	err := s.hostels.InTx(ctx, func(_ hostel.Repository, allocations hostel.AllocationRepository) error {
		a, err := allocations.FindActiveByStudent(ctx, studentID)
		if err != nil {
			return err
		}
		found = a
		return nil
	})
	return found, err
}

// ListActive lists all active allocations
func (s *AllocationService) ListActive(ctx context.Context) ([]hostel.Allocation, error) {
	var allocations []hostel.Allocation
	err := s.hostels.InTx(ctx, func(_ hostel.Repository, repo hostel.AllocationRepository) error {
		var err error
		allocations, err = repo.FindAllActive(ctx)
		return err
	})
	return allocations, err
}

// claimBed locks and occupies a bed, maintaining the room's occupancy
// counter and FULL/AVAILABLE status
func (s *AllocationService) claimBed(ctx context.Context, repo hostel.Repository, bedID uuid.UUID) error {
	bed, err := repo.FindBedByIDForUpdate(ctx, bedID)
	if err != nil {
		return err
	}
	if err := bed.Occupy(); err != nil {
		return err
	}
	if err := repo.SaveBed(ctx, bed); err != nil {
		return err
	}

	room, err := repo.FindRoomByID(ctx, bed.RoomID)
	if err != nil {
		return err
	}
	if err := room.IncrementOccupancy(); err != nil {
		return err
	}
	return repo.SaveRoom(ctx, room)
}

// releaseBed locks and vacates a bed, maintaining the room's occupancy
func (s *AllocationService) releaseBed(ctx context.Context, repo hostel.Repository, bedID uuid.UUID) error {
	bed, err := repo.FindBedByIDForUpdate(ctx, bedID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
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
}
