package hostel

import (
	"context"

	"github.com/shulesync/backend/internal/domain/hostel"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HostelService manages hostels, rooms, beds, and the upkeep records that
// feed the expense mirror
type HostelService struct {
	hostels  hostel.Repository
	eventBus shared.EventPublisher
	logger   *zap.Logger
}

// NewHostelService creates a new HostelService
func NewHostelService(hostels hostel.Repository, eventBus shared.EventPublisher, logger *zap.Logger) *HostelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HostelService{hostels: hostels, eventBus: eventBus, logger: logger}
}

// CreateHostel registers a new boarding house
func (s *HostelService) CreateHostel(ctx context.Context, name, gender, warden string) (*hostel.Hostel, error) {
	h, err := hostel.NewHostel(name, gender, warden)
	if err != nil {
		return nil, err
	}
	if err := s.hostels.SaveHostel(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// GetHostel fetches a hostel by ID
func (s *HostelService) GetHostel(ctx context.Context, id uuid.UUID) (*hostel.Hostel, error) {
	return s.hostels.FindHostelByID(ctx, id)
}

// ListHostels returns all hostels
func (s *HostelService) ListHostels(ctx context.Context) ([]hostel.Hostel, error) {
	return s.hostels.FindAllHostels(ctx)
}

// CreateRoom adds a room to a hostel
func (s *HostelService) CreateRoom(ctx context.Context, hostelID uuid.UUID, number string, capacity int) (*hostel.Room, error) {
	if _, err := s.hostels.FindHostelByID(ctx, hostelID); err != nil {
		return nil, err
	}
	room, err := hostel.NewRoom(hostelID, number, capacity)
	if err != nil {
		return nil, err
	}
	if err := s.hostels.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	return room, nil
}

// ListRooms returns the rooms of a hostel
func (s *HostelService) ListRooms(ctx context.Context, hostelID uuid.UUID) ([]hostel.Room, error) {
	return s.hostels.FindRoomsByHostel(ctx, hostelID)
}

// CreateBed adds a bed to a room
func (s *HostelService) CreateBed(ctx context.Context, roomID uuid.UUID, number string) (*hostel.Bed, error) {
	if _, err := s.hostels.FindRoomByID(ctx, roomID); err != nil {
		return nil, err
	}
	bed, err := hostel.NewBed(roomID, number)
	if err != nil {
		return nil, err
	}
	if err := s.hostels.SaveBed(ctx, bed); err != nil {
		return nil, err
	}
	return bed, nil
}

// ListBeds returns the beds of a room
func (s *HostelService) ListBeds(ctx context.Context, roomID uuid.UUID) ([]hostel.Bed, error) {
	return s.hostels.FindBedsByRoom(ctx, roomID)
}

// RecordMaintenance logs upkeep work and announces it so the expense ledger
// picks it up
func (s *HostelService) RecordMaintenance(ctx context.Context, hostelID uuid.UUID, description string, cost valueobject.Money, reportedBy string) (*hostel.Maintenance, error) {
	if _, err := s.hostels.FindHostelByID(ctx, hostelID); err != nil {
		return nil, err
	}
	m, err := hostel.NewMaintenance(hostelID, description, cost, reportedBy)
	if err != nil {
		return nil, err
	}
	if err := s.hostels.SaveMaintenance(ctx, m); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, hostel.NewMaintenanceRecordedEvent(m.ID, hostelID)); err != nil {
		s.logger.Error("failed to publish maintenance event", zap.String("maintenance_id", m.ID.String()), zap.Error(err))
	}
	return m, nil
}

// RecordAsset registers hostel property and announces it
func (s *HostelService) RecordAsset(ctx context.Context, hostelID uuid.UUID, name string, value valueobject.Money, quantity int) (*hostel.Asset, error) {
	if _, err := s.hostels.FindHostelByID(ctx, hostelID); err != nil {
		return nil, err
	}
	a, err := hostel.NewAsset(hostelID, name, value, quantity)
	if err != nil {
		return nil, err
	}
	if err := s.hostels.SaveAsset(ctx, a); err != nil {
		return nil, err
	}

	if err := s.eventBus.Publish(ctx, hostel.NewAssetRecordedEvent(a.ID, hostelID)); err != nil {
		s.logger.Error("failed to publish asset event", zap.String("asset_id", a.ID.String()), zap.Error(err))
	}
	return a, nil
}
