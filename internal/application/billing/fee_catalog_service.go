package billing

import (
	"context"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FeeCatalogService maintains the fee definitions used at invoice
// generation time. Editing an entry never retroactively alters items that
// already snapshot it.
type FeeCatalogService struct {
	catalog billing.FeeCatalogRepository
	logger  *zap.Logger
}

// NewFeeCatalogService creates a new FeeCatalogService
func NewFeeCatalogService(catalog billing.FeeCatalogRepository, logger *zap.Logger) *FeeCatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeCatalogService{catalog: catalog, logger: logger}
}

// CreateFeeRequest carries one new fee definition
type CreateFeeRequest struct {
	Name           string
	Amount         decimal.Decimal
	AcademicYearID uuid.UUID
	Term           int
	ClassID        *uuid.UUID
	Kind           billing.FeeKind
	Description    string
}

// Create adds a fee definition to the catalog
func (s *FeeCatalogService) Create(ctx context.Context, req CreateFeeRequest) (*billing.FeeCatalogEntry, error) {
	kind := req.Kind
	if kind == "" {
		kind = billing.FeeKindGeneral
	}
	entry, err := billing.NewFeeCatalogEntry(req.Name, valueobject.NewMoneyKES(req.Amount), req.AcademicYearID, req.Term, req.ClassID, kind)
	if err != nil {
		return nil, err
	}
	entry.Description = req.Description
	if err := s.catalog.Save(ctx, entry); err != nil {
		return nil, err
	}
	s.logger.Info("fee catalog entry created",
		zap.String("entry_id", entry.ID.String()),
		zap.String("name", entry.Name),
		zap.String("kind", string(entry.Kind)),
	)
	return entry, nil
}

// UpdateFeeRequest carries edits to a fee definition
type UpdateFeeRequest struct {
	Name        *string
	Amount      *decimal.Decimal
	ClassID     *uuid.UUID
	Kind        *billing.FeeKind
	Description *string
	IsActive    *bool
}

// Update edits a fee definition in place
func (s *FeeCatalogService) Update(ctx context.Context, id uuid.UUID, req UpdateFeeRequest) (*billing.FeeCatalogEntry, error) {
	entry, err := s.catalog.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewValidationError("Fee name cannot be empty")
		}
		entry.Name = *req.Name
	}
	if req.Amount != nil {
		if req.Amount.IsNegative() {
			return nil, shared.NewValidationError("Fee amount cannot be negative")
		}
		entry.Amount = *req.Amount
	}
	if req.ClassID != nil {
		entry.ClassID = req.ClassID
	}
	if req.Kind != nil {
		if !req.Kind.IsValid() {
			return nil, shared.NewValidationError("Fee kind %q is not valid", *req.Kind)
		}
		entry.Kind = *req.Kind
	}
	if req.Description != nil {
		entry.Description = *req.Description
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}
	entry.Touch()

	if err := s.catalog.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// Get loads one fee definition
func (s *FeeCatalogService) Get(ctx context.Context, id uuid.UUID) (*billing.FeeCatalogEntry, error) {
	return s.catalog.FindByID(ctx, id)
}

// List lists fee definitions matching the filter
func (s *FeeCatalogService) List(ctx context.Context, filter billing.FeeCatalogFilter) ([]billing.FeeCatalogEntry, int64, error) {
	return s.catalog.FindAll(ctx, filter)
}

// Delete removes a fee definition. Items that snapshot it keep their
// description and amount.
func (s *FeeCatalogService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.catalog.Delete(ctx, id)
}
