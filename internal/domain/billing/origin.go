package billing

import (
	"fmt"

	"github.com/google/uuid"
)

// OriginModule identifies the module a synchronized ledger entry came from
type OriginModule string

const (
	OriginHostel             OriginModule = "hostel"
	OriginTransport          OriginModule = "transport"
	OriginLibrary            OriginModule = "library"
	OriginFuel               OriginModule = "fuel"
	OriginHostelMaintenance  OriginModule = "hostel_maintenance"
	OriginVehicleMaintenance OriginModule = "vehicle_maintenance"
	OriginHostelAsset        OriginModule = "hostel_asset"
)

// OriginRef is a (module, source record id) pair identifying the external
// record that produced a synchronized Item, Adjustment or Expense. It is the
// idempotency key for upserts and the lookup key for reversal when the
// source record is deleted.
type OriginRef struct {
	Module   OriginModule `json:"module"`
	SourceID uuid.UUID    `json:"source_id"`
}

// NewOriginRef creates an origin reference
func NewOriginRef(module OriginModule, sourceID uuid.UUID) OriginRef {
	return OriginRef{Module: module, SourceID: sourceID}
}

// IsZero returns true if the reference is unset
func (o OriginRef) IsZero() bool {
	return o.Module == "" && o.SourceID == uuid.Nil
}

// String returns "module/source-id"
func (o OriginRef) String() string {
	return fmt.Sprintf("%s/%s", o.Module, o.SourceID)
}
