package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is a priced line on an Invoice. Description and amount are a
// snapshot taken at creation time; later catalog changes do not alter
// existing items. FeeCatalogEntryID is nil for manually added and
// carried-forward lines; Origin is set only on synchronized lines.
type InvoiceItem struct {
	ID                uuid.UUID       `json:"id"`
	InvoiceID         uuid.UUID       `json:"invoice_id"`
	Description       string          `json:"description"`
	Amount            decimal.Decimal `json:"amount"`
	FeeCatalogEntryID *uuid.UUID      `json:"fee_catalog_entry_id,omitempty"`
	Origin            *OriginRef      `json:"origin,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

func newInvoiceItem(invoiceID uuid.UUID, description string, amount decimal.Decimal, feeEntryID *uuid.UUID, origin *OriginRef) *InvoiceItem {
	return &InvoiceItem{
		ID:                uuid.New(),
		InvoiceID:         invoiceID,
		Description:       description,
		Amount:            amount,
		FeeCatalogEntryID: feeEntryID,
		Origin:            origin,
		CreatedAt:         time.Now(),
	}
}
