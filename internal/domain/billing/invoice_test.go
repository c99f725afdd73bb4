package billing

import (
	"testing"

	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(uuid.New(), uuid.New(), 1)
	require.NoError(t, err)
	inv.ClearDomainEvents()
	return inv
}

func kes(amount float64) valueobject.Money {
	return valueobject.NewMoneyKESFromFloat(amount)
}

func TestNewInvoice(t *testing.T) {
	t.Run("valid invoice starts empty and unpaid", func(t *testing.T) {
		inv, err := NewInvoice(uuid.New(), uuid.New(), 2)
		require.NoError(t, err)

		assert.Equal(t, InvoiceStatusUnpaid, inv.Status)
		assert.True(t, inv.TotalAmount.IsZero())
		assert.True(t, inv.PaidAmount.IsZero())
		assert.True(t, inv.Balance.IsZero())
		assert.Len(t, inv.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeInvoiceCreated, inv.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects nil student", func(t *testing.T) {
		_, err := NewInvoice(uuid.Nil, uuid.New(), 1)
		assert.Error(t, err)
	})

	t.Run("rejects out of range term", func(t *testing.T) {
		for _, term := range []int{0, 4, -1} {
			_, err := NewInvoice(uuid.New(), uuid.New(), term)
			assert.Error(t, err, "term %d", term)
		}
	})
}

func TestInvoiceStatusDerivation(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		paid     float64
		expected InvoiceStatus
	}{
		{"no charges no payments", 0, 0, InvoiceStatusUnpaid},
		{"charges without payments", 1000, 0, InvoiceStatusUnpaid},
		{"partially paid", 1000, 400, InvoiceStatusPartial},
		{"paid exactly", 1000, 1000, InvoiceStatusPaid},
		{"overpaid", 1000, 1500, InvoiceStatusOverpaid},
		{"zero invoice with payment", 0, 200, InvoiceStatusOverpaid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv := newTestInvoice(t)
			if tt.total > 0 {
				_, err := inv.AddItem("Tuition Fee", kes(tt.total), nil, nil)
				require.NoError(t, err)
			}
			if tt.paid > 0 {
				_, err := inv.AddPayment(kes(tt.paid), PaymentMethodCash, "", nil, "")
				require.NoError(t, err)
			}

			assert.Equal(t, tt.expected, inv.Status)
			assert.True(t, inv.Balance.Equal(decimal.NewFromFloat(tt.total-tt.paid)),
				"balance = %s, want %v", inv.Balance, tt.total-tt.paid)
		})
	}
}

func TestInvoiceBalanceInvariant(t *testing.T) {
	inv := newTestInvoice(t)

	_, err := inv.AddItem("Tuition Fee", kes(10000), nil, nil)
	require.NoError(t, err)
	_, err = inv.AddItem("Activity Fee", kes(1500), nil, nil)
	require.NoError(t, err)
	_, err = inv.AddAdjustment(AdjustmentDebit, kes(300), "Damaged desk", nil, nil)
	require.NoError(t, err)
	_, err = inv.AddAdjustment(AdjustmentCredit, kes(800), "Bursary award", nil, nil)
	require.NoError(t, err)
	_, err = inv.AddPayment(kes(5000), PaymentMethodMpesa, "QX12BC9T7", nil, "")
	require.NoError(t, err)

	// total = 10000 + 1500 + 300 - 800 = 11000
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(11000)), "total = %s", inv.TotalAmount)
	assert.True(t, inv.PaidAmount.Equal(decimal.NewFromInt(5000)))
	assert.True(t, inv.Balance.Equal(inv.TotalAmount.Sub(inv.PaidAmount)))
	assert.Equal(t, InvoiceStatusPartial, inv.Status)
}

func TestInvoicePaymentLifecycle(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddItem("Tuition Fee", kes(1000), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusUnpaid, inv.Status)

	_, err = inv.AddPayment(kes(400), PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPartial, inv.Status)

	p, err := inv.AddPayment(kes(600), PaymentMethodBank, "SLIP-00921", nil, "")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusPaid, inv.Status)
	assert.True(t, inv.Balance.IsZero())

	_, err = inv.AddPayment(kes(250), PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	assert.Equal(t, InvoiceStatusOverpaid, inv.Status)
	assert.True(t, inv.Balance.Equal(decimal.NewFromInt(-250)))

	// removing a payment walks the status back
	require.NoError(t, inv.RemovePayment(p.ID))
	assert.Equal(t, InvoiceStatusPartial, inv.Status)
	assert.True(t, inv.Balance.Equal(decimal.NewFromInt(350)))
}

func TestInvoiceSettledEvent(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddItem("Tuition Fee", kes(500), nil, nil)
	require.NoError(t, err)
	inv.ClearDomainEvents()

	_, err = inv.AddPayment(kes(500), PaymentMethodCash, "", nil, "")
	require.NoError(t, err)

	var settled int
	for _, ev := range inv.GetDomainEvents() {
		if ev.EventType() == EventTypeInvoiceSettled {
			settled++
		}
	}
	assert.Equal(t, 1, settled)

	// further settled-state changes do not re-announce
	inv.ClearDomainEvents()
	_, err = inv.AddPayment(kes(100), PaymentMethodCash, "", nil, "")
	require.NoError(t, err)
	for _, ev := range inv.GetDomainEvents() {
		assert.NotEqual(t, EventTypeInvoiceSettled, ev.EventType())
	}
}

func TestAddPaymentValidation(t *testing.T) {
	inv := newTestInvoice(t)

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := inv.AddPayment(kes(0), PaymentMethodCash, "", nil, "")
		assert.Error(t, err)
	})

	t.Run("rejects unknown method", func(t *testing.T) {
		_, err := inv.AddPayment(kes(100), PaymentMethod("CRYPTO"), "", nil, "")
		assert.Error(t, err)
	})

	t.Run("mpesa requires reference", func(t *testing.T) {
		_, err := inv.AddPayment(kes(100), PaymentMethodMpesa, "", nil, "")
		assert.Error(t, err)
	})

	t.Run("bank requires reference", func(t *testing.T) {
		_, err := inv.AddPayment(kes(100), PaymentMethodBank, "", nil, "")
		assert.Error(t, err)
	})

	t.Run("cash needs no reference", func(t *testing.T) {
		_, err := inv.AddPayment(kes(100), PaymentMethodCash, "", nil, "")
		assert.NoError(t, err)
	})
}

func TestUpsertItemByOrigin(t *testing.T) {
	inv := newTestInvoice(t)
	origin := OriginRef{Module: OriginHostel, SourceID: uuid.New()}

	changed, err := inv.UpsertItemByOrigin(origin, "Hostel Fee: Nyati (R12)", kes(8000), nil)
	require.NoError(t, err)
	assert.True(t, changed)
	require.Len(t, inv.Items, 1)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(8000)))

	t.Run("replay is a no-op", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			changed, err := inv.UpsertItemByOrigin(origin, "Hostel Fee: Nyati (R12)", kes(8000), nil)
			require.NoError(t, err)
			assert.False(t, changed)
		}
		assert.Len(t, inv.Items, 1)
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(8000)))
	})

	t.Run("changed amount updates in place", func(t *testing.T) {
		changed, err := inv.UpsertItemByOrigin(origin, "Hostel Fee: Nyati (R12)", kes(9500), nil)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Len(t, inv.Items, 1)
		assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(9500)))
	})

	t.Run("different origin adds a second item", func(t *testing.T) {
		other := OriginRef{Module: OriginTransport, SourceID: uuid.New()}
		changed, err := inv.UpsertItemByOrigin(other, "Transport Fee: Route A", kes(4500), nil)
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Len(t, inv.Items, 2)
	})

	t.Run("zero origin rejected", func(t *testing.T) {
		_, err := inv.UpsertItemByOrigin(OriginRef{}, "Orphan", kes(10), nil)
		assert.Error(t, err)
	})
}

func TestUpsertAndRemoveAdjustmentByOrigin(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddItem("Tuition Fee", kes(1000), nil, nil)
	require.NoError(t, err)

	origin := OriginRef{Module: OriginLibrary, SourceID: uuid.New()}

	changed, err := inv.UpsertAdjustmentByOrigin(origin, AdjustmentDebit, kes(150), "Library Fine: Lost book")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1150)))

	// replay leaves one adjustment and the same total
	changed, err = inv.UpsertAdjustmentByOrigin(origin, AdjustmentDebit, kes(150), "Library Fine: Lost book")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, inv.Adjustments, 1)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1150)))

	// waive reverses it; reversing again is a no-op
	assert.True(t, inv.RemoveAdjustmentByOrigin(origin))
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000)))
	assert.False(t, inv.RemoveAdjustmentByOrigin(origin))
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000)))
}

func TestRecalculateIsIdempotent(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddItem("Tuition Fee", kes(7000), nil, nil)
	require.NoError(t, err)
	_, err = inv.AddPayment(kes(2000), PaymentMethodCash, "", nil, "")
	require.NoError(t, err)

	total, paid, balance, status := inv.TotalAmount, inv.PaidAmount, inv.Balance, inv.Status
	for i := 0; i < 3; i++ {
		inv.Recalculate()
	}
	assert.True(t, inv.TotalAmount.Equal(total))
	assert.True(t, inv.PaidAmount.Equal(paid))
	assert.True(t, inv.Balance.Equal(balance))
	assert.Equal(t, status, inv.Status)
}

func TestRemoveItemAndAdjustment(t *testing.T) {
	inv := newTestInvoice(t)
	item, err := inv.AddItem("Activity Fee", kes(1200), nil, nil)
	require.NoError(t, err)
	adj, err := inv.AddAdjustment(AdjustmentCredit, kes(200), "Sibling discount", nil, nil)
	require.NoError(t, err)
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1000)))

	require.NoError(t, inv.RemoveAdjustment(adj.ID))
	assert.True(t, inv.TotalAmount.Equal(decimal.NewFromInt(1200)))

	require.NoError(t, inv.RemoveItem(item.ID))
	assert.True(t, inv.TotalAmount.IsZero())

	assert.Error(t, inv.RemoveItem(uuid.New()))
	assert.Error(t, inv.RemoveAdjustment(uuid.New()))
	assert.Error(t, inv.RemovePayment(uuid.New()))
}

func TestHasItemForCatalogEntry(t *testing.T) {
	inv := newTestInvoice(t)
	entryID := uuid.New()

	assert.False(t, inv.HasItemForCatalogEntry(entryID))
	_, err := inv.AddItem("Tuition Fee", kes(5000), &entryID, nil)
	require.NoError(t, err)
	assert.True(t, inv.HasItemForCatalogEntry(entryID))
	assert.False(t, inv.HasItemForCatalogEntry(uuid.New()))
}
