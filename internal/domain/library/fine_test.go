package library

import (
	"testing"

	"github.com/shulesync/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFine(t *testing.T) {
	f, err := NewFine(uuid.New(), "The River Between", "Lost book", valueobject.NewMoneyKESFromFloat(850))
	require.NoError(t, err)
	assert.Equal(t, FineStatusPending, f.Status)

	events := f.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypeFineIssued, events[0].EventType())

	_, err = NewFine(uuid.New(), "", "", valueobject.NewMoneyKESFromFloat(100))
	assert.Error(t, err)
	_, err = NewFine(uuid.New(), "Title", "Overdue", valueobject.ZeroKES())
	assert.Error(t, err)
}

func TestFineWaive(t *testing.T) {
	f, err := NewFine(uuid.New(), "Title", "Overdue", valueobject.NewMoneyKESFromFloat(50))
	require.NoError(t, err)
	f.ClearDomainEvents()

	require.NoError(t, f.Waive())
	assert.Equal(t, FineStatusWaived, f.Status)
	require.Len(t, f.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeFineWaived, f.GetDomainEvents()[0].EventType())

	// a waived fine stays waived
	assert.Error(t, f.Waive())
}

func TestFineMarkPaid(t *testing.T) {
	f, err := NewFine(uuid.New(), "Title", "Overdue", valueobject.NewMoneyKESFromFloat(50))
	require.NoError(t, err)

	f.MarkPaid()
	assert.Equal(t, FineStatusPaid, f.Status)

	// paid fines cannot be waived
	assert.Error(t, f.Waive())

	f.MarkPaid()
	assert.Equal(t, FineStatusPaid, f.Status)
}
