package billing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFeeCatalogEntry(t *testing.T) {
	yearID := uuid.New()

	entry, err := NewFeeCatalogEntry("Tuition Fee", kes(15000), yearID, 1, nil, FeeKindGeneral)
	require.NoError(t, err)
	assert.True(t, entry.IsActive)
	assert.Equal(t, FeeKindGeneral, entry.Kind)
	assert.True(t, entry.GetAmountMoney().Equals(kes(15000)))

	t.Run("validation", func(t *testing.T) {
		_, err := NewFeeCatalogEntry("", kes(100), yearID, 1, nil, FeeKindGeneral)
		assert.Error(t, err)
		_, err = NewFeeCatalogEntry("Fee", kes(-1), yearID, 1, nil, FeeKindGeneral)
		assert.Error(t, err)
		_, err = NewFeeCatalogEntry("Fee", kes(100), uuid.Nil, 1, nil, FeeKindGeneral)
		assert.Error(t, err)
		_, err = NewFeeCatalogEntry("Fee", kes(100), yearID, 4, nil, FeeKindGeneral)
		assert.Error(t, err)
		_, err = NewFeeCatalogEntry("Fee", kes(100), yearID, 1, nil, FeeKind("EXAM"))
		assert.Error(t, err)
	})
}

func TestFeeKindIsValid(t *testing.T) {
	assert.True(t, FeeKindGeneral.IsValid())
	assert.True(t, FeeKindBoarding.IsValid())
	assert.True(t, FeeKindTransport.IsValid())
	assert.False(t, FeeKind("").IsValid())
	assert.False(t, FeeKind("OTHER").IsValid())
}

func TestAppliesToClass(t *testing.T) {
	yearID := uuid.New()
	classA, classB := uuid.New(), uuid.New()

	universal, err := NewFeeCatalogEntry("Activity Fee", kes(500), yearID, 1, nil, FeeKindGeneral)
	require.NoError(t, err)
	assert.True(t, universal.AppliesToClass(&classA))
	assert.True(t, universal.AppliesToClass(nil))

	scoped, err := NewFeeCatalogEntry("Form 4 Exam Fee", kes(2000), yearID, 1, &classA, FeeKindGeneral)
	require.NoError(t, err)
	assert.True(t, scoped.AppliesToClass(&classA))
	assert.False(t, scoped.AppliesToClass(&classB))
	assert.False(t, scoped.AppliesToClass(nil))
}

func TestFeeCatalogEntryDeactivate(t *testing.T) {
	entry, err := NewFeeCatalogEntry("Lunch Fee", kes(3000), uuid.New(), 2, nil, FeeKindGeneral)
	require.NoError(t, err)

	entry.Deactivate()
	assert.False(t, entry.IsActive)
}
