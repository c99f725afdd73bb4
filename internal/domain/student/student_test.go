package student

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStudent(t *testing.T) *Student {
	t.Helper()
	s, err := NewStudent("ADM-001", "Wanjiru", "Kamau", "FEMALE", CategoryDay, nil)
	require.NoError(t, err)
	s.ClearDomainEvents()
	return s
}

func TestNewStudent(t *testing.T) {
	classID := uuid.New()
	s, err := NewStudent("ADM-001", "Wanjiru", "Kamau", "FEMALE", CategoryBoarding, &classID)
	require.NoError(t, err)

	assert.Equal(t, StatusActive, s.Status)
	assert.Equal(t, "Wanjiru Kamau", s.FullName())
	require.Len(t, s.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeStudentCreated, s.GetDomainEvents()[0].EventType())

	t.Run("validation", func(t *testing.T) {
		_, err := NewStudent("", "A", "B", "", CategoryDay, nil)
		assert.Error(t, err)
		_, err = NewStudent("ADM-002", "", "B", "", CategoryDay, nil)
		assert.Error(t, err)
		_, err = NewStudent("ADM-002", "A", "B", "", Category("WEEKLY"), nil)
		assert.Error(t, err)
	})
}

func TestChangeCategory(t *testing.T) {
	s := newTestStudent(t)

	require.NoError(t, s.ChangeCategory(CategoryBoarding))
	assert.Equal(t, CategoryBoarding, s.Category)
	require.Len(t, s.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeStudentCategoryChanged, s.GetDomainEvents()[0].EventType())

	// same category is a no-op with no event
	s.ClearDomainEvents()
	require.NoError(t, s.ChangeCategory(CategoryBoarding))
	assert.Empty(t, s.GetDomainEvents())

	assert.Error(t, s.ChangeCategory(Category("WEEKLY")))
}

func TestChangeStatus(t *testing.T) {
	s := newTestStudent(t)

	require.NoError(t, s.ChangeStatus(StatusWithdrawn))
	assert.Equal(t, StatusWithdrawn, s.Status)
	require.Len(t, s.GetDomainEvents(), 1)
	assert.Equal(t, EventTypeStudentStatusChanged, s.GetDomainEvents()[0].EventType())

	s.ClearDomainEvents()
	require.NoError(t, s.ChangeStatus(StatusWithdrawn))
	assert.Empty(t, s.GetDomainEvents())

	assert.Error(t, s.ChangeStatus(Status("EXPELLED")))
}

func TestStatusIsEnrolled(t *testing.T) {
	assert.True(t, StatusActive.IsEnrolled())
	assert.True(t, StatusSuspended.IsEnrolled())
	assert.False(t, StatusWithdrawn.IsEnrolled())
	assert.False(t, StatusAlumni.IsEnrolled())
	assert.False(t, StatusTransferred.IsEnrolled())
}

func TestSetGuardian(t *testing.T) {
	s := newTestStudent(t)
	s.SetGuardian("Mary Kamau", "+254700000000")
	assert.Equal(t, "Mary Kamau", s.GuardianName)
	assert.Equal(t, "+254700000000", s.GuardianPhone)
}
