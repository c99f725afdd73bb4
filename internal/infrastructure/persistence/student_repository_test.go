package persistence

import (
	"context"
	"testing"

	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/shulesync/backend/internal/domain/student"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveStudent(t *testing.T, repo *GormStudentRepository, admission string, category student.Category, classID *uuid.UUID) *student.Student {
	t.Helper()
	s, err := student.NewStudent(admission, "Test", "Student", "MALE", category, classID)
	require.NoError(t, err)
	s.ClearDomainEvents()
	require.NoError(t, repo.Save(context.Background(), s))
	return s
}

func TestStudentRoundTrip(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStudentRepository(db)
	ctx := context.Background()

	s := saveStudent(t, repo, "ADM-001", student.CategoryBoarding, nil)
	s.SetGuardian("Mary Kamau", "+254700000000")
	require.NoError(t, repo.Save(ctx, s))

	loaded, err := repo.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, student.CategoryBoarding, loaded.Category)
	assert.Equal(t, "Mary Kamau", loaded.GuardianName)

	byAdmission, err := repo.FindByAdmissionNumber(ctx, "ADM-001")
	require.NoError(t, err)
	assert.Equal(t, s.ID, byAdmission.ID)

	_, err = repo.FindByAdmissionNumber(ctx, "ADM-999")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestStudentFindAllFilters(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStudentRepository(db)
	ctx := context.Background()

	classID := uuid.New()
	saveStudent(t, repo, "ADM-001", student.CategoryDay, &classID)
	saveStudent(t, repo, "ADM-002", student.CategoryBoarding, &classID)
	withdrawn := saveStudent(t, repo, "ADM-003", student.CategoryDay, nil)
	require.NoError(t, withdrawn.ChangeStatus(student.StatusWithdrawn))
	withdrawn.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, withdrawn))

	_, total, err := repo.FindAll(ctx, student.StudentFilter{ClassID: &classID})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	boarding := student.CategoryBoarding
	students, total, err := repo.FindAll(ctx, student.StudentFilter{Category: &boarding})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, students, 1)
	assert.Equal(t, "ADM-002", students[0].AdmissionNumber)

	students, _, err = repo.FindAll(ctx, student.StudentFilter{Search: "ADM-003"})
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestFindActiveIDs(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormStudentRepository(db)
	ctx := context.Background()

	classID := uuid.New()
	active := saveStudent(t, repo, "ADM-001", student.CategoryDay, &classID)
	suspended := saveStudent(t, repo, "ADM-002", student.CategoryDay, &classID)
	require.NoError(t, suspended.ChangeStatus(student.StatusSuspended))
	suspended.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, suspended))
	gone := saveStudent(t, repo, "ADM-003", student.CategoryDay, &classID)
	require.NoError(t, gone.ChangeStatus(student.StatusAlumni))
	gone.ClearDomainEvents()
	require.NoError(t, repo.Save(ctx, gone))

	ids, err := repo.FindActiveIDs(ctx, &classID, "")
	require.NoError(t, err)
	// suspended students remain enrolled and still accrue fees
	assert.ElementsMatch(t, []uuid.UUID{active.ID, suspended.ID}, ids)

	ids, err = repo.FindActiveIDs(ctx, nil, "")
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
