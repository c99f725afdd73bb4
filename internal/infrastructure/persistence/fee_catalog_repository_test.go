package persistence

import (
	"context"
	"testing"

	"github.com/shulesync/backend/internal/domain/billing"
	"github.com/shulesync/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveEntry(t *testing.T, repo *GormFeeCatalogRepository, name string, yearID uuid.UUID, term int, classID *uuid.UUID, kind billing.FeeKind) *billing.FeeCatalogEntry {
	t.Helper()
	entry, err := billing.NewFeeCatalogEntry(name, kes(1000), yearID, term, classID, kind)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), entry))
	return entry
}

func TestFeeCatalogFindApplicable(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFeeCatalogRepository(db)
	ctx := context.Background()

	yearID := uuid.New()
	classA, classB := uuid.New(), uuid.New()
	saveEntry(t, repo, "Tuition Fee", yearID, 1, nil, billing.FeeKindGeneral)
	saveEntry(t, repo, "Form 4 Exam Fee", yearID, 1, &classA, billing.FeeKindGeneral)
	saveEntry(t, repo, "Term 2 Levy", yearID, 2, nil, billing.FeeKindGeneral)

	entries, err := repo.FindApplicable(ctx, yearID, 1, &classA)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = repo.FindApplicable(ctx, yearID, 1, &classB)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Tuition Fee", entries[0].Name)

	// unscoped: universal entries only
	entries, err = repo.FindApplicable(ctx, yearID, 1, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Tuition Fee", entries[0].Name)
}

func TestFeeCatalogFindByKind(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFeeCatalogRepository(db)
	ctx := context.Background()

	yearID := uuid.New()
	boarding := saveEntry(t, repo, "Boarding Fee", yearID, 1, nil, billing.FeeKindBoarding)
	saveEntry(t, repo, "Tuition Fee", yearID, 1, nil, billing.FeeKindGeneral)

	entry, err := repo.FindByKind(ctx, yearID, 1, billing.FeeKindBoarding)
	require.NoError(t, err)
	assert.Equal(t, boarding.ID, entry.ID)

	_, err = repo.FindByKind(ctx, yearID, 1, billing.FeeKindTransport)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	// deactivated entries no longer resolve
	boarding.Deactivate()
	require.NoError(t, repo.Save(ctx, boarding))
	_, err = repo.FindByKind(ctx, yearID, 1, billing.FeeKindBoarding)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestFeeCatalogFindAll(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFeeCatalogRepository(db)
	ctx := context.Background()

	yearID := uuid.New()
	saveEntry(t, repo, "Tuition Fee", yearID, 1, nil, billing.FeeKindGeneral)
	saveEntry(t, repo, "Boarding Fee", yearID, 1, nil, billing.FeeKindBoarding)
	inactive := saveEntry(t, repo, "Old Levy", yearID, 1, nil, billing.FeeKindGeneral)
	inactive.Deactivate()
	require.NoError(t, repo.Save(ctx, inactive))

	_, total, err := repo.FindAll(ctx, billing.FeeCatalogFilter{AcademicYearID: &yearID})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)

	_, total, err = repo.FindAll(ctx, billing.FeeCatalogFilter{AcademicYearID: &yearID, ActiveOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	entries, total, err := repo.FindAll(ctx, billing.FeeCatalogFilter{Search: "Boarding"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "Boarding Fee", entries[0].Name)
}

func TestFeeCatalogDelete(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormFeeCatalogRepository(db)
	ctx := context.Background()

	entry := saveEntry(t, repo, "Tuition Fee", uuid.New(), 1, nil, billing.FeeKindGeneral)
	require.NoError(t, repo.Delete(ctx, entry.ID))
	_, err := repo.FindByID(ctx, entry.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, uuid.New()), shared.ErrNotFound)
}
