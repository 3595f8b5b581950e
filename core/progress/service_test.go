package progress_test

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/progress"
	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
	inmemdb "github.com/danwahyudir/lapju/storage/database/inmem"
	testutil "github.com/danwahyudir/lapju/tests"
)

type progressFixture struct {
	svc      *progress.Service
	repo     progress.Repository
	taskRepo task.Repository
	projRepo project.Repository
}

func setup(t *testing.T) progressFixture {
	t.Helper()
	db := inmemdb.NewDB()
	f := progressFixture{
		repo:     inmemdb.NewProgressRepository(db),
		taskRepo: inmemdb.NewTaskRepository(db),
		projRepo: inmemdb.NewProjectRepository(db),
	}
	f.svc = progress.NewService(nil, f.repo, f.taskRepo, f.projRepo, nil)
	return f
}

func (f progressFixture) newEntry(t *testing.T, taskID, projectID, pct string, date time.Time) progress.NewEntry {
	t.Helper()
	return progress.NewEntry{
		TaskID:     taskID,
		ProjectID:  projectID,
		UserID:     "user-1",
		Percentage: testutil.Dec(t, pct),
		Date:       date,
	}
}

func TestService_Record_validation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", time.Time{})
	leaf := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", "", 1, 2, "100")

	t.Run("missing fields", func(t *testing.T) {
		_, err := f.svc.Record(ctx, progress.NewEntry{})
		assert.Error(t, err)
	})

	t.Run("future date", func(t *testing.T) {
		ne := f.newEntry(t, leaf.ID, proj.ID, "10", time.Now().UTC().AddDate(0, 0, 2))
		_, err := f.svc.Record(ctx, ne)
		assert.Error(t, err)
	})

	t.Run("percentage out of range", func(t *testing.T) {
		ne := f.newEntry(t, leaf.ID, proj.ID, "100.01", testutil.Date(2025, time.March, 1))
		_, err := f.svc.Record(ctx, ne)
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})

	t.Run("unknown task", func(t *testing.T) {
		ne := f.newEntry(t, "missing", proj.ID, "10", testutil.Date(2025, time.March, 1))
		_, err := f.svc.Record(ctx, ne)
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("task from another project", func(t *testing.T) {
		other := testutil.CreateProject(t, f.projRepo, "Proyek Lain", time.Time{})
		ne := f.newEntry(t, leaf.ID, other.ID, "10", testutil.Date(2025, time.March, 1))
		_, err := f.svc.Record(ctx, ne)
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("non-leaf task", func(t *testing.T) {
		parent := testutil.CreateTask(t, f.taskRepo, proj.ID, "Struktur", "", 3, 6, "0")
		testutil.CreateTask(t, f.taskRepo, proj.ID, "Kolom", parent.ID, 4, 5, "0")

		ne := f.newEntry(t, parent.ID, proj.ID, "10", testutil.Date(2025, time.March, 1))
		_, err := f.svc.Record(ctx, ne)
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_Record_upsertIdempotence(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", time.Time{})
	leaf := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", "", 1, 2, "100")
	day := testutil.Date(2025, time.March, 3)

	first, err := f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "25", day))
	require.NoError(t, err)

	// same (task, project, date) replaces the value instead of stacking a row
	second, err := f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "40", day))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "40", second.Percentage.String())

	entries, err := f.repo.QueryTaskEntries(ctx, leaf.ID, proj.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestService_Record_backfillCurve(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", testutil.Date(2025, time.January, 1))
	leaf := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", "", 1, 2, "100")

	// first entry on day 11 backfills days 1..10 along the S-curve
	_, err := f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "80", testutil.Date(2025, time.January, 11)))
	require.NoError(t, err)

	entries, err := f.repo.QueryTaskEntries(ctx, leaf.ID, proj.ID)
	require.NoError(t, err)
	require.Len(t, entries, 11)

	sort.Slice(entries, func(i, j int) bool { return entries[i].ProgressDate.Before(entries[j].ProgressDate) })

	assert.Equal(t, testutil.Date(2025, time.January, 1), entries[0].ProgressDate)
	assert.Equal(t, "0", entries[0].Percentage.String())

	// the curve midpoint sits at half the entered percentage
	assert.Equal(t, testutil.Date(2025, time.January, 6), entries[5].ProgressDate)
	assert.Equal(t, "40", entries[5].Percentage.String())

	// monotonic ramp up to the triggering entry, which is stored untouched
	for i := 1; i < len(entries); i++ {
		assert.True(t, entries[i].Percentage.GreaterThanOrEqual(entries[i-1].Percentage),
			"percentage dipped at %s", entries[i].ProgressDate)
	}
	last := entries[len(entries)-1]
	assert.Equal(t, testutil.Date(2025, time.January, 11), last.ProgressDate)
	assert.Equal(t, "80", last.Percentage.String())
}

func TestService_Record_backfillTriggersOnce(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", testutil.Date(2025, time.January, 1))
	leaf := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", "", 1, 2, "100")

	_, err := f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "50", testutil.Date(2025, time.January, 6)))
	require.NoError(t, err)

	entries, err := f.repo.QueryTaskEntries(ctx, leaf.ID, proj.ID)
	require.NoError(t, err)
	countAfterFirst := len(entries)
	require.Equal(t, 6, countAfterFirst)

	// later entries never re-run the backfill
	_, err = f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "70", testutil.Date(2025, time.January, 20)))
	require.NoError(t, err)

	entries, err = f.repo.QueryTaskEntries(ctx, leaf.ID, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, countAfterFirst+1, len(entries))
}

func TestService_Record_backfillSkipped(t *testing.T) {
	ctx := context.Background()

	t.Run("project without start date", func(t *testing.T) {
		f := setup(t)
		proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", time.Time{})
		leaf := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", "", 1, 2, "100")

		_, err := f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "50", testutil.Date(2025, time.January, 11)))
		require.NoError(t, err)

		entries, err := f.repo.QueryTaskEntries(ctx, leaf.ID, proj.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("entry on the start date", func(t *testing.T) {
		f := setup(t)
		proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", testutil.Date(2025, time.January, 1))
		leaf := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", "", 1, 2, "100")

		_, err := f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "50", testutil.Date(2025, time.January, 1)))
		require.NoError(t, err)

		entries, err := f.repo.QueryTaskEntries(ctx, leaf.ID, proj.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})

	t.Run("entry before the start date", func(t *testing.T) {
		f := setup(t)
		proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", testutil.Date(2025, time.June, 1))
		leaf := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", "", 1, 2, "100")

		_, err := f.svc.Record(ctx, f.newEntry(t, leaf.ID, proj.ID, "50", testutil.Date(2025, time.May, 20)))
		require.NoError(t, err)

		entries, err := f.repo.QueryTaskEntries(ctx, leaf.ID, proj.ID)
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestService_Snapshot_endToEnd(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", testutil.Date(2025, time.January, 1))
	root := testutil.CreateTask(t, f.taskRepo, proj.ID, "Pekerjaan", "", 1, 6, "0")
	a := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", root.ID, 2, 3, "50")
	b := testutil.CreateTask(t, f.taskRepo, proj.ID, "Urugan", root.ID, 4, 5, "50")

	_, err := f.svc.Record(ctx, f.newEntry(t, a.ID, proj.ID, "50", testutil.Date(2025, time.January, 11)))
	require.NoError(t, err)

	snap, err := f.svc.Snapshot(ctx, proj.ID, testutil.Date(2025, time.January, 11), progress.ModeMean)
	require.NoError(t, err)

	// a at 50, b with no data at 0 -> root mean 25
	assert.Equal(t, "50", snap.Leaves[a.ID].Percentage.String())
	assert.False(t, snap.Leaves[b.ID].HasData)
	assert.Equal(t, "25", snap.Rollups[root.ID].Percentage.String())
	assert.Equal(t, 2, snap.Project.LeafCount)

	// the backfilled history answers mid-curve dates too
	mid, err := f.svc.Snapshot(ctx, proj.ID, testutil.Date(2025, time.January, 6), progress.ModeMean)
	require.NoError(t, err)
	assert.Equal(t, "25", mid.Leaves[a.ID].Percentage.String()) // 50 * 0.5 at the midpoint
	assert.Equal(t, "12.5", mid.Rollups[root.ID].Percentage.String())

	_, err = f.svc.Snapshot(ctx, "missing", testutil.Date(2025, time.January, 11), progress.ModeMean)
	assert.ErrorIs(t, err, project.ErrNotFound)
}

func TestService_HasAnyDescendantProgress(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	proj := testutil.CreateProject(t, f.projRepo, "Rumdis Koramil", time.Time{})
	root := testutil.CreateTask(t, f.taskRepo, proj.ID, "Pekerjaan", "", 1, 6, "0")
	a := testutil.CreateTask(t, f.taskRepo, proj.ID, "Galian", root.ID, 2, 3, "50")
	other := testutil.CreateTask(t, f.taskRepo, proj.ID, "Lain", "", 7, 8, "50")

	got, err := f.svc.HasAnyDescendantProgress(ctx, root)
	require.NoError(t, err)
	assert.False(t, got)

	_, err = f.svc.Record(ctx, f.newEntry(t, a.ID, proj.ID, "10", testutil.Date(2025, time.March, 1)))
	require.NoError(t, err)

	got, err = f.svc.HasAnyDescendantProgress(ctx, root)
	require.NoError(t, err)
	assert.True(t, got)

	// progress under root does not leak into unrelated subtrees
	got, err = f.svc.HasAnyDescendantProgress(ctx, other)
	require.NoError(t, err)
	assert.False(t, got)
}
