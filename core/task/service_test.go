package task_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
	"github.com/danwahyudir/lapju/core/task"
	inmemdb "github.com/danwahyudir/lapju/storage/database/inmem"
	testutil "github.com/danwahyudir/lapju/tests"
)

func setup(t *testing.T) (*task.Service, task.Repository) {
	t.Helper()
	db := inmemdb.NewDB()
	return task.NewService(nil, inmemdb.NewTaskRepository(db), inmemdb.NewTemplateRepository(db)), inmemdb.NewTaskRepository(db)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("root append", func(t *testing.T) {
		db := inmemdb.NewDB()
		repo := inmemdb.NewTaskRepository(db)
		svc := task.NewService(nil, repo, inmemdb.NewTemplateRepository(db))

		created, err := svc.Create(ctx, task.NewTask{
			ProjectID: "proj-1",
			Name:      "Pekerjaan Tambahan",
			Volume:    testutil.Dec(t, "3"),
			Price:     testutil.Dec(t, "500000"),
		})
		require.NoError(t, err)
		assert.Equal(t, 1, created.LeftBound)
		assert.Equal(t, 2, created.RightBound)
		assert.Equal(t, "1500000", created.TotalPrice.String())
	})

	t.Run("child shifts project bounds", func(t *testing.T) {
		db := inmemdb.NewDB()
		repo := inmemdb.NewTaskRepository(db)
		svc := task.NewService(nil, repo, inmemdb.NewTemplateRepository(db))

		parent := testutil.CreateTask(t, repo, "proj-1", "Struktur", "", 1, 2, "0")
		trailing := testutil.CreateTask(t, repo, "proj-1", "Finishing", "", 3, 4, "0")
		other := testutil.CreateTask(t, repo, "proj-2", "Lain", "", 1, 2, "0")

		child, err := svc.Create(ctx, task.NewTask{ProjectID: "proj-1", ParentID: parent.ID, Name: "Kolom"})
		require.NoError(t, err)
		assert.Equal(t, 2, child.LeftBound)
		assert.Equal(t, 3, child.RightBound)

		parent, err = repo.GetTask(ctx, parent.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, parent.RightBound)

		trailing, err = repo.GetTask(ctx, trailing.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, trailing.LeftBound)

		// shift is scoped to the task's project
		other, err = repo.GetTask(ctx, other.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, other.LeftBound)

		all, err := repo.QueryProjectTasks(ctx, "proj-1")
		require.NoError(t, err)
		assert.Empty(t, nestedset.Validate(task.Nodes(all)))
	})

	t.Run("parent from another project", func(t *testing.T) {
		db := inmemdb.NewDB()
		repo := inmemdb.NewTaskRepository(db)
		svc := task.NewService(nil, repo, inmemdb.NewTemplateRepository(db))

		parent := testutil.CreateTask(t, repo, "proj-2", "Struktur", "", 1, 2, "0")
		_, err := svc.Create(ctx, task.NewTask{ProjectID: "proj-1", ParentID: parent.ID, Name: "Kolom"})
		assert.ErrorIs(t, err, task.ErrNotFound)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.Create(ctx, task.NewTask{ProjectID: "proj-1", Name: "Galian", Weight: testutil.Dec(t, "-5")})
		require.Error(t, err)
		assert.True(t, core.IsValidationError(err))
	})
}

func TestService_Update_recalculatesTotalPrice(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	repo := inmemdb.NewTaskRepository(db)
	svc := task.NewService(nil, repo, inmemdb.NewTemplateRepository(db))

	created := testutil.CreateTask(t, repo, "proj-1", "Galian", "", 1, 2, "0")

	updated, err := svc.Update(ctx, created.ID, task.UpdateTask{
		Name:   "Galian Tanah",
		Volume: testutil.Dec(t, "2.5"),
		Price:  testutil.Dec(t, "100000"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Galian Tanah", updated.Name)
	assert.Equal(t, "250000", updated.TotalPrice.String())
}

func TestService_NormalizeWeights_scopedToProject(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	repo := inmemdb.NewTaskRepository(db)
	svc := task.NewService(nil, repo, inmemdb.NewTemplateRepository(db))

	a := testutil.CreateTask(t, repo, "proj-1", "A", "", 1, 2, "10")
	b := testutil.CreateTask(t, repo, "proj-1", "B", "", 3, 4, "40")
	other := testutil.CreateTask(t, repo, "proj-2", "C", "", 1, 2, "10")

	res, err := svc.NormalizeWeights(ctx, "proj-1")
	require.NoError(t, err)
	assert.True(t, res.Success)

	gotA, _ := repo.GetTask(ctx, a.ID)
	gotB, _ := repo.GetTask(ctx, b.ID)
	gotOther, _ := repo.GetTask(ctx, other.ID)
	assert.Equal(t, "20", gotA.Weight.String())
	assert.Equal(t, "80", gotB.Weight.String())
	assert.Equal(t, "10", gotOther.Weight.String(), "other projects untouched")
}

func TestService_DeleteProjectTasks(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.NewDB()
	repo := inmemdb.NewTaskRepository(db)
	svc := task.NewService(nil, repo, inmemdb.NewTemplateRepository(db))

	testutil.CreateTask(t, repo, "proj-1", "A", "", 1, 2, "0")
	testutil.CreateTask(t, repo, "proj-1", "B", "", 3, 4, "0")
	keep := testutil.CreateTask(t, repo, "proj-2", "C", "", 1, 2, "0")

	deleted, err := svc.DeleteProjectTasks(ctx, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := repo.QueryProjectTasks(ctx, "proj-1")
	require.NoError(t, err)
	assert.Empty(t, remaining)

	_, err = repo.GetTask(ctx, keep.ID)
	assert.NoError(t, err)
}
