package template_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
	"github.com/danwahyudir/lapju/core/template"
	inmemdb "github.com/danwahyudir/lapju/storage/database/inmem"
	testutil "github.com/danwahyudir/lapju/tests"
)

func setup(t *testing.T) (*template.Service, template.Repository) {
	t.Helper()
	repo := inmemdb.NewTemplateRepository(inmemdb.NewDB())
	return template.NewService(nil, repo), repo
}

func assertValidTree(t *testing.T, repo template.Repository) {
	t.Helper()
	all, err := repo.QueryAllTemplates(context.Background())
	require.NoError(t, err)
	violations := nestedset.Validate(template.Nodes(all))
	assert.Empty(t, violations, "tree invariants broken: %v", violations)
}

func TestService_Create_rootAppend(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, template.NewTemplate{Name: "Pekerjaan Persiapan"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.LeftBound)
	assert.Equal(t, 2, first.RightBound)

	second, err := svc.Create(ctx, template.NewTemplate{Name: "Pekerjaan Pondasi"})
	require.NoError(t, err)
	assert.Equal(t, 3, second.LeftBound)
	assert.Equal(t, 4, second.RightBound)

	assertValidTree(t, repo)
}

func TestService_Create_childShiftsBounds(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, template.NewTemplate{Name: "Struktur"})
	require.NoError(t, err)
	trailing, err := svc.Create(ctx, template.NewTemplate{Name: "Finishing"})
	require.NoError(t, err)

	child, err := svc.Create(ctx, template.NewTemplate{Name: "Kolom", ParentID: root.ID})
	require.NoError(t, err)
	assert.Equal(t, root.ID, child.ParentID)
	assert.Equal(t, 2, child.LeftBound)
	assert.Equal(t, 3, child.RightBound)

	// parent widened, trailing sibling shifted right
	root, err = repo.GetTemplate(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, root.LeftBound)
	assert.Equal(t, 4, root.RightBound)

	trailing, err = repo.GetTemplate(ctx, trailing.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, trailing.LeftBound)
	assert.Equal(t, 6, trailing.RightBound)

	// second child lands after the first
	child2, err := svc.Create(ctx, template.NewTemplate{Name: "Balok", ParentID: root.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, child2.LeftBound)
	assert.Equal(t, 5, child2.RightBound)

	assertValidTree(t, repo)
}

func TestService_Create_validation(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, template.NewTemplate{Name: "   "})
	assert.Error(t, err)

	_, err = svc.Create(ctx, template.NewTemplate{Name: "Galian", Price: testutil.Dec(t, "-1")})
	require.Error(t, err)
	assert.True(t, core.IsValidationError(err))

	_, err = svc.Create(ctx, template.NewTemplate{Name: "Anak", ParentID: "missing"})
	assert.ErrorIs(t, err, template.ErrNotFound)
}

func TestService_Delete_compactsBounds(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	root, err := svc.Create(ctx, template.NewTemplate{Name: "Struktur"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, template.NewTemplate{Name: "Kolom", ParentID: root.ID})
	require.NoError(t, err)
	trailing, err := svc.Create(ctx, template.NewTemplate{Name: "Finishing"})
	require.NoError(t, err)

	// deleting the root removes its subtree and compacts what follows
	deleted, err := svc.Delete(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	trailing, err = repo.GetTemplate(ctx, trailing.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, trailing.LeftBound)
	assert.Equal(t, 2, trailing.RightBound)

	assertValidTree(t, repo)
}

func TestService_Tree_leafNumbers(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	// root(1,8){a(2,3), b(4,5), c(6,7)}
	root := testutil.CreateTemplate(t, repo, "Pekerjaan", "", 1, 8, "0", "0", "0")
	a := testutil.CreateTemplate(t, repo, "A", root.ID, 2, 3, "1", "10", "30")
	b := testutil.CreateTemplate(t, repo, "B", root.ID, 4, 5, "1", "10", "30")
	c := testutil.CreateTemplate(t, repo, "C", root.ID, 6, 7, "1", "10", "40")

	tpls, numbers, err := svc.Tree(ctx)
	require.NoError(t, err)
	require.Len(t, tpls, 4)
	assert.Equal(t, root.ID, tpls[0].ID, "ordered by left bound")

	assert.Equal(t, 1, numbers[a.ID])
	assert.Equal(t, 2, numbers[b.ID])
	assert.Equal(t, 3, numbers[c.ID])
	_, numbered := numbers[root.ID]
	assert.False(t, numbered, "parents get no number")
}

func TestService_NormalizeWeights(t *testing.T) {
	ctx := context.Background()

	t.Run("rescales and persists only changed leaves", func(t *testing.T) {
		svc, repo := setup(t)
		root := testutil.CreateTemplate(t, repo, "Pekerjaan", "", 1, 8, "0", "0", "0")
		a := testutil.CreateTemplate(t, repo, "A", root.ID, 2, 3, "1", "10", "20")
		b := testutil.CreateTemplate(t, repo, "B", root.ID, 4, 5, "1", "10", "30")
		testutil.CreateTemplate(t, repo, "C", root.ID, 6, 7, "1", "10", "50")

		res, err := svc.NormalizeWeights(ctx)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, "100", res.FinalSum.String())
		assert.Equal(t, 2, res.UpdatedCount) // C already holds its scaled weight

		gotA, err := repo.GetTemplate(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, "20", gotA.Weight.String())

		gotB, err := repo.GetTemplate(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "30", gotB.Weight.String())
	})

	t.Run("scales to 100", func(t *testing.T) {
		svc, repo := setup(t)
		root := testutil.CreateTemplate(t, repo, "Pekerjaan", "", 1, 6, "0", "0", "0")
		a := testutil.CreateTemplate(t, repo, "A", root.ID, 2, 3, "1", "10", "10")
		b := testutil.CreateTemplate(t, repo, "B", root.ID, 4, 5, "1", "10", "40")

		res, err := svc.NormalizeWeights(ctx)
		require.NoError(t, err)
		assert.True(t, res.Success)

		gotA, _ := repo.GetTemplate(ctx, a.ID)
		gotB, _ := repo.GetTemplate(ctx, b.ID)
		assert.Equal(t, "20", gotA.Weight.String())
		assert.Equal(t, "80", gotB.Weight.String())
	})

	t.Run("no leaves", func(t *testing.T) {
		svc, _ := setup(t)
		_, err := svc.NormalizeWeights(ctx)
		assert.ErrorIs(t, err, core.ErrNoLeafTasks)
	})

	t.Run("zero sum", func(t *testing.T) {
		svc, repo := setup(t)
		testutil.CreateTemplate(t, repo, "A", "", 1, 2, "1", "10", "0")
		_, err := svc.NormalizeWeights(ctx)
		assert.ErrorIs(t, err, core.ErrZeroWeightSum)
	})
}
