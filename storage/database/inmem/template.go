package inmemdb

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/template"
)

type templateRepository struct {
	db *DB
}

var _ template.Repository = (*templateRepository)(nil)

func NewTemplateRepository(db *DB) *templateRepository {
	return &templateRepository{db: db}
}

func (repo *templateRepository) CreateTemplate(ctx context.Context, tpl template.Template, exec ...core.DBExecutor) (template.Template, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.templates[tpl.ID] = &tpl
	return tpl, nil
}

func (repo *templateRepository) GetTemplate(ctx context.Context, id string) (template.Template, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tpl, ok := repo.db.templates[id]; ok {
		return *tpl, nil
	}
	return template.Template{}, template.ErrNotFound
}

func (repo *templateRepository) QueryAllTemplates(ctx context.Context) ([]template.Template, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tpls := make([]template.Template, 0, len(repo.db.templates))
	for _, tpl := range repo.db.templates {
		tpls = append(tpls, *tpl)
	}
	sort.Slice(tpls, func(i, j int) bool { return tpls[i].LeftBound < tpls[j].LeftBound })
	return tpls, nil
}

func (repo *templateRepository) UpdateTemplate(ctx context.Context, tpl template.Template, exec ...core.DBExecutor) (template.Template, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.templates[tpl.ID]; !ok {
		return template.Template{}, template.ErrNotFound
	}
	repo.db.templates[tpl.ID] = &tpl
	return tpl, nil
}

func (repo *templateRepository) UpdateTemplateWeights(ctx context.Context, weights map[string]decimal.Decimal, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var updated int
	for id, w := range weights {
		if tpl, ok := repo.db.templates[id]; ok {
			tpl.Weight = w
			updated++
		}
	}
	return updated, nil
}

func (repo *templateRepository) ShiftTemplateBounds(ctx context.Context, at, by int, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, tpl := range repo.db.templates {
		if tpl.LeftBound >= at {
			tpl.LeftBound += by
		}
		if tpl.RightBound >= at {
			tpl.RightBound += by
		}
	}
	return nil
}

func (repo *templateRepository) DeleteTemplatesWithin(ctx context.Context, left, right int, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var deleted int
	for id, tpl := range repo.db.templates {
		if tpl.LeftBound >= left && tpl.RightBound <= right {
			delete(repo.db.templates, id)
			deleted++
		}
	}
	return deleted, nil
}
