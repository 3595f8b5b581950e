package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/template"
)

type templateRow struct {
	ID         string          `db:"id"`
	ParentID   string          `db:"parent_id"`
	Name       string          `db:"name"`
	Volume     decimal.Decimal `db:"volume"`
	Unit       string          `db:"unit"`
	Price      decimal.Decimal `db:"price"`
	Weight     decimal.Decimal `db:"weight"`
	LeftBound  int             `db:"left_bound"`
	RightBound int             `db:"right_bound"`
	CreatedAt  time.Time       `db:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at"`
}

func (r templateRow) unrow() template.Template {
	return template.Template{
		ID:         r.ID,
		ParentID:   r.ParentID,
		Name:       r.Name,
		Volume:     r.Volume,
		Unit:       r.Unit,
		Price:      r.Price,
		Weight:     r.Weight,
		LeftBound:  r.LeftBound,
		RightBound: r.RightBound,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type templateRepository struct {
	db *sqlx.DB
}

var _ template.Repository = (*templateRepository)(nil)

func NewTemplateRepository(db *sqlx.DB) *templateRepository {
	return &templateRepository{db: db}
}

func (repo templateRepository) CreateTemplate(ctx context.Context, tpl template.Template, exec ...core.DBExecutor) (template.Template, error) {
	const query = `
		INSERT INTO template_task (id, parent_id, name, volume, unit, price, weight, left_bound, right_bound, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		tpl.ID, tpl.ParentID, tpl.Name, tpl.Volume, tpl.Unit, tpl.Price, tpl.Weight,
		tpl.LeftBound, tpl.RightBound, tpl.CreatedAt, tpl.UpdatedAt,
	)
	if err != nil {
		return template.Template{}, errors.Wrap(err, "inserting template task")
	}
	return tpl, nil
}

func (repo templateRepository) GetTemplate(ctx context.Context, id string) (template.Template, error) {
	var r templateRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM template_task WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return template.Template{}, template.ErrNotFound
		}
		return template.Template{}, errors.Wrap(err, "getting template task")
	}
	return r.unrow(), nil
}

func (repo templateRepository) QueryAllTemplates(ctx context.Context) ([]template.Template, error) {
	var rows []templateRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM template_task ORDER BY left_bound"); err != nil {
		return nil, errors.Wrap(err, "querying template tasks")
	}
	tpls := make([]template.Template, 0, len(rows))
	for _, r := range rows {
		tpls = append(tpls, r.unrow())
	}
	return tpls, nil
}

func (repo templateRepository) UpdateTemplate(ctx context.Context, tpl template.Template, exec ...core.DBExecutor) (template.Template, error) {
	const query = `
		UPDATE template_task
		SET parent_id = $2, name = $3, volume = $4, unit = $5, price = $6, weight = $7,
		    left_bound = $8, right_bound = $9, updated_at = $10
		WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query,
		tpl.ID, tpl.ParentID, tpl.Name, tpl.Volume, tpl.Unit, tpl.Price, tpl.Weight,
		tpl.LeftBound, tpl.RightBound, tpl.UpdatedAt,
	)
	if err != nil {
		return template.Template{}, errors.Wrap(err, "updating template task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return template.Template{}, template.ErrNotFound
	}
	return tpl, nil
}

func (repo templateRepository) UpdateTemplateWeights(ctx context.Context, weights map[string]decimal.Decimal, exec ...core.DBExecutor) (int, error) {
	ex := getExec(repo.db, exec)
	var updated int
	for id, w := range weights {
		res, err := ex.ExecContext(ctx, "UPDATE template_task SET weight = $2, updated_at = now() WHERE id = $1", id, w)
		if err != nil {
			return updated, errors.Wrap(err, "updating template weight")
		}
		if n, err := res.RowsAffected(); err == nil {
			updated += int(n)
		}
	}
	return updated, nil
}

func (repo templateRepository) ShiftTemplateBounds(ctx context.Context, at, by int, exec ...core.DBExecutor) error {
	ex := getExec(repo.db, exec)
	if _, err := ex.ExecContext(ctx, "UPDATE template_task SET left_bound = left_bound + $2 WHERE left_bound >= $1", at, by); err != nil {
		return errors.Wrap(err, "shifting template left bounds")
	}
	if _, err := ex.ExecContext(ctx, "UPDATE template_task SET right_bound = right_bound + $2 WHERE right_bound >= $1", at, by); err != nil {
		return errors.Wrap(err, "shifting template right bounds")
	}
	return nil
}

func (repo templateRepository) DeleteTemplatesWithin(ctx context.Context, left, right int, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx,
		"DELETE FROM template_task WHERE left_bound >= $1 AND right_bound <= $2", left, right)
	if err != nil {
		return 0, errors.Wrap(err, "deleting template subtree")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted template tasks")
	}
	return int(n), nil
}
