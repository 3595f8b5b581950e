package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/task"
)

type taskRow struct {
	ID             string          `db:"id"`
	ProjectID      string          `db:"project_id"`
	ParentID       string          `db:"parent_id"`
	TemplateTaskID string          `db:"template_task_id"`
	Name           string          `db:"name"`
	Volume         decimal.Decimal `db:"volume"`
	Unit           string          `db:"unit"`
	Price          decimal.Decimal `db:"price"`
	TotalPrice     decimal.Decimal `db:"total_price"`
	Weight         decimal.Decimal `db:"weight"`
	LeftBound      int             `db:"left_bound"`
	RightBound     int             `db:"right_bound"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r taskRow) unrow() task.Task {
	return task.Task{
		ID:             r.ID,
		ProjectID:      r.ProjectID,
		ParentID:       r.ParentID,
		TemplateTaskID: r.TemplateTaskID,
		Name:           r.Name,
		Volume:         r.Volume,
		Unit:           r.Unit,
		Price:          r.Price,
		TotalPrice:     r.TotalPrice,
		Weight:         r.Weight,
		LeftBound:      r.LeftBound,
		RightBound:     r.RightBound,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type taskRepository struct {
	db *sqlx.DB
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo taskRepository) CreateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	const query = `
		INSERT INTO task (id, project_id, parent_id, template_task_id, name, volume, unit, price, total_price, weight, left_bound, right_bound, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err := getExec(repo.db, exec).ExecContext(ctx, query,
		t.ID, t.ProjectID, t.ParentID, t.TemplateTaskID, t.Name, t.Volume, t.Unit,
		t.Price, t.TotalPrice, t.Weight, t.LeftBound, t.RightBound, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "inserting task")
	}
	return t, nil
}

func (repo taskRepository) GetTask(ctx context.Context, id string) (task.Task, error) {
	var r taskRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM task WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return task.Task{}, task.ErrNotFound
		}
		return task.Task{}, errors.Wrap(err, "getting task")
	}
	return r.unrow(), nil
}

func (repo taskRepository) QueryProjectTasks(ctx context.Context, projectID string) ([]task.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM task WHERE project_id = $1 ORDER BY left_bound", projectID); err != nil {
		return nil, errors.Wrap(err, "querying project tasks")
	}
	tasks := make([]task.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.unrow())
	}
	return tasks, nil
}

func (repo taskRepository) UpdateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	const query = `
		UPDATE task
		SET parent_id = $2, name = $3, volume = $4, unit = $5, price = $6, total_price = $7,
		    weight = $8, left_bound = $9, right_bound = $10, updated_at = $11
		WHERE id = $1`
	res, err := getExec(repo.db, exec).ExecContext(ctx, query,
		t.ID, t.ParentID, t.Name, t.Volume, t.Unit, t.Price, t.TotalPrice,
		t.Weight, t.LeftBound, t.RightBound, t.UpdatedAt,
	)
	if err != nil {
		return task.Task{}, errors.Wrap(err, "updating task")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return task.Task{}, task.ErrNotFound
	}
	return t, nil
}

func (repo taskRepository) UpdateTaskWeights(ctx context.Context, projectID string, weights map[string]decimal.Decimal, exec ...core.DBExecutor) (int, error) {
	ex := getExec(repo.db, exec)
	var updated int
	for id, w := range weights {
		res, err := ex.ExecContext(ctx,
			"UPDATE task SET weight = $3, updated_at = now() WHERE id = $1 AND project_id = $2", id, projectID, w)
		if err != nil {
			return updated, errors.Wrap(err, "updating task weight")
		}
		if n, err := res.RowsAffected(); err == nil {
			updated += int(n)
		}
	}
	return updated, nil
}

func (repo taskRepository) ShiftTaskBounds(ctx context.Context, projectID string, at, by int, exec ...core.DBExecutor) error {
	ex := getExec(repo.db, exec)
	if _, err := ex.ExecContext(ctx,
		"UPDATE task SET left_bound = left_bound + $3 WHERE project_id = $1 AND left_bound >= $2", projectID, at, by); err != nil {
		return errors.Wrap(err, "shifting task left bounds")
	}
	if _, err := ex.ExecContext(ctx,
		"UPDATE task SET right_bound = right_bound + $3 WHERE project_id = $1 AND right_bound >= $2", projectID, at, by); err != nil {
		return errors.Wrap(err, "shifting task right bounds")
	}
	return nil
}

func (repo taskRepository) DeleteProjectTasks(ctx context.Context, projectID string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.db, exec).ExecContext(ctx, "DELETE FROM task WHERE project_id = $1", projectID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting project tasks")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "counting deleted tasks")
	}
	return int(n), nil
}
