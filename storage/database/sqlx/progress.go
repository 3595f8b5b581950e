package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/progress"
)

type progressRow struct {
	ID           string          `db:"id"`
	TaskID       string          `db:"task_id"`
	ProjectID    string          `db:"project_id"`
	UserID       string          `db:"user_id"`
	Percentage   decimal.Decimal `db:"percentage"`
	ProgressDate time.Time       `db:"progress_date"`
	Notes        null.String     `db:"notes"`
	CreatedAt    time.Time       `db:"created_at"`
	UpdatedAt    time.Time       `db:"updated_at"`
}

func (r progressRow) unrow() progress.Entry {
	return progress.Entry{
		ID:           r.ID,
		TaskID:       r.TaskID,
		ProjectID:    r.ProjectID,
		UserID:       r.UserID,
		Percentage:   r.Percentage,
		ProgressDate: core.DateOf(r.ProgressDate),
		Notes:        r.Notes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type progressRepository struct {
	db *sqlx.DB
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *sqlx.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) UpsertEntry(ctx context.Context, e progress.Entry) (progress.Entry, error) {
	const query = `
		INSERT INTO progress_entry (id, task_id, project_id, user_id, percentage, progress_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (task_id, project_id, progress_date) DO UPDATE
		SET user_id = EXCLUDED.user_id, percentage = EXCLUDED.percentage,
		    notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at`
	err := repo.db.QueryRowContext(ctx, query,
		e.ID, e.TaskID, e.ProjectID, e.UserID, e.Percentage,
		core.DateOf(e.ProgressDate), e.Notes, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return progress.Entry{}, errors.Wrap(err, "upserting progress entry")
	}
	return e, nil
}

func (repo progressRepository) CountTaskEntries(ctx context.Context, taskID, projectID string) (int, error) {
	var count int
	err := repo.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM progress_entry WHERE task_id = $1 AND project_id = $2", taskID, projectID)
	if err != nil {
		return 0, errors.Wrap(err, "counting progress entries")
	}
	return count, nil
}

func (repo progressRepository) BulkCreateEntries(ctx context.Context, entries []progress.Entry, exec ...core.DBExecutor) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]string, 0, len(entries))
	args := make([]interface{}, 0, len(entries)*9)
	for i, e := range entries {
		n := i * 9
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8, n+9))
		args = append(args, e.ID, e.TaskID, e.ProjectID, e.UserID, e.Percentage,
			core.DateOf(e.ProgressDate), e.Notes, e.CreatedAt, e.UpdatedAt)
	}
	query := `
		INSERT INTO progress_entry (id, task_id, project_id, user_id, percentage, progress_date, notes, created_at, updated_at)
		VALUES ` + strings.Join(values, ", ")

	if _, err := getExec(repo.db, exec).ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "bulk inserting progress entries")
	}
	return nil
}

func (repo progressRepository) QueryProjectEntries(ctx context.Context, projectID string) ([]progress.Entry, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM progress_entry WHERE project_id = $1 ORDER BY progress_date", projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying project progress entries")
	}
	entries := make([]progress.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.unrow())
	}
	return entries, nil
}

func (repo progressRepository) QueryTaskEntries(ctx context.Context, taskID, projectID string) ([]progress.Entry, error) {
	var rows []progressRow
	err := repo.db.SelectContext(ctx, &rows,
		"SELECT * FROM progress_entry WHERE task_id = $1 AND project_id = $2 ORDER BY progress_date", taskID, projectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying task progress entries")
	}
	entries := make([]progress.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.unrow())
	}
	return entries, nil
}
