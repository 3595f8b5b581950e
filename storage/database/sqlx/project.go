package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/danwahyudir/lapju/core/project"
)

type projectRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	OfficeID  string    `db:"office_id"`
	StartDate null.Time `db:"start_date"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r projectRow) unrow() project.Project {
	return project.Project{
		ID:        r.ID,
		Name:      r.Name,
		OfficeID:  r.OfficeID,
		StartDate: r.StartDate.Time,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo projectRepository) CreateProject(ctx context.Context, p project.Project) (project.Project, error) {
	const query = `
		INSERT INTO project (id, name, office_id, start_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, query,
		p.ID, p.Name, p.OfficeID, null.NewTime(p.StartDate, p.HasStartDate()), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "inserting project")
	}
	return p, nil
}

func (repo projectRepository) GetProject(ctx context.Context, id string) (project.Project, error) {
	var r projectRow
	if err := repo.db.GetContext(ctx, &r, "SELECT * FROM project WHERE id = $1", id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return project.Project{}, project.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	return r.unrow(), nil
}

func (repo projectRepository) QueryAllProjects(ctx context.Context) ([]project.Project, error) {
	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, "SELECT * FROM project ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	projects := make([]project.Project, 0, len(rows))
	for _, r := range rows {
		projects = append(projects, r.unrow())
	}
	return projects, nil
}

func (repo projectRepository) UpdateProject(ctx context.Context, p project.Project) (project.Project, error) {
	const query = `
		UPDATE project SET name = $2, office_id = $3, start_date = $4, updated_at = $5 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, query,
		p.ID, p.Name, p.OfficeID, null.NewTime(p.StartDate, p.HasStartDate()), p.UpdatedAt)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "updating project")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.Project{}, project.ErrNotFound
	}
	return p, nil
}
