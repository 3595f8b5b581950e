package project

import (
	"context"
	"errors"
	"time"

	"github.com/danwahyudir/lapju/core"
)

var ErrNotFound = errors.New("project not found")

type Project struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OfficeID  string    `json:"office_id,omitempty"`
	StartDate time.Time `json:"start_date,omitempty"` // calendar date; zero when not set
	CreatedAt time.Time `json:"created_at"`           // UTC
	UpdatedAt time.Time `json:"updated_at"`           // UTC
}

// HasStartDate reports whether the project carries a start date; backfill is
// skipped without one.
func (p Project) HasStartDate() bool {
	return !p.StartDate.IsZero()
}

type NewProject struct {
	Name      string    `json:"name" validate:"required"`
	OfficeID  string    `json:"office_id"`
	StartDate time.Time `json:"start_date"`
}

func (np *NewProject) Validate() error {
	np.Name = core.CleanString(np.Name)
	return core.Validate.Struct(np)
}

type Repository interface {
	CreateProject(ctx context.Context, p Project) (Project, error)
	GetProject(ctx context.Context, id string) (Project, error)
	QueryAllProjects(ctx context.Context) ([]Project, error)
	UpdateProject(ctx context.Context, p Project) (Project, error)
}

// TaskCloner materializes and tears down a project's task tree. Implemented
// by the task service; declared here so project does not import it.
type TaskCloner interface {
	CloneForProject(ctx context.Context, projectID string) error
	DeleteProjectTasks(ctx context.Context, projectID string) (int, error)
}
