package project

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/danwahyudir/lapju/core"
)

type Service struct {
	repo   Repository
	cloner TaskCloner
}

func NewService(repo Repository, cloner TaskCloner) *Service {
	return &Service{repo: repo, cloner: cloner}
}

// Create persists a project and immediately clones the template catalog into
// its task tree. The clone itself is transactional; a clone failure leaves
// the project without tasks and is surfaced to the caller.
func (svc *Service) Create(ctx context.Context, np NewProject) (Project, error) {
	if err := np.Validate(); err != nil {
		return Project{}, err
	}

	now := time.Now().UTC()
	p := Project{
		ID:        uuid.New().String(),
		Name:      np.Name,
		OfficeID:  np.OfficeID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if !np.StartDate.IsZero() {
		p.StartDate = core.DateOf(np.StartDate)
	}

	p, err := svc.repo.CreateProject(ctx, p)
	if err != nil {
		return Project{}, errors.Wrap(err, "creating project")
	}
	if err = svc.cloner.CloneForProject(ctx, p.ID); err != nil {
		return Project{}, errors.Wrap(err, "cloning templates into project")
	}
	return p, nil
}

// ResetTasks drops a project's task tree and re-clones it from the catalog.
func (svc *Service) ResetTasks(ctx context.Context, id string) error {
	p, err := svc.repo.GetProject(ctx, id)
	if err != nil {
		return err
	}
	if _, err = svc.cloner.DeleteProjectTasks(ctx, p.ID); err != nil {
		return errors.Wrap(err, "deleting project tasks")
	}
	return errors.Wrap(svc.cloner.CloneForProject(ctx, p.ID), "re-cloning templates")
}

func (svc *Service) Get(ctx context.Context, id string) (Project, error) {
	return svc.repo.GetProject(ctx, id)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Project, error) {
	return svc.repo.QueryAllProjects(ctx)
}
