package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/danwahyudir/lapju/core"
)

// CloneForProject materializes the template catalog into a project's task
// tree. Templates are visited in left-bound order, which guarantees parents
// before children, so each clone can resolve its parent through the running
// templateID -> taskID map. The clones reuse the catalog's nested-set
// numbering verbatim: each project's tree is numbered independently, so the
// values stay valid even if the catalog is renumbered later.
//
// All inserts run in a single transaction. An empty catalog is a no-op.
// Calling this on a project that already has tasks duplicates them; the
// caller guards against that.
func (svc *Service) CloneForProject(ctx context.Context, projectID string) error {
	tpls, err := svc.tplRepo.QueryAllTemplates(ctx)
	if err != nil {
		return errors.Wrap(err, "loading template catalog")
	}
	if len(tpls) == 0 {
		return nil
	}

	now := time.Now().UTC()
	return core.Transact(ctx, svc.db, func(exec core.DBExecutor) error {
		taskIDByTemplateID := make(map[string]string, len(tpls))
		for _, tpl := range tpls {
			t := Task{
				ID:             uuid.New().String(),
				ProjectID:      projectID,
				ParentID:       taskIDByTemplateID[tpl.ParentID], // empty for roots
				TemplateTaskID: tpl.ID,
				Name:           tpl.Name,
				Volume:         tpl.Volume,
				Unit:           tpl.Unit,
				Price:          tpl.Price,
				Weight:         tpl.Weight,
				LeftBound:      tpl.LeftBound,
				RightBound:     tpl.RightBound,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			t.RecalcTotalPrice()

			created, err := svc.repo.CreateTask(ctx, t, exec)
			if err != nil {
				return errors.Wrapf(err, "cloning template %s", tpl.ID)
			}
			taskIDByTemplateID[tpl.ID] = created.ID
		}
		return nil
	})
}
