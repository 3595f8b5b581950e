package task

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
	"github.com/danwahyudir/lapju/core/template"
)

type (
	// NewTask is the form for a manually created task (no template link).
	NewTask struct {
		ProjectID string          `json:"project_id" validate:"required"`
		ParentID  string          `json:"parent_id"`
		Name      string          `json:"name" validate:"required"`
		Volume    decimal.Decimal `json:"volume"`
		Unit      string          `json:"unit"`
		Price     decimal.Decimal `json:"price"`
		Weight    decimal.Decimal `json:"weight"`
	}

	UpdateTask struct {
		Name   string          `json:"name" validate:"required"`
		Volume decimal.Decimal `json:"volume"`
		Unit   string          `json:"unit"`
		Price  decimal.Decimal `json:"price"`
		Weight decimal.Decimal `json:"weight"`
	}
)

func (nt *NewTask) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return validateNumerics(nt.Volume, nt.Price, nt.Weight)
}

func (ut *UpdateTask) Validate() error {
	ut.Name = core.CleanString(ut.Name)
	if err := core.Validate.Struct(ut); err != nil {
		return err
	}
	return validateNumerics(ut.Volume, ut.Price, ut.Weight)
}

func validateNumerics(volume, price, weight decimal.Decimal) error {
	var flds []core.FieldError
	if volume.IsNegative() {
		flds = append(flds, core.FieldError{Field: "volume", Error: "volume cannot be negative"})
	}
	if price.IsNegative() {
		flds = append(flds, core.FieldError{Field: "price", Error: "price cannot be negative"})
	}
	if weight.IsNegative() {
		flds = append(flds, core.FieldError{Field: "weight", Error: "weight cannot be negative"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(errors.New("invalid numeric fields"), flds...)
	}
	return nil
}

type Service struct {
	db      core.DB
	repo    Repository
	tplRepo template.Repository
}

func NewService(db core.DB, repo Repository, tplRepo template.Repository) *Service {
	return &Service{db: db, repo: repo, tplRepo: tplRepo}
}

// Create inserts a manually authored task into a project's tree, appended as
// last root or as the last child of ParentID. The cloned-in part of the tree
// keeps its template numbering; manual tasks extend it with the same
// shift-insert used for the catalog.
func (svc *Service) Create(ctx context.Context, nt NewTask) (Task, error) {
	if err := nt.Validate(); err != nil {
		return Task{}, err
	}

	now := time.Now().UTC()
	t := Task{
		ID:        uuid.New().String(),
		ProjectID: nt.ProjectID,
		ParentID:  nt.ParentID,
		Name:      nt.Name,
		Volume:    nt.Volume.Round(2),
		Unit:      core.CleanString(nt.Unit),
		Price:     nt.Price.Round(2),
		Weight:    nt.Weight.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.RecalcTotalPrice()

	if nt.ParentID == "" {
		all, err := svc.repo.QueryProjectTasks(ctx, nt.ProjectID)
		if err != nil {
			return Task{}, errors.Wrap(err, "loading project tasks")
		}
		t.LeftBound, t.RightBound = nestedset.NextBounds(Nodes(all))
		return svc.repo.CreateTask(ctx, t)
	}

	parent, err := svc.repo.GetTask(ctx, nt.ParentID)
	if err != nil {
		return Task{}, err
	}
	if parent.ProjectID != nt.ProjectID {
		return Task{}, ErrNotFound
	}
	t.LeftBound, t.RightBound = nestedset.ChildSlot(parent)

	err = core.Transact(ctx, svc.db, func(exec core.DBExecutor) error {
		if err := svc.repo.ShiftTaskBounds(ctx, nt.ProjectID, parent.RightBound, 2, exec); err != nil {
			return errors.Wrap(err, "shifting bounds")
		}
		t, err = svc.repo.CreateTask(ctx, t, exec)
		return err
	})
	if err != nil {
		return Task{}, err
	}
	return t, nil
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTask) (Task, error) {
	if err := ut.Validate(); err != nil {
		return Task{}, err
	}

	t, err := svc.repo.GetTask(ctx, id)
	if err != nil {
		return Task{}, err
	}
	t.Name = ut.Name
	t.Volume = ut.Volume.Round(2)
	t.Unit = core.CleanString(ut.Unit)
	t.Price = ut.Price.Round(2)
	t.Weight = ut.Weight.Round(2)
	t.UpdatedAt = time.Now().UTC()
	t.RecalcTotalPrice()
	return svc.repo.UpdateTask(ctx, t)
}

func (svc *Service) Get(ctx context.Context, id string) (Task, error) {
	return svc.repo.GetTask(ctx, id)
}

// ProjectTree returns one project's tasks in left-bound order along with the
// 1-based display numbers of its leaves.
func (svc *Service) ProjectTree(ctx context.Context, projectID string) ([]Task, map[string]int, error) {
	all, err := svc.repo.QueryProjectTasks(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	return all, nestedset.LeafNumbers(Nodes(all)), nil
}

// DeleteProjectTasks removes every task of a project, for reset/reseed flows.
func (svc *Service) DeleteProjectTasks(ctx context.Context, projectID string) (int, error) {
	var deleted int
	err := core.Transact(ctx, svc.db, func(exec core.DBExecutor) error {
		var err error
		deleted, err = svc.repo.DeleteProjectTasks(ctx, projectID, exec)
		return err
	})
	return deleted, err
}

// NormalizeWeights rescales a project's leaf-task weights to sum to 100.00,
// persisting only the weights that changed.
func (svc *Service) NormalizeWeights(ctx context.Context, projectID string) (core.WeightNormalization, error) {
	all, err := svc.repo.QueryProjectTasks(ctx, projectID)
	if err != nil {
		return core.WeightNormalization{}, err
	}

	leaves := nestedset.Leaves(Nodes(all))
	weighted := make([]core.WeightedLeaf, 0, len(leaves))
	for _, l := range leaves {
		weighted = append(weighted, core.WeightedLeaf{ID: l.NodeID(), Weight: l.(Task).Weight})
	}

	res, err := core.NormalizeLeafWeights(weighted)
	if err != nil {
		return core.WeightNormalization{}, err
	}
	if len(res.Changed) > 0 {
		if _, err = svc.repo.UpdateTaskWeights(ctx, projectID, res.Changed); err != nil {
			return core.WeightNormalization{}, errors.Wrap(err, "persisting normalized weights")
		}
	}
	return res, nil
}
