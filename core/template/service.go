package template

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
)

type (
	// NewTemplate is the authoring form for a catalog node. A new node is
	// appended as the last root, or as the last child of ParentID when set.
	NewTemplate struct {
		Name     string          `json:"name" validate:"required"`
		ParentID string          `json:"parent_id"`
		Volume   decimal.Decimal `json:"volume"`
		Unit     string          `json:"unit"`
		Price    decimal.Decimal `json:"price"`
		Weight   decimal.Decimal `json:"weight"`
	}

	UpdateTemplate struct {
		Name   string          `json:"name" validate:"required"`
		Volume decimal.Decimal `json:"volume"`
		Unit   string          `json:"unit"`
		Price  decimal.Decimal `json:"price"`
		Weight decimal.Decimal `json:"weight"`
	}
)

func (nt *NewTemplate) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	if err := core.Validate.Struct(nt); err != nil {
		return err
	}
	return validateNumerics(nt.Volume, nt.Price, nt.Weight)
}

func (ut *UpdateTemplate) Validate() error {
	ut.Name = core.CleanString(ut.Name)
	if err := core.Validate.Struct(ut); err != nil {
		return err
	}
	return validateNumerics(ut.Volume, ut.Price, ut.Weight)
}

// validateNumerics rejects negative amounts; validator tags cannot inspect
// decimal.Decimal fields.
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
	db   core.DB
	repo Repository
}

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Create inserts a catalog node. Root nodes are appended after the last
// tree; child nodes become the last child of their parent, shifting every
// bound at or beyond the insertion point by +2 inside one transaction.
func (svc *Service) Create(ctx context.Context, nt NewTemplate) (Template, error) {
	if err := nt.Validate(); err != nil {
		return Template{}, err
	}

	now := time.Now().UTC()
	tpl := Template{
		ID:        uuid.New().String(),
		ParentID:  nt.ParentID,
		Name:      nt.Name,
		Volume:    nt.Volume.Round(2),
		Unit:      core.CleanString(nt.Unit),
		Price:     nt.Price.Round(2),
		Weight:    nt.Weight.Round(2),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if nt.ParentID == "" {
		all, err := svc.repo.QueryAllTemplates(ctx)
		if err != nil {
			return Template{}, errors.Wrap(err, "loading catalog")
		}
		tpl.LeftBound, tpl.RightBound = nestedset.NextBounds(Nodes(all))
		return svc.repo.CreateTemplate(ctx, tpl)
	}

	parent, err := svc.repo.GetTemplate(ctx, nt.ParentID)
	if err != nil {
		return Template{}, err
	}
	tpl.LeftBound, tpl.RightBound = nestedset.ChildSlot(parent)

	err = core.Transact(ctx, svc.db, func(exec core.DBExecutor) error {
		if err := svc.repo.ShiftTemplateBounds(ctx, parent.RightBound, 2, exec); err != nil {
			return errors.Wrap(err, "shifting bounds")
		}
		tpl, err = svc.repo.CreateTemplate(ctx, tpl, exec)
		return err
	})
	if err != nil {
		return Template{}, err
	}
	return tpl, nil
}

func (svc *Service) Update(ctx context.Context, id string, ut UpdateTemplate) (Template, error) {
	if err := ut.Validate(); err != nil {
		return Template{}, err
	}

	tpl, err := svc.repo.GetTemplate(ctx, id)
	if err != nil {
		return Template{}, err
	}
	tpl.Name = ut.Name
	tpl.Volume = ut.Volume.Round(2)
	tpl.Unit = core.CleanString(ut.Unit)
	tpl.Price = ut.Price.Round(2)
	tpl.Weight = ut.Weight.Round(2)
	tpl.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateTemplate(ctx, tpl)
}

// Delete removes a node and its whole subtree, then compacts the bounds of
// everything to its right.
func (svc *Service) Delete(ctx context.Context, id string) (int, error) {
	tpl, err := svc.repo.GetTemplate(ctx, id)
	if err != nil {
		return 0, err
	}

	width := nestedset.SubtreeWidth(tpl)
	var deleted int
	err = core.Transact(ctx, svc.db, func(exec core.DBExecutor) error {
		if deleted, err = svc.repo.DeleteTemplatesWithin(ctx, tpl.LeftBound, tpl.RightBound, exec); err != nil {
			return errors.Wrap(err, "deleting subtree")
		}
		return errors.Wrap(svc.repo.ShiftTemplateBounds(ctx, tpl.RightBound+1, -width, exec), "compacting bounds")
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// Tree returns the whole catalog in left-bound order along with the 1-based
// display numbers of its leaves.
func (svc *Service) Tree(ctx context.Context) ([]Template, map[string]int, error) {
	all, err := svc.repo.QueryAllTemplates(ctx)
	if err != nil {
		return nil, nil, err
	}
	return all, nestedset.LeafNumbers(Nodes(all)), nil
}

// NormalizeWeights rescales catalog leaf weights to sum to 100.00 and
// persists only the weights that changed. Operator-triggered maintenance;
// never runs automatically on writes.
func (svc *Service) NormalizeWeights(ctx context.Context) (core.WeightNormalization, error) {
	all, err := svc.repo.QueryAllTemplates(ctx)
	if err != nil {
		return core.WeightNormalization{}, err
	}

	leaves := nestedset.Leaves(Nodes(all))
	weighted := make([]core.WeightedLeaf, 0, len(leaves))
	for _, l := range leaves {
		weighted = append(weighted, core.WeightedLeaf{ID: l.NodeID(), Weight: l.(Template).Weight})
	}

	res, err := core.NormalizeLeafWeights(weighted)
	if err != nil {
		return core.WeightNormalization{}, err
	}
	if len(res.Changed) > 0 {
		if _, err = svc.repo.UpdateTemplateWeights(ctx, res.Changed); err != nil {
			return core.WeightNormalization{}, errors.Wrap(err, "persisting normalized weights")
		}
	}
	return res, nil
}
