// Package template holds the global catalog of reusable task definitions.
// The catalog is one process-wide nested-set tree; each new project's task
// tree is cloned from it.
package template

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
)

var ErrNotFound = errors.New("template task not found")

type Template struct {
	ID         string          `json:"id"`
	ParentID   string          `json:"parent_id,omitempty"` // empty for roots
	Name       string          `json:"name"`
	Volume     decimal.Decimal `json:"volume"`
	Unit       string          `json:"unit,omitempty"`
	Price      decimal.Decimal `json:"price"`
	Weight     decimal.Decimal `json:"weight"`
	LeftBound  int             `json:"left_bound"`
	RightBound int             `json:"right_bound"`
	CreatedAt  time.Time       `json:"created_at"` // UTC
	UpdatedAt  time.Time       `json:"updated_at"` // UTC
}

var _ nestedset.Node = Template{}

func (t Template) NodeID() string         { return t.ID }
func (t Template) NodeParentID() string   { return t.ParentID }
func (t Template) NodeBounds() (int, int) { return t.LeftBound, t.RightBound }

// IsContainer reports a pure grouping node: no volume, no price.
func (t Template) IsContainer() bool {
	return t.Volume.IsZero() && t.Price.IsZero()
}

// Nodes adapts a template slice to the shared tree helpers.
func Nodes(tpls []Template) []nestedset.Node {
	nodes := make([]nestedset.Node, 0, len(tpls))
	for _, t := range tpls {
		nodes = append(nodes, t)
	}
	return nodes
}

type Repository interface {
	CreateTemplate(ctx context.Context, tpl Template, exec ...core.DBExecutor) (Template, error)
	GetTemplate(ctx context.Context, id string) (Template, error)
	// QueryAllTemplates returns the whole catalog ordered by left bound
	// ascending, so parents always precede their descendants.
	QueryAllTemplates(ctx context.Context) ([]Template, error)
	UpdateTemplate(ctx context.Context, tpl Template, exec ...core.DBExecutor) (Template, error)
	// UpdateTemplateWeights persists the given leaf weights and returns the
	// number of rows updated.
	UpdateTemplateWeights(ctx context.Context, weights map[string]decimal.Decimal, exec ...core.DBExecutor) (int, error)
	// ShiftTemplateBounds moves every left/right bound >= at by `by`.
	ShiftTemplateBounds(ctx context.Context, at, by int, exec ...core.DBExecutor) error
	// DeleteTemplatesWithin removes all templates whose bounds fall inside
	// [left, right] and returns the number of rows deleted.
	DeleteTemplatesWithin(ctx context.Context, left, right int, exec ...core.DBExecutor) (int, error)
}
