// Package task models one project's task tree: a nested-set tree cloned from
// the template catalog, whose leaves carry the weights and daily progress.
package task

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
)

var ErrNotFound = errors.New("task not found")

type Task struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"project_id"`
	ParentID       string          `json:"parent_id,omitempty"`        // empty for roots
	TemplateTaskID string          `json:"template_task_id,omitempty"` // empty when created manually
	Name           string          `json:"name"`
	Volume         decimal.Decimal `json:"volume"`
	Unit           string          `json:"unit,omitempty"`
	Price          decimal.Decimal `json:"price"`
	TotalPrice     decimal.Decimal `json:"total_price"` // derived: price x volume
	Weight         decimal.Decimal `json:"weight"`
	LeftBound      int             `json:"left_bound"`
	RightBound     int             `json:"right_bound"`
	CreatedAt      time.Time       `json:"created_at"` // UTC
	UpdatedAt      time.Time       `json:"updated_at"` // UTC
}

var _ nestedset.Node = Task{}

func (t Task) NodeID() string         { return t.ID }
func (t Task) NodeParentID() string   { return t.ParentID }
func (t Task) NodeBounds() (int, int) { return t.LeftBound, t.RightBound }

// RecalcTotalPrice maintains totalPrice = round(price x volume, 2). It must
// run before every persist of price or volume.
func (t *Task) RecalcTotalPrice() {
	t.TotalPrice = t.Price.Mul(t.Volume).Round(2)
}

// Nodes adapts a task slice to the shared tree helpers.
func Nodes(tasks []Task) []nestedset.Node {
	nodes := make([]nestedset.Node, 0, len(tasks))
	for _, t := range tasks {
		nodes = append(nodes, t)
	}
	return nodes
}

type Repository interface {
	CreateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
	GetTask(ctx context.Context, id string) (Task, error)
	// QueryProjectTasks returns one project's tree ordered by left bound
	// ascending.
	QueryProjectTasks(ctx context.Context, projectID string) ([]Task, error)
	UpdateTask(ctx context.Context, t Task, exec ...core.DBExecutor) (Task, error)
	UpdateTaskWeights(ctx context.Context, projectID string, weights map[string]decimal.Decimal, exec ...core.DBExecutor) (int, error)
	// ShiftTaskBounds moves every left/right bound >= at by `by`, scoped to
	// one project's tree.
	ShiftTaskBounds(ctx context.Context, projectID string, at, by int, exec ...core.DBExecutor) error
	DeleteProjectTasks(ctx context.Context, projectID string, exec ...core.DBExecutor) (int, error)
}
