// Package progress records daily completion percentages on leaf tasks and
// derives everything read from them: latest-known leaf percentages, parent
// rollups, and the S-curve history synthesized on a task's first entry.
package progress

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/danwahyudir/lapju/core"
)

var (
	ErrNotFound    = errors.New("progress entry not found")
	ErrNotLeafTask = errors.New("progress can only be recorded on leaf tasks")
)

type Entry struct {
	ID           string          `json:"id"`
	TaskID       string          `json:"task_id"`
	ProjectID    string          `json:"project_id"`
	UserID       string          `json:"user_id"`
	Percentage   decimal.Decimal `json:"percentage"`
	ProgressDate time.Time       `json:"progress_date"` // calendar date, no time component
	Notes        null.String     `json:"notes,omitempty"`
	CreatedAt    time.Time       `json:"created_at"` // UTC
	UpdatedAt    time.Time       `json:"updated_at"` // UTC
}

type Repository interface {
	// UpsertEntry writes an entry keyed on (taskID, projectID, progressDate):
	// update-if-exists, insert-if-not, last writer wins.
	UpsertEntry(ctx context.Context, e Entry) (Entry, error)
	// CountTaskEntries counts the entries of one (taskID, projectID) pair.
	CountTaskEntries(ctx context.Context, taskID, projectID string) (int, error)
	// BulkCreateEntries inserts synthesized entries in one shot; violating
	// the per-day uniqueness fails the whole batch.
	BulkCreateEntries(ctx context.Context, entries []Entry, exec ...core.DBExecutor) error
	// QueryProjectEntries returns all entries of a project.
	QueryProjectEntries(ctx context.Context, projectID string) ([]Entry, error)
	// QueryTaskEntries returns the entries of one (taskID, projectID) pair
	// ordered by progress date ascending.
	QueryTaskEntries(ctx context.Context, taskID, projectID string) ([]Entry, error)
}
