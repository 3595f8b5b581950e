package progress

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/nestedset"
	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
)

// NewEntry is the form for recording one day's completion on a leaf task.
type NewEntry struct {
	TaskID     string          `json:"task_id" validate:"required"`
	ProjectID  string          `json:"project_id" validate:"required"`
	UserID     string          `json:"user_id" validate:"required"`
	Percentage decimal.Decimal `json:"percentage"`
	Date       time.Time       `json:"date" validate:"required,datenotfuture"`
	Notes      string          `json:"notes"`
}

func (ne *NewEntry) Validate() error {
	if err := core.Validate.Struct(ne); err != nil {
		return err
	}
	if ne.Percentage.IsNegative() || ne.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return core.NewValidationError(
			errors.New("percentage out of range"),
			core.FieldError{Field: "percentage", Error: "percentage must be between 0 and 100"},
		)
	}
	return nil
}

type Service struct {
	db       core.DB
	repo     Repository
	taskRepo task.Repository
	projRepo project.Repository
	log      core.Logger
}

func NewService(db core.DB, repo Repository, taskRepo task.Repository, projRepo project.Repository, log core.Logger) *Service {
	return &Service{db: db, repo: repo, taskRepo: taskRepo, projRepo: projRepo, log: log}
}

// Record upserts a progress entry for (task, project, date). The very first
// entry ever persisted for the pair triggers the S-curve backfill as a side
// effect; a backfill failure is surfaced but never rolls back the entry.
func (svc *Service) Record(ctx context.Context, ne NewEntry) (Entry, error) {
	if err := ne.Validate(); err != nil {
		return Entry{}, err
	}

	t, err := svc.taskRepo.GetTask(ctx, ne.TaskID)
	if err != nil {
		return Entry{}, err
	}
	if t.ProjectID != ne.ProjectID {
		return Entry{}, task.ErrNotFound
	}

	siblings, err := svc.taskRepo.QueryProjectTasks(ctx, ne.ProjectID)
	if err != nil {
		return Entry{}, errors.Wrap(err, "loading project tasks")
	}
	if !nestedset.IsLeaf(t, task.Nodes(siblings)) {
		return Entry{}, core.NewValidationError(ErrNotLeafTask,
			core.FieldError{Field: "task_id", Error: ErrNotLeafTask.Error()})
	}

	now := time.Now().UTC()
	entry := Entry{
		ID:           uuid.New().String(),
		TaskID:       ne.TaskID,
		ProjectID:    ne.ProjectID,
		UserID:       ne.UserID,
		Percentage:   ne.Percentage.Round(2),
		ProgressDate: core.DateOf(ne.Date),
		Notes:        null.NewString(ne.Notes, ne.Notes != ""),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	entry, err = svc.repo.UpsertEntry(ctx, entry)
	if err != nil {
		return Entry{}, errors.Wrap(err, "saving progress entry")
	}

	count, err := svc.repo.CountTaskEntries(ctx, ne.TaskID, ne.ProjectID)
	if err != nil {
		return entry, errors.Wrap(err, "counting task entries")
	}
	if count == 1 {
		if _, err = svc.backfill(ctx, entry); err != nil {
			return entry, errors.Wrap(err, "backfilling history")
		}
	}
	return entry, nil
}

// backfill synthesizes daily entries from the project start date through the
// day before the triggering entry, following a quadratic S-curve ramp toward
// the entered percentage. The triggering entry itself is never touched.
// Returns the number of synthesized rows; 0 with no error when there is
// nothing to backfill.
func (svc *Service) backfill(ctx context.Context, trigger Entry) (int, error) {
	proj, err := svc.projRepo.GetProject(ctx, trigger.ProjectID)
	if err != nil {
		return 0, err
	}
	if !proj.HasStartDate() {
		return 0, nil
	}

	start := core.DateOf(proj.StartDate)
	end := trigger.ProgressDate.AddDate(0, 0, -1)
	if end.Before(start) {
		return 0, nil
	}

	totalDays := core.DaysBetween(start, end) + 1
	now := time.Now().UTC()
	rows := make([]Entry, 0, totalDays)
	for i := 0; i < totalDays; i++ {
		rows = append(rows, Entry{
			ID:           uuid.New().String(),
			TaskID:       trigger.TaskID,
			ProjectID:    trigger.ProjectID,
			UserID:       trigger.UserID,
			Percentage:   trigger.Percentage.Mul(sCurve(i, totalDays)).Round(2),
			ProgressDate: start.AddDate(0, 0, i),
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	err = core.Transact(ctx, svc.db, func(exec core.DBExecutor) error {
		return svc.repo.BulkCreateEntries(ctx, rows, exec)
	})
	if err != nil {
		return 0, err
	}
	if svc.log != nil {
		svc.log.Info("backfilled progress history", map[string]interface{}{
			"task_id": trigger.TaskID, "project_id": trigger.ProjectID, "rows": len(rows),
		})
	}
	return len(rows), nil
}

// sCurve maps day index i of totalDays onto a quadratic S-curve shape value
// in [0, 1): 2t^2 on the first half, 1-2(1-t)^2 on the second, t = i/totalDays.
func sCurve(i, totalDays int) decimal.Decimal {
	t := float64(i) / float64(totalDays)
	var shape float64
	if t <= 0.5 {
		shape = 2 * t * t
	} else {
		shape = 1 - 2*(1-t)*(1-t)
	}
	return decimal.NewFromFloat(shape)
}

// Snapshot computes a project's progress picture as of a date.
func (svc *Service) Snapshot(ctx context.Context, projectID string, asOf time.Time, mode RollupMode) (Snapshot, error) {
	if _, err := svc.projRepo.GetProject(ctx, projectID); err != nil {
		return Snapshot{}, err
	}
	tasks, err := svc.taskRepo.QueryProjectTasks(ctx, projectID)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "loading project tasks")
	}
	entries, err := svc.repo.QueryProjectEntries(ctx, projectID)
	if err != nil {
		return Snapshot{}, errors.Wrap(err, "loading progress entries")
	}
	return ComputeSnapshot(tasks, entries, asOf, mode), nil
}

// Latest returns the latest-known status of every leaf task as of a date.
func (svc *Service) Latest(ctx context.Context, projectID string, asOf time.Time) (map[string]LeafStatus, error) {
	snap, err := svc.Snapshot(ctx, projectID, asOf, ModeMean)
	if err != nil {
		return nil, err
	}
	return snap.Leaves, nil
}

// HasAnyDescendantProgress reports whether any leaf task inside t's bounds
// (same project) has at least one entry.
func (svc *Service) HasAnyDescendantProgress(ctx context.Context, t task.Task) (bool, error) {
	tasks, err := svc.taskRepo.QueryProjectTasks(ctx, t.ProjectID)
	if err != nil {
		return false, errors.Wrap(err, "loading project tasks")
	}

	nodes := task.Nodes(tasks)
	inScope := make(map[string]bool)
	for _, d := range nestedset.Descendants(t, nodes) {
		if nestedset.IsLeaf(d, nodes) {
			inScope[d.NodeID()] = true
		}
	}
	if len(inScope) == 0 {
		return false, nil
	}

	entries, err := svc.repo.QueryProjectEntries(ctx, t.ProjectID)
	if err != nil {
		return false, errors.Wrap(err, "loading progress entries")
	}
	for _, e := range entries {
		if inScope[e.TaskID] {
			return true, nil
		}
	}
	return false, nil
}
