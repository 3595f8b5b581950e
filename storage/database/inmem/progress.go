package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/progress"
)

type progressRepository struct {
	db *DB
}

var _ progress.Repository = (*progressRepository)(nil)

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db}
}

func entryKey(taskID, projectID string, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s", taskID, projectID, core.DateOf(date).Format("2006-01-02"))
}

func (repo *progressRepository) UpsertEntry(ctx context.Context, e progress.Entry) (progress.Entry, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := entryKey(e.TaskID, e.ProjectID, e.ProgressDate)
	if existing, ok := repo.db.entries[key]; ok {
		existing.UserID = e.UserID
		existing.Percentage = e.Percentage
		existing.Notes = e.Notes
		existing.UpdatedAt = e.UpdatedAt
		return *existing, nil
	}
	repo.db.entries[key] = &e
	return e, nil
}

func (repo *progressRepository) CountTaskEntries(ctx context.Context, taskID, projectID string) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var count int
	for _, e := range repo.db.entries {
		if e.TaskID == taskID && e.ProjectID == projectID {
			count++
		}
	}
	return count, nil
}

func (repo *progressRepository) BulkCreateEntries(ctx context.Context, entries []progress.Entry, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// all-or-nothing: check the whole batch before writing any of it
	for _, e := range entries {
		if _, ok := repo.db.entries[entryKey(e.TaskID, e.ProjectID, e.ProgressDate)]; ok {
			return errors.Errorf("duplicate progress entry for task %s on %s", e.TaskID, core.DateOf(e.ProgressDate).Format("2006-01-02"))
		}
	}
	for _, e := range entries {
		e := e
		repo.db.entries[entryKey(e.TaskID, e.ProjectID, e.ProgressDate)] = &e
	}
	return nil
}

func (repo *progressRepository) QueryProjectEntries(ctx context.Context, projectID string) ([]progress.Entry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	entries := make([]progress.Entry, 0)
	for _, e := range repo.db.entries {
		if e.ProjectID == projectID {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProgressDate.Before(entries[j].ProgressDate) })
	return entries, nil
}

func (repo *progressRepository) QueryTaskEntries(ctx context.Context, taskID, projectID string) ([]progress.Entry, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	entries := make([]progress.Entry, 0)
	for _, e := range repo.db.entries {
		if e.TaskID == taskID && e.ProjectID == projectID {
			entries = append(entries, *e)
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ProgressDate.Before(entries[j].ProgressDate) })
	return entries, nil
}
