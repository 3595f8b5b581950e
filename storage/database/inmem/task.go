package inmemdb

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/task"
)

type taskRepository struct {
	db *DB
}

var _ task.Repository = (*taskRepository)(nil)

func NewTaskRepository(db *DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	repo.db.tasks[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) GetTask(ctx context.Context, id string) (task.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.tasks[id]; ok {
		return *t, nil
	}
	return task.Task{}, task.ErrNotFound
}

func (repo *taskRepository) QueryProjectTasks(ctx context.Context, projectID string) ([]task.Task, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tasks := make([]task.Task, 0)
	for _, t := range repo.db.tasks {
		if t.ProjectID == projectID {
			tasks = append(tasks, *t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].LeftBound < tasks[j].LeftBound })
	return tasks, nil
}

func (repo *taskRepository) UpdateTask(ctx context.Context, t task.Task, exec ...core.DBExecutor) (task.Task, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.tasks[t.ID]; !ok {
		return task.Task{}, task.ErrNotFound
	}
	repo.db.tasks[t.ID] = &t
	return t, nil
}

func (repo *taskRepository) UpdateTaskWeights(ctx context.Context, projectID string, weights map[string]decimal.Decimal, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var updated int
	for id, w := range weights {
		if t, ok := repo.db.tasks[id]; ok && t.ProjectID == projectID {
			t.Weight = w
			updated++
		}
	}
	return updated, nil
}

func (repo *taskRepository) ShiftTaskBounds(ctx context.Context, projectID string, at, by int, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, t := range repo.db.tasks {
		if t.ProjectID != projectID {
			continue
		}
		if t.LeftBound >= at {
			t.LeftBound += by
		}
		if t.RightBound >= at {
			t.RightBound += by
		}
	}
	return nil
}

func (repo *taskRepository) DeleteProjectTasks(ctx context.Context, projectID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var deleted int
	for id, t := range repo.db.tasks {
		if t.ProjectID == projectID {
			delete(repo.db.tasks, id)
			deleted++
		}
	}
	return deleted, nil
}
