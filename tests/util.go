package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
	"github.com/danwahyudir/lapju/core/template"
	"github.com/danwahyudir/lapju/core/user"
)

func Dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("Dec(%s) failed: %v", s, err)
	}
	return d
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func CreateUser(t *testing.T, repo user.Repository, name, uname, email, pwd string, isAdmin, isActive bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.New().String(),
		Name:      name,
		Username:  uname,
		Email:     email,
		IsAdmin:   isAdmin,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateProject(t *testing.T, repo project.Repository, name string, startDate time.Time) project.Project {
	t.Helper()
	now := time.Now().UTC()
	p, err := repo.CreateProject(context.Background(), project.Project{
		ID:        uuid.New().String(),
		Name:      name,
		StartDate: startDate,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return p
}

// CreateTemplate seeds a catalog node with explicit bounds, bypassing the
// authoring service so fixtures can lay out whole trees directly.
func CreateTemplate(t *testing.T, repo template.Repository, name, parentID string, left, right int, volume, price, weight string) template.Template {
	t.Helper()
	now := time.Now().UTC()
	tpl, err := repo.CreateTemplate(context.Background(), template.Template{
		ID:         uuid.New().String(),
		ParentID:   parentID,
		Name:       name,
		Volume:     Dec(t, volume),
		Price:      Dec(t, price),
		Weight:     Dec(t, weight),
		LeftBound:  left,
		RightBound: right,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateTemplate() failed: %v", err)
	}
	return tpl
}

// CreateTask seeds a project task with explicit bounds.
func CreateTask(t *testing.T, repo task.Repository, projectID, name, parentID string, left, right int, weight string) task.Task {
	t.Helper()
	now := time.Now().UTC()
	tsk := task.Task{
		ID:         uuid.New().String(),
		ProjectID:  projectID,
		ParentID:   parentID,
		Name:       name,
		Weight:     Dec(t, weight),
		LeftBound:  left,
		RightBound: right,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	tsk.RecalcTotalPrice()
	tsk, err := repo.CreateTask(context.Background(), tsk)
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return tsk
}
