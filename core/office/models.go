// Package office models the reporting hierarchy projects and users are
// assigned to. Admin CRUD screens live outside this core; only the model and
// its repository are defined here.
package office

import (
	"context"
	"errors"
	"time"
)

// Levels, top to bottom.
const (
	LevelKodam   = "kodam"
	LevelKorem   = "korem"
	LevelKodim   = "kodim"
	LevelKoramil = "koramil"
)

var Levels = []string{LevelKodam, LevelKorem, LevelKodim, LevelKoramil}

var ErrNotFound = errors.New("office not found")

type Office struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Level     string    `json:"level"`
	ParentID  string    `json:"parent_id,omitempty"` // empty for Kodam-level offices
	CreatedAt time.Time `json:"created_at"`          // UTC
	UpdatedAt time.Time `json:"updated_at"`          // UTC
}

type Repository interface {
	CreateOffice(ctx context.Context, off Office) (Office, error)
	GetOffice(ctx context.Context, id string) (Office, error)
	QueryAllOffices(ctx context.Context) ([]Office, error)
}
