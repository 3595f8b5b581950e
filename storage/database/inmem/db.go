// Package inmemdb provides in-memory repositories for tests and local
// development without a database.
package inmemdb

import (
	"sync"

	"github.com/danwahyudir/lapju/core/office"
	"github.com/danwahyudir/lapju/core/progress"
	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
	"github.com/danwahyudir/lapju/core/template"
	"github.com/danwahyudir/lapju/core/user"
)

type DB struct {
	mu        sync.RWMutex
	users     map[string]*user.User
	offices   map[string]*office.Office
	templates map[string]*template.Template
	projects  map[string]*project.Project
	tasks     map[string]*task.Task
	entries   map[string]*progress.Entry
}

func NewDB() *DB {
	return &DB{
		users:     make(map[string]*user.User),
		offices:   make(map[string]*office.Office),
		templates: make(map[string]*template.Template),
		projects:  make(map[string]*project.Project),
		tasks:     make(map[string]*task.Task),
		entries:   make(map[string]*progress.Entry),
	}
}
