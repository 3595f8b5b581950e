package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
	"github.com/danwahyudir/lapju/core/template"
	"github.com/danwahyudir/lapju/core/user"
	inmemdb "github.com/danwahyudir/lapju/storage/database/inmem"
	testutil "github.com/danwahyudir/lapju/tests"
)

type cliFixture struct {
	cli      *commandLine
	usrRepo  user.Repository
	tplRepo  template.Repository
	taskRepo task.Repository
	projRepo project.Repository
}

func setup(t *testing.T) cliFixture {
	t.Helper()
	db := inmemdb.NewDB()
	f := cliFixture{
		usrRepo:  inmemdb.NewUserRepository(db),
		tplRepo:  inmemdb.NewTemplateRepository(db),
		taskRepo: inmemdb.NewTaskRepository(db),
		projRepo: inmemdb.NewProjectRepository(db),
	}
	taskSvc := task.NewService(nil, f.taskRepo, f.tplRepo)
	f.cli = &commandLine{
		usrRepo:    f.usrRepo,
		officeRepo: inmemdb.NewOfficeRepository(db),
		tplSvc:     template.NewService(nil, f.tplRepo),
		taskSvc:    taskSvc,
		projSvc:    project.NewService(f.projRepo, taskSvc),
	}
	return f
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	f := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := f.cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	f := setup(t)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"adduser"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"adduser", "-username", "dandi", "-email", "dandi@lapju.mil.id"}, wantErr: errHelp},
		{name: "create", args: []string{"adduser", "-username", "dandi", "-email", "dandi@lapju.mil.id"}, extra: extra{pwd: "rahasia123"}},
		{name: "create admin", args: []string{"adduser", "-username", "kapten", "-email", "kapten@lapju.mil.id", "-admin"}, extra: extra{pwd: "rahasia123"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := f.cli.run(args)
			if err == nil {
				uname := args[3]
				usr, err := f.usrRepo.GetUser(context.Background(), user.GetFilter{Username: uname})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if !usr.IsActive {
					t.Error("CLI-created users must be active")
				}
				if usr.CheckPassword("rahasia123") != nil {
					t.Error("failed to set password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_approveUser(t *testing.T) {
	f := setup(t)

	pending := testutil.CreateUser(t, f.usrRepo, "Pending", "pending", "pending@lapju.mil.id", "rahasia123", false, false)

	tests := []cliTest{
		{name: "no args", args: []string{"approveuser"}, wantErr: errHelp},
		{name: "user not found", args: []string{"approveuser", "-username", "lol"}, wantErr: user.ErrNotFound},
		{name: "approve by username", args: []string{"approveuser", "-username", pending.Username}},
		{name: "approve by email", args: []string{"approveuser", "-username", pending.Email}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := f.cli.run(args)
			if err == nil {
				usr, err := f.usrRepo.GetUser(context.Background(), user.GetFilter{ID: pending.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if !usr.IsActive {
					t.Error("failed to approve user")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_normalizeWeights(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	root := testutil.CreateTemplate(t, f.tplRepo, "Pekerjaan", "", 1, 6, "0", "0", "0")
	a := testutil.CreateTemplate(t, f.tplRepo, "A", root.ID, 2, 3, "1", "10", "10")
	testutil.CreateTemplate(t, f.tplRepo, "B", root.ID, 4, 5, "1", "10", "40")

	proj := testutil.CreateProject(t, f.projRepo, "Rumdis", testutil.Date(2025, 1, 1))
	pa := testutil.CreateTask(t, f.taskRepo, proj.ID, "A", "", 1, 2, "30")
	testutil.CreateTask(t, f.taskRepo, proj.ID, "B", "", 3, 4, "90")

	if err := f.cli.run([]string{"admin", "normalizeweights"}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	tpl, _ := f.tplRepo.GetTemplate(ctx, a.ID)
	if tpl.Weight.String() != "20" {
		t.Errorf("template weight = %s, want 20", tpl.Weight)
	}

	if err := f.cli.run([]string{"admin", "normalizeweights", "-project", proj.ID}); err != nil {
		t.Fatalf("cli.run() error = %v", err)
	}
	tsk, _ := f.taskRepo.GetTask(ctx, pa.ID)
	if tsk.Weight.String() != "25" {
		t.Errorf("task weight = %s, want 25", tsk.Weight)
	}
}

func Test_commandLine_resetTasks(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	testutil.CreateTemplate(t, f.tplRepo, "Pekerjaan", "", 1, 2, "1", "10", "100")
	proj := testutil.CreateProject(t, f.projRepo, "Rumdis", testutil.Date(2025, 1, 1))

	tests := []cliTest{
		{name: "no args", args: []string{"resettasks"}, wantErr: errHelp},
		{name: "project not found", args: []string{"resettasks", "-project", "lol"}, wantErr: project.ErrNotFound},
		{name: "reset", args: []string{"resettasks", "-project", proj.ID}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := f.cli.run(args)
			if err == nil {
				tasks, err := f.taskRepo.QueryProjectTasks(ctx, proj.ID)
				if err != nil {
					t.Fatalf("QueryProjectTasks() failed, %v", err)
				}
				if len(tasks) != 1 {
					t.Errorf("got %d tasks, want 1", len(tasks))
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
