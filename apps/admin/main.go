package main

import (
	"log"
	"os"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
	"github.com/danwahyudir/lapju/core/template"
	"github.com/danwahyudir/lapju/storage/database"
	sqlxrepos "github.com/danwahyudir/lapju/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	taskSvc := task.NewService(db, sqlxrepos.NewTaskRepository(db), sqlxrepos.NewTemplateRepository(db))

	// start CLI
	cli := commandLine{
		db:         db.DB,
		usrRepo:    sqlxrepos.NewUserRepository(db),
		officeRepo: sqlxrepos.NewOfficeRepository(db),
		tplSvc:     template.NewService(db, sqlxrepos.NewTemplateRepository(db)),
		taskSvc:    taskSvc,
		projSvc:    project.NewService(sqlxrepos.NewProjectRepository(db), taskSvc),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
