package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/danwahyudir/lapju/apps/api/echo"
	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/progress"
	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
	"github.com/danwahyudir/lapju/core/template"
	"github.com/danwahyudir/lapju/core/user"
	emailsvc "github.com/danwahyudir/lapju/services/email"
	logsvc "github.com/danwahyudir/lapju/services/logger"
	"github.com/danwahyudir/lapju/storage/database"
	sqlxrepos "github.com/danwahyudir/lapju/storage/database/sqlx"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := setUpDB()
	if err != nil {
		logger.Fatal("setting up database", err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	userRepo := sqlxrepos.NewUserRepository(db)
	officeRepo := sqlxrepos.NewOfficeRepository(db)
	templateRepo := sqlxrepos.NewTemplateRepository(db)
	taskRepo := sqlxrepos.NewTaskRepository(db)
	projectRepo := sqlxrepos.NewProjectRepository(db)
	progressRepo := sqlxrepos.NewProgressRepository(db)

	userSvc := user.NewService(userRepo, mailSvc)
	templateSvc := template.NewService(db, templateRepo)
	taskSvc := task.NewService(db, taskRepo, templateRepo)
	projectSvc := project.NewService(projectRepo, taskSvc)
	progressSvc := progress.NewService(db, progressRepo, taskRepo, projectRepo, logger)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	expvar.NewString("build").Set(core.Conf.Build)
	expvar.NewString("env").Set(core.Conf.Env)

	go func() {
		if err := http.ListenAndServe(core.Conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error("debug server closed", err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(&echoapi.Options{
		Address:     core.Conf.Server.Address(),
		Logger:      logger,
		UserSvc:     userSvc,
		TemplateSvc: templateSvc,
		ProjectSvc:  projectSvc,
		TaskSvc:     taskSvc,
		ProgressSvc: progressSvc,
		OfficeRepo:  officeRepo,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal("server error", err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), core.Conf.Server.ShutdownTimeout)
		defer cancel()

		// ask listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error("could not stop server gracefully", err)

			if err = server.Close(); err != nil {
				logger.Fatal("could not force stop server", err)
			}
		}
	}
}

func setUpDB() (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(core.Conf); err != nil {
		return nil, err
	}

	db, err := database.Open(core.Conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
