package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/danwahyudir/lapju/core/progress"
	"github.com/danwahyudir/lapju/core/project"
	"github.com/danwahyudir/lapju/core/task"
)

type projectApi struct {
	svc         *project.Service
	taskSvc     *task.Service
	progressSvc *progress.Service
}

func registerProjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := projectApi{
		svc:         opts.ProjectSvc,
		taskSvc:     opts.TaskSvc,
		progressSvc: opts.ProgressSvc,
	}

	pg := g.Group("/projects", jwt)
	pg.GET("", api.query)
	pg.POST("", api.create, adminMiddleware())
	pg.GET("/:id", api.retrieve)
	pg.POST("/:id/reset", api.resetTasks, adminMiddleware())

	pg.GET("/:id/tasks", api.taskTree)
	pg.POST("/:id/tasks", api.createTask, adminMiddleware())
	pg.POST("/:id/tasks/normalize", api.normalizeWeights, adminMiddleware())

	pg.POST("/:id/progress", api.recordProgress)
	pg.GET("/:id/progress/latest", api.latestProgress)
	pg.GET("/:id/rollup", api.rollup)
}

// Handlers

func (api *projectApi) query(ctx echo.Context) error {
	projects, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying projects")
	}
	if projects == nil {
		projects = []project.Project{}
	}
	return ctx.JSON(http.StatusOK, projects)
}

func (api *projectApi) create(ctx echo.Context) error {
	var data project.NewProject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewProject")
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, p)
}

func (api *projectApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *projectApi) resetTasks(ctx echo.Context) error {
	if err := api.svc.ResetTasks(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *projectApi) taskTree(ctx echo.Context) error {
	c := ctx.Request().Context()
	if _, err := api.svc.Get(c, ctx.Param("id")); err != nil {
		return err
	}
	tasks, numbers, err := api.taskSvc.ProjectTree(c, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "loading project task tree")
	}
	return ctx.JSON(http.StatusOK, TreeResponse{Nodes: tasks, LeafNumbers: numbers})
}

func (api *projectApi) createTask(ctx echo.Context) error {
	var data task.NewTask
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTask")
	}
	data.ProjectID = ctx.Param("id")

	if _, err := api.svc.Get(ctx.Request().Context(), data.ProjectID); err != nil {
		return err
	}
	t, err := api.taskSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, t)
}

func (api *projectApi) normalizeWeights(ctx echo.Context) error {
	c := ctx.Request().Context()
	if _, err := api.svc.Get(c, ctx.Param("id")); err != nil {
		return err
	}
	res, err := api.taskSvc.NormalizeWeights(c, ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *projectApi) recordProgress(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	var data progress.NewEntry
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEntry")
	}
	data.ProjectID = ctx.Param("id")
	data.UserID = claims.Subject

	entry, err := api.progressSvc.Record(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, entry)
}

func (api *projectApi) latestProgress(ctx echo.Context) error {
	var q AsOfQuery
	if err := q.Bind(ctx); err != nil {
		return err
	}

	latest, err := api.progressSvc.Latest(ctx.Request().Context(), ctx.Param("id"), q.Date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, latest)
}

func (api *projectApi) rollup(ctx echo.Context) error {
	var q AsOfQuery
	if err := q.Bind(ctx); err != nil {
		return err
	}

	snap, err := api.progressSvc.Snapshot(ctx.Request().Context(), ctx.Param("id"), q.Date, q.Mode)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}
