package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/danwahyudir/lapju/core/template"
)

type templateApi struct {
	svc *template.Service
}

func registerTemplateAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *template.Service) {
	api := templateApi{svc: svc}

	tg := g.Group("/templates", jwt)
	tg.GET("", api.tree)

	// catalog authoring is admin-only
	tg.POST("", api.create, adminMiddleware())
	tg.PUT("/:id", api.update, adminMiddleware())
	tg.DELETE("/:id", api.destroy, adminMiddleware())
	tg.POST("/normalize", api.normalizeWeights, adminMiddleware())
}

// TreeResponse is a nested-set tree in left-bound order plus the 1-based
// display numbers of its leaves, keyed by node id.
type TreeResponse struct {
	Nodes       interface{}    `json:"nodes"`
	LeafNumbers map[string]int `json:"leaf_numbers"`
}

// Handlers

func (api *templateApi) tree(ctx echo.Context) error {
	tpls, numbers, err := api.svc.Tree(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading template tree")
	}
	return ctx.JSON(http.StatusOK, TreeResponse{Nodes: tpls, LeafNumbers: numbers})
}

func (api *templateApi) create(ctx echo.Context) error {
	var data template.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}

	tpl, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, tpl)
}

func (api *templateApi) update(ctx echo.Context) error {
	var data template.UpdateTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTemplate")
	}

	tpl, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, tpl)
}

func (api *templateApi) destroy(ctx echo.Context) error {
	if _, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *templateApi) normalizeWeights(ctx echo.Context) error {
	res, err := api.svc.NormalizeWeights(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
