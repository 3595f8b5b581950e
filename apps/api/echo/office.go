package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/danwahyudir/lapju/core/office"
)

// The office hierarchy is reference data maintained via the admin CLI; the
// API only reads it.
type officeApi struct {
	repo office.Repository
}

func registerOfficeAPI(g *echo.Group, jwt echo.MiddlewareFunc, repo office.Repository) {
	api := officeApi{repo: repo}

	og := g.Group("/offices", jwt)
	og.GET("", api.query)
	og.GET("/:id", api.retrieve)
}

func (api *officeApi) query(ctx echo.Context) error {
	offices, err := api.repo.QueryAllOffices(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying offices")
	}
	if offices == nil {
		offices = []office.Office{}
	}
	return ctx.JSON(http.StatusOK, offices)
}

func (api *officeApi) retrieve(ctx echo.Context) error {
	off, err := api.repo.GetOffice(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, off)
}
