package echoapi

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/danwahyudir/lapju/core"
	"github.com/danwahyudir/lapju/core/progress"
)

const dateParamLayout = "2006-01-02"

// AsOfQuery binds the ?date=YYYY-MM-DD and ?mode=mean|weighted query params
// of the progress read endpoints. A missing date defaults to today.
type AsOfQuery struct {
	Date time.Time
	Mode progress.RollupMode
}

func (q *AsOfQuery) Bind(ctx echo.Context) error {
	q.Date = core.Today()
	q.Mode = progress.ModeMean

	if raw := ctx.QueryParam("date"); raw != "" {
		d, err := time.Parse(dateParamLayout, raw)
		if err != nil {
			return core.NewValidationError(err,
				core.FieldError{Field: "date", Error: "date must be formatted YYYY-MM-DD"})
		}
		q.Date = core.DateOf(d)
	}

	switch mode := ctx.QueryParam("mode"); mode {
	case "", string(progress.ModeMean):
	case string(progress.ModeWeighted):
		q.Mode = progress.ModeWeighted
	default:
		return core.NewValidationError(nil,
			core.FieldError{Field: "mode", Error: "mode must be one of: mean, weighted"})
	}
	return nil
}
