package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/chuodev/karo/core"
	"github.com/chuodev/karo/core/payer"
)

type (
	payerApi struct {
		svc        *payer.Service
		validate   *validator.Validate
		translator ut.Translator
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func registerPayerAPI(
	g *echo.Group,
	svc *payer.Service,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := payerApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	pg := g.Group("/payers")
	pg.POST("", api.create)
	pg.GET("", api.query)
	pg.GET("/:id", api.retrieve)
	pg.DELETE("", api.destroyMultiple)
}

// Handlers

func (api *payerApi) create(ctx echo.Context) error {
	var data payer.NewPayer
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayer")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	p, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payer")
	}

	return ctx.JSON(http.StatusCreated, p)
}

func (api *payerApi) query(ctx echo.Context) error {
	kind := core.CleanString(ctx.QueryParam("kind"))
	if kind != "" && kind != payer.KindStudent && kind != payer.KindStaff {
		return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "must be one of: student, staff"})
	}

	payers, err := api.svc.Query(ctx.Request().Context(), kind)
	if err != nil {
		return errors.Wrap(err, "querying payers")
	}
	if payers == nil {
		payers = []payer.Payer{}
	}
	return ctx.JSON(http.StatusOK, payers)
}

func (api *payerApi) retrieve(ctx echo.Context) error {
	p, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, p)
}

func (api *payerApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting payers")
	}
	return ctx.NoContent(http.StatusNoContent)
}
