package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core/ledger"
	"github.com/chuodev/karo/core/payer"
)

type ledgerApi struct {
	kind       ledger.Kind
	svc        *ledger.Service
	payers     ledger.PayerResolver
	validate   *validator.Validate
	translator ut.Translator
}

func registerLedgerAPI(
	g *echo.Group,
	kind ledger.Kind,
	svc *ledger.Service,
	payers ledger.PayerResolver,
	validate *validator.Validate,
	translator ut.Translator,
) {
	api := ledgerApi{
		kind:       kind,
		svc:        svc,
		payers:     payers,
		validate:   validate,
		translator: translator,
	}

	g.POST("/set-due", api.setDue)
	g.POST("/record-payment", api.recordPayment)
	g.POST("/bulk-set-due", api.bulkSetDue)
	g.POST("/bulk-record-payment", api.bulkRecordPayment)
	g.GET("/accounts/:payerID", api.retrieveAccount)
	g.GET("/installments/:payerID", api.listInstallments)
}

// Serializers

type (
	accountResponse struct {
		ledger.Account
		Status         ledger.Status   `json:"status"`
		Outstanding    decimal.Decimal `json:"outstanding"`
		EffectiveTotal decimal.Decimal `json:"effective_total"`
		PercentPaid    decimal.Decimal `json:"percent_paid"`
		PayerName      string          `json:"payer_name,omitempty"`
	}

	paymentResponse struct {
		Account     accountResponse    `json:"account"`
		Installment ledger.Installment `json:"installment"`
	}
)

func newAccountResponse(acct ledger.Account) accountResponse {
	return accountResponse{
		Account:        acct,
		Status:         acct.Status(),
		Outstanding:    acct.Outstanding(),
		EffectiveTotal: acct.EffectiveTotal(),
		PercentPaid:    acct.PercentPaid(),
	}
}

// payerName resolves the payer's display name. Accounts outlive payer
// records; a dangling reference renders a placeholder instead of failing.
func (api *ledgerApi) payerName(ctx echo.Context, payerID string) string {
	p, err := api.payers.Resolve(ctx.Request().Context(), payerID)
	if err != nil {
		return payer.DeletedName(api.kind.PayerKind())
	}
	return p.Name
}

// Handlers

func (api *ledgerApi) setDue(ctx echo.Context) error {
	var data ledger.NewDue
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewDue")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acct, err := api.svc.SetDue(ctx.Request().Context(), api.kind, data)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, newAccountResponse(acct))
}

func (api *ledgerApi) recordPayment(ctx echo.Context) error {
	var data ledger.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	acct, inst, err := api.svc.RecordPayment(ctx.Request().Context(), api.kind, data)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusCreated, paymentResponse{
		Account:     newAccountResponse(acct),
		Installment: inst,
	})
}

func (api *ledgerApi) bulkSetDue(ctx echo.Context) error {
	var data ledger.BulkDue
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkDue")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res := api.svc.BulkSetDue(ctx.Request().Context(), api.kind, data)
	return ctx.JSON(http.StatusOK, res)
}

func (api *ledgerApi) bulkRecordPayment(ctx echo.Context) error {
	var data ledger.BulkPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res := api.svc.BulkRecordPayment(ctx.Request().Context(), api.kind, data)
	return ctx.JSON(http.StatusOK, res)
}

func (api *ledgerApi) retrieveAccount(ctx echo.Context) error {
	payerID := ctx.Param("payerID")

	acct, err := api.svc.GetAccount(ctx.Request().Context(), api.kind, payerID)
	if err != nil {
		return err
	}

	resp := newAccountResponse(acct)
	resp.PayerName = api.payerName(ctx, payerID)
	return ctx.JSON(http.StatusOK, resp)
}

func (api *ledgerApi) listInstallments(ctx echo.Context) error {
	payerID := ctx.Param("payerID")

	var page Pagination
	page.Bind(ctx)

	insts, err := api.svc.ListInstallments(ctx.Request().Context(), api.kind, payerID, page.Limit, page.Offset)
	if err != nil {
		return err
	}

	return ctx.JSON(http.StatusOK, insts)
}
