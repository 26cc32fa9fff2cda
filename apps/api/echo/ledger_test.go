package echoapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/chuodev/karo/core"
	"github.com/chuodev/karo/core/ledger"
	"github.com/chuodev/karo/core/payer"
	dummymail "github.com/chuodev/karo/services/email/dummy"
	dummydb "github.com/chuodev/karo/storage/database/dummy"
	testutil "github.com/chuodev/karo/tests"
)

type testLogger struct{}

func (testLogger) Enable(bool)                  {}
func (testLogger) Debug(string, ...interface{}) {}
func (testLogger) Info(string, ...interface{})  {}
func (testLogger) Warn(string, ...interface{})  {}
func (testLogger) Error(string, ...interface{}) {}
func (testLogger) Fatal(string, ...interface{}) {}

type httpErr struct {
	Error string `json:"error"`
}

func setup(t *testing.T) (Server, payer.Repository) {
	t.Helper()

	conf := &core.Config{
		TestMode: true,
		AppName:  "Karo",
		Ledger:   core.LedgerConfig{BulkConcurrency: 4, BulkRetries: 2, OpTimeout: 5 * time.Second},
	}
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("setup() failed: %v", err)
	}

	payerRepo := dummydb.NewPayerRepository(db)
	payerSvc := payer.NewService(conf, payerRepo)
	ledgerSvc := ledger.NewService(
		conf,
		dummydb.NewAccountRepository(db),
		dummydb.NewInstallmentRepository(db),
		payerSvc,
		dummymail.NewService(),
		testLogger{},
	)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	ledger.InitValidators(validate, translator)

	server := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     testLogger{},
		LedgerSvc:  ledgerSvc,
		PayerSvc:   payerSvc,
		Validate:   validate,
		Translator: translator,
	})
	return server, payerRepo
}

func doRequest(t *testing.T, server Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("doRequest() failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode() failed: %v (body: %s)", err, rec.Body.String())
	}
}

func TestLedgerAPI_setDue(t *testing.T) {
	server, payerRepo := setup(t)
	std := testutil.CreatePayer(t, payerRepo, "Awe Mdr", "", payer.KindStudent)

	rec := doRequest(t, server, http.MethodPost, "/v1/fees/set-due", map[string]interface{}{
		"payer_id": std.ID,
		"total":    "100",
		"due_date": "2099-12-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp accountResponse
	decode(t, rec, &resp)
	assert.Equal(t, std.ID, resp.PayerID)
	assert.Equal(t, ledger.StatusUnpaid, resp.Status)
	assert.Equal(t, "100", resp.Outstanding.String())
}

func TestLedgerAPI_setDue_validation(t *testing.T) {
	server, _ := setup(t)

	tests := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{name: "missing payer", body: map[string]interface{}{"total": "100", "due_date": "2099-12-31"}, wantField: "payer_id"},
		{name: "missing due date", body: map[string]interface{}{"payer_id": "p1", "total": "100"}, wantField: "due_date"},
		{name: "bad due date", body: map[string]interface{}{"payer_id": "p1", "total": "100", "due_date": "31/12/2099"}, wantField: "due_date"},
		{name: "zero total", body: map[string]interface{}{"payer_id": "p1", "due_date": "2099-12-31"}, wantField: "total"},
		{name: "negative total", body: map[string]interface{}{"payer_id": "p1", "total": "-5", "due_date": "2099-12-31"}, wantField: "total"},
		{name: "negative late fee", body: map[string]interface{}{"payer_id": "p1", "total": "100", "late_fee": "-1", "due_date": "2099-12-31"}, wantField: "late_fee"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, server, http.MethodPost, "/v1/fees/set-due", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var fldErrs map[string]string
			decode(t, rec, &fldErrs)
			assert.Contains(t, fldErrs, tt.wantField)
		})
	}
}

func TestLedgerAPI_recordPayment(t *testing.T) {
	server, payerRepo := setup(t)
	std := testutil.CreatePayer(t, payerRepo, "Awe Mdr", "", payer.KindStudent)

	rec := doRequest(t, server, http.MethodPost, "/v1/fees/set-due", map[string]interface{}{
		"payer_id": std.ID, "total": "100", "due_date": "2099-12-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/v1/fees/record-payment", map[string]interface{}{
		"payer_id": std.ID, "amount": "40", "method": "mobile money",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp paymentResponse
	decode(t, rec, &resp)
	assert.Equal(t, ledger.StatusPartial, resp.Account.Status)
	assert.Equal(t, "60", resp.Account.Outstanding.String())
	assert.NotEmpty(t, resp.Installment.ID)
	assert.Equal(t, "mobile money", resp.Installment.Method)
}

func TestLedgerAPI_recordPayment_errors(t *testing.T) {
	server, payerRepo := setup(t)
	std := testutil.CreatePayer(t, payerRepo, "Awe Mdr", "", payer.KindStudent)

	rec := doRequest(t, server, http.MethodPost, "/v1/fees/set-due", map[string]interface{}{
		"payer_id": std.ID, "total": "100", "due_date": "2099-12-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	// no account on this ledger
	rec = doRequest(t, server, http.MethodPost, "/v1/salaries/record-payment", map[string]interface{}{
		"payer_id": std.ID, "amount": "40",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var herr httpErr
	decode(t, rec, &herr)
	assert.Equal(t, ledger.ErrNotFound.Error(), herr.Error)

	// overpayment
	rec = doRequest(t, server, http.MethodPost, "/v1/fees/record-payment", map[string]interface{}{
		"payer_id": std.ID, "amount": "150",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	decode(t, rec, &herr)
	assert.Equal(t, ledger.ErrOverpayment.Error(), herr.Error)

	// non-positive amount is a validation error
	rec = doRequest(t, server, http.MethodPost, "/v1/fees/record-payment", map[string]interface{}{
		"payer_id": std.ID, "amount": "0",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var fldErrs map[string]string
	decode(t, rec, &fldErrs)
	assert.Contains(t, fldErrs, "amount")
}

func TestLedgerAPI_retrieveAccount(t *testing.T) {
	server, payerRepo := setup(t)
	std := testutil.CreatePayer(t, payerRepo, "Awe Mdr", "", payer.KindStudent)

	rec := doRequest(t, server, http.MethodGet, "/v1/fees/accounts/"+std.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/v1/fees/set-due", map[string]interface{}{
		"payer_id": std.ID, "total": "100", "due_date": "2099-12-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/v1/fees/accounts/"+std.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var resp accountResponse
	decode(t, rec, &resp)
	assert.Equal(t, "Awe Mdr", resp.PayerName)

	// the account survives its payer; the name falls back to a placeholder
	if err := payerRepo.DeletePayersByID(nil, std.ID); err != nil {
		t.Fatalf("DeletePayersByID() failed: %v", err)
	}
	rec = doRequest(t, server, http.MethodGet, "/v1/fees/accounts/"+std.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, "Deleted Student", resp.PayerName)
}

func TestLedgerAPI_listInstallments(t *testing.T) {
	server, payerRepo := setup(t)
	std := testutil.CreatePayer(t, payerRepo, "Awe Mdr", "", payer.KindStudent)

	rec := doRequest(t, server, http.MethodPost, "/v1/fees/set-due", map[string]interface{}{
		"payer_id": std.ID, "total": "100", "due_date": "2099-12-31",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, amount := range []string{"10", "20", "30"} {
		rec = doRequest(t, server, http.MethodPost, "/v1/fees/record-payment", map[string]interface{}{
			"payer_id": std.ID, "amount": amount,
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/v1/fees/installments/"+std.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var insts []ledger.Installment
	decode(t, rec, &insts)
	assert.Len(t, insts, 3)

	rec = doRequest(t, server, http.MethodGet, "/v1/fees/installments/"+std.ID+"?limit=2&offset=1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &insts)
	assert.Len(t, insts, 2)
}

func TestLedgerAPI_bulk(t *testing.T) {
	server, payerRepo := setup(t)
	ok1 := testutil.CreatePayer(t, payerRepo, "Awe", "", payer.KindStaff)
	ok2 := testutil.CreatePayer(t, payerRepo, "Mdr", "", payer.KindStaff)

	rec := doRequest(t, server, http.MethodPost, "/v1/salaries/bulk-set-due", map[string]interface{}{
		"payer_ids": []string{ok1.ID, ok2.ID},
		"total":     "500",
		"due_date":  "2099-09-30",
	})
	assert.Equal(t, http.StatusOK, rec.Code)

	var res ledger.BulkResult
	decode(t, rec, &res)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 0, res.Failed)

	// one bad target does not fail the request
	rec = doRequest(t, server, http.MethodPost, "/v1/salaries/bulk-record-payment", map[string]interface{}{
		"payer_ids": []string{ok1.ID, "ghost", ok2.ID},
		"amount":    "200",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &res)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Failed)

	// empty target list is a validation error
	rec = doRequest(t, server, http.MethodPost, "/v1/salaries/bulk-set-due", map[string]interface{}{
		"payer_ids": []string{},
		"total":     "500",
		"due_date":  "2099-09-30",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPayerAPI(t *testing.T) {
	server, _ := setup(t)

	rec := doRequest(t, server, http.MethodPost, "/v1/payers", map[string]interface{}{
		"name": "Awe Mdr", "kind": "student", "email": "awe@test.cd",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	var p payer.Payer
	decode(t, rec, &p)
	assert.NotEmpty(t, p.ID)

	rec = doRequest(t, server, http.MethodPost, "/v1/payers", map[string]interface{}{
		"name": "Hein Ryan", "kind": "teacher",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/v1/payers?kind=student", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	var payers []payer.Payer
	decode(t, rec, &payers)
	assert.Len(t, payers, 1)

	rec = doRequest(t, server, http.MethodGet, "/v1/payers/"+p.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, server, http.MethodDelete, "/v1/payers?id="+p.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/v1/payers/"+p.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
