package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/chuodev/karo/core"
	"github.com/chuodev/karo/core/ledger"
	"github.com/chuodev/karo/core/payer"
	dummydb "github.com/chuodev/karo/storage/database/dummy"
)

func setup(t *testing.T) (*commandLine, *payer.Service) {
	t.Helper()

	conf := &core.Config{TestMode: true}
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening dummy DB: %v", err)
	}

	payerSvc := payer.NewService(conf, dummydb.NewPayerRepository(db))
	ledgerSvc := ledger.NewService(
		conf,
		dummydb.NewAccountRepository(db),
		dummydb.NewInstallmentRepository(db),
		payerSvc,
		nil,
		nil,
	)

	validate := validator.New()
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	core.InitValidators(validate, translator)
	ledger.InitValidators(validate, translator)

	return &commandLine{
		conf:      conf,
		payerSvc:  payerSvc,
		ledgerSvc: ledgerSvc,
		validate:  validate,
	}, payerSvc
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
}

func Test_commandLine_migrate(t *testing.T) {
	cli, _ := setup(t)

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
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
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
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "scholarship", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
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

func Test_commandLine_addPayer(t *testing.T) {
	cli, payerSvc := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"addpayer"}, wantErr: errHelp},
		{name: "name but no kind", args: []string{"addpayer", "-name", "Awe Mdr"}, wantErr: errHelp},
		{name: "bad kind", args: []string{"addpayer", "-name", "Awe Mdr", "-kind", "teacher"}, wantErrStr: "Key: 'NewPayer.kind' Error:Field validation for 'kind' failed on the 'oneof' tag"},
		{name: "student", args: []string{"addpayer", "-name", "Awe Mdr", "-kind", "student"}},
		{name: "staff with email", args: []string{"addpayer", "-name", "Hein Ryan", "-kind", "staff", "-email", "hr@test.cd"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}

	payers, err := payerSvc.Query(context.Background(), "")
	if err != nil {
		t.Fatalf("Query() failed, %v", err)
	}
	if len(payers) != 2 {
		t.Errorf("expected 2 payers, got %d", len(payers))
	}
}

func Test_commandLine_setDue(t *testing.T) {
	cli, payerSvc := setup(t)

	std, err := payerSvc.Create(context.Background(), payer.NewPayer{Name: "Awe Mdr", Kind: payer.KindStudent})
	if err != nil {
		t.Fatalf("Create() failed, %v", err)
	}

	tests := []cliTest{
		{name: "no args", args: []string{"setdue"}, wantErr: errHelp},
		{name: "missing due date", args: []string{"setdue", "-kind", "fee", "-payers", std.ID, "-total", "150"}, wantErr: errHelp},
		{name: "bad kind", args: []string{"setdue", "-kind", "tuition", "-payers", std.ID, "-total", "150", "-due", "2026-10-01"}, wantErrStr: "\"tuition\": no such ledger"},
		{name: "bad total", args: []string{"setdue", "-kind", "fee", "-payers", std.ID, "-total", "lol", "-due", "2026-10-01"}, wantErrStr: "total must be a number (got \"lol\")"},
		{name: "ok", args: []string{"setdue", "-kind", "fee", "-payers", std.ID, "-total", "150", "-due", "2026-10-01"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if tt.wantErrStr != "" {
				if err == nil || err.Error() != tt.wantErrStr {
					t.Errorf("cli.run() error = %v, wantErrStr %s", err, tt.wantErrStr)
				}
				return
			}
			if err != nil {
				t.Errorf("cli.run() unexpected error = %v", err)
			}
		})
	}

	acct, err := cli.ledgerSvc.GetAccount(context.Background(), ledger.KindFee, std.ID)
	if err != nil {
		t.Fatalf("GetAccount() failed, %v", err)
	}
	if acct.Total.StringFixed(2) != "150.00" {
		t.Errorf("expected total 150.00, got %s", acct.Total.StringFixed(2))
	}
}
