package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/chuodev/karo/core"
	"github.com/chuodev/karo/core/ledger"
	"github.com/chuodev/karo/core/payer"
	"github.com/chuodev/karo/storage/database"
	sqlxrepos "github.com/chuodev/karo/storage/database/sqlx"
)

var logger *log.Logger // todo: logger service

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	sdb := sqlx.NewDb(db, "postgres")
	payerSvc := payer.NewService(conf, sqlxrepos.NewPayerRepository(sdb))
	ledgerSvc := ledger.NewService(
		conf,
		sqlxrepos.NewAccountRepository(sdb),
		sqlxrepos.NewInstallmentRepository(sdb),
		payerSvc,
		nil, // no receipts from the CLI
		nil,
	)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)
	ledger.InitValidators(validate, translator)

	// start CLI
	cli := commandLine{
		conf:      conf,
		db:        db,
		payerSvc:  payerSvc,
		ledgerSvc: ledgerSvc,
		validate:  validate,
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

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
