package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/chuodev/karo/core"
	"github.com/chuodev/karo/core/ledger"
	"github.com/chuodev/karo/core/payer"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf      *core.Config
	db        *sql.DB
	payerSvc  *payer.Service
	ledgerSvc *ledger.Service
	validate  *validator.Validate
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  createdb - create the database and app user if missing")
	fmt.Println("  migrate COMMAND [ARGS] - run a goose migration command")
	fmt.Println("  addpayer -name NAME -kind student|staff [-email EMAIL] - register a payer")
	fmt.Println("  setdue -kind fee|salary -payers ID[,ID...] -total AMOUNT -due YYYY-MM-DD - set the amount due")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addPayerCmd := flag.NewFlagSet("addpayer", flag.ExitOnError)
	addPayerName := addPayerCmd.String("name", "", "The payer's full name.")
	addPayerEmail := addPayerCmd.String("email", "", "The payer's email; receipts are sent here.")
	addPayerKind := addPayerCmd.String("kind", "", "One of: student, staff.")

	setDueCmd := flag.NewFlagSet("setdue", flag.ExitOnError)
	setDueKind := setDueCmd.String("kind", "", "One of: fee, salary.")
	setDuePayers := setDueCmd.String("payers", "", "Comma-separated payer IDs.")
	setDueTotal := setDueCmd.String("total", "", "The total amount due.")
	setDueDate := setDueCmd.String("due", "", "The due date, YYYY-MM-DD.")

	switch args[1] {
	case "createdb":
		return cli.createDB()
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "addpayer":
		if err := addPayerCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addPayerName == "" || *addPayerKind == "" {
			addPayerCmd.Usage()
			return errHelp
		}
		return cli.addPayer(*addPayerName, *addPayerEmail, *addPayerKind)
	case "setdue":
		if err := setDueCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setDueKind == "" || *setDuePayers == "" || *setDueTotal == "" || *setDueDate == "" {
			setDueCmd.Usage()
			return errHelp
		}
		return cli.setDue(*setDueKind, *setDuePayers, *setDueTotal, *setDueDate)
	default:
		cli.printUsage()
		return errHelp
	}
}
