package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core/ledger"
	"github.com/chuodev/karo/core/payer"
)

func (cli *commandLine) addPayer(name, email, kind string) error {
	data := payer.NewPayer{Name: name, Email: email, Kind: kind}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}

	p, err := cli.payerSvc.Create(context.Background(), data)
	if err != nil {
		return err
	}
	fmt.Printf("%s %q registered: %s\n", p.Kind, p.Name, p.ID)
	return nil
}

func (cli *commandLine) setDue(kind, payers, total, dueDate string) error {
	if !ledger.Kind(kind).Valid() {
		return fmt.Errorf("%q: no such ledger", kind)
	}
	amount, err := decimal.NewFromString(total)
	if err != nil {
		return fmt.Errorf("total must be a number (got %q)", total)
	}

	data := ledger.BulkDue{
		PayerIDs: strings.Split(payers, ","),
		Total:    amount,
		DueDate:  dueDate,
	}
	if err := data.Validate(cli.validate); err != nil {
		return err
	}

	res := cli.ledgerSvc.BulkSetDue(context.Background(), ledger.Kind(kind), data)
	for _, o := range res.Outcomes {
		if o.OK() {
			fmt.Printf("  %s: due %s by %s\n", o.PayerID, o.Account.Total.StringFixed(2), o.Account.DueDate.Format("2006-01-02"))
		} else {
			fmt.Printf("  %s: FAILED: %s\n", o.PayerID, o.Error)
		}
	}
	fmt.Println(res.Summary())

	if res.Failed > 0 {
		return fmt.Errorf("setdue failed for %d of %d payers", res.Failed, len(res.Outcomes))
	}
	return nil
}
