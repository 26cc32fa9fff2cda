package dummydb

import (
	"sync"

	"github.com/chuodev/karo/core/ledger"
	"github.com/chuodev/karo/core/payer"
)

type (
	DB struct {
		account     *accountTable
		installment *installmentTable
		payer       *payerTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*ledger.Account // by account ID
	}

	installmentTable struct {
		sync.RWMutex
		table map[string][]ledger.Installment // by account ID; append-only
	}

	payerTable struct {
		sync.RWMutex
		table map[string]*payer.Payer
	}
)

func Open() (*DB, error) {
	db := &DB{
		account:     &accountTable{table: make(map[string]*ledger.Account)},
		installment: &installmentTable{table: make(map[string][]ledger.Installment)},
		payer:       &payerTable{table: make(map[string]*payer.Payer)},
	}
	return db, nil
}
