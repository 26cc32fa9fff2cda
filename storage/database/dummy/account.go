package dummydb

import (
	"context"

	"github.com/chuodev/karo/core/ledger"
)

type accountRepository struct {
	db           *accountTable
	installments *installmentTable
}

var _ ledger.AccountRepository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *DB) ledger.AccountRepository {
	return &accountRepository{db: db.account, installments: db.installment}
}

func (repo *accountRepository) GetAccount(_ context.Context, kind ledger.Kind, payerID string) (ledger.Account, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, acct := range repo.db.table {
		if acct.Kind == kind && acct.PayerID == payerID {
			return *acct, nil
		}
	}
	return ledger.Account{}, ledger.ErrNotFound
}

func (repo *accountRepository) UpsertDue(_ context.Context, acct ledger.Account) (ledger.Account, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, existing := range repo.db.table {
		if existing.Kind == acct.Kind && existing.PayerID == acct.PayerID {
			existing.Total = acct.Total
			existing.LateFee = acct.LateFee
			existing.Scholarship = acct.Scholarship
			existing.DueDate = acct.DueDate
			existing.UpdatedAt = acct.UpdatedAt
			existing.Revision++
			return *existing, nil
		}
	}

	acct.Revision = 1
	repo.db.table[acct.ID] = &acct
	return acct, nil
}

func (repo *accountRepository) ApplyPayment(_ context.Context, acct ledger.Account, inst ledger.Installment) (ledger.Account, ledger.Installment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	current, ok := repo.db.table[acct.ID]
	if !ok {
		return ledger.Account{}, ledger.Installment{}, ledger.ErrNotFound
	}
	if current.Revision != acct.Revision {
		return ledger.Account{}, ledger.Installment{}, ledger.ErrConcurrentConflict
	}
	if current.Paid.Add(inst.Amount).GreaterThan(current.Total) {
		return ledger.Account{}, ledger.Installment{}, ledger.ErrOverpayment
	}

	current.Paid = current.Paid.Add(inst.Amount)
	current.Revision++
	current.UpdatedAt = inst.PaidOn
	repo.installments.append(inst)
	return *current, inst, nil
}
