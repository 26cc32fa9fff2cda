package dummydb

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core/ledger"
)

const defaultListLimit = 50

func (t *installmentTable) append(inst ledger.Installment) {
	t.Lock()
	defer t.Unlock()
	t.table[inst.AccountID] = append(t.table[inst.AccountID], inst)
}

type installmentRepository struct {
	db *installmentTable
}

var _ ledger.InstallmentRepository = (*installmentRepository)(nil) // interface compliance check

func NewInstallmentRepository(db *DB) ledger.InstallmentRepository {
	return &installmentRepository{db: db.installment}
}

func (repo *installmentRepository) SumFor(_ context.Context, accountID string) (decimal.Decimal, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sum := decimal.Zero
	for _, inst := range repo.db.table[accountID] {
		sum = sum.Add(inst.Amount)
	}
	return sum, nil
}

func (repo *installmentRepository) ListFor(_ context.Context, accountID string, limit, offset int) ([]ledger.Installment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}

	entries := repo.db.table[accountID]
	insts := make([]ledger.Installment, len(entries))
	copy(insts, entries)
	sort.SliceStable(insts, func(i, j int) bool { return insts[i].PaidOn.After(insts[j].PaidOn) })

	if offset >= len(insts) {
		return []ledger.Installment{}, nil
	}
	insts = insts[offset:]
	if limit < len(insts) {
		insts = insts[:limit]
	}
	return insts, nil
}
