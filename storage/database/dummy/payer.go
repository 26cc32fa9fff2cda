package dummydb

import (
	"context"
	"sort"

	"github.com/chuodev/karo/core/payer"
)

type payerRepository struct {
	db *payerTable
}

var _ payer.Repository = (*payerRepository)(nil) // interface compliance check

func NewPayerRepository(db *DB) payer.Repository {
	return &payerRepository{db: db.payer}
}

func (repo *payerRepository) CreatePayer(_ context.Context, p payer.Payer) (payer.Payer, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.table[p.ID] = &p
	return p, nil
}

func (repo *payerRepository) GetPayer(_ context.Context, id string) (payer.Payer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.table[id]; ok {
		return *p, nil
	}
	return payer.Payer{}, payer.ErrNotFound
}

func (repo *payerRepository) QueryPayers(_ context.Context, kind string) ([]payer.Payer, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	payers := make([]payer.Payer, 0, len(repo.db.table))
	for _, p := range repo.db.table {
		if kind == "" || p.Kind == kind {
			payers = append(payers, *p)
		}
	}
	sort.Slice(payers, func(i, j int) bool { return payers[i].Name < payers[j].Name })
	return payers, nil
}

func (repo *payerRepository) DeletePayersByID(_ context.Context, ids ...string) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.table, id)
	}
	return nil
}
