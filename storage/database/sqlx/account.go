package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core/ledger"
)

type dbAccount struct {
	ID          string          `db:"id"`
	Kind        string          `db:"kind"`
	PayerID     string          `db:"payer_id"`
	Total       decimal.Decimal `db:"total"`
	Paid        decimal.Decimal `db:"paid"`
	LateFee     decimal.Decimal `db:"late_fee"`
	Scholarship decimal.Decimal `db:"scholarship"`
	DueDate     time.Time       `db:"due_date"`
	Revision    int             `db:"revision"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

func (a dbAccount) toDomain() ledger.Account {
	return ledger.Account{
		ID:          a.ID,
		Kind:        ledger.Kind(a.Kind),
		PayerID:     a.PayerID,
		Total:       a.Total,
		Paid:        a.Paid,
		LateFee:     a.LateFee,
		Scholarship: a.Scholarship,
		DueDate:     a.DueDate.UTC(),
		Revision:    a.Revision,
		CreatedAt:   a.CreatedAt.UTC(),
		UpdatedAt:   a.UpdatedAt.UTC(),
	}
}

const accountColumns = `id, kind, payer_id, total, paid, late_fee, scholarship, due_date, revision, created_at, updated_at`

type accountRepository struct {
	db *sqlx.DB
}

var _ ledger.AccountRepository = (*accountRepository)(nil) // interface compliance check

func NewAccountRepository(db *sqlx.DB) *accountRepository {
	return &accountRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to ledger.ErrNotFound
func (repo accountRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return ledger.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo accountRepository) GetAccount(ctx context.Context, kind ledger.Kind, payerID string) (ledger.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM account WHERE kind = $1 AND payer_id = $2`

	var acct dbAccount
	if err := repo.db.GetContext(ctx, &acct, query, string(kind), payerID); err != nil {
		return ledger.Account{}, repo.trapNoRowsErr(err, "getting account")
	}
	return acct.toDomain(), nil
}

func (repo accountRepository) UpsertDue(ctx context.Context, acct ledger.Account) (ledger.Account, error) {
	const query = `
INSERT INTO account (` + accountColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1, $9, $10)
ON CONFLICT (kind, payer_id) DO UPDATE SET
    total       = EXCLUDED.total,
    late_fee    = EXCLUDED.late_fee,
    scholarship = EXCLUDED.scholarship,
    due_date    = EXCLUDED.due_date,
    revision    = account.revision + 1,
    updated_at  = EXCLUDED.updated_at
RETURNING ` + accountColumns

	var saved dbAccount
	err := repo.db.QueryRowxContext(
		ctx, query,
		acct.ID, string(acct.Kind), acct.PayerID,
		acct.Total, acct.Paid, acct.LateFee, acct.Scholarship,
		acct.DueDate, acct.CreatedAt, acct.UpdatedAt,
	).StructScan(&saved)
	if err != nil {
		return ledger.Account{}, errors.Wrap(err, "upserting account due")
	}
	return saved.toDomain(), nil
}

// ApplyPayment increments paid and appends the installment in one transaction.
// The UPDATE carries both the revision check and the overpayment guard so that
// the increment can never exceed total, whatever this process last read.
func (repo accountRepository) ApplyPayment(ctx context.Context, acct ledger.Account, inst ledger.Installment) (ledger.Account, ledger.Installment, error) {
	const update = `
UPDATE account
SET paid = paid + $1, revision = revision + 1, updated_at = $2
WHERE id = $3 AND revision = $4 AND paid + $1 <= total
RETURNING ` + accountColumns

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return ledger.Account{}, ledger.Installment{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var updated dbAccount
	err = tx.QueryRowxContext(ctx, update, inst.Amount, inst.PaidOn, acct.ID, acct.Revision).StructScan(&updated)
	if errors.Cause(err) == sql.ErrNoRows {
		return ledger.Account{}, ledger.Installment{}, repo.classifyGuardFailure(ctx, tx, acct, inst)
	}
	if err != nil {
		return ledger.Account{}, ledger.Installment{}, errors.Wrap(err, "applying payment")
	}

	if err = appendInstallment(ctx, tx, inst); err != nil {
		return ledger.Account{}, ledger.Installment{}, err
	}
	if err = tx.Commit(); err != nil {
		return ledger.Account{}, ledger.Installment{}, errors.Wrap(err, "committing payment")
	}
	return updated.toDomain(), inst, nil
}

// classifyGuardFailure tells apart the three ways the guarded UPDATE can
// match no row: missing account, stale revision, or overpayment.
func (repo accountRepository) classifyGuardFailure(ctx context.Context, tx *sqlx.Tx, acct ledger.Account, inst ledger.Installment) error {
	const query = `SELECT ` + accountColumns + ` FROM account WHERE id = $1`

	var current dbAccount
	if err := tx.GetContext(ctx, &current, query, acct.ID); err != nil {
		return repo.trapNoRowsErr(err, "re-reading account")
	}
	if current.Revision != acct.Revision {
		return ledger.ErrConcurrentConflict
	}
	if current.Paid.Add(inst.Amount).GreaterThan(current.Total) {
		return ledger.ErrOverpayment
	}
	return errors.New("payment guard failed for unknown reason")
}
