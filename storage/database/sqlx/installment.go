package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core"
	"github.com/chuodev/karo/core/ledger"
)

const defaultListLimit = 50

// most-recent-first for display
var listOrdering = core.DBOrdering{Field: "paid_on", Ascending: false}

type dbInstallment struct {
	ID            string          `db:"id"`
	AccountID     string          `db:"account_id"`
	Amount        decimal.Decimal `db:"amount"`
	Method        string          `db:"method"`
	TransactionID sql.NullString  `db:"transaction_id"`
	PaidOn        time.Time       `db:"paid_on"`
}

func (i dbInstallment) toDomain() ledger.Installment {
	return ledger.Installment{
		ID:            i.ID,
		AccountID:     i.AccountID,
		Amount:        i.Amount,
		Method:        i.Method,
		TransactionID: i.TransactionID.String,
		PaidOn:        i.PaidOn.UTC(),
	}
}

// appendInstallment writes one log entry within the caller's transaction.
// Entries are never updated or removed.
func appendInstallment(ctx context.Context, tx *sqlx.Tx, inst ledger.Installment) error {
	const query = `
INSERT INTO installment (id, account_id, amount, method, transaction_id, paid_on)
VALUES ($1, $2, $3, $4, $5, $6)`

	txnID := sql.NullString{String: inst.TransactionID, Valid: inst.TransactionID != ""}
	if _, err := tx.ExecContext(ctx, query, inst.ID, inst.AccountID, inst.Amount, inst.Method, txnID, inst.PaidOn); err != nil {
		return errors.Wrap(err, "appending installment")
	}
	return nil
}

type installmentRepository struct {
	db *sqlx.DB
}

var _ ledger.InstallmentRepository = (*installmentRepository)(nil) // interface compliance check

func NewInstallmentRepository(db *sqlx.DB) *installmentRepository {
	return &installmentRepository{db: db}
}

func (repo installmentRepository) SumFor(ctx context.Context, accountID string) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(amount), 0) FROM installment WHERE account_id = $1`

	var sum decimal.Decimal
	if err := repo.db.GetContext(ctx, &sum, query, accountID); err != nil {
		return decimal.Zero, errors.Wrap(err, "summing installments")
	}
	return sum, nil
}

func (repo installmentRepository) ListFor(ctx context.Context, accountID string, limit, offset int) ([]ledger.Installment, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	query := fmt.Sprintf(`
SELECT id, account_id, amount, method, transaction_id, paid_on
FROM installment
WHERE account_id = $1
ORDER BY %s, id DESC
LIMIT $2 OFFSET $3`, listOrdering)

	var rows []dbInstallment
	if err := repo.db.SelectContext(ctx, &rows, query, accountID, limit, offset); err != nil {
		return nil, errors.Wrap(err, "listing installments")
	}
	insts := make([]ledger.Installment, 0, len(rows))
	for _, row := range rows {
		insts = append(insts, row.toDomain())
	}
	return insts, nil
}
