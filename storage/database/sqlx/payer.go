package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/chuodev/karo/core/payer"
)

type dbPayer struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Kind      string    `db:"kind"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (p dbPayer) toDomain() payer.Payer {
	return payer.Payer{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Kind:      p.Kind,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt.UTC(),
		UpdatedAt: p.UpdatedAt.UTC(),
	}
}

type payerRepository struct {
	db *sqlx.DB
}

var _ payer.Repository = (*payerRepository)(nil) // interface compliance check

func NewPayerRepository(db *sqlx.DB) *payerRepository {
	return &payerRepository{db: db}
}

func (repo payerRepository) CreatePayer(ctx context.Context, p payer.Payer) (payer.Payer, error) {
	const query = `
INSERT INTO payer (id, name, email, kind, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := repo.db.ExecContext(ctx, query, p.ID, p.Name, p.Email, p.Kind, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return payer.Payer{}, errors.Wrap(err, "creating payer")
	}
	return p, nil
}

func (repo payerRepository) GetPayer(ctx context.Context, id string) (payer.Payer, error) {
	const query = `SELECT id, name, email, kind, is_active, created_at, updated_at FROM payer WHERE id = $1`

	var p dbPayer
	if err := repo.db.GetContext(ctx, &p, query, id); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return payer.Payer{}, payer.ErrNotFound
		}
		return payer.Payer{}, errors.Wrap(err, "getting payer")
	}
	return p.toDomain(), nil
}

func (repo payerRepository) QueryPayers(ctx context.Context, kind string) ([]payer.Payer, error) {
	query := `SELECT id, name, email, kind, is_active, created_at, updated_at FROM payer`
	args := make([]interface{}, 0, 1)
	if kind != "" {
		query += ` WHERE kind = $1`
		args = append(args, kind)
	}
	query += ` ORDER BY name`

	var rows []dbPayer
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying payers")
	}
	payers := make([]payer.Payer, 0, len(rows))
	for _, row := range rows {
		payers = append(payers, row.toDomain())
	}
	return payers, nil
}

func (repo payerRepository) DeletePayersByID(ctx context.Context, ids ...string) error {
	const query = `DELETE FROM payer WHERE id = ANY($1)`

	if _, err := repo.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting payers")
	}
	return nil
}
