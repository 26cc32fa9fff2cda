package payer

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/chuodev/karo/core"
)

var (
	// errors
	ErrNotFound = errors.New("payer not found")
)

type (
	Repository interface {
		CreatePayer(ctx context.Context, p Payer) (Payer, error)
		GetPayer(ctx context.Context, id string) (Payer, error)
		QueryPayers(ctx context.Context, kind string) ([]Payer, error)
		DeletePayersByID(ctx context.Context, ids ...string) error
	}

	Service struct {
		conf *core.Config
		repo Repository
	}
)

func NewService(conf *core.Config, repo Repository) *Service {
	return &Service{conf: conf, repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewPayer) (Payer, error) {
	now := time.Now().UTC()
	p := Payer{
		ID:        uuid.NewString(),
		Name:      np.Name,
		Email:     np.Email,
		Kind:      np.Kind,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreatePayer(ctx, p)
}

func (svc *Service) Get(ctx context.Context, id string) (Payer, error) {
	return svc.repo.GetPayer(ctx, id)
}

func (svc *Service) Query(ctx context.Context, kind string) ([]Payer, error) {
	return svc.repo.QueryPayers(ctx, kind)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeletePayersByID(ctx, ids...)
}

// Resolve reports whether a payer reference still resolves.
// Ledger accounts keep working when it does not; display falls back to DeletedName.
func (svc *Service) Resolve(ctx context.Context, id string) (Payer, error) {
	return svc.repo.GetPayer(ctx, id)
}
