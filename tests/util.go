package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core/payer"
)

func CreatePayer(
	t *testing.T,
	repo payer.Repository,
	name, email, kind string,
	createdAt ...time.Time,
) payer.Payer {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	p := payer.Payer{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Kind:      kind,
		IsActive:  true,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	p, err := repo.CreatePayer(context.Background(), p)
	if err != nil {
		t.Fatalf("CreatePayer() failed: %v", err)
	}
	return p
}

// Amount parses a fixture amount; bad literals fail the test immediately.
func Amount(t *testing.T, val string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(val)
	if err != nil {
		t.Fatalf("Amount(%q) failed: %v", val, err)
	}
	return d
}

// Date returns UTC midnight of the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
