package ledger

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type (
	// Outcome is one target's result within a bulk operation.
	Outcome struct {
		PayerID string   `json:"payer_id"`
		Account *Account `json:"account,omitempty"`
		Error   string   `json:"error,omitempty"`
	}

	// BulkResult aggregates per-target outcomes. A bulk operation is not a
	// transaction: already-applied targets are never rolled back.
	BulkResult struct {
		Outcomes  []Outcome `json:"outcomes"`
		Succeeded int       `json:"succeeded"`
		Failed    int       `json:"failed"`
	}
)

func (o Outcome) OK() bool { return o.Error == "" }

func (r BulkResult) Summary() string {
	return fmt.Sprintf("succeeded for %d of %d", r.Succeeded, len(r.Outcomes))
}

// BulkSetDue applies one due payload to every target payer independently.
func (svc *Service) BulkSetDue(ctx context.Context, kind Kind, bd BulkDue) BulkResult {
	return svc.fanOut(ctx, bd.PayerIDs, func(ctx context.Context, payerID string) (Account, error) {
		return svc.SetDue(ctx, kind, NewDue{PayerID: payerID, Total: bd.Total, DueDate: bd.DueDate})
	})
}

// BulkRecordPayment applies one payment payload to every target payer independently.
func (svc *Service) BulkRecordPayment(ctx context.Context, kind Kind, bp BulkPayment) BulkResult {
	return svc.fanOut(ctx, bp.PayerIDs, func(ctx context.Context, payerID string) (Account, error) {
		acct, _, err := svc.RecordPayment(ctx, kind, NewPayment{PayerID: payerID, Amount: bp.Amount, Method: bp.Method})
		return acct, err
	})
}

// fanOut runs apply for each target with bounded parallelism. One target's
// failure never aborts the remaining targets; every error is downgraded to an
// entry in the outcome list. Cancelling ctx stops issuing further targets but
// does not roll back targets that already committed.
func (svc *Service) fanOut(ctx context.Context, payerIDs []string, apply func(context.Context, string) (Account, error)) BulkResult {
	limit := 1
	if svc.conf != nil && svc.conf.Ledger.BulkConcurrency > 0 {
		limit = svc.conf.Ledger.BulkConcurrency
	}

	outcomes := make([]Outcome, len(payerIDs))
	g := new(errgroup.Group)
	g.SetLimit(limit)
	for i, id := range payerIDs {
		i, id := i, id
		g.Go(func() error {
			outcomes[i] = svc.applyOne(ctx, id, apply)
			return nil
		})
	}
	_ = g.Wait()

	res := BulkResult{Outcomes: outcomes}
	for _, o := range outcomes {
		if o.OK() {
			res.Succeeded++
		} else {
			res.Failed++
		}
	}
	return res
}

// applyOne runs one target's mutation, retrying a bounded number of times on
// optimistic-concurrency collisions before reporting failure for the target.
func (svc *Service) applyOne(ctx context.Context, payerID string, apply func(context.Context, string) (Account, error)) Outcome {
	if err := ctx.Err(); err != nil {
		return Outcome{PayerID: payerID, Error: err.Error()}
	}

	var retries int
	if svc.conf != nil {
		retries = svc.conf.Ledger.BulkRetries
	}

	var acct Account
	var err error
	for attempt := 0; ; attempt++ {
		acct, err = apply(ctx, payerID)
		if errors.Cause(err) != ErrConcurrentConflict || attempt >= retries {
			break
		}
	}
	if err != nil {
		return Outcome{PayerID: payerID, Error: err.Error()}
	}
	return Outcome{PayerID: payerID, Account: &acct}
}
