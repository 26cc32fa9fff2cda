package ledger

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core/payer"
)

// Kind selects one of the two isomorphic ledger instances.
type Kind string

const (
	KindFee    Kind = "fee"    // per-student fees
	KindSalary Kind = "salary" // per-staff salaries
)

var AllKinds = []Kind{KindFee, KindSalary}

func (k Kind) Valid() bool {
	return k == KindFee || k == KindSalary
}

// PayerKind maps a ledger kind to the kind of payer it bills.
func (k Kind) PayerKind() string {
	if k == KindSalary {
		return payer.KindStaff
	}
	return payer.KindStudent
}

// Status of an account, always derived from (total, paid, dueDate, now);
// never stored.
type Status string

const (
	StatusUnpaid  Status = "unpaid"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

var nowFunc = time.Now // mockable

// Account tracks one payer's total due, cumulative paid and adjustments.
// Paid is a cached projection of the installment log; the two must never diverge.
type Account struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	PayerID     string          `json:"payer_id"`
	Total       decimal.Decimal `json:"total"`
	Paid        decimal.Decimal `json:"paid"`
	LateFee     decimal.Decimal `json:"late_fee"`
	Scholarship decimal.Decimal `json:"scholarship"`
	DueDate     time.Time       `json:"due_date"` // date; UTC midnight
	Revision    int             `json:"-"`
	CreatedAt   time.Time       `json:"created_at"` // UTC
	UpdatedAt   time.Time       `json:"updated_at"` // UTC
}

// StatusAt derives the account status as of `at`.
// A fully settled account is never overdue, regardless of date.
func (a Account) StatusAt(at time.Time) Status {
	switch {
	case a.Paid.GreaterThanOrEqual(a.Total):
		return StatusPaid
	case a.Paid.IsPositive():
		if dateOf(at).After(dateOf(a.DueDate)) {
			return StatusOverdue
		}
		return StatusPartial
	default:
		if dateOf(at).After(dateOf(a.DueDate)) {
			return StatusOverdue
		}
		return StatusUnpaid
	}
}

// Status derives the account status at read time.
func (a Account) Status() Status {
	return a.StatusAt(nowFunc())
}

// Outstanding is the balance still payable against Total.
func (a Account) Outstanding() decimal.Decimal {
	return a.Total.Sub(a.Paid)
}

// EffectiveTotal is the display amount after adjustments; it never changes
// the stored Total nor the overpayment guard.
func (a Account) EffectiveTotal() decimal.Decimal {
	return a.Total.Add(a.LateFee).Sub(a.Scholarship)
}

// PercentPaid returns paid/total as a 0-100 percentage with 2 decimal places.
func (a Account) PercentPaid() decimal.Decimal {
	if !a.Total.IsPositive() {
		return decimal.Zero
	}
	return a.Paid.Mul(decimal.NewFromInt(100)).DivRound(a.Total, 2)
}

// Installment is one recorded payment event; the log is append-only and is
// the source of truth for Account.Paid.
type Installment struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method,omitempty"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaidOn        time.Time       `json:"paid_on"` // UTC
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
