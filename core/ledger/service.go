package ledger

import (
	"context"
	"fmt"
	"net/mail"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core"
	"github.com/chuodev/karo/core/payer"
)

var (
	// errors
	ErrNotFound           = errors.New("account not found")
	ErrInvalidAmount      = errors.New("amount must be a positive value")
	ErrOverpayment        = errors.New("amount exceeds the outstanding balance")
	ErrConcurrentConflict = errors.New("account was modified concurrently")
)

type (
	AccountRepository interface {
		GetAccount(ctx context.Context, kind Kind, payerID string) (Account, error)
		// UpsertDue creates the account on first use or replaces its
		// total/dueDate/adjustments, bumping Revision. Paid and the
		// installment log are never touched.
		UpsertDue(ctx context.Context, acct Account) (Account, error)
		// ApplyPayment atomically checks acct.Revision, guards
		// paid + inst.Amount <= total, increments paid and appends the
		// installment. Returns ErrConcurrentConflict on a stale revision and
		// ErrOverpayment when the guard fails.
		ApplyPayment(ctx context.Context, acct Account, inst Installment) (Account, Installment, error)
	}

	// InstallmentRepository is the append-only payment log; the source of
	// truth for Account.Paid.
	InstallmentRepository interface {
		SumFor(ctx context.Context, accountID string) (decimal.Decimal, error)
		// ListFor returns installments ordered most-recent-first.
		ListFor(ctx context.Context, accountID string, limit, offset int) ([]Installment, error)
	}

	// PayerResolver reports whether a payer reference still resolves.
	PayerResolver interface {
		Resolve(ctx context.Context, id string) (payer.Payer, error)
	}

	Service struct {
		conf         *core.Config
		repo         AccountRepository
		installments InstallmentRepository
		payers       PayerResolver
		mailSvc      core.EmailService
		logger       core.Logger

		mu    sync.Mutex
		locks map[string]*sync.Mutex // per-account; protected by mu
	}
)

func NewService(
	conf *core.Config,
	repo AccountRepository,
	installments InstallmentRepository,
	payers PayerResolver,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		conf:         conf,
		repo:         repo,
		installments: installments,
		payers:       payers,
		mailSvc:      mailSvc,
		logger:       logger,
		locks:        make(map[string]*sync.Mutex),
	}
}

// accountLock serializes the read-check-write span per account so that two
// concurrent payments cannot both pass the overpayment check against a stale
// balance.
func (svc *Service) accountLock(kind Kind, payerID string) *sync.Mutex {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	key := string(kind) + ":" + payerID
	if _, exists := svc.locks[key]; !exists {
		svc.locks[key] = &sync.Mutex{}
	}
	return svc.locks[key]
}

func (svc *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if svc.conf != nil && svc.conf.Ledger.OpTimeout > 0 {
		return context.WithTimeout(ctx, svc.conf.Ledger.OpTimeout)
	}
	return context.WithCancel(ctx)
}

// SetDue creates the payer's account on first call (paid = 0), or replaces
// its total/dueDate/adjustments. Past due dates are allowed and immediately
// derive as overdue while a balance remains.
func (svc *Service) SetDue(ctx context.Context, kind Kind, nd NewDue) (Account, error) {
	if !nd.Total.IsPositive() {
		return Account{}, ErrInvalidAmount
	}
	if nd.LateFee.IsNegative() || nd.Scholarship.IsNegative() {
		return Account{}, ErrInvalidAmount
	}
	due := nd.Due()
	if due.IsZero() {
		return Account{}, ErrInvalidAmount
	}

	mu := svc.accountLock(kind, nd.PayerID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	now := nowFunc().UTC()
	acct, err := svc.repo.GetAccount(ctx, kind, nd.PayerID)
	switch errors.Cause(err) {
	case nil:
	case ErrNotFound:
		acct = Account{
			ID:        uuid.NewString(),
			Kind:      kind,
			PayerID:   nd.PayerID,
			Paid:      decimal.Zero,
			CreatedAt: now,
		}
	default:
		return Account{}, errors.Wrap(err, "getting account")
	}

	acct.Total = nd.Total
	acct.DueDate = dateOf(due)
	acct.LateFee = nd.LateFee
	acct.Scholarship = nd.Scholarship
	acct.UpdatedAt = now
	return svc.repo.UpsertDue(ctx, acct)
}

// RecordPayment appends one installment and increases paid, atomically with
// the overpayment guard. On failure the account is left unmutated and no
// installment is recorded. The returned installment is the caller's receipt.
func (svc *Service) RecordPayment(ctx context.Context, kind Kind, np NewPayment) (Account, Installment, error) {
	if !np.Amount.IsPositive() {
		return Account{}, Installment{}, ErrInvalidAmount
	}

	mu := svc.accountLock(kind, np.PayerID)
	mu.Lock()
	defer mu.Unlock()

	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	acct, err := svc.repo.GetAccount(ctx, kind, np.PayerID)
	if err != nil {
		return Account{}, Installment{}, err
	}
	if np.Amount.GreaterThan(acct.Outstanding()) {
		return Account{}, Installment{}, ErrOverpayment
	}

	inst := Installment{
		ID:            uuid.NewString(),
		AccountID:     acct.ID,
		Amount:        np.Amount,
		Method:        np.Method,
		TransactionID: np.TransactionID,
		PaidOn:        nowFunc().UTC(),
	}
	acct, inst, err = svc.repo.ApplyPayment(ctx, acct, inst)
	if err != nil {
		return Account{}, Installment{}, err
	}

	svc.sendReceipt(ctx, acct, inst)
	return acct, inst, nil
}

// GetAccount returns the payer's account; status is derived at read time.
func (svc *Service) GetAccount(ctx context.Context, kind Kind, payerID string) (Account, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()
	return svc.repo.GetAccount(ctx, kind, payerID)
}

// ListInstallments returns the payer's payment history, most recent first.
func (svc *Service) ListInstallments(ctx context.Context, kind Kind, payerID string, limit, offset int) ([]Installment, error) {
	ctx, cancel := svc.withTimeout(ctx)
	defer cancel()

	acct, err := svc.repo.GetAccount(ctx, kind, payerID)
	if err != nil {
		return nil, err
	}
	return svc.installments.ListFor(ctx, acct.ID, limit, offset)
}

// sendReceipt emails a payment confirmation when the payer still resolves.
// Best effort; a failed lookup never fails the payment.
func (svc *Service) sendReceipt(ctx context.Context, acct Account, inst Installment) {
	if svc.mailSvc == nil || svc.payers == nil {
		return
	}
	p, err := svc.payers.Resolve(ctx, acct.PayerID)
	if !(err == nil || errors.Cause(err) == payer.ErrNotFound) && svc.logger != nil {
		svc.logger.Error(fmt.Sprintf("resolving payer %s: %v", acct.PayerID, err), err)
	}
	if err != nil || p.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: p.Name, Address: p.Email}},
		Subject: "Payment receipt",
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nWe received your payment of %s (receipt %s).\nAmount paid to date: %s of %s.\n",
			p.Name, inst.Amount.StringFixed(2), inst.ID, acct.Paid.StringFixed(2), acct.Total.StringFixed(2),
		),
	})
}
