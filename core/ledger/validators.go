package ledger

import (
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/chuodev/karo/core"
)

const dueDateLayout = "2006-01-02"

var (
	// custom validation tags & texts
	positiveAmountTag  = "amtpos"
	positiveAmountText = "must be a positive amount"

	nonNegativeAmountTag  = "amtnoneg"
	nonNegativeAmountText = "cannot be a negative amount"
)

// InitValidators registers the ledger request validations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(dueStructValidation, NewDue{}, BulkDue{})
	validate.RegisterStructValidation(paymentStructValidation, NewPayment{}, BulkPayment{})

	core.RegisterCustomTranslation(validate, translator, positiveAmountTag, positiveAmountText)
	core.RegisterCustomTranslation(validate, translator, nonNegativeAmountTag, nonNegativeAmountText)
}

// NewDue contains information needed to set (or replace) an account's amount due.
type NewDue struct {
	PayerID     string          `json:"payer_id" validate:"required"`
	Total       decimal.Decimal `json:"total"`
	DueDate     string          `json:"due_date" validate:"required,datetime=2006-01-02"`
	LateFee     decimal.Decimal `json:"late_fee"`
	Scholarship decimal.Decimal `json:"scholarship"`
}

func (nd *NewDue) Validate(validate *validator.Validate) error {
	nd.PayerID = core.CleanString(nd.PayerID)
	return validate.Struct(nd)
}

// Due returns the parsed due date; call after validation.
func (nd NewDue) Due() time.Time {
	due, _ := time.Parse(dueDateLayout, nd.DueDate)
	return due
}

// NewPayment contains information needed to record one payment against an account.
type NewPayment struct {
	PayerID       string          `json:"payer_id" validate:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Method        string          `json:"method" validate:"omitempty,max=50"`
	TransactionID string          `json:"transaction_id" validate:"omitempty,max=100"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PayerID = core.CleanString(np.PayerID)
	np.Method = core.CleanString(np.Method)
	np.TransactionID = core.CleanString(np.TransactionID)
	return validate.Struct(np)
}

// BulkDue applies one due payload identically to every target payer.
type BulkDue struct {
	PayerIDs []string        `json:"payer_ids" validate:"required,min=1,dive,required"`
	Total    decimal.Decimal `json:"total"`
	DueDate  string          `json:"due_date" validate:"required,datetime=2006-01-02"`
}

func (bd *BulkDue) Validate(validate *validator.Validate) error {
	for i, id := range bd.PayerIDs {
		bd.PayerIDs[i] = core.CleanString(id)
	}
	return validate.Struct(bd)
}

func (bd BulkDue) Due() time.Time {
	due, _ := time.Parse(dueDateLayout, bd.DueDate)
	return due
}

// BulkPayment applies one payment payload identically to every target payer.
// Per-target amount customization is not supported in bulk mode.
type BulkPayment struct {
	PayerIDs []string        `json:"payer_ids" validate:"required,min=1,dive,required"`
	Amount   decimal.Decimal `json:"amount"`
	Method   string          `json:"method" validate:"omitempty,max=50"`
}

func (bp *BulkPayment) Validate(validate *validator.Validate) error {
	for i, id := range bp.PayerIDs {
		bp.PayerIDs[i] = core.CleanString(id)
	}
	bp.Method = core.CleanString(bp.Method)
	return validate.Struct(bp)
}

// Custom Validators

// dueStructValidation does struct level validation on NewDue and BulkDue.
func dueStructValidation(sl validator.StructLevel) {
	var total, lateFee, scholarship decimal.Decimal
	switch due := sl.Current().Interface().(type) {
	case NewDue:
		total, lateFee, scholarship = due.Total, due.LateFee, due.Scholarship
	case BulkDue:
		total = due.Total
	}
	if !total.IsPositive() {
		sl.ReportError(total, "total", "Total", positiveAmountTag, "")
	}
	if lateFee.IsNegative() {
		sl.ReportError(lateFee, "late_fee", "LateFee", nonNegativeAmountTag, "")
	}
	if scholarship.IsNegative() {
		sl.ReportError(scholarship, "scholarship", "Scholarship", nonNegativeAmountTag, "")
	}
}

// paymentStructValidation does struct level validation on NewPayment and BulkPayment.
func paymentStructValidation(sl validator.StructLevel) {
	var amount decimal.Decimal
	switch pmt := sl.Current().Interface().(type) {
	case NewPayment:
		amount = pmt.Amount
	case BulkPayment:
		amount = pmt.Amount
	}
	if !amount.IsPositive() {
		sl.ReportError(amount, "amount", "Amount", positiveAmountTag, "")
	}
}
