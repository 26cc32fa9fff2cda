package payer

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chuodev/karo/core"
)

// Kinds
const (
	KindStudent = "student"
	KindStaff   = "staff"
)

var AllKinds = []string{KindStudent, KindStaff}

// Payer is the student or staff member a ledger account refers to.
// The ledger never owns this record; deleting a payer orphans their account.
type Payer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Kind      string    `json:"kind"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

func (p Payer) IsStudent() bool { return p.Kind == KindStudent }
func (p Payer) IsStaff() bool   { return p.Kind == KindStaff }

// DeletedName is the display fallback for a payer reference that no longer resolves.
func DeletedName(kind string) string {
	if kind == KindStaff {
		return "Deleted Staff"
	}
	return "Deleted Student"
}

// NewPayer contains information needed to register a new Payer.
type NewPayer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"omitempty,email"`
	Kind  string `json:"kind" validate:"required,oneof=student staff"`
}

func (np *NewPayer) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Email = core.CleanString(np.Email, true /* lower */)
	np.Kind = core.CleanString(np.Kind, true /* lower */)
	return validate.Struct(np)
}
