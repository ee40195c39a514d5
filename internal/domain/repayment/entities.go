package repayment

import (
	"fmt"
	"time"

	"loanledger/internal/domain/errs"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusOverdue Status = "OVERDUE"
)

var (
	ErrNotFound       = fmt.Errorf("installment %w", errs.ErrNotFound)
	ErrAlreadyPaid    = fmt.Errorf("%w: installment already paid", errs.ErrInvalidState)
	ErrScheduleExists = fmt.Errorf("%w: repayment schedule already generated", errs.ErrInvalidState)
	ErrInvalidTerms   = fmt.Errorf("%w: invalid repayment terms", errs.ErrValidation)
	ErrUnknownStatus  = fmt.Errorf("%w: unknown installment status", errs.ErrValidation)
)

// Table: repayments. Sequence numbers are unique per application and form
// the range 1..tenure.
type Installment struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"installment_id"`
	ApplicationID uint64          `gorm:"column:application_id;not null;uniqueIndex:ux_repayments_application_seq,priority:1" json:"-"`
	Sequence      int             `gorm:"column:sequence;not null;uniqueIndex:ux_repayments_application_seq,priority:2" json:"sequence"`
	EMIAmount     decimal.Decimal `gorm:"column:emi_amount;type:decimal(18,2);not null" json:"emi_amount"`
	DueDate       time.Time       `gorm:"column:due_date;type:date;not null;index:idx_repayments_status_due,priority:2" json:"due_date"`
	PaidAt        *time.Time      `gorm:"column:paid_at" json:"paid_at,omitempty"`
	Status        Status          `gorm:"size:16;not null;index:idx_repayments_status_due,priority:1" json:"status"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Installment) TableName() string { return "repayments" }

// IsPayable: overdue installments stay payable.
func (s Status) IsPayable() bool { return s == StatusPending || s == StatusOverdue }

func ParseStatus(raw string) (Status, error) {
	switch s := Status(raw); s {
	case StatusPending, StatusPaid, StatusOverdue:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// IsOverdueOn reports whether a pending installment has fallen behind on day.
func (i *Installment) IsOverdueOn(day time.Time) bool {
	return i.Status == StatusPending && i.DueDate.Before(Day(day))
}
