package disbursement

import (
	"fmt"
	"time"

	"loanledger/internal/domain/errs"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

var (
	ErrNotFound       = fmt.Errorf("disbursement %w", errs.ErrNotFound)
	ErrAmountMismatch = fmt.Errorf("%w: disbursement amount must equal the approved loan amount", errs.ErrValidation)
	ErrInvalidAmount  = fmt.Errorf("%w: disbursement amount must be positive", errs.ErrValidation)
	ErrInProgress     = fmt.Errorf("%w: a disbursement is already in progress", errs.ErrConflict)
	ErrTransferFailed = fmt.Errorf("disbursement %w", errs.ErrTransferFailed)

	ErrTransferNotFound = fmt.Errorf("transfer %w", errs.ErrNotFound)
)

// Table: disbursements. FAILED rows accumulate as an audit trail; at most
// one row per application is ever PROCESSING or COMPLETED.
type Disbursement struct {
	ID            uint64          `gorm:"primaryKey;column:id" json:"id"`
	ApplicationID uint64          `gorm:"column:application_id;not null;index:idx_disbursements_application" json:"-"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	DisbursedOn   time.Time       `gorm:"column:disbursed_on;type:date;not null" json:"disbursed_on"`
	Status        Status          `gorm:"size:16;not null;index:idx_disbursements_status" json:"status"`
	Reference     string          `gorm:"size:64" json:"reference,omitempty"`
	FailureReason string          `gorm:"type:text" json:"failure_reason,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Disbursement) TableName() string { return "disbursements" }

func (s Status) IsTerminal() bool { return s == StatusCompleted || s == StatusFailed }

// CanAdvance enforces PENDING -> PROCESSING -> {COMPLETED | FAILED}.
func CanAdvance(from, to Status) bool {
	switch from {
	case StatusPending:
		return to == StatusProcessing || to == StatusFailed
	case StatusProcessing:
		return to == StatusCompleted || to == StatusFailed
	}
	return false
}

// CheckAmount requires an exact match against the approved amount.
func CheckAmount(requested, approved decimal.Decimal) error {
	if !requested.IsPositive() {
		return ErrInvalidAmount
	}
	if !requested.Equal(approved) {
		return fmt.Errorf("%w (requested %s, approved %s)", ErrAmountMismatch, requested.StringFixed(2), approved.StringFixed(2))
	}
	return nil
}
