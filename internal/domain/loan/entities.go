package loan

import (
	"fmt"
	"strings"
	"time"

	"loanledger/internal/domain/errs"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusDisbursed Status = "DISBURSED"
)

// MinCreditScore is the auto-decision threshold applied at submission.
const MinCreditScore = 600

var (
	ErrNotFound          = fmt.Errorf("loan application %w", errs.ErrNotFound)
	ErrInvalidTransition = fmt.Errorf("%w: status transition not allowed", errs.ErrInvalidState)
	ErrNotApproved       = fmt.Errorf("%w: loan application is not approved", errs.ErrInvalidState)
	ErrNotDisbursed      = fmt.Errorf("%w: loan application is not disbursed", errs.ErrInvalidState)
	ErrUnknownStatus     = fmt.Errorf("%w: unknown application status", errs.ErrValidation)
)

// Table: loan_applications
type Application struct {
	ID              uint64              `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID   string              `gorm:"size:32;not null;uniqueIndex:ux_loan_applications_application_id" json:"application_id"`
	UserID          string              `gorm:"size:32;not null;index:idx_loan_applications_user" json:"user_id"`
	Name            string              `gorm:"size:128;not null" json:"name"`
	Profession      string              `gorm:"size:128" json:"profession"`
	Purpose         string              `gorm:"type:text" json:"purpose"`
	Amount          decimal.Decimal     `gorm:"type:decimal(18,2);not null" json:"amount"`
	CreditScore     int                 `gorm:"not null" json:"credit_score"`
	Status          Status              `gorm:"size:16;not null;index:idx_loan_applications_status" json:"status"`
	TenureMonths    int                 `gorm:"column:tenure_months" json:"tenure_months,omitempty"`
	AnnualRate      decimal.NullDecimal `gorm:"type:decimal(6,3)" json:"annual_rate"`
	StatusUpdatedAt time.Time           `gorm:"column:status_updated_at" json:"status_updated_at"`
	CreatedAt       time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Application) TableName() string { return "loan_applications" }

// InitialStatus auto-decides a fresh application from its credit score.
func InitialStatus(creditScore int) Status {
	if creditScore < MinCreditScore {
		return StatusRejected
	}
	return StatusPending
}

// ParseStatus accepts any casing of a known status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusDisbursed:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, raw)
}

// IsTerminal reports whether no transition can ever leave s.
func (s Status) IsTerminal() bool { return s == StatusRejected || s == StatusDisbursed }

// CheckManualTransition guards explicit status updates. Only a pending
// application may be decided, and DISBURSED is reachable solely through
// disbursement.
func CheckManualTransition(from, to Status) error {
	if from == StatusPending && (to == StatusApproved || to == StatusRejected) {
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// CheckDisbursable guards the APPROVED -> DISBURSED edge.
func (a *Application) CheckDisbursable() error {
	if a.Status != StatusApproved {
		return fmt.Errorf("%w (status %s)", ErrNotApproved, a.Status)
	}
	return nil
}
