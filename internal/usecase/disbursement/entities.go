package disbursement

import (
	"time"

	domain "loanledger/internal/domain/disbursement"

	"github.com/shopspring/decimal"
)

type DisburseInput struct {
	ApplicationID string
	Amount        decimal.Decimal
	// TenureMonths seeds the repayment schedule in the same transaction
	// when positive; zero leaves scheduling for later.
	TenureMonths int
	AnnualRate   decimal.NullDecimal
}

type DisbursementDTO struct {
	ID            uint64          `json:"id"`
	ApplicationID string          `json:"application_id"`
	Amount        decimal.Decimal `json:"amount"`
	DisbursedOn   string          `json:"disbursed_on"`
	Status        string          `json:"status"`
	Reference     string          `json:"reference,omitempty"`
	FailureReason string          `json:"failure_reason,omitempty"`
	Installments  int             `json:"installments,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toDTO(publicID string, d *domain.Disbursement) *DisbursementDTO {
	return &DisbursementDTO{
		ID:            d.ID,
		ApplicationID: publicID,
		Amount:        d.Amount,
		DisbursedOn:   d.DisbursedOn.Format("2006-01-02"),
		Status:        string(d.Status),
		Reference:     d.Reference,
		FailureReason: d.FailureReason,
		CreatedAt:     d.CreatedAt,
	}
}
