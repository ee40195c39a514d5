package repayment

import (
	"time"

	domain "loanledger/internal/domain/repayment"

	"github.com/shopspring/decimal"
)

type EMIInput struct {
	Principal    decimal.Decimal
	TenureMonths int
	AnnualRate   decimal.NullDecimal
}

type EMIQuote struct {
	Principal     decimal.Decimal `json:"principal"`
	TenureMonths  int             `json:"tenure_months"`
	AnnualRate    decimal.Decimal `json:"annual_rate"`
	EMI           decimal.Decimal `json:"emi"`
	TotalPayable  decimal.Decimal `json:"total_payable"`
	TotalInterest decimal.Decimal `json:"total_interest"`
}

type InstallmentDTO struct {
	InstallmentID uint64          `json:"installment_id"`
	ApplicationID string          `json:"application_id"`
	Sequence      int             `json:"sequence"`
	EMIAmount     decimal.Decimal `json:"emi_amount"`
	DueDate       string          `json:"due_date"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Status        string          `json:"status"`
}

type Summary struct {
	ApplicationID    string          `json:"application_id"`
	Status           string          `json:"status"`
	Principal        decimal.Decimal `json:"principal"`
	TenureMonths     int             `json:"tenure_months"`
	AnnualRate       decimal.Decimal `json:"annual_rate"`
	EMI              decimal.Decimal `json:"emi"`
	Installments     int             `json:"installments"`
	Paid             int             `json:"paid"`
	Pending          int             `json:"pending"`
	Overdue          int             `json:"overdue"`
	TotalRepaid      decimal.Decimal `json:"total_repaid"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	NextDueDate      string          `json:"next_due_date,omitempty"`
	FullyRepaid      bool            `json:"fully_repaid"`
}

const dateLayout = "2006-01-02"

func toDTO(publicID string, i *domain.Installment) InstallmentDTO {
	return InstallmentDTO{
		InstallmentID: i.ID,
		ApplicationID: publicID,
		Sequence:      i.Sequence,
		EMIAmount:     i.EMIAmount,
		DueDate:       i.DueDate.Format(dateLayout),
		PaidAt:        i.PaidAt,
		Status:        string(i.Status),
	}
}

func toDTOs(publicID string, in []domain.Installment) []InstallmentDTO {
	out := make([]InstallmentDTO, 0, len(in))
	for i := range in {
		out = append(out, toDTO(publicID, &in[i]))
	}
	return out
}
