package loan

import (
	"time"

	domain "loanledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type SubmitInput struct {
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Profession  string          `json:"profession"`
	Purpose     string          `json:"purpose"`
	Amount      decimal.Decimal `json:"amount"`
	CreditScore int             `json:"credit_score"`
}

type ApplicationDTO struct {
	ApplicationID   string           `json:"application_id"`
	UserID          string           `json:"user_id"`
	Name            string           `json:"name"`
	Profession      string           `json:"profession"`
	Purpose         string           `json:"purpose"`
	Amount          decimal.Decimal  `json:"amount"`
	CreditScore     int              `json:"credit_score"`
	Status          string           `json:"status"`
	TenureMonths    int              `json:"tenure_months,omitempty"`
	AnnualRate      *decimal.Decimal `json:"annual_rate,omitempty"`
	StatusUpdatedAt time.Time        `json:"status_updated_at"`
	CreatedAt       time.Time        `json:"created_at"`
}

func ToDTO(a *domain.Application) *ApplicationDTO {
	dto := &ApplicationDTO{
		ApplicationID:   a.ApplicationID,
		UserID:          a.UserID,
		Name:            a.Name,
		Profession:      a.Profession,
		Purpose:         a.Purpose,
		Amount:          a.Amount,
		CreditScore:     a.CreditScore,
		Status:          string(a.Status),
		TenureMonths:    a.TenureMonths,
		StatusUpdatedAt: a.StatusUpdatedAt,
		CreatedAt:       a.CreatedAt,
	}
	if a.AnnualRate.Valid {
		r := a.AnnualRate.Decimal
		dto.AnnualRate = &r
	}
	return dto
}

func toDTOs(in []domain.Application) []ApplicationDTO {
	out := make([]ApplicationDTO, 0, len(in))
	for i := range in {
		out = append(out, *ToDTO(&in[i]))
	}
	return out
}
