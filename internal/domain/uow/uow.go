package uow

import (
	"context"

	"loanledger/internal/domain/disbursement"
	"loanledger/internal/domain/loan"
	"loanledger/internal/domain/repayment"
)

// Repos are bound to one transaction.
type Repos struct {
	Loans         loan.Repository
	Disbursements disbursement.Repository
	Repayments    repayment.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the application row first, then pass it in
	WithinLoanTx(ctx context.Context, applicationID string, fn func(r Repos, a *loan.Application) error) error
}
