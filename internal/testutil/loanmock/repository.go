package loanmock

import (
	"context"
	"time"

	domain "loanledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Writes default to a nil error, reads default to context.Canceled.
type Repo struct {
	CreateFn                      func(ctx context.Context, a *domain.Application) error
	GetByIDFn                     func(ctx context.Context, id uint64) (*domain.Application, error)
	GetByApplicationIDFn          func(ctx context.Context, applicationID string) (*domain.Application, error)
	GetByApplicationIDForUpdateFn func(ctx context.Context, applicationID string) (*domain.Application, error)
	ListFn                        func(ctx context.Context) ([]domain.Application, error)
	ListByUserIDFn                func(ctx context.Context, userID string) ([]domain.Application, error)
	UpdateStatusFn                func(ctx context.Context, id uint64, from, to domain.Status, at time.Time) error
	SetRepaymentTermsFn           func(ctx context.Context, id uint64, tenureMonths int, annualRate decimal.Decimal) error
}

func (m *Repo) Create(ctx context.Context, a *domain.Application) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Application, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*domain.Application, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

func (m *Repo) List(ctx context.Context) ([]domain.Application, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByUserID(ctx context.Context, userID string) ([]domain.Application, error) {
	if m.ListByUserIDFn != nil {
		return m.ListByUserIDFn(ctx, userID)
	}
	return nil, context.Canceled
}

func (m *Repo) UpdateStatus(ctx context.Context, id uint64, from, to domain.Status, at time.Time) error {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, from, to, at)
	}
	return nil
}

func (m *Repo) SetRepaymentTerms(ctx context.Context, id uint64, tenureMonths int, annualRate decimal.Decimal) error {
	if m.SetRepaymentTermsFn != nil {
		return m.SetRepaymentTermsFn(ctx, id, tenureMonths, annualRate)
	}
	return nil
}
