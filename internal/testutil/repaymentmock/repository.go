package repaymentmock

import (
	"context"
	"time"

	domain "loanledger/internal/domain/repayment"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateBatchFn          func(ctx context.Context, items []domain.Installment) error
	CountByApplicationIDFn func(ctx context.Context, applicationID uint64) (int64, error)
	GetByIDFn              func(ctx context.Context, id uint64) (*domain.Installment, error)
	ListByApplicationIDFn  func(ctx context.Context, applicationID uint64, status domain.Status) ([]domain.Installment, error)
	ListPendingDueBeforeFn func(ctx context.Context, day time.Time, limit int) ([]domain.Installment, error)
	MarkPaidFn             func(ctx context.Context, id uint64, at time.Time) (bool, error)
	MarkOverdueFn          func(ctx context.Context, id uint64) (bool, error)
}

func (m *Repo) CreateBatch(ctx context.Context, items []domain.Installment) error {
	if m.CreateBatchFn != nil {
		return m.CreateBatchFn(ctx, items)
	}
	return nil
}

func (m *Repo) CountByApplicationID(ctx context.Context, applicationID uint64) (int64, error) {
	if m.CountByApplicationIDFn != nil {
		return m.CountByApplicationIDFn(ctx, applicationID)
	}
	return 0, nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Installment, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByApplicationID(ctx context.Context, applicationID uint64, status domain.Status) ([]domain.Installment, error) {
	if m.ListByApplicationIDFn != nil {
		return m.ListByApplicationIDFn(ctx, applicationID, status)
	}
	return nil, context.Canceled
}

func (m *Repo) ListPendingDueBefore(ctx context.Context, day time.Time, limit int) ([]domain.Installment, error) {
	if m.ListPendingDueBeforeFn != nil {
		return m.ListPendingDueBeforeFn(ctx, day, limit)
	}
	return nil, nil
}

func (m *Repo) MarkPaid(ctx context.Context, id uint64, at time.Time) (bool, error) {
	if m.MarkPaidFn != nil {
		return m.MarkPaidFn(ctx, id, at)
	}
	return false, context.Canceled
}

func (m *Repo) MarkOverdue(ctx context.Context, id uint64) (bool, error) {
	if m.MarkOverdueFn != nil {
		return m.MarkOverdueFn(ctx, id)
	}
	return false, context.Canceled
}
