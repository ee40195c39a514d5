package disbursementmock

import (
	"context"
	"time"

	domain "loanledger/internal/domain/disbursement"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	CreateFn                   func(ctx context.Context, d *domain.Disbursement) error
	GetByIDFn                  func(ctx context.Context, id uint64) (*domain.Disbursement, error)
	ListByApplicationIDFn      func(ctx context.Context, applicationID uint64) ([]domain.Disbursement, error)
	GetActiveByApplicationIDFn func(ctx context.Context, applicationID uint64) (*domain.Disbursement, error)
	ListStaleFn                func(ctx context.Context, before time.Time) ([]domain.Disbursement, error)
	AdvanceFn                  func(ctx context.Context, id uint64, from, to domain.Status, reference, reason string) error
	AttachReferenceFn          func(ctx context.Context, id uint64, reference string) error
}

func (m *Repo) Create(ctx context.Context, d *domain.Disbursement) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, d)
	}
	return nil
}

func (m *Repo) GetByID(ctx context.Context, id uint64) (*domain.Disbursement, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, context.Canceled
}

func (m *Repo) ListByApplicationID(ctx context.Context, applicationID uint64) ([]domain.Disbursement, error) {
	if m.ListByApplicationIDFn != nil {
		return m.ListByApplicationIDFn(ctx, applicationID)
	}
	return nil, context.Canceled
}

// Default: no active disbursement.
func (m *Repo) GetActiveByApplicationID(ctx context.Context, applicationID uint64) (*domain.Disbursement, error) {
	if m.GetActiveByApplicationIDFn != nil {
		return m.GetActiveByApplicationIDFn(ctx, applicationID)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListStale(ctx context.Context, before time.Time) ([]domain.Disbursement, error) {
	if m.ListStaleFn != nil {
		return m.ListStaleFn(ctx, before)
	}
	return nil, nil
}

func (m *Repo) Advance(ctx context.Context, id uint64, from, to domain.Status, reference, reason string) error {
	if m.AdvanceFn != nil {
		return m.AdvanceFn(ctx, id, from, to, reference, reason)
	}
	return nil
}

func (m *Repo) AttachReference(ctx context.Context, id uint64, reference string) error {
	if m.AttachReferenceFn != nil {
		return m.AttachReferenceFn(ctx, id, reference)
	}
	return nil
}
