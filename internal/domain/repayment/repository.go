package repayment

import (
	"context"
	"time"
)

type Repository interface {
	// CreateBatch inserts the whole schedule in one statement.
	CreateBatch(ctx context.Context, items []Installment) error
	CountByApplicationID(ctx context.Context, applicationID uint64) (int64, error)
	GetByID(ctx context.Context, id uint64) (*Installment, error)
	// ListByApplicationID orders by sequence; an empty status means all.
	ListByApplicationID(ctx context.Context, applicationID uint64, status Status) ([]Installment, error)
	// ListPendingDueBefore returns up to limit PENDING rows with due_date < day.
	ListPendingDueBefore(ctx context.Context, day time.Time, limit int) ([]Installment, error)

	// MarkPaid moves a PENDING or OVERDUE row to PAID. Reports false when
	// the row was not payable any more.
	MarkPaid(ctx context.Context, id uint64, at time.Time) (bool, error)
	// MarkOverdue moves a PENDING row to OVERDUE. Reports false when the row
	// already left PENDING, so a concurrent payment always wins.
	MarkOverdue(ctx context.Context, id uint64) (bool, error)
}
