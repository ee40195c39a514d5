package disbursement

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, d *Disbursement) error
	GetByID(ctx context.Context, id uint64) (*Disbursement, error)
	ListByApplicationID(ctx context.Context, applicationID uint64) ([]Disbursement, error)
	// GetActiveByApplicationID returns the PROCESSING or COMPLETED row, if any.
	GetActiveByApplicationID(ctx context.Context, applicationID uint64) (*Disbursement, error)
	// ListStale returns PROCESSING rows last touched before the cutoff.
	ListStale(ctx context.Context, before time.Time) ([]Disbursement, error)

	// Advance is a compare-and-set from -> to; errs.ErrConflict when the row moved.
	Advance(ctx context.Context, id uint64, from, to Status, reference, reason string) error
	// AttachReference stores the transfer reference on a row that is still
	// PROCESSING; errs.ErrConflict otherwise.
	AttachReference(ctx context.Context, id uint64, reference string) error
}
