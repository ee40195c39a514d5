package loan

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id uint64) (*Application, error)
	GetByApplicationID(ctx context.Context, applicationID string) (*Application, error)
	// GetByApplicationIDForUpdate locks the row until the surrounding tx ends.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*Application, error)
	List(ctx context.Context) ([]Application, error)
	ListByUserID(ctx context.Context, userID string) ([]Application, error)

	// UpdateStatus is a compare-and-set: it only moves a row that is still
	// in `from`, returning errs.ErrConflict otherwise.
	UpdateStatus(ctx context.Context, id uint64, from, to Status, at time.Time) error
	SetRepaymentTerms(ctx context.Context, id uint64, tenureMonths int, annualRate decimal.Decimal) error
}
