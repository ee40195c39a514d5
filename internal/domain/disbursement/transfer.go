package disbursement

import (
	"context"

	"github.com/shopspring/decimal"
)

type TransferRequest struct {
	DisbursementID uint64
	ApplicationID  string
	UserID         string
	Amount         decimal.Decimal
}

type TransferReceipt struct {
	Reference string
}

// Transferer releases funds to the applicant. Implementations must honour
// ctx cancellation; the caller owns the timeout and retry policy.
type Transferer interface {
	Transfer(ctx context.Context, req TransferRequest) (TransferReceipt, error)
}

// TransferLookup is implemented by providers that can report the outcome of
// an earlier request. ErrTransferNotFound means the funds never moved.
type TransferLookup interface {
	Lookup(ctx context.Context, disbursementID uint64) (TransferReceipt, error)
}
