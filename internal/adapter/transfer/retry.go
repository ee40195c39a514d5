package transfer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loanledger/internal/domain/disbursement"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

var (
	_ disbursement.Transferer     = (*Retrying)(nil)
	_ disbursement.TransferLookup = (*Retrying)(nil)
)

// Retrying bounds every attempt of the wrapped Transferer with Timeout and
// retries failures with exponential backoff, MaxAttempts in total.
// ErrDeclined is never retried.
type Retrying struct {
	next            disbursement.Transferer
	Timeout         time.Duration
	MaxAttempts     int
	InitialInterval time.Duration
	log             *zap.Logger
}

func NewRetrying(next disbursement.Transferer, timeout time.Duration, maxAttempts int, log *zap.Logger) *Retrying {
	if log == nil {
		log = zap.NewNop()
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retrying{
		next:            next,
		Timeout:         timeout,
		MaxAttempts:     maxAttempts,
		InitialInterval: 200 * time.Millisecond,
		log:             log,
	}
}

func (r *Retrying) Transfer(ctx context.Context, req disbursement.TransferRequest) (disbursement.TransferReceipt, error) {
	var receipt disbursement.TransferReceipt
	attempt := 0

	op := func() error {
		attempt++
		actx, cancel := r.attemptContext(ctx)
		defer cancel()

		rec, err := r.next.Transfer(actx, req)
		switch {
		case err == nil:
			receipt = rec
			return nil
		case errors.Is(err, ErrDeclined):
			return backoff.Permanent(err)
		case ctx.Err() != nil:
			// the caller gave up; only a per-attempt timeout is retryable
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = r.InitialInterval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(r.MaxAttempts-1)), ctx)

	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		r.log.Warn("transfer attempt failed",
			zap.String("application_id", req.ApplicationID),
			zap.Uint64("disbursement_id", req.DisbursementID),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", wait),
			zap.Error(err))
	})
	if err != nil {
		return disbursement.TransferReceipt{}, err
	}
	return receipt, nil
}

// Lookup asks the wrapped provider once, bounded by Timeout.
func (r *Retrying) Lookup(ctx context.Context, disbursementID uint64) (disbursement.TransferReceipt, error) {
	l, ok := r.next.(disbursement.TransferLookup)
	if !ok {
		return disbursement.TransferReceipt{}, fmt.Errorf("transfer lookup not supported by %T", r.next)
	}
	actx, cancel := r.attemptContext(ctx)
	defer cancel()
	return l.Lookup(actx, disbursementID)
}

func (r *Retrying) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.Timeout)
}
