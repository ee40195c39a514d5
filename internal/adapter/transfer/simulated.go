package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"loanledger/internal/domain/disbursement"
	"loanledger/pkg/id"
)

// ErrDeclined marks a transfer the bank refused outright; retrying it is
// pointless.
var ErrDeclined = errors.New("transfer declined")

var (
	_ disbursement.Transferer     = (*Simulated)(nil)
	_ disbursement.TransferLookup = (*Simulated)(nil)
)

// Simulated stands in for the payout provider. It waits Latency (honouring
// ctx) and then succeeds unless Fail says otherwise. Receipts are kept per
// disbursement so Lookup can answer for them.
type Simulated struct {
	Latency time.Duration
	Fail    func(req disbursement.TransferRequest) error

	mu   sync.Mutex
	sent map[uint64]disbursement.TransferReceipt
}

func (s *Simulated) Transfer(ctx context.Context, req disbursement.TransferRequest) (disbursement.TransferReceipt, error) {
	if !req.Amount.IsPositive() {
		return disbursement.TransferReceipt{}, fmt.Errorf("%w: amount %s", ErrDeclined, req.Amount)
	}
	if s.Latency > 0 {
		t := time.NewTimer(s.Latency)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return disbursement.TransferReceipt{}, ctx.Err()
		case <-t.C:
		}
	}
	if s.Fail != nil {
		if err := s.Fail(req); err != nil {
			return disbursement.TransferReceipt{}, err
		}
	}
	rec := disbursement.TransferReceipt{Reference: "TRF-" + strings.ToUpper(id.NewID32()[:16])}
	s.mu.Lock()
	if s.sent == nil {
		s.sent = map[uint64]disbursement.TransferReceipt{}
	}
	s.sent[req.DisbursementID] = rec
	s.mu.Unlock()
	return rec, nil
}

func (s *Simulated) Lookup(ctx context.Context, disbursementID uint64) (disbursement.TransferReceipt, error) {
	if err := ctx.Err(); err != nil {
		return disbursement.TransferReceipt{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sent[disbursementID]
	if !ok {
		return disbursement.TransferReceipt{}, disbursement.ErrTransferNotFound
	}
	return rec, nil
}
