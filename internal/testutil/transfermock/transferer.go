package transfermock

import (
	"context"
	"sync"
	"sync/atomic"

	domain "loanledger/internal/domain/disbursement"
)

var (
	_ domain.Transferer     = (*Transferer)(nil)
	_ domain.TransferLookup = (*Transferer)(nil)
)

// Transferer is a function-backed fake. Without TransferFn every call
// succeeds with reference "TRF-TEST". Successful receipts are remembered
// per disbursement and served by Lookup unless LookupFn is set.
type Transferer struct {
	TransferFn func(ctx context.Context, req domain.TransferRequest) (domain.TransferReceipt, error)
	LookupFn   func(ctx context.Context, disbursementID uint64) (domain.TransferReceipt, error)
	calls      atomic.Int32

	mu   sync.Mutex
	sent map[uint64]domain.TransferReceipt
}

func (m *Transferer) Transfer(ctx context.Context, req domain.TransferRequest) (domain.TransferReceipt, error) {
	m.calls.Add(1)
	rec := domain.TransferReceipt{Reference: "TRF-TEST"}
	if m.TransferFn != nil {
		var err error
		if rec, err = m.TransferFn(ctx, req); err != nil {
			return rec, err
		}
	}
	m.mu.Lock()
	if m.sent == nil {
		m.sent = map[uint64]domain.TransferReceipt{}
	}
	m.sent[req.DisbursementID] = rec
	m.mu.Unlock()
	return rec, nil
}

func (m *Transferer) Lookup(ctx context.Context, disbursementID uint64) (domain.TransferReceipt, error) {
	if m.LookupFn != nil {
		return m.LookupFn(ctx, disbursementID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.sent[disbursementID]; ok {
		return rec, nil
	}
	return domain.TransferReceipt{}, domain.ErrTransferNotFound
}

func (m *Transferer) Calls() int { return int(m.calls.Load()) }
