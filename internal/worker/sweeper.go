// Package worker runs the periodic ledger jobs: the overdue sweep and the
// reconciliation of disbursements stuck in PROCESSING.
package worker

import (
	"context"
	"time"

	"loanledger/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

const (
	JobOverdueSweep = "overdue_sweep"
	JobReconcile    = "reconcile_disbursements"
)

type OverdueSweeper interface {
	SweepOverdue(ctx context.Context, today time.Time) (int, error)
}

type StaleReconciler interface {
	ReconcileStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type Sweeper struct {
	overdue    OverdueSweeper
	reconciler StaleReconciler
	interval   time.Duration
	staleAfter time.Duration
	metrics    *metrics.Metrics
	log        *zap.Logger
	now        func() time.Time
}

type Option func(*Sweeper)

func WithMetrics(m *metrics.Metrics) Option { return func(s *Sweeper) { s.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(s *Sweeper) { s.log = l } }
func WithClock(now func() time.Time) Option { return func(s *Sweeper) { s.now = now } }

func NewSweeper(overdue OverdueSweeper, reconciler StaleReconciler, interval, staleAfter time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		overdue:    overdue,
		reconciler: reconciler,
		interval:   interval,
		staleAfter: staleAfter,
		log:        zap.NewNop(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Run executes one pass immediately and then one per interval until ctx
// is done. Job errors are logged and retried on the next tick.
func (s *Sweeper) Run(ctx context.Context) error {
	s.log.Info("sweeper started", zap.Duration("interval", s.interval))
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopped")
			return nil
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce reconciles stale disbursements, then marks due installments overdue.
func (s *Sweeper) RunOnce(ctx context.Context) {
	if s.reconciler != nil {
		n, err := s.reconciler.ReconcileStale(ctx, s.staleAfter)
		s.report(JobReconcile, n, err)
	}
	if s.overdue != nil {
		n, err := s.overdue.SweepOverdue(ctx, s.now().UTC())
		s.report(JobOverdueSweep, n, err)
	}
}

func (s *Sweeper) report(job string, n int, err error) {
	s.metrics.JobRun(job, err)
	if err != nil {
		s.log.Error("job failed", zap.String("job", job), zap.Int("processed", n), zap.Error(err))
		return
	}
	if n > 0 {
		s.log.Info("job done", zap.String("job", job), zap.Int("processed", n))
	}
}
