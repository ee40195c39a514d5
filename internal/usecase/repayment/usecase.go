package repayment

import (
	"context"
	"errors"
	"fmt"
	"time"

	disbDomain "loanledger/internal/domain/disbursement"
	loanDomain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/notification"
	domain "loanledger/internal/domain/repayment"
	"loanledger/internal/domain/uow"
	"loanledger/internal/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// sweepBatch bounds how many installments one sweep query loads.
const sweepBatch = 500

type Usecase struct {
	loans         loanDomain.Repository
	repayments    domain.Repository
	disbursements disbDomain.Repository
	uow           uow.UnitOfWork
	notify        notification.Sink
	defaultRate   decimal.Decimal
	metrics       *metrics.Metrics
	log           *zap.Logger
	now           func() time.Time
}

type Option func(*Usecase)

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(
	loans loanDomain.Repository,
	repayments domain.Repository,
	disbursements disbDomain.Repository,
	tx uow.UnitOfWork,
	sink notification.Sink,
	defaultRate decimal.Decimal,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		loans:         loans,
		repayments:    repayments,
		disbursements: disbursements,
		uow:           tx,
		notify:        sink,
		defaultRate:   defaultRate,
		log:           zap.NewNop(),
		now:           time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// CalculateEMI previews the installment for arbitrary terms.
func (u *Usecase) CalculateEMI(in EMIInput) (*EMIQuote, error) {
	rate := u.resolveRate(in.AnnualRate, decimal.NullDecimal{})
	emi, err := domain.CalculateEMI(in.Principal, in.TenureMonths, rate)
	if err != nil {
		return nil, err
	}
	total := emi.Mul(decimal.NewFromInt(int64(in.TenureMonths)))
	return &EMIQuote{
		Principal:     in.Principal,
		TenureMonths:  in.TenureMonths,
		AnnualRate:    rate,
		EMI:           emi,
		TotalPayable:  total,
		TotalInterest: total.Sub(in.Principal),
	}, nil
}

// Terms validates tenure and rate against the application's amount and
// returns the rate that will be applied.
func (u *Usecase) Terms(a *loanDomain.Application, tenureMonths int, rate decimal.NullDecimal) (decimal.Decimal, error) {
	r := u.resolveRate(rate, a.AnnualRate)
	if _, err := domain.CalculateEMI(a.Amount, tenureMonths, r); err != nil {
		return decimal.Zero, err
	}
	return r, nil
}

// SeedWithin writes the full schedule for a inside an open unit of work and
// pins the terms on the application. Due dates count from start.
func (u *Usecase) SeedWithin(ctx context.Context, r uow.Repos, a *loanDomain.Application, tenureMonths int, rate decimal.Decimal, start time.Time) ([]domain.Installment, error) {
	n, err := r.Repayments.CountByApplicationID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, domain.ErrScheduleExists
	}

	items, err := domain.BuildSchedule(a.ID, a.Amount, tenureMonths, rate, start)
	if err != nil {
		return nil, err
	}
	if err := r.Repayments.CreateBatch(ctx, items); err != nil {
		return nil, err
	}
	if err := r.Loans.SetRepaymentTerms(ctx, a.ID, tenureMonths, rate); err != nil {
		return nil, err
	}
	a.TenureMonths = tenureMonths
	a.AnnualRate = decimal.NewNullDecimal(rate)
	return items, nil
}

// GenerateSchedule seeds the schedule of a disbursed application that was
// disbursed without terms.
func (u *Usecase) GenerateSchedule(ctx context.Context, applicationID string, tenureMonths int, rate decimal.NullDecimal) ([]InstallmentDTO, error) {
	var out []InstallmentDTO
	err := u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, a *loanDomain.Application) error {
		if a.Status != loanDomain.StatusDisbursed {
			return fmt.Errorf("%w (status %s)", loanDomain.ErrNotDisbursed, a.Status)
		}
		applied, err := u.Terms(a, tenureMonths, rate)
		if err != nil {
			return err
		}

		start := u.now()
		d, err := r.Disbursements.GetActiveByApplicationID(ctx, a.ID)
		switch {
		case err == nil:
			start = d.DisbursedOn
		case !errors.Is(err, disbDomain.ErrNotFound):
			return err
		}

		items, err := u.SeedWithin(ctx, r, a, tenureMonths, applied, start)
		if err != nil {
			return err
		}
		out = toDTOs(a.ApplicationID, items)
		return nil
	})
	if err != nil {
		return nil, err
	}
	u.log.Info("repayment schedule generated",
		zap.String("application_id", applicationID),
		zap.Int("tenure_months", tenureMonths))
	return out, nil
}

func (u *Usecase) ListInstallments(ctx context.Context, applicationID, status string) ([]InstallmentDTO, error) {
	var filter domain.Status
	if status != "" {
		s, err := domain.ParseStatus(status)
		if err != nil {
			return nil, err
		}
		filter = s
	}
	a, err := u.loans.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	items, err := u.repayments.ListByApplicationID(ctx, a.ID, filter)
	if err != nil {
		return nil, err
	}
	return toDTOs(a.ApplicationID, items), nil
}

func (u *Usecase) ListPending(ctx context.Context, applicationID string) ([]InstallmentDTO, error) {
	return u.ListInstallments(ctx, applicationID, string(domain.StatusPending))
}

// Pay settles one installment. A second payment of the same installment
// fails with ErrAlreadyPaid.
func (u *Usecase) Pay(ctx context.Context, installmentID uint64) (*InstallmentDTO, error) {
	inst, err := u.repayments.GetByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if !inst.Status.IsPayable() {
		return nil, domain.ErrAlreadyPaid
	}

	ok, err := u.repayments.MarkPaid(ctx, inst.ID, u.now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		// someone else settled it between the read and the update
		return nil, domain.ErrAlreadyPaid
	}

	paid, err := u.repayments.GetByID(ctx, inst.ID)
	if err != nil {
		return nil, err
	}
	a, err := u.loans.GetByID(ctx, paid.ApplicationID)
	if err != nil {
		return nil, err
	}
	u.metrics.InstallmentPaid()
	u.notify.Notify(ctx, a.UserID,
		fmt.Sprintf("Installment %d of loan %s (%s) received. Thank you.", paid.Sequence, a.ApplicationID, paid.EMIAmount.StringFixed(2)),
		notification.CategoryEMIPaid)

	dto := toDTO(a.ApplicationID, paid)
	return &dto, nil
}

// SweepOverdue moves every PENDING installment due before today to OVERDUE
// and returns how many moved. Installments paid mid-sweep are left PAID.
func (u *Usecase) SweepOverdue(ctx context.Context, today time.Time) (int, error) {
	day := domain.Day(today)
	owners := map[uint64]*loanDomain.Application{}
	moved := 0

	for {
		batch, err := u.repayments.ListPendingDueBefore(ctx, day, sweepBatch)
		if err != nil {
			return moved, err
		}
		for i := range batch {
			inst := &batch[i]
			ok, err := u.repayments.MarkOverdue(ctx, inst.ID)
			if err != nil {
				return moved, err
			}
			if !ok {
				continue
			}
			moved++
			u.notifyOverdue(ctx, owners, inst)
		}
		if len(batch) < sweepBatch {
			break
		}
	}

	u.metrics.InstallmentsOverdue(moved)
	if moved > 0 {
		u.log.Info("overdue sweep", zap.Time("day", day), zap.Int("moved", moved))
	}
	return moved, nil
}

func (u *Usecase) notifyOverdue(ctx context.Context, owners map[uint64]*loanDomain.Application, inst *domain.Installment) {
	a, ok := owners[inst.ApplicationID]
	if !ok {
		var err error
		a, err = u.loans.GetByID(ctx, inst.ApplicationID)
		if err != nil {
			u.log.Warn("overdue owner lookup failed", zap.Uint64("installment_id", inst.ID), zap.Error(err))
			return
		}
		owners[inst.ApplicationID] = a
	}
	u.notify.Notify(ctx, a.UserID,
		fmt.Sprintf("Installment %d of loan %s (%s) was due on %s and is now overdue.",
			inst.Sequence, a.ApplicationID, inst.EMIAmount.StringFixed(2), inst.DueDate.Format(dateLayout)),
		notification.CategoryEMIOverdue)
}

// Summary aggregates the repayment position of one application.
func (u *Usecase) Summary(ctx context.Context, applicationID string) (*Summary, error) {
	a, err := u.loans.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	items, err := u.repayments.ListByApplicationID(ctx, a.ID, "")
	if err != nil {
		return nil, err
	}

	s := &Summary{
		ApplicationID:    a.ApplicationID,
		Status:           string(a.Status),
		Principal:        a.Amount,
		TenureMonths:     a.TenureMonths,
		AnnualRate:       u.resolveRate(decimal.NullDecimal{}, a.AnnualRate),
		Installments:     len(items),
		TotalRepaid:      decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for i := range items {
		it := &items[i]
		s.EMI = it.EMIAmount
		switch it.Status {
		case domain.StatusPaid:
			s.Paid++
			s.TotalRepaid = s.TotalRepaid.Add(it.EMIAmount)
			continue
		case domain.StatusPending:
			s.Pending++
		case domain.StatusOverdue:
			s.Overdue++
		}
		s.TotalOutstanding = s.TotalOutstanding.Add(it.EMIAmount)
		if s.NextDueDate == "" {
			s.NextDueDate = it.DueDate.Format(dateLayout)
		}
	}
	s.FullyRepaid = s.Installments > 0 && s.Paid == s.Installments
	return s, nil
}

// resolveRate picks the explicit rate, then the stored one, then the default.
func (u *Usecase) resolveRate(explicit, stored decimal.NullDecimal) decimal.Decimal {
	switch {
	case explicit.Valid:
		return explicit.Decimal
	case stored.Valid:
		return stored.Decimal
	}
	return u.defaultRate
}
