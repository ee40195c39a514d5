package disbursement

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "loanledger/internal/domain/disbursement"
	loanDomain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/notification"
	repDomain "loanledger/internal/domain/repayment"
	"loanledger/internal/domain/uow"
	"loanledger/internal/domain/user"
	"loanledger/internal/infrastructure/metrics"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Scheduler seeds repayment schedules inside a disbursement transaction.
type Scheduler interface {
	Terms(a *loanDomain.Application, tenureMonths int, rate decimal.NullDecimal) (decimal.Decimal, error)
	SeedWithin(ctx context.Context, r uow.Repos, a *loanDomain.Application, tenureMonths int, rate decimal.Decimal, start time.Time) ([]repDomain.Installment, error)
}

type Usecase struct {
	loans     loanDomain.Repository
	repo      domain.Repository
	uow       uow.UnitOfWork
	users     user.Directory
	transfer  domain.Transferer
	scheduler Scheduler
	notify    notification.Sink
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

type Option func(*Usecase)

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(
	loans loanDomain.Repository,
	repo domain.Repository,
	tx uow.UnitOfWork,
	users user.Directory,
	transfer domain.Transferer,
	scheduler Scheduler,
	sink notification.Sink,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		loans:     loans,
		repo:      repo,
		uow:       tx,
		users:     users,
		transfer:  transfer,
		scheduler: scheduler,
		notify:    sink,
		log:       zap.NewNop(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(u)
	}
	return u
}

// recorded is what the record phase hands to the transfer phase.
type recorded struct {
	d      *domain.Disbursement
	userID string
	rate   decimal.Decimal
}

// Disburse pays out an approved application. The transfer runs between two
// short transactions so no row lock is held across the external call.
func (u *Usecase) Disburse(ctx context.Context, in DisburseInput) (*DisbursementDTO, error) {
	rec, err := u.record(ctx, in)
	if err != nil {
		return nil, err
	}

	start := u.now()
	receipt, terr := u.transfer.Transfer(ctx, domain.TransferRequest{
		DisbursementID: rec.d.ID,
		ApplicationID:  in.ApplicationID,
		UserID:         rec.userID,
		Amount:         rec.d.Amount,
	})
	u.metrics.ObserveTransfer(u.now().Sub(start).Seconds())

	if terr != nil {
		return nil, u.fail(ctx, in.ApplicationID, rec.d, terr)
	}
	return u.complete(ctx, in, rec, receipt)
}

func (u *Usecase) record(ctx context.Context, in DisburseInput) (*recorded, error) {
	// the owner never changes, so it is resolved before the row lock is taken
	owner, err := u.loans.GetByApplicationID(ctx, in.ApplicationID)
	if err != nil {
		return nil, err
	}
	if _, err := u.users.FindUser(ctx, owner.UserID); err != nil {
		return nil, err
	}

	var rec *recorded
	err = u.uow.WithinLoanTx(ctx, in.ApplicationID, func(r uow.Repos, a *loanDomain.Application) error {
		if err := a.CheckDisbursable(); err != nil {
			return err
		}
		if err := domain.CheckAmount(in.Amount, a.Amount); err != nil {
			return err
		}

		var rate decimal.Decimal
		if in.TenureMonths != 0 {
			applied, err := u.scheduler.Terms(a, in.TenureMonths, in.AnnualRate)
			if err != nil {
				return err
			}
			rate = applied
		}

		active, err := r.Disbursements.GetActiveByApplicationID(ctx, a.ID)
		switch {
		case err == nil:
			return fmt.Errorf("%w (disbursement %d is %s)", domain.ErrInProgress, active.ID, active.Status)
		case !errors.Is(err, domain.ErrNotFound):
			return err
		}

		d := &domain.Disbursement{
			ApplicationID: a.ID,
			Amount:        a.Amount,
			DisbursedOn:   repDomain.Day(u.now()),
			Status:        domain.StatusProcessing,
		}
		if err := r.Disbursements.Create(ctx, d); err != nil {
			return err
		}
		rec = &recorded{d: d, userID: a.UserID, rate: rate}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (u *Usecase) fail(ctx context.Context, applicationID string, d *domain.Disbursement, cause error) error {
	u.metrics.DisbursementOutcome("failed")
	u.log.Warn("transfer failed",
		zap.String("application_id", applicationID),
		zap.Uint64("disbursement_id", d.ID),
		zap.Error(cause))

	// the caller's context may be the reason the transfer failed
	ctx = context.WithoutCancel(ctx)
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		return r.Disbursements.Advance(ctx, d.ID, domain.StatusProcessing, domain.StatusFailed, "", cause.Error())
	})
	if err != nil {
		u.log.Error("could not record failed disbursement",
			zap.Uint64("disbursement_id", d.ID), zap.Error(err))
		return fmt.Errorf("%w: %w (audit: %v)", domain.ErrTransferFailed, cause, err)
	}
	return fmt.Errorf("%w: %w", domain.ErrTransferFailed, cause)
}

func (u *Usecase) complete(ctx context.Context, in DisburseInput, rec *recorded, receipt domain.TransferReceipt) (*DisbursementDTO, error) {
	ctx = context.WithoutCancel(ctx)
	installments := 0
	err := u.uow.WithinLoanTx(ctx, in.ApplicationID, func(r uow.Repos, a *loanDomain.Application) error {
		if err := r.Disbursements.Advance(ctx, rec.d.ID, domain.StatusProcessing, domain.StatusCompleted, receipt.Reference, ""); err != nil {
			return err
		}
		now := u.now().UTC()
		if err := r.Loans.UpdateStatus(ctx, a.ID, loanDomain.StatusApproved, loanDomain.StatusDisbursed, now); err != nil {
			return err
		}
		a.Status, a.StatusUpdatedAt = loanDomain.StatusDisbursed, now

		if in.TenureMonths > 0 {
			items, err := u.scheduler.SeedWithin(ctx, r, a, in.TenureMonths, rec.rate, rec.d.DisbursedOn)
			if err != nil {
				return err
			}
			installments = len(items)
		}
		return nil
	})
	if err != nil {
		// funds moved but the ledger did not follow; keep the reference on
		// the PROCESSING row so reconciliation can finish it
		u.metrics.DisbursementOutcome("unrecorded")
		u.log.Error("disbursement finalize failed",
			zap.String("application_id", in.ApplicationID),
			zap.Uint64("disbursement_id", rec.d.ID),
			zap.String("reference", receipt.Reference),
			zap.Error(err))
		if aerr := u.uow.WithinTx(ctx, func(r uow.Repos) error {
			return r.Disbursements.AttachReference(ctx, rec.d.ID, receipt.Reference)
		}); aerr != nil {
			u.log.Error("could not attach transfer reference",
				zap.Uint64("disbursement_id", rec.d.ID),
				zap.String("reference", receipt.Reference),
				zap.Error(aerr))
		}
		return nil, err
	}

	rec.d.Status = domain.StatusCompleted
	rec.d.Reference = receipt.Reference
	u.metrics.DisbursementOutcome("completed")
	u.log.Info("disbursement completed",
		zap.String("application_id", in.ApplicationID),
		zap.String("reference", receipt.Reference),
		zap.Int("installments", installments))
	u.notify.Notify(ctx, rec.userID,
		fmt.Sprintf("Loan %s of %s has been disbursed (ref %s).", in.ApplicationID, rec.d.Amount.StringFixed(2), receipt.Reference),
		notification.CategoryDisbursement)

	dto := toDTO(in.ApplicationID, rec.d)
	dto.Installments = installments
	return dto, nil
}

func (u *Usecase) List(ctx context.Context, applicationID string) ([]DisbursementDTO, error) {
	a, err := u.loans.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	rows, err := u.repo.ListByApplicationID(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	out := make([]DisbursementDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(a.ApplicationID, &rows[i]))
	}
	return out, nil
}

// ReconcileStale fails PROCESSING disbursements untouched for olderThan,
// which frees their applications for another attempt.
// ReconcileStale resolves PROCESSING rows older than olderThan. A row that
// carries a reference, or whose transfer the provider confirms, is completed
// and its application marked DISBURSED. A row the provider has no record of
// is failed. Anything else stays PROCESSING for manual review.
func (u *Usecase) ReconcileStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := u.repo.ListStale(ctx, u.now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range stale {
		d := &stale[i]
		log := u.log.With(zap.Uint64("disbursement_id", d.ID))

		reference := d.Reference
		if reference == "" {
			receipt, err := u.lookup(ctx, d.ID)
			switch {
			case errors.Is(err, domain.ErrTransferNotFound):
				if err := u.repo.Advance(ctx, d.ID, domain.StatusProcessing, domain.StatusFailed, "", "transfer never reached the provider; reconciled as failed"); err != nil {
					log.Warn("reconcile skipped", zap.Error(err))
					continue
				}
				u.metrics.DisbursementOutcome("failed")
				n++
				continue
			case err != nil:
				log.Warn("transfer outcome unknown; left for manual review", zap.Error(err))
				continue
			}
			reference = receipt.Reference
		}

		if err := u.settle(ctx, d, reference); err != nil {
			log.Warn("reconcile skipped", zap.String("reference", reference), zap.Error(err))
			continue
		}
		n++
	}
	if n > 0 {
		u.log.Info("stale disbursements reconciled", zap.Int("count", n))
	}
	return n, nil
}

func (u *Usecase) lookup(ctx context.Context, disbursementID uint64) (domain.TransferReceipt, error) {
	l, ok := u.transfer.(domain.TransferLookup)
	if !ok {
		return domain.TransferReceipt{}, errors.New("transferer cannot look up past transfers")
	}
	return l.Lookup(ctx, disbursementID)
}

// settle completes a disbursement whose funds are known to have moved.
func (u *Usecase) settle(ctx context.Context, d *domain.Disbursement, reference string) error {
	app, err := u.loans.GetByID(ctx, d.ApplicationID)
	if err != nil {
		return err
	}
	err = u.uow.WithinLoanTx(ctx, app.ApplicationID, func(r uow.Repos, a *loanDomain.Application) error {
		if err := r.Disbursements.Advance(ctx, d.ID, domain.StatusProcessing, domain.StatusCompleted, reference, ""); err != nil {
			return err
		}
		return r.Loans.UpdateStatus(ctx, a.ID, loanDomain.StatusApproved, loanDomain.StatusDisbursed, u.now().UTC())
	})
	if err != nil {
		return err
	}

	u.metrics.DisbursementOutcome("completed")
	u.log.Info("disbursement completed by reconciliation",
		zap.String("application_id", app.ApplicationID),
		zap.String("reference", reference))
	u.notify.Notify(ctx, app.UserID,
		fmt.Sprintf("Loan %s of %s has been disbursed (ref %s).", app.ApplicationID, d.Amount.StringFixed(2), reference),
		notification.CategoryDisbursement)
	return nil
}
