package loan

import (
	"context"
	"fmt"
	"strings"
	"time"

	"loanledger/internal/domain/errs"
	domain "loanledger/internal/domain/loan"
	"loanledger/internal/domain/notification"
	"loanledger/internal/domain/uow"
	"loanledger/internal/domain/user"
	"loanledger/internal/infrastructure/metrics"
	"loanledger/pkg/id"

	"go.uber.org/zap"
)

type Usecase struct {
	repo    domain.Repository
	uow     uow.UnitOfWork
	users   user.Directory
	notify  notification.Sink
	metrics *metrics.Metrics
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Usecase)

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }
func WithLogger(l *zap.Logger) Option       { return func(u *Usecase) { u.log = l } }
func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(r domain.Repository, tx uow.UnitOfWork, users user.Directory, sink notification.Sink, opts ...Option) *Usecase {
	u := &Usecase{repo: r, uow: tx, users: users, notify: sink, log: zap.NewNop(), now: time.Now}
	for _, o := range opts {
		o(u)
	}
	return u
}

// Submit records a new application and auto-decides it on credit score.
func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*ApplicationDTO, error) {
	in.Name = strings.TrimSpace(in.Name)
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", errs.ErrValidation)
	case !in.Amount.IsPositive():
		return nil, fmt.Errorf("%w: amount must be positive", errs.ErrValidation)
	case in.CreditScore < 0:
		return nil, fmt.Errorf("%w: credit score must not be negative", errs.ErrValidation)
	}

	if _, err := u.users.FindUser(ctx, in.UserID); err != nil {
		return nil, err
	}

	now := u.now().UTC()
	a := &domain.Application{
		ApplicationID:   id.NewID32(),
		UserID:          in.UserID,
		Name:            in.Name,
		Profession:      in.Profession,
		Purpose:         in.Purpose,
		Amount:          in.Amount.Round(2),
		CreditScore:     in.CreditScore,
		Status:          domain.InitialStatus(in.CreditScore),
		StatusUpdatedAt: now,
	}
	if err := u.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	u.metrics.ApplicationSubmitted(string(a.Status))
	u.log.Info("application submitted",
		zap.String("application_id", a.ApplicationID),
		zap.String("status", string(a.Status)))

	if a.Status == domain.StatusRejected {
		u.notify.Notify(ctx, a.UserID,
			fmt.Sprintf("Your loan application %s was rejected: credit score below %d.", a.ApplicationID, domain.MinCreditScore),
			notification.CategoryStatusUpdate)
	} else {
		u.notify.Notify(ctx, a.UserID,
			fmt.Sprintf("Your loan application %s for %s has been received and is under review.", a.ApplicationID, a.Amount.StringFixed(2)),
			notification.CategoryApplicationSubmitted)
	}
	return ToDTO(a), nil
}

// UpdateStatus applies a manual decision to a pending application.
func (u *Usecase) UpdateStatus(ctx context.Context, applicationID, status string) (*ApplicationDTO, error) {
	to, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	var updated *domain.Application
	err = u.uow.WithinLoanTx(ctx, applicationID, func(r uow.Repos, a *domain.Application) error {
		if err := domain.CheckManualTransition(a.Status, to); err != nil {
			return err
		}
		now := u.now().UTC()
		if err := r.Loans.UpdateStatus(ctx, a.ID, a.Status, to, now); err != nil {
			return err
		}
		a.Status, a.StatusUpdatedAt = to, now
		updated = a
		return nil
	})
	if err != nil {
		return nil, err
	}

	u.log.Info("application status updated",
		zap.String("application_id", updated.ApplicationID),
		zap.String("status", string(to)))
	u.notify.Notify(ctx, updated.UserID,
		fmt.Sprintf("Your loan application %s is now %s.", updated.ApplicationID, to),
		notification.CategoryStatusUpdate)
	return ToDTO(updated), nil
}

func (u *Usecase) Get(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	a, err := u.repo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	return ToDTO(a), nil
}

func (u *Usecase) List(ctx context.Context) ([]ApplicationDTO, error) {
	apps, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return toDTOs(apps), nil
}

func (u *Usecase) ListByUser(ctx context.Context, userID string) ([]ApplicationDTO, error) {
	if _, err := u.users.FindUser(ctx, userID); err != nil {
		return nil, err
	}
	apps, err := u.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toDTOs(apps), nil
}
