package notification

import (
	"context"

	domain "loanledger/internal/domain/notification"

	"go.uber.org/zap"
)

var _ domain.Sink = (*Usecase)(nil)

type Usecase struct {
	repo domain.Repository
	log  *zap.Logger
}

func NewUsecase(r domain.Repository, log *zap.Logger) *Usecase {
	if log == nil {
		log = zap.NewNop()
	}
	return &Usecase{repo: r, log: log}
}

// Notify stores the message for the user. Failures are logged and dropped.
func (u *Usecase) Notify(ctx context.Context, userID, message string, category domain.Category) {
	n := &domain.Notification{UserID: userID, Message: message, Category: category}
	if err := u.repo.Create(ctx, n); err != nil {
		u.log.Warn("notification dropped",
			zap.String("user_id", userID),
			zap.String("category", string(category)),
			zap.Error(err))
	}
}

func (u *Usecase) List(ctx context.Context, userID string) ([]domain.Notification, error) {
	return u.repo.ListByUserID(ctx, userID)
}

func (u *Usecase) MarkRead(ctx context.Context, id uint64) (*domain.Notification, error) {
	if err := u.repo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	return u.repo.GetByID(ctx, id)
}
