package gormdb

import (
	"context"

	notifDomain "loanledger/internal/domain/notification"

	"gorm.io/gorm"
)

type NotificationRepository struct{ db *gorm.DB }

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notifDomain.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uint64) (*notifDomain.Notification, error) {
	var out notifDomain.Notification
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, notifDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *NotificationRepository) ListByUserID(ctx context.Context, userID string) ([]notifDomain.Notification, error) {
	var out []notifDomain.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uint64) error {
	// mysql reports zero affected rows for an already-read row, so check
	// existence separately
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&notifDomain.Notification{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}
