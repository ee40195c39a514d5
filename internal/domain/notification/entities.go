package notification

import (
	"context"
	"fmt"
	"time"

	"loanledger/internal/domain/errs"
)

type Category string

const (
	CategoryApplicationSubmitted Category = "APPLICATION_SUBMITTED"
	CategoryStatusUpdate         Category = "STATUS_UPDATE"
	CategoryDisbursement         Category = "DISBURSEMENT"
	CategoryEMIPaid              Category = "EMI_PAID"
	CategoryEMIOverdue           Category = "EMI_OVERDUE"
)

var ErrNotFound = fmt.Errorf("notification %w", errs.ErrNotFound)

// Table: notifications
type Notification struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"notification_id"`
	UserID    string    `gorm:"size:32;not null;index:idx_notifications_user_created,priority:1" json:"user_id"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Category  Category  `gorm:"size:32;not null" json:"category"`
	Read      bool      `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_notifications_user_created,priority:2" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uint64) (*Notification, error)
	// ListByUserID returns newest first.
	ListByUserID(ctx context.Context, userID string) ([]Notification, error)
	MarkRead(ctx context.Context, id uint64) error
}

// Sink delivers a message to a user. Delivery is best effort: a failed
// notification never undoes the state change that triggered it.
type Sink interface {
	Notify(ctx context.Context, userID, message string, category Category)
}
