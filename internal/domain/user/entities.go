package user

import (
	"context"
	"fmt"
	"time"

	"loanledger/internal/domain/errs"
)

var ErrNotFound = fmt.Errorf("user %w", errs.ErrNotFound)

// Table: users. Registration and credentials live elsewhere; the ledger
// only needs to resolve owners.
type User struct {
	ID        uint64    `gorm:"primaryKey;column:id" json:"-"`
	UserID    string    `gorm:"size:32;not null;uniqueIndex:ux_users_user_id" json:"user_id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex:ux_users_email" json:"email"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (User) TableName() string { return "users" }

type Directory interface {
	FindUser(ctx context.Context, userID string) (*User, error)
}
