package gormdb

import (
	"loanledger/internal/domain/disbursement"
	"loanledger/internal/domain/loan"
	"loanledger/internal/domain/notification"
	"loanledger/internal/domain/repayment"
	"loanledger/internal/domain/user"

	"gorm.io/gorm"
)

// Models lists every table owned by the service, in dependency order.
func Models() []any {
	return []any{
		&user.User{},
		&loan.Application{},
		&disbursement.Disbursement{},
		&repayment.Installment{},
		&notification.Notification{},
	}
}

func AutoMigrate(db *gorm.DB) error { return db.AutoMigrate(Models()...) }
