package gormdb

import (
	"context"
	"testing"
	"time"

	loanDomain "loanledger/internal/domain/loan"
	"loanledger/pkg/id"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// openTestDB creates a private in-memory sqlite DB with the full schema.
// A single connection keeps every query on the same :memory: database.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeApplication(userID string, status loanDomain.Status) *loanDomain.Application {
	return &loanDomain.Application{
		ApplicationID:   id.NewID32(),
		UserID:          userID,
		Name:            "Asha Rao",
		Profession:      "Engineer",
		Purpose:         "Home renovation",
		Amount:          decimal.RequireFromString("120000.00"),
		CreditScore:     720,
		Status:          status,
		StatusUpdatedAt: time.Now().UTC(),
	}
}

func seedApplication(t *testing.T, db *gorm.DB, status loanDomain.Status) *loanDomain.Application {
	t.Helper()
	a := makeApplication(id.NewID32(), status)
	if err := NewLoanRepository(db).Create(context.Background(), a); err != nil {
		t.Fatalf("seed application: %v", err)
	}
	return a
}
