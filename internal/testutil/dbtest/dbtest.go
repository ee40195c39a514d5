// Package dbtest opens throwaway sqlite databases carrying the full schema.
package dbtest

import (
	"context"
	"testing"
	"time"

	"loanledger/internal/adapter/repository/gormdb"
	"loanledger/internal/domain/user"
	"loanledger/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a private in-memory database on a single connection, so
// every query sees the same :memory: instance. Callers must not use
// non-transactional repositories while a transaction is open.
func Open(t *testing.T) *gorm.DB {
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

	if err := gormdb.AutoMigrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

// SeedUser inserts a user and returns its public id.
func SeedUser(t *testing.T, db *gorm.DB) string {
	t.Helper()
	uid := id.NewID32()
	u := &user.User{UserID: uid, Name: "Asha Rao", Email: uid + "@example.test"}
	if err := gormdb.NewUserRepository(db).Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return uid
}
