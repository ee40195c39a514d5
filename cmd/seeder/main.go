// Command seeder inserts demo borrowers so the API can be exercised locally.
// Registration is owned by another service; this only fills the users table.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"loanledger/internal/adapter/repository/gormdb"
	"loanledger/internal/config"
	"loanledger/internal/domain/user"
	"loanledger/internal/infrastructure/db"
	"loanledger/pkg/id"
)

func main() {
	n := flag.Int("n", 5, "number of users to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	gdb, err := db.OpenGorm(cfg)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	if err := gormdb.AutoMigrate(gdb); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()
	repo := gormdb.NewUserRepository(gdb)
	for i := 1; i <= *n; i++ {
		uid := id.NewID32()
		u := &user.User{
			UserID: uid,
			Name:   fmt.Sprintf("Borrower %d", i),
			Email:  uid + "@borrowers.local",
		}
		if err := repo.Create(ctx, u); err != nil {
			log.Fatalf("create user: %v", err)
		}
		fmt.Println(uid)
	}
	log.Printf("seeded %d users", *n)
}
