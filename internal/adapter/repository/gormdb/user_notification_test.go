package gormdb

import (
	"context"
	"errors"
	"testing"

	notifDomain "loanledger/internal/domain/notification"
	userDomain "loanledger/internal/domain/user"
	"loanledger/pkg/id"
)

func TestUserRepository_FindUser(t *testing.T) {
	db := openTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := &userDomain.User{UserID: id.NewID32(), Name: "Meera", Email: "meera@example.com"}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := repo.FindUser(ctx, u.UserID)
	if err != nil || got.Email != u.Email {
		t.Fatalf("FindUser = %+v, %v", got, err)
	}
	if _, err := repo.FindUser(ctx, id.NewID32()); !errors.Is(err, userDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestNotificationRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	userID := id.NewID32()

	first := &notifDomain.Notification{UserID: userID, Message: "submitted", Category: notifDomain.CategoryApplicationSubmitted}
	second := &notifDomain.Notification{UserID: userID, Message: "approved", Category: notifDomain.CategoryStatusUpdate}
	for _, n := range []*notifDomain.Notification{first, second} {
		if err := repo.Create(ctx, n); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	list, err := repo.ListByUserID(ctx, userID)
	if err != nil || len(list) != 2 {
		t.Fatalf("List = %d, %v", len(list), err)
	}
	if list[0].ID != second.ID || list[0].Read {
		t.Fatalf("expected newest unread first, got %+v", list[0])
	}

	if err := repo.MarkRead(ctx, first.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	// idempotent
	if err := repo.MarkRead(ctx, first.ID); err != nil {
		t.Fatalf("MarkRead again: %v", err)
	}
	got, _ := repo.GetByID(ctx, first.ID)
	if !got.Read {
		t.Fatalf("notification not marked read")
	}
	if err := repo.MarkRead(ctx, 4242); !errors.Is(err, notifDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
