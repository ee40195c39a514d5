package gormdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"loanledger/internal/domain/errs"
	domain "loanledger/internal/domain/loan"
	"loanledger/pkg/id"

	"github.com/shopspring/decimal"
)

func TestCreateAndGetByApplicationID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	userID := id.NewID32()
	a := makeApplication(userID, domain.StatusPending)
	if err := repo.Create(ctx, a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByApplicationID(ctx, a.ApplicationID)
	if err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if got.UserID != userID || got.Status != domain.StatusPending {
		t.Errorf("unexpected application: %+v", got)
	}
	if !got.Amount.Equal(decimal.NewFromInt(120000)) {
		t.Errorf("amount = %s, want 120000", got.Amount)
	}
	if got.AnnualRate.Valid {
		t.Errorf("annual rate should be unset before scheduling")
	}

	byID, err := repo.GetByID(ctx, a.ID)
	if err != nil || byID.ApplicationID != a.ApplicationID {
		t.Fatalf("GetByID: %+v, %v", byID, err)
	}
}

func TestGetByApplicationID_NotFound(t *testing.T) {
	repo := NewLoanRepository(openTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByApplicationID(ctx, "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, domain.ErrNotFound) || !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByApplicationIDForUpdate(ctx, "nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound from locking read, got %v", err)
	}
	if _, err := repo.GetByID(ctx, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound by id, got %v", err)
	}
}

func TestUpdateStatus_CompareAndSet(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	a := seedApplication(t, db, domain.StatusApproved)

	at := time.Now().UTC()
	if err := repo.UpdateStatus(ctx, a.ID, domain.StatusApproved, domain.StatusDisbursed, at); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	got, _ := repo.GetByID(ctx, a.ID)
	if got.Status != domain.StatusDisbursed {
		t.Fatalf("status = %s, want DISBURSED", got.Status)
	}

	// stale expectation loses
	err := repo.UpdateStatus(ctx, a.ID, domain.StatusApproved, domain.StatusDisbursed, at)
	if !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("expected ErrConflict on stale CAS, got %v", err)
	}
}

func TestListAndListByUserID(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()

	owner := id.NewID32()
	first := makeApplication(owner, domain.StatusPending)
	second := makeApplication(owner, domain.StatusRejected)
	other := makeApplication(id.NewID32(), domain.StatusPending)
	for _, a := range []*domain.Application{first, second, other} {
		if err := repo.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.List(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("List = %d, %v", len(all), err)
	}

	mine, err := repo.ListByUserID(ctx, owner)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("ListByUserID = %d, want 2", len(mine))
	}
	// newest first
	if mine[0].ApplicationID != second.ApplicationID {
		t.Errorf("ordering: got %s first", mine[0].ApplicationID)
	}

	none, err := repo.ListByUserID(ctx, id.NewID32())
	if err != nil || len(none) != 0 {
		t.Fatalf("expected empty list, got %d, %v", len(none), err)
	}
}

func TestSetRepaymentTerms(t *testing.T) {
	db := openTestDB(t)
	repo := NewLoanRepository(db)
	ctx := context.Background()
	a := seedApplication(t, db, domain.StatusDisbursed)

	if err := repo.SetRepaymentTerms(ctx, a.ID, 24, decimal.RequireFromString("10.5")); err != nil {
		t.Fatalf("SetRepaymentTerms: %v", err)
	}
	got, _ := repo.GetByID(ctx, a.ID)
	if got.TenureMonths != 24 || !got.AnnualRate.Valid || !got.AnnualRate.Decimal.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("terms not stored: tenure=%d rate=%v", got.TenureMonths, got.AnnualRate)
	}

	if err := repo.SetRepaymentTerms(ctx, 404, 12, decimal.Zero); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
