package gormdb

import (
	"context"
	"time"

	repDomain "loanledger/internal/domain/repayment"

	"gorm.io/gorm"
)

type RepaymentRepository struct{ db *gorm.DB }

func NewRepaymentRepository(db *gorm.DB) *RepaymentRepository { return &RepaymentRepository{db: db} }

func (r *RepaymentRepository) CreateBatch(ctx context.Context, items []repDomain.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *RepaymentRepository) CountByApplicationID(ctx context.Context, applicationID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&repDomain.Installment{}).
		Where("application_id = ?", applicationID).
		Count(&n).Error
	return n, err
}

func (r *RepaymentRepository) GetByID(ctx context.Context, id uint64) (*repDomain.Installment, error) {
	var out repDomain.Installment
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, repDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *RepaymentRepository) ListByApplicationID(ctx context.Context, applicationID uint64, status repDomain.Status) ([]repDomain.Installment, error) {
	q := r.db.WithContext(ctx).Where("application_id = ?", applicationID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []repDomain.Installment
	err := q.Order("sequence ASC").Find(&out).Error
	return out, err
}

func (r *RepaymentRepository) ListPendingDueBefore(ctx context.Context, day time.Time, limit int) ([]repDomain.Installment, error) {
	var out []repDomain.Installment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", repDomain.StatusPending, repDomain.Day(day)).
		Order("due_date ASC, id ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (r *RepaymentRepository) MarkPaid(ctx context.Context, id uint64, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&repDomain.Installment{}).
		Where("id = ? AND status IN ?", id, []repDomain.Status{repDomain.StatusPending, repDomain.StatusOverdue}).
		Updates(map[string]any{"status": repDomain.StatusPaid, "paid_at": at})
	return res.RowsAffected == 1, res.Error
}

func (r *RepaymentRepository) MarkOverdue(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&repDomain.Installment{}).
		Where("id = ? AND status = ?", id, repDomain.StatusPending).
		Update("status", repDomain.StatusOverdue)
	return res.RowsAffected == 1, res.Error
}
