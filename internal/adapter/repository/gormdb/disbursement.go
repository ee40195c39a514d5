package gormdb

import (
	"context"
	"fmt"
	"time"

	disbDomain "loanledger/internal/domain/disbursement"
	"loanledger/internal/domain/errs"

	"gorm.io/gorm"
)

type DisbursementRepository struct{ db *gorm.DB }

func NewDisbursementRepository(db *gorm.DB) *DisbursementRepository {
	return &DisbursementRepository{db: db}
}

func (r *DisbursementRepository) Create(ctx context.Context, d *disbDomain.Disbursement) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *DisbursementRepository) GetByID(ctx context.Context, id uint64) (*disbDomain.Disbursement, error) {
	var out disbDomain.Disbursement
	if err := r.db.WithContext(ctx).First(&out, id).Error; err != nil {
		return nil, notFound(err, disbDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *DisbursementRepository) ListByApplicationID(ctx context.Context, applicationID uint64) ([]disbDomain.Disbursement, error) {
	var out []disbDomain.Disbursement
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *DisbursementRepository) GetActiveByApplicationID(ctx context.Context, applicationID uint64) (*disbDomain.Disbursement, error) {
	var out disbDomain.Disbursement
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND status IN ?", applicationID,
			[]disbDomain.Status{disbDomain.StatusProcessing, disbDomain.StatusCompleted}).
		Order("id DESC").
		First(&out).Error
	if err != nil {
		return nil, notFound(err, disbDomain.ErrNotFound)
	}
	return &out, nil
}

func (r *DisbursementRepository) ListStale(ctx context.Context, before time.Time) ([]disbDomain.Disbursement, error) {
	var out []disbDomain.Disbursement
	err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", disbDomain.StatusProcessing, before).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *DisbursementRepository) Advance(ctx context.Context, id uint64, from, to disbDomain.Status, reference, reason string) error {
	if !disbDomain.CanAdvance(from, to) {
		return fmt.Errorf("%w: disbursement %s -> %s", errs.ErrInvalidState, from, to)
	}
	fields := map[string]any{"status": to}
	if reference != "" {
		fields["reference"] = reference
	}
	if reason != "" {
		fields["failure_reason"] = reason
	}
	res := r.db.WithContext(ctx).
		Model(&disbDomain.Disbursement{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	return casResult(res, fmt.Sprintf("disbursement %d (expected %s)", id, from))
}

func (r *DisbursementRepository) AttachReference(ctx context.Context, id uint64, reference string) error {
	res := r.db.WithContext(ctx).
		Model(&disbDomain.Disbursement{}).
		Where("id = ? AND status = ?", id, disbDomain.StatusProcessing).
		Update("reference", reference)
	return casResult(res, fmt.Sprintf("disbursement %d (expected %s)", id, disbDomain.StatusProcessing))
}
