package gormdb

import (
	"errors"
	"fmt"

	"loanledger/internal/domain/errs"

	"gorm.io/gorm"
)

// notFound swaps gorm's sentinel for the domain one.
func notFound(err, domainErr error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr
	}
	return err
}

// casResult turns an UPDATE ... WHERE status = ? into a compare-and-set outcome.
func casResult(res *gorm.DB, what string) error {
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s changed concurrently", errs.ErrConflict, what)
	}
	return nil
}
