package errs

import "errors"

// Error kinds. Domain packages wrap one of these so callers can match
// either the specific error or its kind with errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidState   = errors.New("invalid state")
	ErrValidation     = errors.New("validation error")
	ErrTransferFailed = errors.New("transfer failed")
	ErrConflict       = errors.New("conflict")
)
