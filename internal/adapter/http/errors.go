package http

import (
	"errors"
	"net/http"

	"loanledger/internal/domain/errs"

	"github.com/labstack/echo/v4"
)

// statusFor maps a domain error kind to its HTTP status.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrValidation):
		return http.StatusUnprocessableEntity, "validation"
	case errors.Is(err, errs.ErrInvalidState):
		return http.StatusConflict, "invalid_state"
	case errors.Is(err, errs.ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, errs.ErrTransferFailed):
		return http.StatusBadGateway, "transfer_failed"
	}
	return http.StatusInternalServerError, ""
}

// respondError writes domain errors; anything unclassified is handed to
// echo so it is logged and rendered by ErrorHandler.
func respondError(c echo.Context, err error) error {
	code, kind := statusFor(err)
	if code == http.StatusInternalServerError {
		return echo.NewHTTPError(code, "internal error").SetInternal(err)
	}
	return c.JSON(code, ErrorResponse{Error: err.Error(), Kind: kind})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

func validationFailed(c echo.Context, err error) error {
	return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Kind:    "validation",
		Details: ToFieldErrors(err),
	})
}

// ErrorHandler renders echo errors in the ErrorResponse shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code, msg := http.StatusInternalServerError, "internal error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(code)
		return
	}
	_ = c.JSON(code, ErrorResponse{Error: msg})
}
