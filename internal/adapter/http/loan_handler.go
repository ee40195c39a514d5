package http

import (
	"net/http"

	"loanledger/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type submitReq struct {
	UserID      string          `json:"user_id"      validate:"required,hex32"`
	Name        string          `json:"name"         validate:"required,max=128"`
	Profession  string          `json:"profession"   validate:"max=128"`
	Purpose     string          `json:"purpose"      validate:"max=1000"`
	Amount      decimal.Decimal `json:"amount"       validate:"gt=0,dec2"`
	CreditScore int             `json:"credit_score" validate:"gte=0,lte=900"`
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *LoanHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Submit(c.Request().Context(), loan.SubmitInput(req))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) ListByUser(c echo.Context) error {
	out, err := h.uc.ListByUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *LoanHandler) UpdateStatus(c echo.Context) error {
	var req updateStatusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.UpdateStatus(c.Request().Context(), c.Param("application_id"), req.Status)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
