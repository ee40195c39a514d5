package http

import (
	"net/http"

	"loanledger/internal/usecase/disbursement"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type DisbursementHandler struct{ uc *disbursement.Usecase }

func NewDisbursementHandler(uc *disbursement.Usecase) *DisbursementHandler {
	return &DisbursementHandler{uc: uc}
}

type disburseReq struct {
	Amount       decimal.Decimal     `json:"amount"        validate:"gt=0,dec2"`
	TenureMonths int                 `json:"tenure_months" validate:"gte=0,lte=360"`
	AnnualRate   decimal.NullDecimal `json:"annual_rate"   validate:"omitempty,gte=0,lte=100"`
}

func (h *DisbursementHandler) Disburse(c echo.Context) error {
	var req disburseReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	dto, err := h.uc.Disburse(c.Request().Context(), disbursement.DisburseInput{
		ApplicationID: c.Param("application_id"),
		Amount:        req.Amount,
		TenureMonths:  req.TenureMonths,
		AnnualRate:    req.AnnualRate,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DisbursementHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
