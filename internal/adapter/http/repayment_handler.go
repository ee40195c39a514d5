package http

import (
	"net/http"

	"loanledger/internal/usecase/repayment"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type RepaymentHandler struct{ uc *repayment.Usecase }

func NewRepaymentHandler(uc *repayment.Usecase) *RepaymentHandler { return &RepaymentHandler{uc: uc} }

type scheduleReq struct {
	TenureMonths int                 `json:"tenure_months" validate:"gt=0,lte=360"`
	AnnualRate   decimal.NullDecimal `json:"annual_rate"   validate:"omitempty,gte=0,lte=100"`
}

// EMI: GET /api/repayments/emi?principal=120000&tenure=12[&rate=12]
func (h *RepaymentHandler) EMI(c echo.Context) error {
	var principal, rate string
	var tenure int
	err := echo.QueryParamsBinder(c).
		MustString("principal", &principal).
		MustInt("tenure", &tenure).
		String("rate", &rate).
		BindError()
	if err != nil {
		return badRequest(c, "principal and tenure are required; tenure must be an integer")
	}

	in := repayment.EMIInput{TenureMonths: tenure}
	if in.Principal, err = decimal.NewFromString(principal); err != nil {
		return badRequest(c, "principal must be a decimal number")
	}
	if rate != "" {
		r, err := decimal.NewFromString(rate)
		if err != nil {
			return badRequest(c, "rate must be a decimal number")
		}
		in.AnnualRate = decimal.NewNullDecimal(r)
	}

	q, err := h.uc.CalculateEMI(in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, q)
}

func (h *RepaymentHandler) GenerateSchedule(c echo.Context) error {
	var req scheduleReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(c, err)
	}
	out, err := h.uc.GenerateSchedule(c.Request().Context(), c.Param("application_id"), req.TenureMonths, req.AnnualRate)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *RepaymentHandler) ListInstallments(c echo.Context) error {
	out, err := h.uc.ListInstallments(c.Request().Context(), c.Param("application_id"), c.QueryParam("status"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RepaymentHandler) ListPending(c echo.Context) error {
	out, err := h.uc.ListPending(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RepaymentHandler) Summary(c echo.Context) error {
	out, err := h.uc.Summary(c.Request().Context(), c.Param("application_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *RepaymentHandler) Pay(c echo.Context) error {
	var installmentID uint64
	if err := echo.PathParamsBinder(c).MustUint64("installment_id", &installmentID).BindError(); err != nil {
		return badRequest(c, "installment_id must be a positive integer")
	}
	out, err := h.uc.Pay(c.Request().Context(), installmentID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
