package http

import (
	"github.com/labstack/echo/v4"
)

type Handlers struct {
	Health        *Handler
	Loans         *LoanHandler
	Disbursements *DisbursementHandler
	Repayments    *RepaymentHandler
	Notifications *NotificationHandler
}

// Register mounts the API. mutating wraps every POST/PUT route
// (idempotency in production).
func Register(e *echo.Echo, h Handlers, mutating ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)

	api := e.Group("/api")

	api.POST("/loans", h.Loans.Submit, mutating...)
	api.GET("/loans", h.Loans.List)
	api.GET("/loans/:application_id", h.Loans.Get)
	api.PUT("/loans/:application_id/status", h.Loans.UpdateStatus, mutating...)
	api.GET("/users/:user_id/loans", h.Loans.ListByUser)

	api.POST("/loans/:application_id/disbursements", h.Disbursements.Disburse, mutating...)
	api.GET("/loans/:application_id/disbursements", h.Disbursements.List)

	api.GET("/repayments/emi", h.Repayments.EMI)
	api.POST("/loans/:application_id/schedule", h.Repayments.GenerateSchedule, mutating...)
	api.GET("/loans/:application_id/installments", h.Repayments.ListInstallments)
	api.GET("/loans/:application_id/installments/pending", h.Repayments.ListPending)
	api.GET("/loans/:application_id/summary", h.Repayments.Summary)
	api.POST("/installments/:installment_id/pay", h.Repayments.Pay, mutating...)

	api.GET("/users/:user_id/notifications", h.Notifications.List)
	api.PUT("/notifications/:notification_id/read", h.Notifications.MarkRead, mutating...)
}
