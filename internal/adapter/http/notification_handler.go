package http

import (
	"net/http"

	"loanledger/internal/usecase/notification"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct{ uc *notification.Usecase }

func NewNotificationHandler(uc *notification.Usecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

func (h *NotificationHandler) List(c echo.Context) error {
	out, err := h.uc.List(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	var notificationID uint64
	if err := echo.PathParamsBinder(c).MustUint64("notification_id", &notificationID).BindError(); err != nil {
		return badRequest(c, "notification_id must be a positive integer")
	}
	out, err := h.uc.MarkRead(c.Request().Context(), notificationID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
