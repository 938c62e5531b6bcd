package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/notify"
	"researchnett/internal/service"
)

// ClientIDHeader names the device whose "last seen" cursor is used.
const ClientIDHeader = "X-Client-ID"

// NotificationHandler reports interest on the caller's calls.
type NotificationHandler struct {
	svc service.NotificationService
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(svc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func clientID(c echo.Context) string {
	if v := c.Request().Header.Get(ClientIDHeader); v != "" {
		return v
	}
	return notify.DefaultClient
}

// List godoc
// @Summary Interest on own calls
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.InterestNotification
// @Failure 401 {object} errors.ErrorResponse
// @Router /notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Summary godoc
// @Summary Unseen interest count
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param X-Client-ID header string false "Client whose cursor is used"
// @Success 200 {object} notify.Result
// @Failure 401 {object} errors.ErrorResponse
// @Router /notifications/summary [get]
func (h *NotificationHandler) Summary(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	res, err := h.svc.Summary(c.Request().Context(), id.UserID, clientID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Seen godoc
// @Summary Mark notifications as seen
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Param X-Client-ID header string false "Client whose cursor is moved"
// @Success 200 {object} notify.Result
// @Failure 401 {object} errors.ErrorResponse
// @Router /notifications/seen [post]
func (h *NotificationHandler) Seen(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	res, err := h.svc.MarkSeen(c.Request().Context(), id.UserID, clientID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
