package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/service"
)

// AdminHandler serves the admin landing page.
type AdminHandler struct {
	svc service.AdminService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(svc service.AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Dashboard godoc
// @Summary Admin dashboard counts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Dashboard
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	d, err := h.svc.Dashboard(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, d)
}
