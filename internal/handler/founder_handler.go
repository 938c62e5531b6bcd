package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/model"
	"researchnett/internal/service"
)

// FounderHandler handles founding-member requests.
type FounderHandler struct {
	svc service.FounderService
}

// NewFounderHandler creates a new founder handler.
func NewFounderHandler(svc service.FounderService) *FounderHandler {
	return &FounderHandler{svc: svc}
}

// Submit godoc
// @Summary Request founding-member status
// @Tags founders
// @Produce json
// @Security BearerAuth
// @Success 201 {object} model.FoundingMemberRequest
// @Failure 409 {object} errors.ErrorResponse
// @Router /founders [post]
func (h *FounderHandler) Submit(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	req, err := h.svc.Submit(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, req)
}

// Mine godoc
// @Summary Own founding-member request
// @Tags founders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.FoundingMemberRequest
// @Failure 404 {object} errors.ErrorResponse
// @Router /founders/me [get]
func (h *FounderHandler) Mine(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	req, err := h.svc.Mine(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// List godoc
// @Summary List founding-member requests
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} model.FoundingMemberRequest
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/founders [get]
func (h *FounderHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), id, model.FounderStatus(c.QueryParam("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Approve godoc
// @Summary Approve a pending request
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} model.FoundingMemberRequest
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/founders/{id}/approve [post]
func (h *FounderHandler) Approve(c echo.Context) error {
	return h.decide(c, model.FounderStatusApproved)
}

// Reject godoc
// @Summary Reject a pending request
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} model.FoundingMemberRequest
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /admin/founders/{id}/reject [post]
func (h *FounderHandler) Reject(c echo.Context) error {
	return h.decide(c, model.FounderStatusRejected)
}

func (h *FounderHandler) decide(c echo.Context, decision model.FounderStatus) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	requestID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	req, err := h.svc.Decide(c.Request().Context(), id, requestID, decision)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, req)
}

// Remove godoc
// @Summary Delete a founding-member request
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/founders/{id} [delete]
func (h *FounderHandler) Remove(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	requestID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Remove(c.Request().Context(), id, requestID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
