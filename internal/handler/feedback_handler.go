package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/model"
	"researchnett/internal/service"
)

// FeedbackHandler collects bug reports and suggestions.
type FeedbackHandler struct {
	svc service.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler.
func NewFeedbackHandler(svc service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

// FeedbackRequest represents a feedback submission.
type FeedbackRequest struct {
	Kind     string `json:"kind" validate:"omitempty,oneof=bug suggestion"`
	Message  string `json:"message" validate:"max=5000"`
	PagePath string `json:"page_path" validate:"max=1024"`
}

// Submit godoc
// @Summary Send feedback
// @Tags feedback
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FeedbackRequest true "Feedback"
// @Success 201 {object} model.Feedback
// @Failure 400 {object} errors.ErrorResponse
// @Router /feedback [post]
func (h *FeedbackHandler) Submit(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req FeedbackRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	fb, err := h.svc.Submit(c.Request().Context(), id, model.FeedbackKind(req.Kind), req.Message, req.PagePath)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, fb)
}

// List godoc
// @Summary List feedback
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Feedback
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/feedback [get]
func (h *FeedbackHandler) List(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	items, err := h.svc.List(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Delete godoc
// @Summary Delete feedback
// @Tags admin
// @Security BearerAuth
// @Param id path string true "Feedback ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/feedback/{id} [delete]
func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	feedbackID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id, feedbackID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
