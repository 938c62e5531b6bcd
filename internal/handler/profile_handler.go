package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/service"
)

// ProfileHandler serves member profiles.
type ProfileHandler struct {
	svc service.ProfileService
}

// NewProfileHandler creates a handler layer.
func NewProfileHandler(svc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// ProfileRequest is the editable part of a profile.
type ProfileRequest struct {
	FullName     string  `json:"full_name" validate:"max=255"`
	Department   string  `json:"department" validate:"max=255"`
	InstituteURL string  `json:"institute_url" validate:"max=1024"`
	ScholarURL   *string `json:"scholar_url,omitempty" validate:"omitempty,max=1024"`
	Overview     *string `json:"overview,omitempty"`
}

// GetMine godoc
// @Summary Get own profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Profile
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMine(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// SaveMine godoc
// @Summary Create or update own profile
// @Tags profiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param profile body ProfileRequest true "Profile payload"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /profiles/me [put]
func (h *ProfileHandler) SaveMine(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req ProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	p, err := h.svc.Save(c.Request().Context(), id.UserID, service.ProfileInput{
		FullName:     req.FullName,
		Department:   req.Department,
		InstituteURL: req.InstituteURL,
		ScholarURL:   req.ScholarURL,
		Overview:     req.Overview,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Get godoc
// @Summary Get a member's profile
// @Tags profiles
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} model.Profile
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /profiles/{user_id} [get]
func (h *ProfileHandler) Get(c echo.Context) error {
	userID, err := uuidParam(c, "user_id")
	if err != nil {
		return err
	}
	p, err := h.svc.Get(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
