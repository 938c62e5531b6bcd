package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/service"
)

// AdHandler handles short "what I need" postings.
type AdHandler struct {
	svc service.AdService
}

// NewAdHandler creates a new ad handler.
func NewAdHandler(svc service.AdService) *AdHandler {
	return &AdHandler{svc: svc}
}

// AdRequest represents a new ad.
type AdRequest struct {
	Title   string `json:"title" validate:"max=255"`
	Summary string `json:"summary" validate:"max=10000"`
}

// List godoc
// @Summary List ads
// @Tags ads
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.AdView
// @Router /ads [get]
func (h *AdHandler) List(c echo.Context) error {
	ads, err := h.svc.List(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ads)
}

// Create godoc
// @Summary Post an ad
// @Tags ads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AdRequest true "Ad data"
// @Success 201 {object} model.Ad
// @Failure 400 {object} errors.ErrorResponse
// @Router /ads [post]
func (h *AdHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req AdRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ad, err := h.svc.Create(c.Request().Context(), id.UserID, req.Title, req.Summary)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, ad)
}
