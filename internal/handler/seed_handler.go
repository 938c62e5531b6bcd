package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/errors"
	"researchnett/internal/service"
)

// SeedHandler handles seed data endpoints.
type SeedHandler struct {
	seedService service.SeedService
}

// NewSeedHandler creates a new seed handler.
func NewSeedHandler(seedService service.SeedService) *SeedHandler {
	return &SeedHandler{seedService: seedService}
}

// SeedRequest carries demo data inline or a URL to fetch it from.
type SeedRequest struct {
	Source string             `json:"source" validate:"omitempty,http_url"`
	Users  []service.SeedUser `json:"users"`
}

// Seed godoc
// @Summary Load demo users, profiles and calls
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SeedRequest true "Inline users or a source URL"
// @Success 200 {object} service.SeedReport
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/seed [post]
func (h *SeedHandler) Seed(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	if !id.IsAdmin {
		return fail(c, errors.ErrForbidden)
	}
	var req SeedRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	doc := &service.SeedDocument{Users: req.Users}
	if req.Source != "" {
		doc, err = service.LoadSeedDocument(ctx, req.Source)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
				Error: err.Error(),
				Code:  "SEED_SOURCE_FAILED",
			})
		}
	}

	report, err := h.seedService.Seed(ctx, doc)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
