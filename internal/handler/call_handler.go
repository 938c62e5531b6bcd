package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"researchnett/internal/model"
	"researchnett/internal/service"
)

// CallHandler handles collaboration calls and engagement on them.
type CallHandler struct {
	calls      service.CallService
	engagement service.EngagementService
}

// NewCallHandler creates a new call handler.
func NewCallHandler(calls service.CallService, engagement service.EngagementService) *CallHandler {
	return &CallHandler{calls: calls, engagement: engagement}
}

// CallRequest represents a new or edited call. Keywords and links may be
// sent as an array or as one comma separated string.
type CallRequest struct {
	Title            string   `json:"title" validate:"max=255"`
	Summary          string   `json:"summary" validate:"max=10000"`
	CollaborationFor string   `json:"collaboration_for" validate:"omitempty,oneof=proposal research exploration others"`
	Keywords         FlexList `json:"keywords" swaggertype:"array,string"`
	Links            FlexList `json:"links" swaggertype:"array,string"`
}

func (r CallRequest) input() service.CallInput {
	return service.CallInput{
		Title:            r.Title,
		Summary:          r.Summary,
		CollaborationFor: model.CallCategory(r.CollaborationFor),
		Keywords:         r.Keywords,
		Links:            r.Links,
	}
}

// List godoc
// @Summary Search calls
// @Description Calls whose keywords overlap the comma separated query, newest first. An empty query lists everything.
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param q query string false "Keywords"
// @Success 200 {array} service.CallView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /calls [get]
func (h *CallHandler) List(c echo.Context) error {
	calls, err := h.calls.Search(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, calls)
}

// Create godoc
// @Summary Post a call
// @Tags calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CallRequest true "Call data"
// @Success 201 {object} service.CallWriteResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /calls [post]
func (h *CallHandler) Create(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req CallRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.calls.Create(c.Request().Context(), id.UserID, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Get godoc
// @Summary Get a call
// @Tags calls
// @Produce json
// @Security BearerAuth
// @Param id path string true "Call ID"
// @Success 200 {object} service.CallDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /calls/{id} [get]
func (h *CallHandler) Get(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	callID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	detail, err := h.calls.Get(c.Request().Context(), id.UserID, callID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Update godoc
// @Summary Edit own call
// @Tags calls
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Call ID"
// @Param request body CallRequest true "Call data"
// @Success 200 {object} service.CallWriteResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /calls/{id} [put]
func (h *CallHandler) Update(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	callID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}
	var req CallRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	res, err := h.calls.Update(c.Request().Context(), id.UserID, callID, req.input())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Delete godoc
// @Summary Delete own call
// @Tags calls
// @Security BearerAuth
// @Param id path string true "Call ID"
// @Success 204
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /calls/{id} [delete]
func (h *CallHandler) Delete(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	callID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	if err := h.calls.Delete(c.Request().Context(), id.UserID, callID); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Interest godoc
// @Summary Express interest in a call
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path string true "Call ID"
// @Success 201 {object} model.Interest
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /calls/{id}/interest [post]
func (h *CallHandler) Interest(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	callID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	interest, err := h.engagement.ExpressInterest(c.Request().Context(), id.UserID, callID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, interest)
}

// Bookmark godoc
// @Summary Bookmark a call to revisit
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Param id path string true "Call ID"
// @Success 201 {object} model.Bookmark
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /calls/{id}/bookmark [post]
func (h *CallHandler) Bookmark(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	callID, err := uuidParam(c, "id")
	if err != nil {
		return err
	}

	bookmark, err := h.engagement.Bookmark(c.Request().Context(), id.UserID, callID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, bookmark)
}

// History godoc
// @Summary Own interests and bookmarks
// @Tags engagement
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.History
// @Failure 401 {object} errors.ErrorResponse
// @Router /history [get]
func (h *CallHandler) History(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	history, err := h.engagement.History(c.Request().Context(), id.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, history)
}
