package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"researchnett/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUpRequest represents a registration with the profile to create.
type SignUpRequest struct {
	Email        string  `json:"email" validate:"max=255"`
	Password     string  `json:"password" validate:"max=72"`
	Confirm      string  `json:"confirm" validate:"max=72"`
	FullName     string  `json:"full_name" validate:"max=255"`
	Department   string  `json:"department" validate:"max=255"`
	InstituteURL string  `json:"institute_url" validate:"max=1024"`
	ScholarURL   *string `json:"scholar_url,omitempty" validate:"omitempty,max=1024"`
	Overview     *string `json:"overview,omitempty"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"max=255"`
	Password string `json:"password" validate:"max=72"`
}

// CallbackRequest carries either a single-use code or a token pair handed
// over by a redirect.
type CallbackRequest struct {
	Code         string `json:"code"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RefreshRequest represents a token refresh request.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshResponse carries a fresh access token.
type RefreshResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// PasswordResetRequest asks for a reset link.
type PasswordResetRequest struct {
	Email      string `json:"email" validate:"max=255"`
	RedirectTo string `json:"redirect_to" validate:"omitempty,url"`
}

// UpdatePasswordRequest sets a new password for the caller.
type UpdatePasswordRequest struct {
	Password string `json:"password" validate:"max=72"`
	Confirm  string `json:"confirm" validate:"max=72"`
}

// LogoutRequest represents a logout request.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// MeResponse describes the caller.
type MeResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// SignUp godoc
// @Summary Register a new account
// @Description Stores the profile as a draft until the first session. When email confirmation is required a link is mailed and status is "pending".
// @Tags auth
// @Accept json
// @Produce json
// @Param request body SignUpRequest true "Registration data"
// @Success 201 {object} service.SignUpResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/signup [post]
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req SignUpRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	result, err := h.authService.SignUp(c.Request().Context(), service.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Confirm:  req.Confirm,
		Profile: service.ProfileInput{
			FullName:     req.FullName,
			Department:   req.Department,
			InstituteURL: req.InstituteURL,
			ScholarURL:   req.ScholarURL,
			Overview:     req.Overview,
		},
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	sess, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Callback godoc
// @Summary Complete an email link
// @Description Accepts the code from a confirmation or reset email, or an access/refresh token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CallbackRequest true "Code or token pair"
// @Success 200 {object} service.Session
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/callback [post]
func (h *AuthHandler) Callback(c echo.Context) error {
	var req CallbackRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	var (
		sess *service.Session
		err  error
	)
	switch {
	case req.Code != "":
		sess, err = h.authService.ExchangeCode(ctx, req.Code)
	case req.AccessToken != "" && req.RefreshToken != "":
		sess, err = h.authService.AdoptTokens(ctx, req.AccessToken, req.RefreshToken)
	default:
		return badRequest("code or access_token and refresh_token are required")
	}
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

// Refresh godoc
// @Summary Refresh access token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshRequest true "Refresh token"
// @Success 200 {object} RefreshResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req RefreshRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	accessToken, expiresAt, err := h.authService.RefreshToken(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, RefreshResponse{AccessToken: accessToken, ExpiresAt: expiresAt})
}

// PasswordReset godoc
// @Summary Request a password reset link
// @Tags auth
// @Accept json
// @Produce json
// @Param request body PasswordResetRequest true "Email and optional redirect"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/password-reset [post]
func (h *AuthHandler) PasswordReset(c echo.Context) error {
	var req PasswordResetRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.RequestPasswordReset(c.Request().Context(), req.Email, req.RedirectTo); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Check your email for the reset link."})
}

// UpdatePassword godoc
// @Summary Set a new password
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdatePasswordRequest true "New password"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/password [post]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req UpdatePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.UpdatePassword(c.Request().Context(), id.UserID, req.Password, req.Confirm); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Password updated."})
}

// Logout godoc
// @Summary Logout user
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body LogoutRequest true "Refresh token"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	var req LogoutRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.authService.Logout(c.Request().Context(), id, req.RefreshToken); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "logged out successfully"})
}

// Me godoc
// @Summary Current identity
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := caller(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, MeResponse{
		UserID:   id.UserID.String(),
		Email:    id.Email,
		Username: id.Username(),
		IsAdmin:  id.IsAdmin,
	})
}
