package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"researchnett/internal/auth"
	"researchnett/internal/eligibility"
	apperrors "researchnett/internal/errors"
	"researchnett/internal/logger"
	"researchnett/internal/mailer"
	"researchnett/internal/model"
	"researchnett/internal/repository"
	"researchnett/internal/session"
)

const bcryptCost = 10

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 8

// Sign-up outcomes.
const (
	SignUpPending = "pending"
	SignUpActive  = "active"
)

const (
	msgSignUpRequired   = "Email, password and confirm password are required."
	msgSignInRequired   = "Email and password are required."
	msgPasswordTooShort = "Password must be at least 8 characters."
	msgPasswordReuse    = "Use at least 8 characters."
	msgPasswordMismatch = "Passwords do not match."
	msgResetNoEmail     = "Enter your email above first."
	msgResetRedirect    = "redirect_to must point at the application."
)

// SessionUser is the user part of an issued session.
type SessionUser struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Username string    `json:"username"`
}

// Session is what a successful sign-in returns.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         SessionUser `json:"user"`
}

// SignUpInput is a registration request with the profile to create later.
type SignUpInput struct {
	Email    string
	Password string
	Confirm  string
	Profile  ProfileInput
}

// SignUpResult reports whether the account still awaits email confirmation.
type SignUpResult struct {
	Status  string   `json:"status"`
	Session *Session `json:"session,omitempty"`
}

// AuthOptions configures AuthService.
type AuthOptions struct {
	AppURL                   string
	RequireEmailConfirmation bool
}

// AuthService handles authentication operations.
type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	ExchangeCode(ctx context.Context, code string) (*Session, error)
	AdoptTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, expiresAt time.Time, err error)
	RequestPasswordReset(ctx context.Context, email, redirectTo string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, password, confirm string) error
	Logout(ctx context.Context, id *session.Identity, refreshToken string) error
}

type authService struct {
	users      repository.UserRepository
	profiles   ProfileService
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	drafts     auth.DraftStoreInterface
	mail       mailer.Mailer
	filter     eligibility.Filter
	hub        *session.Hub
	opts       AuthOptions
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	profiles ProfileService,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	drafts auth.DraftStoreInterface,
	mail mailer.Mailer,
	filter eligibility.Filter,
	hub *session.Hub,
	opts AuthOptions,
) AuthService {
	return &authService{
		users:      users,
		profiles:   profiles,
		jwtService: jwtService,
		tokenStore: tokenStore,
		drafts:     drafts,
		mail:       mail,
		filter:     filter,
		hub:        hub,
		opts:       opts,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp creates an account. The profile is parked as a draft until the first
// session so it survives an email confirmation round trip.
func (s *authService) SignUp(ctx context.Context, in SignUpInput) (*SignUpResult, error) {
	email := normalizeEmail(in.Email)
	if !s.filter.Allowed(email) {
		return nil, apperrors.NewValidationError(s.filter.SignInMessage())
	}
	if in.Password == "" || in.Confirm == "" {
		return nil, apperrors.NewValidationError(msgSignUpRequired)
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperrors.NewValidationError(msgPasswordTooShort)
	}
	if in.Password != in.Confirm {
		return nil, apperrors.NewValidationError(msgPasswordMismatch)
	}
	draft, err := s.profiles.Draft(in.Profile)
	if err != nil {
		return nil, err
	}

	// Check if user already exists
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserAlreadyExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hashedPassword),
	}
	if !s.opts.RequireEmailConfirmation {
		now := time.Now().UTC()
		user.EmailConfirmedAt = &now
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", duplicate(err, apperrors.ErrUserAlreadyExists))
	}

	if err := s.drafts.Save(ctx, user.ID, draft); err != nil {
		return nil, fmt.Errorf("save profile draft: %w", err)
	}

	if s.opts.RequireEmailConfirmation {
		code, err := s.tokenStore.IssueAuthCode(ctx, auth.AuthCode{
			UserID:  user.ID,
			Email:   user.Email,
			Purpose: auth.CodePurposeSignup,
		}, auth.SignupCodeExpiry)
		if err != nil {
			return nil, fmt.Errorf("issue confirmation code: %w", err)
		}
		link := s.opts.AppURL + "/auth/callback?code=" + url.QueryEscape(code)
		if err := s.mail.Send(ctx, mailer.ConfirmationMessage(user.Email, link)); err != nil {
			logger.Error(ctx, "confirmation mail failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		}
		return &SignUpResult{Status: SignUpPending}, nil
	}

	sess, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.flushDraft(ctx, user.ID)
	return &SignUpResult{Status: SignUpActive, Session: sess}, nil
}

// Login authenticates a user and returns a session.
func (s *authService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if !s.filter.Allowed(email) {
		return nil, apperrors.NewValidationError(s.filter.SignInMessage())
	}
	if password == "" {
		return nil, apperrors.NewValidationError(msgSignInRequired)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if s.opts.RequireEmailConfirmation && !user.Confirmed() {
		return nil, apperrors.ErrEmailNotConfirmed
	}

	sess, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.flushDraft(ctx, user.ID)
	return sess, nil
}

// ExchangeCode redeems a single-use code from a confirmation or reset email.
func (s *authService) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	data, err := s.tokenStore.ConsumeAuthCode(ctx, code)
	if err != nil {
		return nil, apperrors.ErrInvalidAuthCode
	}

	user, err := s.users.FindByID(ctx, data.UserID)
	if err != nil {
		return nil, apperrors.ErrInvalidAuthCode
	}

	if data.Purpose == auth.CodePurposeSignup && !user.Confirmed() {
		if err := s.users.ConfirmEmail(ctx, user.ID, time.Now().UTC()); err != nil {
			return nil, fmt.Errorf("confirm email: %w", err)
		}
	}

	sess, err := s.issueSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.flushDraft(ctx, user.ID)
	return sess, nil
}

// AdoptTokens accepts a token pair handed over by a redirect and returns it
// as a session once both tokens check out.
func (s *authService) AdoptTokens(ctx context.Context, accessToken, refreshToken string) (*Session, error) {
	access, err := s.jwtService.ValidateTyped(accessToken, auth.TokenTypeAccess)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}
	if black, _ := s.tokenStore.IsAccessTokenBlacklisted(ctx, access.ID); black {
		return nil, apperrors.ErrUnauthorized
	}

	refresh, err := s.jwtService.ValidateTyped(refreshToken, auth.TokenTypeRefresh)
	if err != nil || refresh.UserID != access.UserID {
		return nil, apperrors.ErrInvalidRefreshToken
	}
	storedUserID, _, err := s.tokenStore.GetRefreshToken(ctx, refresh.ID)
	if err != nil || storedUserID.String() != refresh.UserID {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	user, err := s.users.FindByID(ctx, storedUserID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	s.flushDraft(ctx, user.ID)
	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    access.ExpiresAt.Time,
		User:         sessionUser(user),
	}, nil
}

// RefreshToken validates a refresh token and returns a new access token.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, time.Time, error) {
	// Validate refresh token
	claims, err := s.jwtService.ValidateTyped(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return "", time.Time{}, apperrors.ErrInvalidRefreshToken
	}

	// Verify token exists in Redis
	storedUserID, storedEmail, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil {
		return "", time.Time{}, apperrors.ErrInvalidRefreshToken
	}

	// Verify token matches stored data
	if storedUserID.String() != claims.UserID || storedEmail != claims.Email {
		return "", time.Time{}, apperrors.ErrInvalidRefreshToken
	}

	accessToken, expiresAt, err := s.jwtService.GenerateAccessToken(storedUserID, storedEmail)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, expiresAt, nil
}

// RequestPasswordReset mails a reset link. Unknown addresses get the same
// response as known ones.
func (s *authService) RequestPasswordReset(ctx context.Context, email, redirectTo string) error {
	email = normalizeEmail(email)
	if email == "" {
		return apperrors.NewValidationError(msgResetNoEmail)
	}
	if !s.filter.Allowed(email) {
		return apperrors.NewValidationError(s.filter.ResetMessage())
	}

	if redirectTo == "" {
		redirectTo = s.opts.AppURL + "/auth/update-password"
	} else if !strings.HasPrefix(redirectTo, s.opts.AppURL+"/") && redirectTo != s.opts.AppURL {
		return apperrors.NewValidationError(msgResetRedirect)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Error(ctx, "password reset lookup failed", zap.Error(err))
		}
		return nil
	}

	code, err := s.tokenStore.IssueAuthCode(ctx, auth.AuthCode{
		UserID:  user.ID,
		Email:   user.Email,
		Purpose: auth.CodePurposeRecovery,
	}, auth.RecoveryCodeExpiry)
	if err != nil {
		return fmt.Errorf("issue reset code: %w", err)
	}

	sep := "?"
	if strings.Contains(redirectTo, "?") {
		sep = "&"
	}
	link := redirectTo + sep + "code=" + url.QueryEscape(code)
	if err := s.mail.Send(ctx, mailer.ResetMessage(user.Email, link)); err != nil {
		logger.Error(ctx, "reset mail failed", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	return nil
}

// UpdatePassword sets a new password for an authenticated user.
func (s *authService) UpdatePassword(ctx context.Context, userID uuid.UUID, password, confirm string) error {
	if len(password) < MinPasswordLength {
		return apperrors.NewValidationError(msgPasswordReuse)
	}
	if password != confirm {
		return apperrors.NewValidationError(msgPasswordMismatch)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, userID, string(hashedPassword)); err != nil {
		return notFound(err)
	}

	s.hub.Publish(session.Event{Kind: session.EventPasswordChanged, UserID: userID})
	return nil
}

// Logout invalidates the refresh token and blacklists the current access token.
func (s *authService) Logout(ctx context.Context, id *session.Identity, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	storedUserID, _, err := s.tokenStore.GetRefreshToken(ctx, tokenID)
	if err == nil && storedUserID != id.UserID {
		return apperrors.ErrInvalidRefreshToken
	}

	if err := s.tokenStore.DeleteRefreshToken(ctx, tokenID); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	if id.TokenID != "" {
		if err := s.tokenStore.BlacklistAccessToken(ctx, id.TokenID, auth.AccessTokenExpiry); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}

	s.hub.Publish(session.Event{Kind: session.EventSignedOut, UserID: id.UserID})
	return nil
}

func (s *authService) issueSession(ctx context.Context, user *model.User) (*Session, error) {
	pair, err := s.jwtService.GeneratePair(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate tokens: %w", err)
	}

	// Store refresh token in Redis
	if err := s.tokenStore.StoreRefreshToken(ctx, pair.RefreshID, user.ID, user.Email, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.hub.Publish(session.Event{Kind: session.EventSignedIn, UserID: user.ID})
	return &Session{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
		User:         sessionUser(user),
	}, nil
}

// flushDraft never fails the sign-in it runs in.
func (s *authService) flushDraft(ctx context.Context, userID uuid.UUID) {
	if _, err := s.profiles.FlushDraft(ctx, userID); err != nil {
		logger.Warn(ctx, "profile draft flush failed", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func sessionUser(u *model.User) SessionUser {
	return SessionUser{ID: u.ID, Email: u.Email, Username: eligibility.Username(u.Email)}
}
