package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"researchnett/internal/cache"
)

const (
	refreshTokenKeyPrefix = "refresh_token:"
	accessTokenKeyPrefix  = "blacklist:access_token:"
	authCodeKeyPrefix     = "auth_code:"
)

// Auth code purposes.
const (
	CodePurposeSignup   = "signup"
	CodePurposeRecovery = "recovery"
)

const (
	// SignupCodeExpiry bounds how long an email confirmation link works.
	SignupCodeExpiry = 24 * time.Hour
	// RecoveryCodeExpiry bounds how long a password reset link works.
	RecoveryCodeExpiry = time.Hour
)

// AuthCode is what a single-use code mailed to the user resolves to.
type AuthCode struct {
	UserID  uuid.UUID `json:"user_id"`
	Email   string    `json:"email"`
	Purpose string    `json:"purpose"`
}

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uuid.UUID, email string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error)
	IssueAuthCode(ctx context.Context, code AuthCode, ttl time.Duration) (string, error)
	ConsumeAuthCode(ctx context.Context, code string) (*AuthCode, error)
}

// TokenStore handles storage and retrieval of tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

type refreshTokenData struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenData{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}

	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, payload, ttl)
}

// GetRefreshToken retrieves refresh token data from Redis.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	key := refreshTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return uuid.Nil, "", fmt.Errorf("refresh token not found")
	}

	var tokenData refreshTokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return uuid.Nil, "", fmt.Errorf("unmarshal token data: %w", err)
	}
	if tokenData.UserID == uuid.Nil {
		return uuid.Nil, "", fmt.Errorf("invalid user_id in token data")
	}

	return tokenData.UserID, tokenData.Email, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	key := refreshTokenKeyPrefix + tokenID
	return s.cache.Delete(ctx, key)
}

// BlacklistAccessToken adds an access token to the blacklist until it expires.
func (s *TokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	key := accessTokenKeyPrefix + tokenID
	return s.cache.Set(ctx, key, []byte("1"), ttl)
}

// IsAccessTokenBlacklisted checks if an access token is blacklisted.
func (s *TokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	key := accessTokenKeyPrefix + tokenID
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return false, nil // Not blacklisted if error (fail safe)
	}
	return data != nil, nil
}

// IssueAuthCode stores code data under a fresh random code and returns it.
func (s *TokenStore) IssueAuthCode(ctx context.Context, code AuthCode, ttl time.Duration) (string, error) {
	payload, err := json.Marshal(code)
	if err != nil {
		return "", fmt.Errorf("marshal auth code: %w", err)
	}
	value := uuid.NewString()
	if err := s.cache.Set(ctx, authCodeKeyPrefix+value, payload, ttl); err != nil {
		return "", err
	}
	return value, nil
}

// ConsumeAuthCode resolves a code and removes it so it cannot be replayed.
func (s *TokenStore) ConsumeAuthCode(ctx context.Context, code string) (*AuthCode, error) {
	data, err := s.cache.Take(ctx, authCodeKeyPrefix+code)
	if err != nil || data == nil {
		return nil, fmt.Errorf("auth code not found")
	}
	var out AuthCode
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal auth code: %w", err)
	}
	return &out, nil
}
