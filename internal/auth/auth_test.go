package auth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchnett/internal/cache"
	"researchnett/internal/model"
)

func newCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestJWTService_PairRoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret")
	userID := uuid.New()

	pair, err := svc.GeneratePair(userID, "a.b@nitt.edu")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.RefreshID)

	access, err := svc.ValidateTyped(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	got, err := access.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.NotEmpty(t, access.ID)

	tokenID, err := svc.ExtractTokenID(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshID, tokenID)
}

func TestJWTService_RejectsWrongTypeAndSecret(t *testing.T) {
	svc := NewJWTService("test-secret")
	pair, err := svc.GeneratePair(uuid.New(), "x@nitt.edu")
	require.NoError(t, err)

	_, err = svc.ValidateTyped(pair.RefreshToken, TokenTypeAccess)
	assert.Error(t, err)
	_, err = svc.ExtractTokenID(pair.AccessToken)
	assert.Error(t, err)

	other := NewJWTService("other-secret")
	_, err = other.ValidateToken(pair.AccessToken)
	assert.Error(t, err)
}

func TestTokenStore_RefreshAndBlacklist(t *testing.T) {
	c, mr := newCache(t)
	store := NewTokenStore(c)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, store.StoreRefreshToken(ctx, "jti-1", userID, "a@nitt.edu", time.Hour))
	gotID, gotEmail, err := store.GetRefreshToken(ctx, "jti-1")
	require.NoError(t, err)
	assert.Equal(t, userID, gotID)
	assert.Equal(t, "a@nitt.edu", gotEmail)

	require.NoError(t, store.DeleteRefreshToken(ctx, "jti-1"))
	_, _, err = store.GetRefreshToken(ctx, "jti-1")
	assert.Error(t, err)

	require.NoError(t, store.BlacklistAccessToken(ctx, "acc-1", time.Minute))
	black, err := store.IsAccessTokenBlacklisted(ctx, "acc-1")
	require.NoError(t, err)
	assert.True(t, black)

	mr.FastForward(2 * time.Minute)
	black, _ = store.IsAccessTokenBlacklisted(ctx, "acc-1")
	assert.False(t, black)
}

func TestTokenStore_AuthCodeSingleUse(t *testing.T) {
	c, _ := newCache(t)
	store := NewTokenStore(c)
	ctx := context.Background()
	want := AuthCode{UserID: uuid.New(), Email: "a@nitt.edu", Purpose: CodePurposeRecovery}

	code, err := store.IssueAuthCode(ctx, want, time.Hour)
	require.NoError(t, err)

	got, err := store.ConsumeAuthCode(ctx, code)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	_, err = store.ConsumeAuthCode(ctx, code)
	assert.Error(t, err)
}

func TestDraftStore(t *testing.T) {
	c, mr := newCache(t)
	drafts := NewDraftStore(c)
	ctx := context.Background()
	userID := uuid.New()

	empty, err := drafts.Load(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, empty)

	scholar := "https://scholar.example/u"
	want := model.ProfileDraft{FullName: "A B", Department: "CSE", InstituteURL: "https://nitt.edu/ab", ScholarURL: &scholar}
	require.NoError(t, drafts.Save(ctx, userID, want))

	got, err := drafts.Load(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, want, *got)

	require.NoError(t, drafts.Clear(ctx, userID))
	got, err = drafts.Load(ctx, userID)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, mr.Set(pendingProfileKeyPrefix+userID.String(), "{not json"))
	_, err = drafts.Load(ctx, userID)
	assert.ErrorIs(t, err, ErrMalformedDraft)
}
