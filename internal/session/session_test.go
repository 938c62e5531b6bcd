package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"researchnett/internal/auth"
	"researchnett/internal/cache"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("github.com/alicebob/miniredis/v2/server.(*Server).servePeer"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}

type mockAdmins struct {
	mock.Mock
}

func (m *mockAdmins) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func newCache(t *testing.T) *cache.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestIdentityContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	id := &Identity{UserID: uuid.New(), Email: "r.kumar@nitt.edu"}
	got, ok := FromContext(WithIdentity(context.Background(), id))
	require.True(t, ok)
	assert.Same(t, id, got)
	assert.Equal(t, "r.kumar", got.Username())
}

func TestHub_PublishSubscribeClose(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe()
	b, _ := hub.Subscribe()

	user := uuid.New()
	assert.Equal(t, 2, hub.Publish(Event{Kind: EventSignedIn, UserID: user}))

	evA := <-a
	evB := <-b
	assert.Equal(t, EventSignedIn, evA.Kind)
	assert.Equal(t, user, evB.UserID)
	assert.False(t, evA.At.IsZero())

	cancelA()
	cancelA()
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, hub.Publish(Event{Kind: EventSignedOut, UserID: user}))

	hub.Close()
	hub.Close()
	<-b
	_, open = <-b
	assert.False(t, open)
	assert.Equal(t, 0, hub.Publish(Event{Kind: EventSignedOut, UserID: user}))

	late, _ := hub.Subscribe()
	_, open = <-late
	assert.False(t, open)
}

func TestHub_FullSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	_, _ = hub.Subscribe()

	for i := 0; i < subscriberBuffer; i++ {
		require.Equal(t, 1, hub.Publish(Event{Kind: EventSignedIn}))
	}
	assert.Equal(t, 0, hub.Publish(Event{Kind: EventSignedIn}))
}

func TestResolver_CachesAdminFlag(t *testing.T) {
	admins := new(mockAdmins)
	user := uuid.New()
	admins.On("IsAdmin", mock.Anything, user).Return(true, nil).Once()

	r := NewResolver(admins, newCache(t))
	claims := &auth.Claims{UserID: user.String(), Email: "a@nitt.edu"}
	claims.ID = "jti-1"

	for i := 0; i < 3; i++ {
		id, err := r.Resolve(context.Background(), claims)
		require.NoError(t, err)
		assert.True(t, id.IsAdmin)
		assert.Equal(t, "jti-1", id.TokenID)
	}
	admins.AssertExpectations(t)
}

func TestResolver_Errors(t *testing.T) {
	admins := new(mockAdmins)
	r := NewResolver(admins, newCache(t))

	_, err := r.Resolve(context.Background(), &auth.Claims{UserID: "not-a-uuid"})
	assert.Error(t, err)

	user := uuid.New()
	admins.On("IsAdmin", mock.Anything, user).Return(false, errors.New("db down"))
	_, err = r.Resolve(context.Background(), &auth.Claims{UserID: user.String()})
	assert.Error(t, err)
}

func TestResolver_WatchInvalidatesOnEvents(t *testing.T) {
	admins := new(mockAdmins)
	user := uuid.New()
	admins.On("IsAdmin", mock.Anything, user).Return(false, nil).Once()
	admins.On("IsAdmin", mock.Anything, user).Return(true, nil).Once()

	r := NewResolver(admins, newCache(t))
	hub := NewHub()
	done := r.Watch(hub)

	claims := &auth.Claims{UserID: user.String()}
	id, err := r.Resolve(context.Background(), claims)
	require.NoError(t, err)
	assert.False(t, id.IsAdmin)

	hub.Publish(Event{Kind: EventAdminChanged, UserID: user})

	assert.Eventually(t, func() bool {
		id, err := r.Resolve(context.Background(), claims)
		return err == nil && id.IsAdmin
	}, time.Second, 10*time.Millisecond)

	hub.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not exit after hub close")
	}
	admins.AssertExpectations(t)
}
