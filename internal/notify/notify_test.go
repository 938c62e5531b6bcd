package notify

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
)

func TestDiff(t *testing.T) {
	t0 := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("counts only strictly newer events", func(t *testing.T) {
		got := Diff(&t0, []time.Time{t0.Add(time.Second), t0.Add(-time.Second), t0})
		assert.Equal(t, Result{Unseen: 1, ShowToast: true}, got)
	})

	t.Run("compares at millisecond precision", func(t *testing.T) {
		cursor := t0.Add(5*time.Millisecond + 400*time.Microsecond)
		got := Diff(&cursor, []time.Time{
			t0.Add(5*time.Millisecond + 100*time.Microsecond), // same millisecond, before
			t0.Add(5 * time.Millisecond),                      // as read back from datetime(3)
			t0.Add(6 * time.Millisecond),
		})
		assert.Equal(t, Result{Unseen: 1, ShowToast: true}, got)
	})

	t.Run("no cursor means everything is unseen", func(t *testing.T) {
		got := Diff(nil, []time.Time{t0, t0, t0})
		assert.Equal(t, Result{Unseen: 3, ShowToast: true}, got)
	})

	t.Run("no events", func(t *testing.T) {
		assert.Equal(t, Result{}, Diff(nil, nil))
		assert.Equal(t, Result{}, Diff(&t0, nil))
	})
}

func newStore(t *testing.T) (*RedisCursorStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })
	return NewCursorStore(c), mr
}

func TestCursorStore_MarkSeenThenDiff(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	user := uuid.New()

	events := []time.Time{time.Now().Add(-time.Hour), time.Now().Add(-time.Minute)}

	last, err := store.LastSeen(ctx, user, "")
	require.NoError(t, err)
	assert.Nil(t, last)
	assert.Equal(t, 2, Diff(last, events).Unseen)

	_, err = store.MarkSeen(ctx, user, "", time.Now())
	require.NoError(t, err)

	last, err = store.LastSeen(ctx, user, DefaultClient)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, Result{}, Diff(last, events))
}

func TestCursorStore_NeverMovesBackwards(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	user := uuid.New()
	now := time.Now().UTC().Truncate(time.Millisecond)

	_, err := store.MarkSeen(ctx, user, "laptop", now)
	require.NoError(t, err)

	effective, err := store.MarkSeen(ctx, user, "laptop", now.Add(-time.Hour))
	require.NoError(t, err)
	assert.True(t, effective.Equal(now))
}

func TestCursorStore_MillisecondPrecision(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	user := uuid.New()

	seenAt := time.Date(2026, 3, 1, 10, 0, 0, 5_400_000, time.UTC)
	effective, err := store.MarkSeen(ctx, user, "", seenAt)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 5_000_000, time.UTC), effective)

	last, err := store.LastSeen(ctx, user, "")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, last.Equal(effective))

	// The first event of the next millisecond is stored as 10:00:00.006 on
	// MySQL and is unseen against the stored cursor.
	next := time.Date(2026, 3, 1, 10, 0, 0, 6_000_000, time.UTC)
	assert.Equal(t, 1, Diff(last, []time.Time{next}).Unseen)
}

func TestCursorStore_ClientsAreIndependent(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()
	user := uuid.New()

	_, err := store.MarkSeen(ctx, user, "laptop", time.Now())
	require.NoError(t, err)

	phone, err := store.LastSeen(ctx, user, "phone")
	require.NoError(t, err)
	assert.Nil(t, phone)
}

func TestCursorStore_MalformedValueIsAbsent(t *testing.T) {
	store, mr := newStore(t)
	user := uuid.New()
	require.NoError(t, mr.Set(cursorKey(user, "x"), "yesterday-ish"))

	last, err := store.LastSeen(context.Background(), user, "x")
	require.NoError(t, err)
	assert.Nil(t, last)
}
