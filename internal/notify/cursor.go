package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"researchnett/internal/cache"
)

const cursorKeyPrefix = "notif_last_seen:"

// DefaultClient is used when the caller does not identify its client.
const DefaultClient = "default"

// CursorStore persists the last-seen cursor per (user, client).
type CursorStore interface {
	LastSeen(ctx context.Context, userID uuid.UUID, clientID string) (*time.Time, error)
	MarkSeen(ctx context.Context, userID uuid.UUID, clientID string, at time.Time) (time.Time, error)
}

// RedisCursorStore keeps cursors in redis without expiry.
type RedisCursorStore struct {
	cache *cache.Client
}

var _ CursorStore = (*RedisCursorStore)(nil)

// NewCursorStore creates a redis-backed cursor store.
func NewCursorStore(c *cache.Client) *RedisCursorStore {
	return &RedisCursorStore{cache: c}
}

func cursorKey(userID uuid.UUID, clientID string) string {
	if clientID == "" {
		clientID = DefaultClient
	}
	return fmt.Sprintf("%s%s:%s", cursorKeyPrefix, userID, clientID)
}

// LastSeen returns the stored cursor, or nil when none exists or the stored
// value cannot be parsed.
func (s *RedisCursorStore) LastSeen(ctx context.Context, userID uuid.UUID, clientID string) (*time.Time, error) {
	raw, err := s.cache.Get(ctx, cursorKey(userID, clientID))
	if err != nil || raw == nil {
		return nil, err
	}
	at, err := time.Parse(time.RFC3339Nano, string(raw))
	if err != nil {
		return nil, nil
	}
	return &at, nil
}

// MarkSeen moves the cursor to at, truncated to the millisecond precision
// event timestamps are stored with. The cursor never moves backwards; the
// effective cursor is returned.
func (s *RedisCursorStore) MarkSeen(ctx context.Context, userID uuid.UUID, clientID string, at time.Time) (time.Time, error) {
	at = at.UTC().Truncate(Precision)
	prev, err := s.LastSeen(ctx, userID, clientID)
	if err != nil {
		return time.Time{}, err
	}
	if prev != nil && prev.After(at) {
		return *prev, nil
	}
	if err := s.cache.Set(ctx, cursorKey(userID, clientID), []byte(at.Format(time.RFC3339Nano)), 0); err != nil {
		return time.Time{}, err
	}
	return at, nil
}
