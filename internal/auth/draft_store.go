package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"researchnett/internal/cache"
	"researchnett/internal/model"
)

const pendingProfileKeyPrefix = "pending_profile:"

// DraftTTL bounds how long an unconfirmed sign-up keeps its profile draft.
const DraftTTL = 30 * 24 * time.Hour

// ErrMalformedDraft is returned when a stored draft cannot be decoded.
var ErrMalformedDraft = fmt.Errorf("malformed profile draft")

// DraftStoreInterface parks the sign-up profile until the first session.
type DraftStoreInterface interface {
	Save(ctx context.Context, userID uuid.UUID, draft model.ProfileDraft) error
	Load(ctx context.Context, userID uuid.UUID) (*model.ProfileDraft, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// DraftStore is the single pending-profile slot per user, kept in redis.
type DraftStore struct {
	cache *cache.Client
}

var _ DraftStoreInterface = (*DraftStore)(nil)

// NewDraftStore creates a draft store.
func NewDraftStore(c *cache.Client) *DraftStore {
	return &DraftStore{cache: c}
}

// Save overwrites the user's slot.
func (s *DraftStore) Save(ctx context.Context, userID uuid.UUID, draft model.ProfileDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	return s.cache.Set(ctx, pendingProfileKeyPrefix+userID.String(), payload, DraftTTL)
}

// Load returns the draft, nil when the slot is empty, or ErrMalformedDraft.
func (s *DraftStore) Load(ctx context.Context, userID uuid.UUID) (*model.ProfileDraft, error) {
	raw, err := s.cache.Get(ctx, pendingProfileKeyPrefix+userID.String())
	if err != nil || raw == nil {
		return nil, err
	}
	var draft model.ProfileDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, ErrMalformedDraft
	}
	return &draft, nil
}

// Clear empties the slot.
func (s *DraftStore) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cache.Delete(ctx, pendingProfileKeyPrefix+userID.String())
}
