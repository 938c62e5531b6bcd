package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"researchnett/internal/auth"
	"researchnett/internal/cache"
	apperrors "researchnett/internal/errors"
	"researchnett/internal/links"
	"researchnett/internal/logger"
	"researchnett/internal/model"
	"researchnett/internal/repository"
	"researchnett/internal/sanitize"
)

const profileCacheTTL = 5 * time.Minute

const msgProfileRequired = "Full Name, Department, and Institute webpage are required."

// ProfileInput is the editable part of a profile.
type ProfileInput struct {
	FullName     string
	Department   string
	InstituteURL string
	ScholarURL   *string
	Overview     *string
}

// ProfileService manages profiles and the sign-up draft hand-off.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	Save(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.Profile, error)
	Draft(in ProfileInput) (model.ProfileDraft, error)
	FlushDraft(ctx context.Context, userID uuid.UUID) (bool, error)
}

type profileService struct {
	repo   repository.ProfileRepository
	drafts auth.DraftStoreInterface
	cache  *cache.Client
}

// NewProfileService builds a ProfileService with repository and cache.
func NewProfileService(repo repository.ProfileRepository, drafts auth.DraftStoreInterface, cache *cache.Client) ProfileService {
	return &profileService{repo: repo, drafts: drafts, cache: cache}
}

func (s *profileService) cacheKey(userID uuid.UUID) string {
	return fmt.Sprintf("profile:%s", userID)
}

// Get returns the profile of userID, served from cache when possible.
func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	if cached, _ := s.cache.Get(ctx, s.cacheKey(userID)); cached != nil {
		var p model.Profile
		if err := json.Unmarshal(cached, &p); err == nil {
			return &p, nil
		}
	}

	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}

	if payload, err := json.Marshal(p); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(userID), payload, profileCacheTTL)
	}
	return p, nil
}

// Save creates or updates the caller's own profile.
func (s *profileService) Save(ctx context.Context, userID uuid.UUID, in ProfileInput) (*model.Profile, error) {
	draft, err := s.Draft(in)
	if err != nil {
		return nil, err
	}
	profile := draft.ToProfile(userID)

	exists, err := s.repo.ExistsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check profile: %w", err)
	}
	if exists {
		err = s.repo.Update(ctx, profile)
	} else {
		err = s.repo.Create(ctx, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("save profile: %w", notFound(err))
	}

	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return s.Get(ctx, userID)
}

// Draft validates and normalizes profile input without storing it.
func (s *profileService) Draft(in ProfileInput) (model.ProfileDraft, error) {
	d := model.ProfileDraft{
		FullName:     sanitize.Text(in.FullName),
		Department:   sanitize.Text(in.Department),
		InstituteURL: links.NormalizeURL(in.InstituteURL),
		Overview:     sanitize.OptionalText(in.Overview),
	}
	if in.ScholarURL != nil {
		if u := links.NormalizeURL(*in.ScholarURL); u != "" {
			d.ScholarURL = &u
		}
	}
	if d.FullName == "" || d.Department == "" || d.InstituteURL == "" {
		return model.ProfileDraft{}, apperrors.NewValidationError(msgProfileRequired)
	}
	return d, nil
}

// FlushDraft turns the parked sign-up draft into the user's profile when they
// have none yet. A malformed draft is ignored and left in place; the slot is
// cleared only once the insert succeeded.
func (s *profileService) FlushDraft(ctx context.Context, userID uuid.UUID) (bool, error) {
	exists, err := s.repo.ExistsForUser(ctx, userID)
	if err != nil || exists {
		return false, err
	}

	draft, err := s.drafts.Load(ctx, userID)
	if errors.Is(err, auth.ErrMalformedDraft) {
		logger.Warn(ctx, "ignoring malformed profile draft", zap.String("user_id", userID.String()))
		return false, nil
	}
	if err != nil || draft == nil {
		return false, err
	}

	if err := s.repo.Create(ctx, draft.ToProfile(userID)); err != nil {
		logger.Warn(ctx, "profile draft not flushed", zap.String("user_id", userID.String()), zap.Error(err))
		return false, nil
	}
	_ = s.drafts.Clear(ctx, userID)
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return true, nil
}
