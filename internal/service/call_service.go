package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	apperrors "researchnett/internal/errors"
	"researchnett/internal/keywords"
	"researchnett/internal/links"
	"researchnett/internal/metrics"
	"researchnett/internal/model"
	"researchnett/internal/repository"
	"researchnett/internal/sanitize"
)

const (
	msgTitleRequired    = "Title is required."
	msgSummaryRequired  = "Summary is required."
	msgKeywordsRequired = "Please add at least one keyword (comma-separated)."
	msgBadCategory      = "collaboration_for must be one of proposal, research, exploration, others."
)

// CallInput is the editable part of a collaboration call. Keywords and Links
// hold raw entries; they are normalized before storage.
type CallInput struct {
	Title            string
	Summary          string
	CollaborationFor model.CallCategory
	Keywords         []string
	Links            []string
}

// CallView is a call as listed, with its author's display name.
type CallView struct {
	model.CollabCall
	AuthorName string `json:"author_name"`
}

// CallDetail is a single call as seen by a particular viewer.
type CallDetail struct {
	CallView
	IsOwner    bool `json:"is_owner"`
	Interested bool `json:"interested"`
	Bookmarked bool `json:"bookmarked"`
}

// CallWriteResult is returned by create and edit. Warnings lists input that
// was dropped, such as links that are not http(s) URLs.
type CallWriteResult struct {
	Call     *model.CollabCall `json:"call"`
	Warnings []string          `json:"warnings,omitempty"`
}

// CallService manages collaboration calls and keyword search.
type CallService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in CallInput) (*CallWriteResult, error)
	Update(ctx context.Context, ownerID, callID uuid.UUID, in CallInput) (*CallWriteResult, error)
	Delete(ctx context.Context, ownerID, callID uuid.UUID) error
	Get(ctx context.Context, viewerID, callID uuid.UUID) (*CallDetail, error)
	Search(ctx context.Context, rawQuery string) ([]CallView, error)
}

type callService struct {
	calls      repository.CallRepository
	profiles   repository.ProfileRepository
	engagement repository.EngagementRepository
	metrics    *metrics.Metrics
}

// NewCallService creates a new call service.
func NewCallService(
	calls repository.CallRepository,
	profiles repository.ProfileRepository,
	engagement repository.EngagementRepository,
	m *metrics.Metrics,
) CallService {
	return &callService{calls: calls, profiles: profiles, engagement: engagement, metrics: m}
}

// prepare validates in and builds the stored fields plus any warnings.
func prepare(in CallInput) (*model.CollabCall, []string, error) {
	title := sanitize.Text(in.Title)
	if title == "" {
		return nil, nil, apperrors.NewValidationError(msgTitleRequired)
	}
	summary := sanitize.Text(in.Summary)
	if summary == "" {
		return nil, nil, apperrors.NewValidationError(msgSummaryRequired)
	}

	category := in.CollaborationFor
	if category == "" {
		category = model.CallCategoryResearch
	}
	if !category.Valid() {
		return nil, nil, apperrors.NewValidationError(msgBadCategory)
	}

	kw := keywords.NormalizeList(in.Keywords, keywords.MaxKeywords)
	if len(kw) == 0 {
		return nil, nil, apperrors.NewValidationError(msgKeywordsRequired)
	}

	parsed := links.ParseList(in.Links)
	var warnings []string
	if len(parsed.Discarded) > 0 {
		warnings = append(warnings, fmt.Sprintf("Ignored %d invalid link(s): %s",
			len(parsed.Discarded), strings.Join(parsed.Discarded, ", ")))
	}

	return &model.CollabCall{
		Title:            title,
		Summary:          summary,
		CollaborationFor: category,
		Keywords:         kw,
		Links:            parsed.Links,
	}, warnings, nil
}

// Create posts a new call owned by ownerID.
func (s *callService) Create(ctx context.Context, ownerID uuid.UUID, in CallInput) (*CallWriteResult, error) {
	call, warnings, err := prepare(in)
	if err != nil {
		return nil, err
	}
	call.OwnerUserID = ownerID

	if err := s.calls.Create(ctx, call); err != nil {
		return nil, fmt.Errorf("create call: %w", err)
	}
	s.metrics.CallCreated()
	return &CallWriteResult{Call: call, Warnings: warnings}, nil
}

// Update edits a call. Only its owner may do so.
func (s *callService) Update(ctx context.Context, ownerID, callID uuid.UUID, in CallInput) (*CallWriteResult, error) {
	existing, err := s.calls.FindByID(ctx, callID)
	if err != nil {
		return nil, notFound(err)
	}
	if existing.OwnerUserID != ownerID {
		return nil, apperrors.ErrForbidden
	}

	call, warnings, err := prepare(in)
	if err != nil {
		return nil, err
	}
	call.ID = existing.ID
	call.OwnerUserID = existing.OwnerUserID

	if err := s.calls.Update(ctx, call); err != nil {
		return nil, fmt.Errorf("update call: %w", notFound(err))
	}

	stored, err := s.calls.FindByID(ctx, callID)
	if err != nil {
		return nil, notFound(err)
	}
	return &CallWriteResult{Call: stored, Warnings: warnings}, nil
}

// Delete removes a call with its keywords, interests and bookmarks.
func (s *callService) Delete(ctx context.Context, ownerID, callID uuid.UUID) error {
	existing, err := s.calls.FindByID(ctx, callID)
	if err != nil {
		return notFound(err)
	}
	if existing.OwnerUserID != ownerID {
		return apperrors.ErrForbidden
	}

	deleted, err := s.calls.Delete(ctx, callID, ownerID)
	if err != nil {
		return fmt.Errorf("delete call: %w", err)
	}
	if !deleted {
		return apperrors.ErrNotFound
	}
	return nil
}

// Get returns one call with the viewer's engagement flags.
func (s *callService) Get(ctx context.Context, viewerID, callID uuid.UUID) (*CallDetail, error) {
	call, err := s.calls.FindByID(ctx, callID)
	if err != nil {
		return nil, notFound(err)
	}

	views, err := s.withAuthors(ctx, []model.CollabCall{*call})
	if err != nil {
		return nil, err
	}

	interested, err := s.engagement.HasInterest(ctx, callID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load interest: %w", err)
	}
	bookmarked, err := s.engagement.HasBookmark(ctx, callID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("load bookmark: %w", err)
	}

	return &CallDetail{
		CallView:   views[0],
		IsOwner:    call.OwnerUserID == viewerID,
		Interested: interested,
		Bookmarked: bookmarked,
	}, nil
}

// Search lists calls whose keywords overlap the query tokens, newest first.
// A query with no tokens lists every call.
func (s *callService) Search(ctx context.Context, rawQuery string) ([]CallView, error) {
	tokens := keywords.Query(rawQuery)
	calls, err := s.calls.Search(ctx, tokens)
	if err != nil {
		return nil, fmt.Errorf("search calls: %w", err)
	}
	return s.withAuthors(ctx, calls)
}

func (s *callService) withAuthors(ctx context.Context, calls []model.CollabCall) ([]CallView, error) {
	ownerIDs := make([]uuid.UUID, 0, len(calls))
	seen := make(map[uuid.UUID]struct{}, len(calls))
	for _, c := range calls {
		if _, ok := seen[c.OwnerUserID]; ok {
			continue
		}
		seen[c.OwnerUserID] = struct{}{}
		ownerIDs = append(ownerIDs, c.OwnerUserID)
	}

	profiles, err := s.profiles.FindByUserIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	views := make([]CallView, len(calls))
	for i, c := range calls {
		views[i] = CallView{CollabCall: c, AuthorName: profiles[c.OwnerUserID].FullName}
	}
	return views, nil
}
