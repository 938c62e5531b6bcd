package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "researchnett/internal/errors"
	"researchnett/internal/metrics"
	"researchnett/internal/model"
	"researchnett/internal/repository"
)

// HistoryEntry is one interest or bookmark with the call it points at.
type HistoryEntry struct {
	CallID    uuid.UUID `json:"call_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// History is the caller's own engagement, newest first.
type History struct {
	Interests []HistoryEntry `json:"interests"`
	Bookmarks []HistoryEntry `json:"bookmarks"`
}

// EngagementService records interest and bookmarks on calls.
type EngagementService interface {
	ExpressInterest(ctx context.Context, userID, callID uuid.UUID) (*model.Interest, error)
	Bookmark(ctx context.Context, userID, callID uuid.UUID) (*model.Bookmark, error)
	History(ctx context.Context, userID uuid.UUID) (*History, error)
}

type engagementService struct {
	calls   repository.CallRepository
	repo    repository.EngagementRepository
	metrics *metrics.Metrics
}

// NewEngagementService creates a new engagement service.
func NewEngagementService(calls repository.CallRepository, repo repository.EngagementRepository, m *metrics.Metrics) EngagementService {
	return &engagementService{calls: calls, repo: repo, metrics: m}
}

// ExpressInterest records that userID is interested in callID, once.
func (s *engagementService) ExpressInterest(ctx context.Context, userID, callID uuid.UUID) (*model.Interest, error) {
	if _, err := s.calls.FindByID(ctx, callID); err != nil {
		return nil, notFound(err)
	}

	exists, err := s.repo.HasInterest(ctx, callID, userID)
	if err != nil {
		return nil, fmt.Errorf("check interest: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAlreadyInterested
	}

	interest := &model.Interest{CallID: callID, UserID: userID}
	if err := s.repo.AddInterest(ctx, interest); err != nil {
		return nil, duplicate(err, apperrors.ErrAlreadyInterested)
	}
	s.metrics.InterestRecorded()
	return interest, nil
}

// Bookmark saves callID to userID's revisit list, once.
func (s *engagementService) Bookmark(ctx context.Context, userID, callID uuid.UUID) (*model.Bookmark, error) {
	if _, err := s.calls.FindByID(ctx, callID); err != nil {
		return nil, notFound(err)
	}

	exists, err := s.repo.HasBookmark(ctx, callID, userID)
	if err != nil {
		return nil, fmt.Errorf("check bookmark: %w", err)
	}
	if exists {
		return nil, apperrors.ErrAlreadyBookmarked
	}

	bookmark := &model.Bookmark{CallID: callID, UserID: userID}
	if err := s.repo.AddBookmark(ctx, bookmark); err != nil {
		return nil, duplicate(err, apperrors.ErrAlreadyBookmarked)
	}
	return bookmark, nil
}

// History loads the caller's interests and bookmarks concurrently, then
// resolves call titles in one query.
func (s *engagementService) History(ctx context.Context, userID uuid.UUID) (*History, error) {
	var (
		interests []model.Interest
		bookmarks []model.Bookmark
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		interests, err = s.repo.ListInterestsByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load interests: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		bookmarks, err = s.repo.ListBookmarksByUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("load bookmarks: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(interests)+len(bookmarks))
	for _, i := range interests {
		ids = append(ids, i.CallID)
	}
	for _, b := range bookmarks {
		ids = append(ids, b.CallID)
	}
	calls, err := s.calls.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load call titles: %w", err)
	}

	h := &History{
		Interests: make([]HistoryEntry, 0, len(interests)),
		Bookmarks: make([]HistoryEntry, 0, len(bookmarks)),
	}
	for _, i := range interests {
		h.Interests = append(h.Interests, HistoryEntry{CallID: i.CallID, Title: calls[i.CallID].Title, CreatedAt: i.CreatedAt})
	}
	for _, b := range bookmarks {
		h.Bookmarks = append(h.Bookmarks, HistoryEntry{CallID: b.CallID, Title: calls[b.CallID].Title, CreatedAt: b.CreatedAt})
	}
	return h, nil
}
