package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"researchnett/internal/notify"
	"researchnett/internal/repository"
)

// InterestNotification is one interest event on a call the user owns.
type InterestNotification struct {
	CallID     uuid.UUID `json:"call_id"`
	CallTitle  string    `json:"call_title"`
	UserID     uuid.UUID `json:"user_id"`
	FullName   string    `json:"full_name"`
	Department string    `json:"department"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationService reports interest on the caller's calls.
type NotificationService interface {
	Summary(ctx context.Context, userID uuid.UUID, clientID string) (notify.Result, error)
	MarkSeen(ctx context.Context, userID uuid.UUID, clientID string) (notify.Result, error)
	List(ctx context.Context, userID uuid.UUID) ([]InterestNotification, error)
}

type notificationService struct {
	calls      repository.CallRepository
	engagement repository.EngagementRepository
	profiles   repository.ProfileRepository
	cursors    notify.CursorStore
	now        func() time.Time
}

// NewNotificationService creates a new notification service.
func NewNotificationService(
	calls repository.CallRepository,
	engagement repository.EngagementRepository,
	profiles repository.ProfileRepository,
	cursors notify.CursorStore,
) NotificationService {
	return &notificationService{
		calls:      calls,
		engagement: engagement,
		profiles:   profiles,
		cursors:    cursors,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Summary counts interest events newer than the client's cursor among the
// most recent notify.Window events.
func (s *notificationService) Summary(ctx context.Context, userID uuid.UUID, clientID string) (notify.Result, error) {
	callIDs, err := s.calls.ListIDsByOwner(ctx, userID)
	if err != nil {
		return notify.Result{}, fmt.Errorf("load own calls: %w", err)
	}
	if len(callIDs) == 0 {
		return notify.Result{}, nil
	}

	events, err := s.engagement.RecentInterestTimes(ctx, callIDs, notify.Window)
	if err != nil {
		return notify.Result{}, fmt.Errorf("load interest events: %w", err)
	}

	lastSeen, err := s.cursors.LastSeen(ctx, userID, clientID)
	if err != nil {
		return notify.Result{}, fmt.Errorf("load cursor: %w", err)
	}
	return notify.Diff(lastSeen, events), nil
}

// MarkSeen moves the client's cursor to now.
func (s *notificationService) MarkSeen(ctx context.Context, userID uuid.UUID, clientID string) (notify.Result, error) {
	if _, err := s.cursors.MarkSeen(ctx, userID, clientID, s.now()); err != nil {
		return notify.Result{}, fmt.Errorf("mark seen: %w", err)
	}
	return notify.Result{}, nil
}

// List returns every interest on the caller's calls, newest first, with the
// call title and the interested user's name and department.
func (s *notificationService) List(ctx context.Context, userID uuid.UUID) ([]InterestNotification, error) {
	callIDs, err := s.calls.ListIDsByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load own calls: %w", err)
	}

	interests, err := s.engagement.ListInterestsOnCalls(ctx, callIDs)
	if err != nil {
		return nil, fmt.Errorf("load interests: %w", err)
	}
	if len(interests) == 0 {
		return []InterestNotification{}, nil
	}

	calls, err := s.calls.FindByIDs(ctx, callIDs)
	if err != nil {
		return nil, fmt.Errorf("load call titles: %w", err)
	}

	userIDs := make([]uuid.UUID, 0, len(interests))
	for _, i := range interests {
		userIDs = append(userIDs, i.UserID)
	}
	profiles, err := s.profiles.FindByUserIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	out := make([]InterestNotification, 0, len(interests))
	for _, i := range interests {
		p := profiles[i.UserID]
		out = append(out, InterestNotification{
			CallID:     i.CallID,
			CallTitle:  calls[i.CallID].Title,
			UserID:     i.UserID,
			FullName:   p.FullName,
			Department: p.Department,
			CreatedAt:  i.CreatedAt,
		})
	}
	return out, nil
}
