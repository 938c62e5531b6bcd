package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "researchnett/internal/errors"
	"researchnett/internal/model"
	"researchnett/internal/repository"
	"researchnett/internal/sanitize"
	"researchnett/internal/session"
)

const msgFeedbackRequired = "Please describe the bug/suggestion."

// FeedbackService collects feedback from users and exposes it to admins.
type FeedbackService interface {
	Submit(ctx context.Context, id *session.Identity, kind model.FeedbackKind, message, pagePath string) (*model.Feedback, error)
	List(ctx context.Context, admin *session.Identity) ([]model.Feedback, error)
	Delete(ctx context.Context, admin *session.Identity, feedbackID uuid.UUID) error
}

type feedbackService struct {
	repo repository.FeedbackRepository
}

// NewFeedbackService creates a new feedback service.
func NewFeedbackService(repo repository.FeedbackRepository) FeedbackService {
	return &feedbackService{repo: repo}
}

func (s *feedbackService) Submit(ctx context.Context, id *session.Identity, kind model.FeedbackKind, message, pagePath string) (*model.Feedback, error) {
	if kind == "" {
		kind = model.FeedbackKindBug
	}
	if kind != model.FeedbackKindBug && kind != model.FeedbackKindSuggestion {
		return nil, apperrors.Validationf("kind must be %q or %q", model.FeedbackKindBug, model.FeedbackKindSuggestion)
	}

	fb := &model.Feedback{
		UserID:   id.UserID,
		Email:    id.Email,
		Kind:     kind,
		Message:  sanitize.Text(message),
		PagePath: pagePath,
	}
	if fb.Message == "" {
		return nil, apperrors.NewValidationError(msgFeedbackRequired)
	}
	if err := s.repo.Create(ctx, fb); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	return fb, nil
}

func (s *feedbackService) List(ctx context.Context, admin *session.Identity) ([]model.Feedback, error) {
	if !admin.IsAdmin {
		return nil, apperrors.ErrForbidden
	}
	return s.repo.List(ctx)
}

func (s *feedbackService) Delete(ctx context.Context, admin *session.Identity, feedbackID uuid.UUID) error {
	if !admin.IsAdmin {
		return apperrors.ErrForbidden
	}
	removed, err := s.repo.Delete(ctx, feedbackID)
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}
	if !removed {
		return apperrors.ErrNotFound
	}
	return nil
}
