package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "researchnett/internal/errors"
	"researchnett/internal/metrics"
	"researchnett/internal/model"
	"researchnett/internal/repository"
	"researchnett/internal/session"
)

// FounderService runs the founding-member request workflow.
type FounderService interface {
	Submit(ctx context.Context, id *session.Identity) (*model.FoundingMemberRequest, error)
	Mine(ctx context.Context, userID uuid.UUID) (*model.FoundingMemberRequest, error)
	List(ctx context.Context, admin *session.Identity, status model.FounderStatus) ([]model.FoundingMemberRequest, error)
	Decide(ctx context.Context, admin *session.Identity, requestID uuid.UUID, decision model.FounderStatus) (*model.FoundingMemberRequest, error)
	Remove(ctx context.Context, admin *session.Identity, requestID uuid.UUID) error
}

type founderService struct {
	repo     repository.FounderRepository
	profiles repository.ProfileRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

// NewFounderService creates a new founder service.
func NewFounderService(repo repository.FounderRepository, profiles repository.ProfileRepository, m *metrics.Metrics) FounderService {
	return &founderService{
		repo:     repo,
		profiles: profiles,
		metrics:  m,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit files a pending request for the caller, copying name and
// department from their profile when they have one.
func (s *founderService) Submit(ctx context.Context, id *session.Identity) (*model.FoundingMemberRequest, error) {
	if _, err := s.repo.FindByUserID(ctx, id.UserID); err == nil {
		return nil, apperrors.ErrAlreadyFounder
	}

	req := &model.FoundingMemberRequest{
		UserID: id.UserID,
		Email:  id.Email,
		Status: model.FounderStatusPending,
	}
	if p, err := s.profiles.FindByUserID(ctx, id.UserID); err == nil {
		req.FullName = &p.FullName
		req.Department = &p.Department
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, duplicate(err, apperrors.ErrAlreadyFounder)
	}
	return req, nil
}

// Mine returns the caller's request.
func (s *founderService) Mine(ctx context.Context, userID uuid.UUID) (*model.FoundingMemberRequest, error) {
	req, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return req, nil
}

// List returns requests for admins, optionally filtered by status.
func (s *founderService) List(ctx context.Context, admin *session.Identity, status model.FounderStatus) ([]model.FoundingMemberRequest, error) {
	if !admin.IsAdmin {
		return nil, apperrors.ErrForbidden
	}
	switch status {
	case "", model.FounderStatusPending, model.FounderStatusApproved, model.FounderStatusRejected:
	default:
		return nil, apperrors.Validationf("unknown status %q", status)
	}
	return s.repo.List(ctx, status)
}

// Decide approves or rejects a pending request. A request that is no longer
// pending, whether before the call or because another admin won the race,
// yields ErrRequestAlreadyDecided. The stored row is returned.
func (s *founderService) Decide(ctx context.Context, admin *session.Identity, requestID uuid.UUID, decision model.FounderStatus) (*model.FoundingMemberRequest, error) {
	if !admin.IsAdmin {
		return nil, apperrors.ErrForbidden
	}
	if !decision.Terminal() {
		return nil, apperrors.Validationf("decision must be %q or %q", model.FounderStatusApproved, model.FounderStatusRejected)
	}

	current, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFound(err)
	}
	if current.Status != model.FounderStatusPending {
		return nil, apperrors.ErrRequestAlreadyDecided
	}

	ok, err := s.repo.DecideIfPending(ctx, requestID, decision, admin.UserID, s.now())
	if err != nil {
		return nil, fmt.Errorf("decide request: %w", err)
	}
	if !ok {
		return nil, apperrors.ErrRequestAlreadyDecided
	}
	s.metrics.FounderDecided(string(decision))

	stored, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		return nil, notFound(err)
	}
	return stored, nil
}

// Remove deletes a request regardless of its state.
func (s *founderService) Remove(ctx context.Context, admin *session.Identity, requestID uuid.UUID) error {
	if !admin.IsAdmin {
		return apperrors.ErrForbidden
	}
	removed, err := s.repo.Delete(ctx, requestID)
	if err != nil {
		return fmt.Errorf("remove request: %w", err)
	}
	if !removed {
		return apperrors.ErrNotFound
	}
	return nil
}
