package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	apperrors "researchnett/internal/errors"
	"researchnett/internal/model"
	"researchnett/internal/repository"
	"researchnett/internal/session"
)

// Dashboard summarizes what awaits an admin.
type Dashboard struct {
	PendingFounders int64 `json:"pending_founders"`
	FeedbackCount   int64 `json:"feedback_count"`
}

// AdminService manages admin membership and the admin landing page.
type AdminService interface {
	Dashboard(ctx context.Context, admin *session.Identity) (*Dashboard, error)
	Grant(ctx context.Context, email string) (*model.User, error)
	Revoke(ctx context.Context, email string) (bool, error)
}

type adminService struct {
	admins   repository.AdminRepository
	users    repository.UserRepository
	founders repository.FounderRepository
	feedback repository.FeedbackRepository
	hub      *session.Hub
}

// NewAdminService creates a new admin service.
func NewAdminService(
	admins repository.AdminRepository,
	users repository.UserRepository,
	founders repository.FounderRepository,
	feedback repository.FeedbackRepository,
	hub *session.Hub,
) AdminService {
	return &adminService{admins: admins, users: users, founders: founders, feedback: feedback, hub: hub}
}

// Dashboard counts pending founder requests and feedback.
func (s *adminService) Dashboard(ctx context.Context, admin *session.Identity) (*Dashboard, error) {
	if !admin.IsAdmin {
		return nil, apperrors.ErrForbidden
	}

	var d Dashboard
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.founders.CountByStatus(gctx, model.FounderStatusPending)
		d.PendingFounders = n
		return err
	})
	g.Go(func() error {
		n, err := s.feedback.Count(gctx)
		d.FeedbackCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load dashboard: %w", err)
	}
	return &d, nil
}

// Grant makes the user with email an admin.
func (s *adminService) Grant(ctx context.Context, email string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.admins.Grant(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("grant admin: %w", err)
	}
	s.hub.Publish(session.Event{Kind: session.EventAdminChanged, UserID: user.ID})
	return user, nil
}

// Revoke removes admin membership and reports whether there was one.
func (s *adminService) Revoke(ctx context.Context, email string) (bool, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return false, notFound(err)
	}
	removed, err := s.admins.Revoke(ctx, user.ID)
	if err != nil {
		return false, fmt.Errorf("revoke admin: %w", err)
	}
	s.hub.Publish(session.Event{Kind: session.EventAdminChanged, UserID: user.ID})
	return removed, nil
}
