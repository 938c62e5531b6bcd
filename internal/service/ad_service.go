package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	apperrors "researchnett/internal/errors"
	"researchnett/internal/model"
	"researchnett/internal/repository"
	"researchnett/internal/sanitize"
)

const msgAdRequired = "Title and summary are required."

// AdView is an ad with its author's display name.
type AdView struct {
	model.Ad
	AuthorName string `json:"author_name"`
}

// AdService manages ads.
type AdService interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, summary string) (*model.Ad, error)
	List(ctx context.Context) ([]AdView, error)
}

type adService struct {
	repo     repository.AdRepository
	profiles repository.ProfileRepository
}

// NewAdService creates a new ad service.
func NewAdService(repo repository.AdRepository, profiles repository.ProfileRepository) AdService {
	return &adService{repo: repo, profiles: profiles}
}

func (s *adService) Create(ctx context.Context, ownerID uuid.UUID, title, summary string) (*model.Ad, error) {
	ad := &model.Ad{
		OwnerUserID: ownerID,
		Title:       sanitize.Text(title),
		Summary:     sanitize.Text(summary),
	}
	if ad.Title == "" || ad.Summary == "" {
		return nil, apperrors.NewValidationError(msgAdRequired)
	}
	if err := s.repo.Create(ctx, ad); err != nil {
		return nil, fmt.Errorf("create ad: %w", err)
	}
	return ad, nil
}

// List returns every ad, newest first.
func (s *adService) List(ctx context.Context) ([]AdView, error) {
	ads, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ads: %w", err)
	}

	ownerIDs := make([]uuid.UUID, 0, len(ads))
	for _, a := range ads {
		ownerIDs = append(ownerIDs, a.OwnerUserID)
	}
	profiles, err := s.profiles.FindByUserIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	out := make([]AdView, len(ads))
	for i, a := range ads {
		out[i] = AdView{Ad: a, AuthorName: profiles[a.OwnerUserID].FullName}
	}
	return out, nil
}
