package repository

import (
	"context"

	"gorm.io/gorm"

	"researchnett/internal/model"
)

// AdRepository persists ads.
type AdRepository interface {
	Create(ctx context.Context, ad *model.Ad) error
	List(ctx context.Context) ([]model.Ad, error)
}

type adRepository struct {
	db *gorm.DB
}

// NewAdRepository creates a new ad repository.
func NewAdRepository(db *gorm.DB) AdRepository {
	return &adRepository{db: db}
}

func (r *adRepository) Create(ctx context.Context, ad *model.Ad) error {
	return r.db.WithContext(ctx).Create(ad).Error
}

// List returns every ad, newest first.
func (r *adRepository) List(ctx context.Context) ([]model.Ad, error) {
	var ads []model.Ad
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&ads).Error; err != nil {
		return nil, err
	}
	return ads, nil
}
