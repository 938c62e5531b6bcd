package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"researchnett/internal/model"
)

// ProfileRepository defines profile persistence operations.
type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	Update(ctx context.Context, profile *model.Profile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error)
	FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.Profile, error)
	ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// Create inserts a profile. A second profile for the same user fails with
// gorm.ErrDuplicatedKey.
func (r *profileRepository) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

// Update overwrites the editable fields of the user's profile.
func (r *profileRepository) Update(ctx context.Context, profile *model.Profile) error {
	res := r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("user_id = ?", profile.UserID).
		Select("full_name", "department", "institute_url", "scholar_url", "overview").
		Updates(profile)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return requireRow(r.db.WithContext(ctx), &model.Profile{}, "user_id = ?", profile.UserID)
	}
	return nil
}

// FindByUserID finds the profile owned by userID.
func (r *profileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// FindByUserIDs loads many profiles in one query, keyed by user id.
func (r *profileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]model.Profile, error) {
	out := make(map[uuid.UUID]model.Profile, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}

	var profiles []model.Profile
	if err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&profiles).Error; err != nil {
		return nil, err
	}
	for _, p := range profiles {
		out[p.UserID] = p
	}
	return out, nil
}

// ExistsForUser reports whether userID already has a profile.
func (r *profileRepository) ExistsForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Profile{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
