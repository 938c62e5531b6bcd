package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"researchnett/internal/model"
)

// EngagementRepository persists interests and bookmarks on calls.
type EngagementRepository interface {
	AddInterest(ctx context.Context, interest *model.Interest) error
	AddBookmark(ctx context.Context, bookmark *model.Bookmark) error
	HasInterest(ctx context.Context, callID, userID uuid.UUID) (bool, error)
	HasBookmark(ctx context.Context, callID, userID uuid.UUID) (bool, error)
	ListInterestsByUser(ctx context.Context, userID uuid.UUID) ([]model.Interest, error)
	ListBookmarksByUser(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error)
	ListInterestsOnCalls(ctx context.Context, callIDs []uuid.UUID) ([]model.Interest, error)
	RecentInterestTimes(ctx context.Context, callIDs []uuid.UUID, limit int) ([]time.Time, error)
}

type engagementRepository struct {
	db *gorm.DB
}

// NewEngagementRepository creates a new engagement repository.
func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

// AddInterest inserts an interest. A repeat fails with gorm.ErrDuplicatedKey.
func (r *engagementRepository) AddInterest(ctx context.Context, interest *model.Interest) error {
	return r.db.WithContext(ctx).Create(interest).Error
}

// AddBookmark inserts a bookmark. A repeat fails with gorm.ErrDuplicatedKey.
func (r *engagementRepository) AddBookmark(ctx context.Context, bookmark *model.Bookmark) error {
	return r.db.WithContext(ctx).Create(bookmark).Error
}

func (r *engagementRepository) HasInterest(ctx context.Context, callID, userID uuid.UUID) (bool, error) {
	return r.exists(ctx, &model.Interest{}, callID, userID)
}

func (r *engagementRepository) HasBookmark(ctx context.Context, callID, userID uuid.UUID) (bool, error) {
	return r.exists(ctx, &model.Bookmark{}, callID, userID)
}

func (r *engagementRepository) exists(ctx context.Context, value interface{}, callID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(value).
		Where("call_id = ? AND user_id = ?", callID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListInterestsByUser returns the user's interests, newest first.
func (r *engagementRepository) ListInterestsByUser(ctx context.Context, userID uuid.UUID) ([]model.Interest, error) {
	var interests []model.Interest
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&interests).Error; err != nil {
		return nil, err
	}
	return interests, nil
}

// ListBookmarksByUser returns the user's bookmarks, newest first.
func (r *engagementRepository) ListBookmarksByUser(ctx context.Context, userID uuid.UUID) ([]model.Bookmark, error) {
	var bookmarks []model.Bookmark
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Find(&bookmarks).Error; err != nil {
		return nil, err
	}
	return bookmarks, nil
}

// ListInterestsOnCalls returns every interest on the given calls, newest first.
func (r *engagementRepository) ListInterestsOnCalls(ctx context.Context, callIDs []uuid.UUID) ([]model.Interest, error) {
	if len(callIDs) == 0 {
		return nil, nil
	}
	var interests []model.Interest
	if err := r.db.WithContext(ctx).Where("call_id IN ?", callIDs).
		Order("created_at DESC").Find(&interests).Error; err != nil {
		return nil, err
	}
	return interests, nil
}

// RecentInterestTimes returns the creation times of the newest limit
// interests on the given calls.
func (r *engagementRepository) RecentInterestTimes(ctx context.Context, callIDs []uuid.UUID, limit int) ([]time.Time, error) {
	if len(callIDs) == 0 {
		return nil, nil
	}
	var rows []model.Interest
	if err := r.db.WithContext(ctx).Select("created_at").
		Where("call_id IN ?", callIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	times := make([]time.Time, len(rows))
	for i, row := range rows {
		times[i] = row.CreatedAt
	}
	return times, nil
}
