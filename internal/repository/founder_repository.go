package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"researchnett/internal/model"
)

// FounderRepository persists founding-member requests.
type FounderRepository interface {
	Create(ctx context.Context, req *model.FoundingMemberRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.FoundingMemberRequest, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*model.FoundingMemberRequest, error)
	List(ctx context.Context, status model.FounderStatus) ([]model.FoundingMemberRequest, error)
	CountByStatus(ctx context.Context, status model.FounderStatus) (int64, error)
	DecideIfPending(ctx context.Context, id uuid.UUID, status model.FounderStatus, adminID uuid.UUID, at time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

type founderRepository struct {
	db *gorm.DB
}

// NewFounderRepository creates a new founder request repository.
func NewFounderRepository(db *gorm.DB) FounderRepository {
	return &founderRepository{db: db}
}

// Create inserts a request. A second request by the same user fails with
// gorm.ErrDuplicatedKey.
func (r *founderRepository) Create(ctx context.Context, req *model.FoundingMemberRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *founderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.FoundingMemberRequest, error) {
	var req model.FoundingMemberRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *founderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.FoundingMemberRequest, error) {
	var req model.FoundingMemberRequest
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&req).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns requests newest first, optionally filtered by status.
func (r *founderRepository) List(ctx context.Context, status model.FounderStatus) ([]model.FoundingMemberRequest, error) {
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []model.FoundingMemberRequest
	if err := q.Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}

func (r *founderRepository) CountByStatus(ctx context.Context, status model.FounderStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.FoundingMemberRequest{}).
		Where("status = ?", status).Count(&count).Error
	return count, err
}

// DecideIfPending moves a pending request to status. It reports false when
// the request was not pending at write time, so concurrent deciders cannot
// both succeed.
func (r *founderRepository) DecideIfPending(ctx context.Context, id uuid.UUID, status model.FounderStatus, adminID uuid.UUID, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.FoundingMemberRequest{}).
		Where("id = ? AND status = ?", id, model.FounderStatusPending).
		Updates(map[string]interface{}{
			"status":     status,
			"decided_by": adminID,
			"decided_at": at,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *founderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.FoundingMemberRequest{})
	return res.RowsAffected > 0, res.Error
}
