package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"researchnett/internal/model"
)

// AdminRepository manages the admin membership table.
type AdminRepository interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
	Grant(ctx context.Context, userID uuid.UUID) error
	Revoke(ctx context.Context, userID uuid.UUID) (bool, error)
	List(ctx context.Context) ([]model.Admin, error)
}

type adminRepository struct {
	db *gorm.DB
}

// NewAdminRepository creates a new admin repository.
func NewAdminRepository(db *gorm.DB) AdminRepository {
	return &adminRepository{db: db}
}

// IsAdmin reports whether userID has a membership row.
func (r *adminRepository) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Admin{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant inserts a membership row; granting twice is a no-op.
func (r *adminRepository) Grant(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.Admin{UserID: userID}).Error
}

// Revoke removes the membership row and reports whether one existed.
func (r *adminRepository) Revoke(ctx context.Context, userID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Admin{})
	return res.RowsAffected > 0, res.Error
}

// List returns every admin, oldest grant first.
func (r *adminRepository) List(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&admins).Error; err != nil {
		return nil, err
	}
	return admins, nil
}
