package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"researchnett/internal/model"
)

// CallRepository defines collaboration call persistence operations.
type CallRepository interface {
	Create(ctx context.Context, call *model.CollabCall) error
	Update(ctx context.Context, call *model.CollabCall) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.CollabCall, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.CollabCall, error)
	Search(ctx context.Context, tokens []string) ([]model.CollabCall, error)
	ListIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error)
}

type callRepository struct {
	db *gorm.DB
}

// NewCallRepository creates a new call repository.
func NewCallRepository(db *gorm.DB) CallRepository {
	return &callRepository{db: db}
}

// Create inserts the call and its keyword index rows atomically.
func (r *callRepository) Create(ctx context.Context, call *model.CollabCall) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(call).Error; err != nil {
			return err
		}
		return insertKeywords(tx, call.ID, call.Keywords)
	})
}

// Update overwrites the call's editable fields and rebuilds its keyword rows.
// The owner predicate makes a foreign edit a no-op that reports not found.
func (r *callRepository) Update(ctx context.Context, call *model.CollabCall) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.CollabCall{}).
			Where("id = ? AND owner_user_id = ?", call.ID, call.OwnerUserID).
			Select("title", "summary", "collaboration_for", "keywords", "links").
			Updates(call)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := requireRow(tx, &model.CollabCall{}, "id = ? AND owner_user_id = ?", call.ID, call.OwnerUserID); err != nil {
				return err
			}
		}
		if err := tx.Where("call_id = ?", call.ID).Delete(&model.CallKeyword{}).Error; err != nil {
			return err
		}
		return insertKeywords(tx, call.ID, call.Keywords)
	})
}

// Delete removes a call owned by ownerID together with its keyword rows,
// interests and bookmarks. Reports false when no such call exists.
func (r *callRepository) Delete(ctx context.Context, id, ownerID uuid.UUID) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND owner_user_id = ?", id, ownerID).Delete(&model.CollabCall{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true

		for _, dependent := range []interface{}{&model.CallKeyword{}, &model.Interest{}, &model.Bookmark{}} {
			if err := tx.Where("call_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return deleted, err
}

// FindByID finds a call by ID.
func (r *callRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CollabCall, error) {
	var call model.CollabCall
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&call).Error; err != nil {
		return nil, err
	}
	return &call, nil
}

// FindByIDs loads many calls in one query, keyed by id.
func (r *callRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.CollabCall, error) {
	out := make(map[uuid.UUID]model.CollabCall, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var calls []model.CollabCall
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&calls).Error; err != nil {
		return nil, err
	}
	for _, c := range calls {
		out[c.ID] = c
	}
	return out, nil
}

// Search returns calls whose keyword set overlaps tokens, newest first.
// Empty tokens return every call.
func (r *callRepository) Search(ctx context.Context, tokens []string) ([]model.CollabCall, error) {
	q := r.db.WithContext(ctx).Model(&model.CollabCall{})
	if len(tokens) > 0 {
		matching := r.db.Model(&model.CallKeyword{}).Select("call_id").Where("keyword IN ?", tokens)
		q = q.Where("id IN (?)", matching)
	}

	var calls []model.CollabCall
	if err := q.Order("created_at DESC").Find(&calls).Error; err != nil {
		return nil, err
	}
	return calls, nil
}

// ListIDsByOwner returns the ids of every call posted by ownerID.
func (r *callRepository) ListIDsByOwner(ctx context.Context, ownerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.CollabCall{}).
		Where("owner_user_id = ?", ownerID).
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func insertKeywords(tx *gorm.DB, callID uuid.UUID, keywords []string) error {
	if len(keywords) == 0 {
		return nil
	}
	rows := make([]model.CallKeyword, 0, len(keywords))
	for _, k := range keywords {
		rows = append(rows, model.CallKeyword{CallID: callID, Keyword: k})
	}
	return tx.Create(&rows).Error
}

// requireRow distinguishes "no row matched" from "row matched but nothing
// changed", which MySQL also reports as zero affected rows.
func requireRow(tx *gorm.DB, value interface{}, query string, args ...interface{}) error {
	var count int64
	if err := tx.Model(value).Where(query, args...).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
