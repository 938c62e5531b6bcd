package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Interest records a user signalling interest in a call.
type Interest struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	CallID    uuid.UUID `json:"call_id" gorm:"type:char(36);not null;uniqueIndex:idx_interest_call_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_interest_call_user;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName keeps the table name stable across naming strategies.
func (Interest) TableName() string {
	return "call_interests"
}

// BeforeCreate sets UUID before creating the record.
func (i *Interest) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// Bookmark is a saved-for-later ("revisit") marker on a call.
type Bookmark struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	CallID    uuid.UUID `json:"call_id" gorm:"type:char(36);not null;uniqueIndex:idx_bookmark_call_user"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_bookmark_call_user;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName keeps the table name stable across naming strategies.
func (Bookmark) TableName() string {
	return "call_bookmarks"
}

// BeforeCreate sets UUID before creating the record.
func (b *Bookmark) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}
