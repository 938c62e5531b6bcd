package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FeedbackKind classifies a feedback submission.
type FeedbackKind string

const (
	FeedbackKindBug        FeedbackKind = "bug"
	FeedbackKindSuggestion FeedbackKind = "suggestion"
)

// Feedback is a user-submitted bug report or suggestion.
// Readable and deletable by admins only.
type Feedback struct {
	ID        uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID    `json:"user_id" gorm:"type:char(36);not null;index"`
	Email     string       `json:"email" gorm:"size:255;not null"`
	Kind      FeedbackKind `json:"kind" gorm:"type:varchar(20);not null"`
	Message   string       `json:"message" gorm:"type:text;not null"`
	PagePath  string       `json:"page_path" gorm:"size:1024"`
	CreatedAt time.Time    `json:"created_at" gorm:"index"`
}

// TableName keeps the table name stable across naming strategies.
func (Feedback) TableName() string {
	return "feedbacks"
}

// BeforeCreate sets UUID before creating the record.
func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
