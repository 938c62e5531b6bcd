package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CallCategory says what a collaboration call is for.
type CallCategory string

const (
	CallCategoryProposal    CallCategory = "proposal"
	CallCategoryResearch    CallCategory = "research"
	CallCategoryExploration CallCategory = "exploration"
	CallCategoryOthers      CallCategory = "others"
)

// Valid reports whether c is one of the known categories.
func (c CallCategory) Valid() bool {
	switch c {
	case CallCategoryProposal, CallCategoryResearch, CallCategoryExploration, CallCategoryOthers:
		return true
	}
	return false
}

// CollabCall is a posted request for research collaboration.
type CollabCall struct {
	ID               uuid.UUID    `json:"id" gorm:"type:char(36);primaryKey"`
	OwnerUserID      uuid.UUID    `json:"owner_user_id" gorm:"type:char(36);not null;index"`
	Title            string       `json:"title" gorm:"size:255;not null"`
	Summary          string       `json:"summary" gorm:"type:text;not null"`
	CollaborationFor CallCategory `json:"collaboration_for" gorm:"type:varchar(20);not null;default:'research'"`
	Keywords         []string     `json:"keywords" gorm:"serializer:json;type:text"`
	Links            []string     `json:"links" gorm:"serializer:json;type:text"`
	CreatedAt        time.Time    `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time    `json:"updated_at"`
}

// TableName keeps the table name stable across naming strategies.
func (CollabCall) TableName() string {
	return "collab_calls"
}

// BeforeCreate sets UUID before creating the record.
func (c *CollabCall) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CallKeyword is the per-keyword index row used for set-overlap search.
type CallKeyword struct {
	CallID  uuid.UUID `gorm:"type:char(36);primaryKey"`
	Keyword string    `gorm:"size:191;primaryKey;index"`
}
