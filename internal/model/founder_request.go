package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FounderStatus is the lifecycle state of a founding-member request.
type FounderStatus string

const (
	FounderStatusPending  FounderStatus = "pending"
	FounderStatusApproved FounderStatus = "approved"
	FounderStatusRejected FounderStatus = "rejected"
)

// Terminal reports whether no further transition is allowed.
func (s FounderStatus) Terminal() bool {
	return s == FounderStatusApproved || s == FounderStatusRejected
}

// FoundingMemberRequest asks admins to grant founding-member recognition.
// pending -> approved | rejected, decided once by an admin.
type FoundingMemberRequest struct {
	ID         uuid.UUID     `json:"id" gorm:"type:char(36);primaryKey"`
	UserID     uuid.UUID     `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	Email      string        `json:"email" gorm:"size:255;not null"`
	FullName   *string       `json:"full_name" gorm:"size:255"`
	Department *string       `json:"department" gorm:"size:255"`
	Status     FounderStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	DecidedBy  *uuid.UUID    `json:"decided_by,omitempty" gorm:"type:char(36)"`
	DecidedAt  *time.Time    `json:"decided_at,omitempty"`
	CreatedAt  time.Time     `json:"created_at" gorm:"index"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (r *FoundingMemberRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.Status == "" {
		r.Status = FounderStatusPending
	}
	return nil
}
