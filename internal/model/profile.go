package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the public face of a user: one per user, edited only by its owner.
type Profile struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID       uuid.UUID `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	Department   string    `json:"department" gorm:"size:255;not null"`
	InstituteURL string    `json:"institute_url" gorm:"size:1024;not null"`
	ScholarURL   *string   `json:"scholar_url" gorm:"size:1024"`
	Overview     *string   `json:"overview" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProfileDraft is the profile captured at sign-up and parked until the first
// authenticated session.
type ProfileDraft struct {
	FullName     string  `json:"full_name"`
	Department   string  `json:"department"`
	InstituteURL string  `json:"institute_url"`
	ScholarURL   *string `json:"scholar_url,omitempty"`
	Overview     *string `json:"overview,omitempty"`
}

// ToProfile materializes the draft for userID.
func (d ProfileDraft) ToProfile(userID uuid.UUID) *Profile {
	return &Profile{
		UserID:       userID,
		FullName:     d.FullName,
		Department:   d.Department,
		InstituteURL: d.InstituteURL,
		ScholarURL:   d.ScholarURL,
		Overview:     d.Overview,
	}
}
