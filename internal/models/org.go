package models

import "time"

// Org is a partner NGO. Created unverified/unapproved; approval by an admin
// also forces verification. The invite code is globally unique and can be
// regenerated at any time, invalidating the previous one.
type Org struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"size:255;not null" json:"name"`
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Description  *string    `gorm:"type:text" json:"description"`
	InviteCode   string     `gorm:"column:invite_code;size:50;not null;uniqueIndex" json:"invite_code"`
	Verified     bool       `gorm:"not null;default:false" json:"verified"`
	Approved     bool       `gorm:"not null;default:false" json:"approved"`
	ApprovedByID *uint      `gorm:"column:approved_by_id" json:"approved_by_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	VerifiedAt   *time.Time `gorm:"column:verified_at" json:"verified_at"`
	ApprovedAt   *time.Time `gorm:"column:approved_at" json:"approved_at"`
}

func (Org) TableName() string {
	return "orgs"
}
