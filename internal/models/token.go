package models

import "time"

// RefreshToken is one issued refresh token. Rows are revoked at logout, never
// deleted; a revoked or expired row must never yield a new access token.
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"column:user_id;not null;index" json:"user_id"`
	Token     string     `gorm:"size:500;not null;uniqueIndex" json:"token"`
	ExpiresAt time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	IsRevoked bool       `gorm:"column:is_revoked;not null;default:false" json:"is_revoked"`
	RevokedAt *time.Time `gorm:"column:revoked_at" json:"revoked_at"`
	CreatedAt time.Time  `json:"created_at"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}
