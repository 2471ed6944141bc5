package models

import "time"

// Role is the user role enum. Stored as its lowercase string form.
type Role string

const (
	RoleBeneficiario Role = "beneficiario"
	RoleAssistente   Role = "assistente"
	RoleAdmin        Role = "admin"
)

// User is an account of any role. A beneficiário may be linked to an assistente
// (self FK) and to an org. Links are traversed by id + query, never by a loaded
// object graph.
type User struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Email           string    `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	SocialName      *string   `gorm:"column:social_name;size:255" json:"social_name"`
	Pronoun         *string   `gorm:"size:50" json:"pronoun"`
	ProfileImageURL *string   `gorm:"column:profile_image_url;size:500" json:"profile_image_url"`
	CPF             *string   `gorm:"column:cpf;size:11;uniqueIndex" json:"cpf"`
	PasswordHash    string    `gorm:"column:password_hash;not null" json:"-"`
	Role            Role      `gorm:"size:20;not null;default:beneficiario" json:"role"`
	IsActive        *bool     `gorm:"column:is_active;not null;default:true" json:"is_active"`
	AssistenteID    *uint     `gorm:"column:assistente_id;index" json:"assistente_id"`
	OrgID           *uint     `gorm:"column:org_id;index" json:"org_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// Active reports whether the account may authenticate. IsActive is a pointer
// so that an explicit false survives Create despite the column default; a nil
// value means the default (active) applies.
func (u *User) Active() bool {
	return u.IsActive == nil || *u.IsActive
}

// BoolPtr returns a pointer to b, for populating pointer-typed flag columns.
func BoolPtr(b bool) *bool {
	return &b
}
