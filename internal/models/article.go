package models

import (
	"time"

	"gorm.io/datatypes"
)

// ArticleStatus is the article lifecycle enum.
type ArticleStatus string

const (
	ArticleStatusDraft    ArticleStatus = "draft"
	ArticleStatusPending  ArticleStatus = "pending"
	ArticleStatusApproved ArticleStatus = "approved"
	ArticleStatusRejected ArticleStatus = "rejected"
)

// IsValidArticleStatus returns true for a known lifecycle value.
func IsValidArticleStatus(s ArticleStatus) bool {
	switch s {
	case ArticleStatusDraft, ArticleStatusPending, ArticleStatusApproved, ArticleStatusRejected:
		return true
	}
	return false
}

// Article is an educational article. The slug is derived from the title and
// unique among all articles; version increments on every content update.
type Article struct {
	ID           uint                        `gorm:"primaryKey" json:"id"`
	Title        string                      `gorm:"size:255;not null" json:"title"`
	Slug         string                      `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	BodyMD       string                      `gorm:"column:body_md;type:text;not null" json:"body_md"`
	LinkDoc      *string                     `gorm:"column:link_doc;size:500" json:"link_doc"`
	LinkImage    *string                     `gorm:"column:link_image;size:500" json:"link_image"`
	Tags         datatypes.JSONSlice[string] `gorm:"not null" json:"tags"`
	Status       ArticleStatus               `gorm:"size:20;not null;default:draft" json:"status"`
	Version      int                         `gorm:"not null;default:1" json:"version"`
	AuthorID     *uint                       `gorm:"column:author_id" json:"author_id"`
	ApprovedByID *uint                       `gorm:"column:approved_by_id" json:"approved_by_id"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	ApprovedAt   *time.Time                  `gorm:"column:approved_at" json:"approved_at"`
}

func (Article) TableName() string {
	return "articles"
}
