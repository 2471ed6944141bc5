package models

import "time"

// Chat is a support conversation. Ownership is exclusive: either UserID is set
// (authenticated) or SessionID is set (anonymous), never both.
type Chat struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        *uint      `gorm:"column:user_id;index" json:"user_id"`
	SessionID     *string    `gorm:"column:session_id;size:255;uniqueIndex" json:"session_id"`
	Title         *string    `gorm:"size:255" json:"title"`
	Summary       *string    `gorm:"type:text" json:"summary"`
	IsActive      bool       `gorm:"column:is_active;not null;default:true" json:"is_active"`
	Rating        *int       `json:"rating"`
	RatingComment *string    `gorm:"column:rating_comment;type:text" json:"rating_comment"`
	RatedAt       *time.Time `gorm:"column:rated_at" json:"rated_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Chat) TableName() string {
	return "chats"
}

// Message roles within a chat.
const (
	MessageRoleUser      = "user"
	MessageRoleAssistant = "assistant"
)

// ChatMessage is one ordered message inside a chat.
type ChatMessage struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	ChatID          uint      `gorm:"column:chat_id;not null;index" json:"chat_id"`
	Role            string    `gorm:"size:20;not null" json:"role"`
	Content         string    `gorm:"type:text;not null" json:"content"`
	MessageMetadata *string   `gorm:"column:message_metadata;type:text" json:"message_metadata"`
	CreatedAt       time.Time `json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
